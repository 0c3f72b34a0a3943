package audio

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

const (
	defaultSampleRate = 48000
	defaultBlockSize  = 16
	defaultAttack     = 0.020
	defaultRelease    = 0.10
	minBlockSize      = 1
	maxBlockSize      = 30
)

var supportedSampleRates = []int{44100, 48000}

// ErrUnknownKey is returned by set for keys it does not recognise.
var ErrUnknownKey = errors.New("unknown key")

// ErrFixedWhileRunning is returned when a startup-only setting is changed at runtime.
var ErrFixedWhileRunning = errors.New("cannot be changed while running")

// ----- Settings ----- //

// Settings is the configuration an Audio starts with. Oscillator kind, attack
// and release can also change while running and only affect new notes.
type Settings struct {
	kind       int
	attack     float64 // sec
	release    float64 // sec
	sampleRate int
	blockSize  int // frames
	verbose    bool
	recordPath string
}

// settingsJSON doubles as the YAML document of a settings file.
type settingsJSON struct {
	Osc        string  `json:"osc" yaml:"osc"`
	Attack     float64 `json:"attack" yaml:"attack"`
	Release    float64 `json:"release" yaml:"release"`
	SampleRate int     `json:"sampleRate" yaml:"sampleRate"`
	BlockSize  int     `json:"blockSize" yaml:"blockSize"`
	Verbose    bool    `json:"verbose" yaml:"verbose"`
	Record     string  `json:"record,omitempty" yaml:"record,omitempty"`
}

// NewSettings returns the defaults: sine, 20ms attack, 100ms release, 48kHz,
// 16 frames per block.
func NewSettings() *Settings {
	return &Settings{
		kind:       waveSine,
		attack:     defaultAttack,
		release:    defaultRelease,
		sampleRate: defaultSampleRate,
		blockSize:  defaultBlockSize,
	}
}

func (s *Settings) clone() *Settings {
	c := *s
	return &c
}

func (s *Settings) fromJSON(j *settingsJSON) {
	s.kind = waveKindFromString(j.Osc)
	s.attack = j.Attack
	s.release = j.Release
	s.sampleRate = j.SampleRate
	s.blockSize = j.BlockSize
	s.verbose = j.Verbose
	s.recordPath = j.Record
}

func (s *Settings) toJSONStruct() *settingsJSON {
	return &settingsJSON{
		Osc:        waveKindToString(s.kind),
		Attack:     s.attack,
		Release:    s.release,
		SampleRate: s.sampleRate,
		BlockSize:  s.blockSize,
		Verbose:    s.verbose,
		Record:     s.recordPath,
	}
}

func (s *Settings) applyJSON(data json.RawMessage) error {
	j := s.toJSONStruct()
	if err := json.Unmarshal(data, j); err != nil {
		return fmt.Errorf("failed to apply JSON to settings: %w", err)
	}
	s.fromJSON(j)
	return nil
}

func (s *Settings) toJSON() json.RawMessage {
	return toRawMessage(s.toJSONStruct())
}

// Validate ...
func (s *Settings) Validate() error {
	if !isSupportedSampleRate(s.sampleRate) {
		return fmt.Errorf("unsupported sample rate %v (want one of %v)", s.sampleRate, supportedSampleRates)
	}
	if s.blockSize < minBlockSize || s.blockSize > maxBlockSize {
		return fmt.Errorf("block size %v out of range [%v, %v]", s.blockSize, minBlockSize, maxBlockSize)
	}
	if err := validateDuration("attack", s.attack); err != nil {
		return err
	}
	return validateDuration("release", s.release)
}

// Set applies a key-value pair before the engine is started.
func (s *Settings) Set(key string, value string) error {
	return s.set(key, value, false)
}

// set applies a single key-value pair. Keys that shape the audio device are
// only accepted before the engine starts.
func (s *Settings) set(key string, value string, running bool) error {
	switch key {
	case "osc", "kind":
		if !isWaveKind(value) {
			return fmt.Errorf("unknown oscillator %q (want one of %v)", value, waveKindNames)
		}
		s.kind = waveKindFromString(value)
	case "attack":
		v, err := parseDuration(key, value)
		if err != nil {
			return err
		}
		s.attack = v
	case "release":
		v, err := parseDuration(key, value)
		if err != nil {
			return err
		}
		s.release = v
	case "verbose":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid verbose %q: %w", value, err)
		}
		s.verbose = v
	case "sample_rate":
		if running {
			return fmt.Errorf("%s %w", key, ErrFixedWhileRunning)
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid sample rate %q: %w", value, err)
		}
		if !isSupportedSampleRate(v) {
			return fmt.Errorf("unsupported sample rate %v (want one of %v)", v, supportedSampleRates)
		}
		s.sampleRate = v
	case "block_size":
		if running {
			return fmt.Errorf("%s %w", key, ErrFixedWhileRunning)
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid block size %q: %w", value, err)
		}
		if v < minBlockSize || v > maxBlockSize {
			return fmt.Errorf("block size %v out of range [%v, %v]", v, minBlockSize, maxBlockSize)
		}
		s.blockSize = v
	default:
		return fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	return nil
}

// RecordPath is the WAV file to record to from startup, if any.
func (s *Settings) RecordPath() string {
	return s.recordPath
}

func (s *Settings) String() string {
	return fmt.Sprintf("osc=%s attack=%.3fs release=%.3fs sample_rate=%d block_size=%d verbose=%t",
		waveKindToString(s.kind), s.attack, s.release, s.sampleRate, s.blockSize, s.verbose)
}

func parseDuration(key string, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if err := validateDuration(key, v); err != nil {
		return 0, err
	}
	return v, nil
}

func validateDuration(key string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%s must be a finite non-negative number of seconds, got %v", key, v)
	}
	return nil
}

func isSupportedSampleRate(rate int) bool {
	for _, r := range supportedSampleRates {
		if r == rate {
			return true
		}
	}
	return false
}

func toRawMessage(v interface{}) json.RawMessage {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return json.RawMessage(bytes)
}
