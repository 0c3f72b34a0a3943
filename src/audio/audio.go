package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/oto"
)

const (
	channelNum        = 1
	bitDepthInBytes   = 2
	bytesPerSample    = bitDepthInBytes * channelNum
	bufferSizeInBytes = 4096 // oto's own buffer, should be >= 4096
	baseFreq          = 440.0
)

// ErrUnknownCommand is returned by Update for commands it does not recognise.
var ErrUnknownCommand = errors.New("unknown command")

// ----- Controllers ----- //

type controllers struct {
	sync.Mutex
	pitchBend int
	values    [128]int
}

// ----- Audio ----- //

// Audio is the synthesizer. The audio device pulls blocks from it through
// Read while MIDI events and commands change the set of sounding notes.
type Audio struct {
	ctx         context.Context
	otoContext  *oto.Context
	settings    atomic.Pointer[Settings]
	settingsMu  sync.Mutex // serializes settings writers
	voices      *voiceRegistry
	mixer       *mixer
	out         []float64
	recorder    atomic.Pointer[recorder]
	recorderMu  sync.Mutex
	controllers *controllers
}

var _ io.Reader = (*Audio)(nil)

// NewAudio opens the default audio device with the sample rate of s.
func NewAudio(s *Settings) (*Audio, error) {
	a, err := newAudio(s)
	if err != nil {
		return nil, err
	}
	otoContext, err := oto.NewContext(s.sampleRate, channelNum, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	a.otoContext = otoContext
	return a, nil
}

// newAudio builds the engine without touching any device.
func newAudio(s *Settings) (*Audio, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	voices := &voiceRegistry{}
	a := &Audio{
		ctx:         context.Background(),
		voices:      voices,
		mixer:       newMixer(voices, s.sampleRate),
		out:         make([]float64, s.blockSize),
		controllers: &controllers{},
	}
	a.settings.Store(s.clone())
	return a, nil
}

func (a *Audio) Read(buf []byte) (int, error) {
	select {
	case <-a.ctx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
	}
	frames := len(buf) / bytesPerSample
	if cap(a.out) < frames {
		a.out = make([]float64, frames)
	}
	out := a.out[:frames]
	a.mixer.render(out)
	writeBuffer(out, buf)
	if r := a.recorder.Load(); r != nil {
		r.write(out)
	}
	return frames * bytesPerSample, nil
}

func writeBuffer(out []float64, buf []byte) {
	for i, value := range out {
		b := toInt16(value)
		buf[bytesPerSample*i] = byte(b)
		buf[bytesPerSample*i+1] = byte(b >> 8)
	}
}

func toInt16(value float64) int16 {
	if value <= -1 {
		return -math.MaxInt16
	}
	if value >= 1 {
		return math.MaxInt16
	}
	return int16(value * math.MaxInt16)
}

// Start plays until ctx is done. Every read of the player is one block.
func (a *Audio) Start(ctx context.Context) error {
	if a.otoContext == nil {
		return errors.New("no audio device")
	}
	p := a.otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()
	a.ctx = ctx

	s := a.settings.Load()
	log.Printf("start playing: %v\n", s)
	// block until cancel() called
	if _, err := io.CopyBuffer(p, a, make([]byte, s.blockSize*bytesPerSample)); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}

// Close ...
func (a *Audio) Close() error {
	log.Println("Closing Audio...")
	err := a.StopRecording()
	if a.otoContext != nil {
		if closeErr := a.otoContext.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// ----- Events ----- //

// ListenMidi applies raw MIDI messages from ch until ctx is done or ch is
// closed. A MIDI Stop message silences everything and ends the loop without
// error, leaving playback and the console running.
func (a *Audio) ListenMidi(ctx context.Context, ch <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			log.Println("ListenMidi() interrupted")
			return nil
		case data, ok := <-ch:
			if !ok {
				log.Println("ListenMidi() ended.")
				return nil
			}
			if !a.AddMidiEvent(data) {
				a.voices.panic()
				log.Println("MIDI Stop received, no longer listening to MIDI IN")
				return nil
			}
		}
	}
}

// AddMidiEvent applies one raw MIDI message. It returns false if the message
// asks the event loop to stop.
func (a *Audio) AddMidiEvent(data []byte) bool {
	event, ok := decodeMidi(data)
	if !ok {
		a.debugf("ignored MIDI message: % X\n", data)
		return true
	}
	return a.handleEvent(event)
}

func (a *Audio) handleEvent(event interface{}) bool {
	switch e := event.(type) {
	case *noteOn:
		a.debugf("got note-on: %v (velocity %v)\n", e.note, e.velocity)
		a.noteOn(e.note, a.settings.Load().kind)
	case *noteOff:
		a.debugf("got note-off: %v\n", e.note)
		a.voices.noteOff(e.note)
	case *pitchBend:
		a.debugf("got pitch-bend: %v\n", e.value)
		a.controllers.Lock()
		a.controllers.pitchBend = e.value
		a.controllers.Unlock()
	case *controlChange:
		a.debugf("got control-change: %v = %v\n", e.controller, e.value)
		a.controlChange(e.controller, e.value)
	case *transportStop:
		a.debugf("got stop\n")
		return false
	}
	return true
}

func (a *Audio) noteOn(note int, kind int) {
	if !validNote(note) {
		a.debugf("ignored note-on: %v is out of range\n", note)
		return
	}
	a.voices.noteOn(note, newVoice(note, kind, a.settings.Load()))
}

func (a *Audio) controlChange(controller int, value int) {
	if controller >= 0 && controller < len(a.controllers.values) {
		a.controllers.Lock()
		a.controllers.values[controller] = value
		a.controllers.Unlock()
	}
	switch controller {
	case ccSoundVariation:
		a.updateSettings(func(s *Settings) { s.kind = kindFromController(value) })
	case ccAttackTime:
		a.updateSettings(func(s *Settings) { s.attack = float64(value) / 127 * maxAttackByController })
	case ccReleaseTime:
		a.updateSettings(func(s *Settings) { s.release = float64(value) / 127 * maxReleaseByController })
	case ccAllSoundOff:
		a.voices.panic()
	case ccAllNotesOff:
		a.voices.releaseAll()
	}
}

// ----- Commands ----- //

// Update applies a console command such as ["set", "attack", "0.05"].
func (a *Audio) Update(command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("%w: empty", ErrUnknownCommand)
	}
	switch command[0] {
	case "set":
		if len(command) != 3 {
			return fmt.Errorf("invalid key-value pair %v", command[1:])
		}
		return a.set(command[1], command[2])
	case "osc":
		if len(command) != 2 {
			return fmt.Errorf("usage: osc sine|saw|square")
		}
		return a.set("osc", command[1])
	case "note_on":
		note, err := parseNote(command)
		if err != nil {
			return err
		}
		kind := a.settings.Load().kind
		if len(command) > 2 {
			if !isWaveKind(command[2]) {
				return fmt.Errorf("unknown oscillator %q", command[2])
			}
			kind = waveKindFromString(command[2])
		}
		a.noteOn(note, kind)
	case "note_off":
		note, err := parseNote(command)
		if err != nil {
			return err
		}
		a.voices.noteOff(note)
	case "panic":
		a.voices.panic()
	case "record":
		if len(command) != 2 {
			return fmt.Errorf("usage: record file.wav")
		}
		return a.StartRecording(command[1])
	case "stop":
		return a.StopRecording()
	case "save":
		if len(command) != 2 {
			return fmt.Errorf("usage: save settings.yml")
		}
		return SaveSettings(command[1], a.settings.Load())
	default:
		return fmt.Errorf("%w %q", ErrUnknownCommand, command[0])
	}
	return nil
}

func parseNote(command []string) (int, error) {
	if len(command) < 2 {
		return 0, fmt.Errorf("usage: %s note", command[0])
	}
	note, err := strconv.ParseInt(command[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid note %q: %w", command[1], err)
	}
	if !validNote(int(note)) {
		return 0, fmt.Errorf("note %v out of range [0, %v]", note, numNotes-1)
	}
	return int(note), nil
}

func (a *Audio) set(key string, value string) error {
	a.settingsMu.Lock()
	defer a.settingsMu.Unlock()
	s := a.settings.Load().clone()
	if err := s.set(key, value, true); err != nil {
		return err
	}
	a.settings.Store(s)
	return nil
}

func (a *Audio) updateSettings(f func(s *Settings)) {
	a.settingsMu.Lock()
	defer a.settingsMu.Unlock()
	s := a.settings.Load().clone()
	f(s)
	a.settings.Store(s)
}

// Status describes the current settings and playing notes.
func (a *Audio) Status() string {
	a.controllers.Lock()
	bend := a.controllers.pitchBend
	a.controllers.Unlock()
	recording := "off"
	if r := a.recorder.Load(); r != nil {
		recording = r.path
	}
	return fmt.Sprintf("%v voices=%d pitch_bend=%d recording=%s",
		a.settings.Load(), a.voices.count(), bend, recording)
}

// ----- Recording ----- //

// StartRecording captures the output to a WAV file until StopRecording.
func (a *Audio) StartRecording(path string) error {
	a.recorderMu.Lock()
	defer a.recorderMu.Unlock()
	if a.recorder.Load() != nil {
		return errors.New("already recording")
	}
	r, err := startRecorder(path, a.settings.Load().sampleRate)
	if err != nil {
		return err
	}
	a.recorder.Store(r)
	log.Printf("recording to %v\n", path)
	return nil
}

// StopRecording finalizes the WAV file. It is a no-op when not recording.
func (a *Audio) StopRecording() error {
	a.recorderMu.Lock()
	defer a.recorderMu.Unlock()
	r := a.recorder.Swap(nil)
	if r == nil {
		return nil
	}
	return r.stop()
}

func (a *Audio) debugf(format string, v ...interface{}) {
	if a.settings.Load().verbose {
		log.Printf(format, v...)
	}
}
