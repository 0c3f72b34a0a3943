package audio

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParseYAMLSettings(t *testing.T) {
	s, err := parseSettings([]byte(`
osc: square
attack: 0.05
sampleRate: 44100
blockSize: 8
verbose: true
`))
	expectNoError(t, err)
	expectEqual(t, s.kind, waveSquare)
	expectNearlyEqual(t, s.attack, 0.05)
	// missing keys keep their defaults
	expectNearlyEqual(t, s.release, defaultRelease)
	expectEqual(t, s.sampleRate, 44100)
	expectEqual(t, s.blockSize, 8)
	expectEqual(t, s.verbose, true)
}

func TestParseJSONSettings(t *testing.T) {
	s, err := parseSettings([]byte(`{"osc": "saw", "release": 0.5, "record": "take.wav"}`))
	expectNoError(t, err)
	expectEqual(t, s.kind, waveSaw)
	expectNearlyEqual(t, s.release, 0.5)
	expectEqual(t, s.sampleRate, defaultSampleRate)
	expectEqual(t, s.RecordPath(), "take.wav")
}

func TestParseInvalidSettings(t *testing.T) {
	for _, data := range []string{
		"sampleRate: 22050",
		"blockSize: 31",
		"blockSize: 0",
		"attack: -1",
		"osc: triangle",
		"{{{",
	} {
		if _, err := parseSettings([]byte(data)); err == nil {
			t.Errorf("expected an error for %q", data)
		}
	}
}

func TestSaveAndLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	s := NewSettings()
	expectNoError(t, s.Set("osc", "saw"))
	expectNoError(t, s.Set("release", "0.25"))
	expectNoError(t, SaveSettings(path, s))

	loaded, err := LoadSettings(path)
	expectNoError(t, err)
	expectEqual(t, loaded.String(), s.String())
}

func TestLoadMissingSettings(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yml"))
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestSettingsSet(t *testing.T) {
	s := NewSettings()
	expectNoError(t, s.Set("attack", "0"))
	expectNoError(t, s.Set("sample_rate", "44100"))
	expectNoError(t, s.Set("block_size", "30"))
	expectNoError(t, s.Set("verbose", "true"))
	expectEqual(t, s.attack, 0.0)
	expectEqual(t, s.sampleRate, 44100)
	expectEqual(t, s.blockSize, 30)

	expectEqual(t, errors.Is(s.Set("pitch", "1"), ErrUnknownKey), true)
	if err := s.Set("osc", "noise"); err == nil {
		t.Error("expected an error for an unknown oscillator")
	}
	if err := s.Set("release", "NaN"); err == nil {
		t.Error("expected an error for NaN")
	}
	if err := s.Set("block_size", "64"); err == nil {
		t.Error("expected an error for a block size over 30")
	}
	expectEqual(t, errors.Is(s.set("block_size", "8", true), ErrFixedWhileRunning), true)
	expectEqual(t, errors.Is(s.set("sample_rate", "48000", true), ErrFixedWhileRunning), true)
}

func TestSettingsJSON(t *testing.T) {
	s := NewSettings()
	other := NewSettings()
	expectNoError(t, s.Set("osc", "square"))
	expectNoError(t, other.applyJSON(s.toJSON()))
	expectEqual(t, other.kind, waveSquare)
	if err := other.applyJSON([]byte("nope")); err == nil {
		t.Error("expected an error")
	}
}
