package audio

import (
	"sync/atomic"

	"github.com/viterin/vek"
)

// ----- Voice ----- //

// voice is one sounding note. Everything it needs is captured at note-on, so
// settings changes never alter a note that is already playing.
type voice struct {
	note     int
	freq     float64
	kind     int
	env      envelope
	released atomic.Bool // set by note-off, consumed by the render path
	gain     []float64
}

func newVoice(note int, kind int, s *Settings) *voice {
	return &voice{
		note: note,
		freq: noteToFreq(note),
		kind: kind,
		env:  newEnvelope(s.attack, s.release, float64(s.sampleRate)),
	}
}

func (v *voice) noteOff() {
	v.released.Store(true)
}

// produce renders the voice over times into out and reports whether it made
// any sound. false means the voice is finished and should be pruned.
func (v *voice) produce(times []float64, out []float64) bool {
	if v.released.Load() {
		v.env.noteOff()
	}
	if v.env.finished() {
		return false
	}
	n := len(times)
	if n == 0 {
		return true
	}
	out = out[:n]
	if cap(v.gain) < n {
		v.gain = make([]float64, n)
	}
	gain := v.gain[:n]
	alive, shaped := v.env.step(gain)
	if !alive {
		return false
	}
	generateWave(v.kind, v.freq, times, out)
	if shaped {
		vek.Mul_Inplace(out, gain)
	}
	return true
}
