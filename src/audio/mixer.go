package audio

import "github.com/viterin/vek"

// minDivisor gives headroom for eight voices at full scale. Beyond that the
// mix gets quieter as voices are added.
const minDivisor = 8

// ----- Mixer ----- //

type mixer struct {
	voices     *voiceRegistry
	sampleRate float64
	clock      int64 // frames rendered since start
	times      []float64
	tmp        []float64
	refs       []voiceRef
	finished   []voiceRef
}

func newMixer(voices *voiceRegistry, sampleRate int) *mixer {
	return &mixer{
		voices:     voices,
		sampleRate: float64(sampleRate),
		refs:       make([]voiceRef, 0, numNotes),
		finished:   make([]voiceRef, 0, numNotes),
	}
}

// render writes the next len(out) frames of the mix and advances the clock.
func (m *mixer) render(out []float64) {
	n := len(out)
	for i := range out {
		out[i] = 0
	}
	if n == 0 {
		return
	}
	if cap(m.times) < n {
		m.times = make([]float64, n)
		m.tmp = make([]float64, n)
	}
	times := m.times[:n]
	tmp := m.tmp[:n]
	for i := range times {
		times[i] = float64(m.clock+int64(i)) / m.sampleRate
	}

	m.refs = m.voices.snapshot(m.refs[:0])
	m.finished = m.finished[:0]
	for _, ref := range m.refs {
		if !ref.voice.produce(times, tmp) {
			m.finished = append(m.finished, ref)
			continue
		}
		vek.Add_Inplace(out, tmp)
	}
	m.voices.prune(m.finished)
	clear(m.refs)
	clear(m.finished)

	divisor := m.voices.count()
	if divisor < minDivisor {
		divisor = minDivisor
	}
	vek.MulNumber_Inplace(out, 1.0/float64(divisor))

	m.clock += int64(n)
}
