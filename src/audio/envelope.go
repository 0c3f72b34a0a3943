package audio

// ----- Envelope Phase ----- //

const (
	phaseFinished = iota
	phaseAttack
	phaseSustain
	phaseRelease
)

// ----- Envelope ----- //

/*
  1 +     x-------------x
    |    /               \
    |   /                 \
    |  /                   \
    | /                     \
  0 +-----+-------------+-----+
    |a    |sustain      |r    |

  Gains are applied per block as a linear ramp. Remaining time is derived from
  the frames spent in the phase, so block sizes that divide the duration land
  exactly on zero.
*/
type envelope struct {
	attack     float64 // sec
	release    float64 // sec
	sampleRate float64
	phase      int
	phasePos   int64 // frames spent in the current phase
}

func newEnvelope(attack float64, release float64, sampleRate float64) envelope {
	e := envelope{
		attack:     attack,
		release:    release,
		sampleRate: sampleRate,
		phase:      phaseAttack,
	}
	if attack <= 0 {
		e.phase = phaseSustain
	}
	return e
}

func (e *envelope) remaining(duration float64) float64 {
	return duration - float64(e.phasePos)/e.sampleRate
}

// noteOff ends any attack in progress.
func (e *envelope) noteOff() {
	if e.phase == phaseFinished || e.phase == phaseRelease {
		return
	}
	e.phase = phaseRelease
	e.phasePos = 0
}

func (e *envelope) finished() bool {
	return e.phase == phaseFinished
}

// step computes the gains of the next len(gain) frames. It reports false when
// the envelope is over, in which case the block must be discarded. The second
// result is false when the gain is a constant 1 and gain was left untouched.
func (e *envelope) step(gain []float64) (alive bool, shaped bool) {
	n := len(gain)
	blockTime := float64(n) / e.sampleRate
	switch e.phase {
	case phaseRelease:
		remaining := e.remaining(e.release)
		if remaining <= 0 {
			e.phase = phaseFinished
			e.phasePos = 0
			return false, false
		}
		linearRamp(remaining/e.release, (remaining-blockTime)/e.release, gain)
		e.phasePos += int64(n)
		return true, true
	case phaseAttack:
		remaining := e.remaining(e.attack)
		if remaining <= 0 {
			e.phase = phaseSustain
			e.phasePos = 0
			return true, false
		}
		linearRamp(1.0-remaining/e.attack, 1.0-(remaining-blockTime)/e.attack, gain)
		e.phasePos += int64(n)
		if e.remaining(e.attack) <= 0 {
			e.phase = phaseSustain
			e.phasePos = 0
		}
		return true, true
	case phaseSustain:
		return true, false
	default:
		return false, false
	}
}
