package audio

import (
	"gitlab.com/gomidi/midi/v2"
)

// ----- MIDI Event ----- //

type noteOn struct {
	note     int
	velocity int
}
type noteOff struct {
	note     int
	velocity int
}
type pitchBend struct {
	value int // -8192 ~ 8191
}
type controlChange struct {
	controller int
	value      int // 0 ~ 127
}
type transportStop struct{}

// Controllers routed to the settings.
const (
	ccSoundVariation = 70 // oscillator kind
	ccReleaseTime    = 72
	ccAttackTime     = 73
	ccAllSoundOff    = 120
	ccAllNotesOff    = 123
)

const maxAttackByController = 0.5 // sec at value 127
const maxReleaseByController = 1.0

// decodeMidi turns a raw message into one of the event types above. Messages
// the synth has no use for are reported as not ok.
func decodeMidi(data []byte) (event interface{}, ok bool) {
	if len(data) == 0 {
		return nil, false
	}
	msg := midi.Message(data)
	var ch, key, vel, cc, val uint8
	var rel int16
	var abs uint16
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return &noteOn{note: int(key), velocity: int(vel)}, true
	case msg.GetNoteOff(&ch, &key, &vel):
		return &noteOff{note: int(key), velocity: int(vel)}, true
	case msg.GetNoteEnd(&ch, &key):
		return &noteOff{note: int(key)}, true
	case msg.GetPitchBend(&ch, &rel, &abs):
		return &pitchBend{value: int(rel)}, true
	case msg.GetControlChange(&ch, &cc, &val):
		return &controlChange{controller: int(cc), value: int(val)}, true
	case msg.Is(midi.StopMsg):
		return &transportStop{}, true
	}
	return nil, false
}

// kindFromController splits the controller range in three.
func kindFromController(value int) int {
	switch {
	case value < 43:
		return waveSine
	case value < 86:
		return waveSaw
	default:
		return waveSquare
	}
}
