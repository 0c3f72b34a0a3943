package audio

import "sync"

const numNotes = 128

// ----- Voice Registry ----- //

// voiceRegistry maps a MIDI note number to its live voice. Each method holds
// the lock only for its own mutation; rendering happens outside of it.
type voiceRegistry struct {
	sync.Mutex
	slots [numNotes]*voice
	live  int
}

type voiceRef struct {
	note  int
	voice *voice
}

func validNote(note int) bool {
	return note >= 0 && note < numNotes
}

// noteOn replaces whatever voice the note already had.
func (r *voiceRegistry) noteOn(note int, v *voice) {
	if !validNote(note) {
		return
	}
	r.Lock()
	if r.slots[note] == nil {
		r.live++
	}
	r.slots[note] = v
	r.Unlock()
}

func (r *voiceRegistry) noteOff(note int) {
	if !validNote(note) {
		return
	}
	r.Lock()
	v := r.slots[note]
	r.Unlock()
	if v != nil {
		v.noteOff()
	}
}

func (r *voiceRegistry) releaseAll() {
	r.Lock()
	for _, v := range r.slots {
		if v != nil {
			v.noteOff()
		}
	}
	r.Unlock()
}

// panic drops every voice at once.
func (r *voiceRegistry) panic() {
	r.Lock()
	for i := range r.slots {
		r.slots[i] = nil
	}
	r.live = 0
	r.Unlock()
}

// snapshot appends the live voices to dst.
func (r *voiceRegistry) snapshot(dst []voiceRef) []voiceRef {
	r.Lock()
	for note, v := range r.slots {
		if v != nil {
			dst = append(dst, voiceRef{note: note, voice: v})
		}
	}
	r.Unlock()
	return dst
}

// prune removes finished voices. A slot that was taken over by a newer voice
// since the snapshot is left alone.
func (r *voiceRegistry) prune(refs []voiceRef) {
	if len(refs) == 0 {
		return
	}
	r.Lock()
	for _, ref := range refs {
		if validNote(ref.note) && r.slots[ref.note] == ref.voice {
			r.slots[ref.note] = nil
			r.live--
		}
	}
	r.Unlock()
}

func (r *voiceRegistry) count() int {
	r.Lock()
	defer r.Unlock()
	return r.live
}
