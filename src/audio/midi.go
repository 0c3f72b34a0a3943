package audio

import (
	"context"
	"log"
	"strings"

	"gitlab.com/gomidi/rtmididrv"
)

// ListenToMidiIn forwards raw messages from a MIDI input until ctx is done.
// The first input whose name starts with prefix is used; an empty prefix
// takes the first input. The channel is closed when listening stops.
func ListenToMidiIn(ctx context.Context, prefix string) <-chan []byte {
	ch := make(chan []byte, 1024)
	go func() {
		defer close(ch)
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			err := drv.Close()
			if err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		log.Printf("MIDI IN: %v\n", ins)

		if len(ins) == 0 {
			log.Println("WARN: MIDI IN not found")
			return
		}
		in := ins[0]
		if prefix != "" {
			in = nil
			for _, candidate := range ins {
				if strings.HasPrefix(candidate.String(), prefix) {
					in = candidate
					break
				}
			}
			if in == nil {
				log.Printf("WARN: no MIDI IN starting with %q\n", prefix)
				return
			}
		}
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			return
		}
		log.Println("opened " + in.String())
		defer func() {
			err := in.Close()
			if err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		log.Println("start listening MIDI IN...")
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			msg := make([]byte, len(data))
			copy(msg, data)
			select {
			case ch <- msg:
			default:
				log.Println("[WARN] MIDI IN queue is full, message dropped")
			}
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
			return
		}
		defer func() {
			log.Println("stop listening MIDI IN...")
			err := in.StopListening()
			if err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		<-ctx.Done()
	}()
	return ch
}
