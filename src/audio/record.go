package audio

import (
	"fmt"
	"log"
	"os"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const recordBitDepth = 16
const recordQueueLength = 4096 // blocks

// ----- Recorder ----- //

// recorder writes the mixed output to a mono 16-bit WAV file. write never
// blocks: blocks that do not fit in the queue are dropped and counted.
type recorder struct {
	path       string
	sampleRate int
	file       *os.File
	enc        *wav.Encoder
	blocks     chan []float64
	free       chan []float64
	done       chan error

	mu      sync.Mutex
	closed  bool
	dropped int
	frames  int
}

func startRecorder(path string, sampleRate int) (*recorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create %v: %w", path, err)
	}
	r := &recorder{
		path:       path,
		sampleRate: sampleRate,
		file:       file,
		enc:        wav.NewEncoder(file, sampleRate, recordBitDepth, 1, 1),
		blocks:     make(chan []float64, recordQueueLength),
		free:       make(chan []float64, recordQueueLength),
		done:       make(chan error, 1),
	}
	go r.run()
	return r, nil
}

func (r *recorder) write(block []float64) {
	var buf []float64
	select {
	case buf = <-r.free:
	default:
	}
	if cap(buf) < len(block) {
		buf = make([]float64, len(block))
	}
	buf = buf[:len(block)]
	copy(buf, block)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.blocks <- buf:
		r.frames += len(buf)
	default:
		r.dropped++
	}
}

func (r *recorder) run() {
	intBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: 1,
			SampleRate:  r.sampleRate,
		},
		SourceBitDepth: recordBitDepth,
	}
	var err error
	for block := range r.blocks {
		if err != nil {
			continue
		}
		intBuf.Data = intBuf.Data[:0]
		for _, value := range block {
			intBuf.Data = append(intBuf.Data, int(toInt16(value)))
		}
		err = r.enc.Write(intBuf)
		select {
		case r.free <- block:
		default:
		}
	}
	r.done <- err
}

// stop flushes pending blocks and finalizes the file.
func (r *recorder) stop() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.blocks)
	dropped := r.dropped
	frames := r.frames
	r.mu.Unlock()

	err := <-r.done
	if closeErr := r.enc.Close(); err == nil {
		err = closeErr
	}
	if closeErr := r.file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("could not write %v: %w", r.path, err)
	}
	if dropped > 0 {
		log.Printf("[WARN] recorder dropped %v blocks\n", dropped)
	}
	log.Printf("recorded %.2fs to %v\n", float64(frames)/float64(r.sampleRate), r.path)
	return nil
}
