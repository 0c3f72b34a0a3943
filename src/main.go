package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jinjor/synththis/src/audio"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "Settings file (.yml or .json).")
	osc := flag.String("osc", "", "Oscillator: sine, saw or square.")
	attack := flag.String("attack", "", "Attack time in seconds.")
	release := flag.String("release", "", "Release time in seconds.")
	rate := flag.String("rate", "", "Sample rate: 44100 or 48000.")
	block := flag.String("block", "", "Frames per block: 1 to 30.")
	verbose := flag.Bool("v", false, "Log every MIDI message.")
	record := flag.String("record", "", "Record the output to this .wav file.")
	midiIn := flag.String("midi", "", "Use the first MIDI input whose name starts with this prefix.")
	noConsole := flag.Bool("no-console", false, "Do not read commands from standard input.")
	flag.Parse()
	log.SetFlags(log.Lshortfile)

	settings, err := loadSettings(*configPath, []override{
		{flag: "osc", key: "osc", value: *osc},
		{flag: "attack", key: "attack", value: *attack},
		{flag: "release", key: "release", value: *release},
		{flag: "rate", key: "sample_rate", value: *rate},
		{flag: "block", key: "block_size", value: *block},
	}, *verbose)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	synth, err := audio.NewAudio(settings)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer func() {
		if err := synth.Close(); err != nil {
			log.Printf("error while closing audio: %v\n", err)
		}
	}()
	recordPath := *record
	if recordPath == "" {
		recordPath = settings.RecordPath()
	}
	if recordPath != "" {
		if err := synth.StartRecording(recordPath); err != nil {
			log.Fatalf("error: %v\n", err)
		}
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		select {
		case sig := <-signalCh:
			log.Printf("Caught signal %s: shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return synth.Start(ctx)
	})
	g.Go(func() error {
		// closes the MIDI input once the event loop ends on its own
		midiCtx, stopMidi := context.WithCancel(ctx)
		defer stopMidi()
		return synth.ListenMidi(midiCtx, audio.ListenToMidiIn(midiCtx, *midiIn))
	})
	if !*noConsole {
		g.Go(func() error {
			return runConsole(ctx, os.Stdin, os.Stdout, synth)
		})
	}
	err = g.Wait()
	if err != nil && !errors.Is(err, errQuit) {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

type override struct {
	flag  string
	key   string
	value string
}

// loadSettings layers command line flags over the settings file over the defaults.
func loadSettings(path string, overrides []override, verbose bool) (*audio.Settings, error) {
	settings := audio.NewSettings()
	if path != "" {
		var err error
		settings, err = audio.LoadSettings(path)
		if err != nil {
			return nil, err
		}
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		if err := settings.Set(o.key, o.value); err != nil {
			return nil, fmt.Errorf("-%s: %w", o.flag, err)
		}
	}
	if verbose {
		if err := settings.Set("verbose", "true"); err != nil {
			return nil, err
		}
	}
	return settings, nil
}
