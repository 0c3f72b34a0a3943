package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"

	"golang.org/x/term"
)

var errQuit = errors.New("quit")

const consoleHelp = `commands:
  osc sine|saw|square      oscillator for new notes
  set <key> <value>        osc, attack, release (seconds), verbose
  note_on <note> [osc]     play a note (0-127)
  note_off <note>          release a note
  panic                    silence every note
  record <file.wav>        start recording the output
  stop                     stop recording
  save <file.yml>          write the current settings
  show                     print settings and voices
  quit                     exit
`

type commander interface {
	Update(command []string) error
	Status() string
}

// runConsole reads commands line by line until ctx is done, the input ends or
// the user quits. A terminal gets line editing; anything else is read plainly.
func runConsole(ctx context.Context, in *os.File, out io.Writer, c commander) error {
	var readLine func() (string, error)
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("could not put terminal in raw mode: %w", err)
		}
		defer func() {
			if err := term.Restore(fd, oldState); err != nil {
				log.Printf("could not restore terminal: %v\n", err)
			}
		}()
		t := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{in, out}, "> ")
		log.SetOutput(t)
		defer log.SetOutput(os.Stderr)
		out = t
		readLine = quitOnEOF(t.ReadLine)
	} else {
		reader := bufio.NewReader(in)
		readLine = func() (string, error) {
			line, err := reader.ReadString('\n')
			if err == io.EOF && line != "" {
				return strings.TrimRight(line, "\r\n"), nil
			}
			return strings.TrimRight(line, "\r\n"), err
		}
	}
	return processCommands(ctx, readLine, out, c)
}

// quitOnEOF turns the io.EOF a raw terminal reports for Ctrl+C and Ctrl+D into
// errQuit. The terminal no longer raises SIGINT in raw mode.
func quitOnEOF(readLine func() (string, error)) func() (string, error) {
	return func() (string, error) {
		line, err := readLine()
		if err == io.EOF {
			return line, errQuit
		}
		return line, err
	}
}

func processCommands(ctx context.Context, readLine func() (string, error), out io.Writer, c commander) error {
	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		for {
			line, err := readLine()
			if err != nil {
				errs <- err
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()
	fmt.Fprint(out, "type \"help\" for commands\n")
	for {
		select {
		case <-ctx.Done():
			log.Println("processCommands() interrupted")
			return nil
		case err := <-errs:
			if err == io.EOF {
				log.Println("processCommands() ended.")
				return nil
			}
			return err
		case line := <-lines:
			err := runCommand(line, out, c)
			if errors.Is(err, errQuit) {
				return err
			}
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
	}
}

func runCommand(line string, out io.Writer, c commander) error {
	command, err := parseCommand(line)
	if err != nil {
		return err
	}
	if len(command) == 0 {
		return nil
	}
	switch command[0] {
	case "help":
		fmt.Fprint(out, consoleHelp)
	case "show":
		fmt.Fprintln(out, c.Status())
	case "quit", "exit":
		return errQuit
	default:
		return c.Update(command)
	}
	return nil
}

func parseCommand(line string) ([]string, error) {
	lineStr := strings.Fields(line)
	for i, item := range lineStr {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		lineStr[i] = escaped
	}
	return lineStr, nil
}
