package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jinjor/synththis/src/audio"
)

type fakeCommander struct {
	commands [][]string
	err      error
}

func (c *fakeCommander) Update(command []string) error {
	c.commands = append(c.commands, command)
	return c.err
}

func (c *fakeCommander) Status() string {
	return "status"
}

func lineReader(input string) func() (string, error) {
	reader := bufio.NewReader(strings.NewReader(input))
	return func() (string, error) {
		line, err := reader.ReadString('\n')
		return strings.TrimRight(line, "\n"), err
	}
}

func TestParseCommand(t *testing.T) {
	command, err := parseCommand("  set   attack 0.05 ")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(command, ",") != "set,attack,0.05" {
		t.Errorf("unexpected command: %v", command)
	}
	command, err = parseCommand("record my%20take.wav")
	if err != nil {
		t.Fatal(err)
	}
	if command[1] != "my take.wav" {
		t.Errorf("unexpected argument: %q", command[1])
	}
	if _, err := parseCommand("record %zz"); err == nil {
		t.Error("expected an error")
	}
}

func TestRunCommand(t *testing.T) {
	c := &fakeCommander{}
	out := &bytes.Buffer{}
	if err := runCommand("", out, c); err != nil {
		t.Error(err)
	}
	if err := runCommand("help", out, c); err != nil {
		t.Error(err)
	}
	if err := runCommand("show", out, c); err != nil {
		t.Error(err)
	}
	if !strings.Contains(out.String(), "note_on") || !strings.Contains(out.String(), "status\n") {
		t.Errorf("unexpected output: %q", out.String())
	}
	if err := runCommand("quit", out, c); !errors.Is(err, errQuit) {
		t.Errorf("expected errQuit, but got: %v", err)
	}
	if err := runCommand("note_on 60", out, c); err != nil {
		t.Error(err)
	}
	if len(c.commands) != 1 || c.commands[0][0] != "note_on" {
		t.Errorf("unexpected commands: %v", c.commands)
	}
}

func TestProcessCommandsUntilEOF(t *testing.T) {
	c := &fakeCommander{err: errors.New("nope")}
	out := &bytes.Buffer{}
	err := processCommands(context.Background(), lineReader("osc saw\nnote_on 60\n"), out, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.commands) != 2 {
		t.Errorf("expected 2 commands, but got: %v", c.commands)
	}
	if strings.Count(out.String(), "error: nope") != 2 {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestProcessCommandsQuit(t *testing.T) {
	c := &fakeCommander{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := processCommands(ctx, lineReader("panic\nquit\nnote_on 60\n"), &bytes.Buffer{}, c)
	if !errors.Is(err, errQuit) {
		t.Errorf("expected errQuit, but got: %v", err)
	}
	if len(c.commands) != 1 {
		t.Errorf("expected 1 command, but got: %v", c.commands)
	}
}

func TestTerminalEOFQuits(t *testing.T) {
	c := &fakeCommander{}
	err := processCommands(context.Background(), quitOnEOF(lineReader("panic\n")), &bytes.Buffer{}, c)
	if !errors.Is(err, errQuit) {
		t.Errorf("expected errQuit, but got: %v", err)
	}
	if len(c.commands) != 1 {
		t.Errorf("expected 1 command, but got: %v", c.commands)
	}
}

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	if err := os.WriteFile(path, []byte("osc: saw\nrelease: 0.3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := loadSettings(path, []override{
		{flag: "release", key: "release", value: "0.5"},
		{flag: "attack", key: "attack", value: ""},
	}, true)
	if err != nil {
		t.Fatal(err)
	}
	expected := "osc=saw attack=0.020s release=0.500s sample_rate=48000 block_size=16 verbose=true"
	if s.String() != expected {
		t.Errorf("expected %v, but got: %v", expected, s)
	}
}

func TestLoadSettingsBadFlag(t *testing.T) {
	_, err := loadSettings("", []override{{flag: "block", key: "block_size", value: "64"}}, false)
	if err == nil || !strings.HasPrefix(err.Error(), "-block: ") {
		t.Errorf("expected a -block error, but got: %v", err)
	}
	if _, err := loadSettings(filepath.Join(t.TempDir(), "missing.yml"), nil, false); err == nil {
		t.Error("expected an error for a missing file")
	}
	var _ commander = (*audio.Audio)(nil)
}
