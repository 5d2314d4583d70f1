package parser

import (
	"strings"
	"testing"

	"github.com/relsec/x86emu/emu/core"
	"github.com/relsec/x86emu/emu/cpustate"
)

func newConsole(t *testing.T) *Console {
	t.Helper()
	state := cpustate.New(false)
	interp := core.New(state, func(*cpustate.State) error { return nil })
	return NewConsole(interp, state)
}

func TestProcessCommandUnknown(t *testing.T) {
	c := newConsole(t)
	_, _, err := ProcessCommand("bogus", c)
	if err == nil {
		t.Fatalf("expected error for unknown command")
	}
}

func TestProcessCommandShortPrefixBelowMinNotFound(t *testing.T) {
	c := newConsole(t)
	// "s" is shorter than every "s"-prefixed command's minimum match
	// length (step=2, stop=3, save=2), so it matches nothing rather than
	// picking one arbitrarily.
	_, _, err := ProcessCommand("s", c)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected command-not-found error, got %v", err)
	}
}

func TestProcessCommandRegistersAbbreviation(t *testing.T) {
	c := newConsole(t)
	_, out, err := ProcessCommand("r", c)
	if err != nil {
		t.Fatalf("ProcessCommand: %v", err)
	}
	if out == "" {
		t.Fatalf("expected register dump output")
	}
}

func TestDepositThenExamine(t *testing.T) {
	c := newConsole(t)
	if _, err := c.State.Space.CreateMap("scratch", 0x400000, 0x1000); err != nil {
		t.Fatalf("CreateMap: %v", err)
	}

	if _, _, err := ProcessCommand("deposit 0x400010 0xab", c); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	_, out, err := ProcessCommand("examine 0x400010 1", c)
	if err != nil {
		t.Fatalf("examine: %v", err)
	}
	if !strings.Contains(strings.ToLower(out), "ab") {
		t.Fatalf("examine output %q missing deposited byte", out)
	}
}

func TestBreakAndDelete(t *testing.T) {
	c := newConsole(t)
	if _, _, err := ProcessCommand("break 0x401000", c); err != nil {
		t.Fatalf("break: %v", err)
	}
	if !c.Breakpoints[0x401000] {
		t.Fatalf("expected breakpoint recorded")
	}
	if _, _, err := ProcessCommand("delete 0x401000", c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if c.Breakpoints[0x401000] {
		t.Fatalf("expected breakpoint removed")
	}
}

func TestBanzaiToggle(t *testing.T) {
	c := newConsole(t)
	if _, _, err := ProcessCommand("banzai on", c); err != nil {
		t.Fatalf("banzai on: %v", err)
	}
	if !c.State.Banzai {
		t.Fatalf("expected Banzai true")
	}
	if _, _, err := ProcessCommand("banzai off", c); err != nil {
		t.Fatalf("banzai off: %v", err)
	}
	if c.State.Banzai {
		t.Fatalf("expected Banzai false")
	}
}

func TestQuitReturnsTrue(t *testing.T) {
	c := newConsole(t)
	quit, _, err := ProcessCommand("quit", c)
	if err != nil {
		t.Fatalf("quit: %v", err)
	}
	if !quit {
		t.Fatalf("expected quit=true")
	}
}

func TestCompleteCmdSuggestsCommands(t *testing.T) {
	c := newConsole(t)
	// A second token already present forces CompleteCmd down the
	// command-name-matching path, echoing back the unique match for the
	// first word.
	matches := CompleteCmd("ban x", c)
	if len(matches) != 1 || matches[0] != "banzai" {
		t.Fatalf("CompleteCmd(%q) = %v, want [banzai]", "ban x", matches)
	}
}
