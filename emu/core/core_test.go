package core

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/relsec/x86emu/emu/cpustate"
)

func TestRunAdvancesRIPUntilExitAddr(t *testing.T) {
	state := cpustate.New(true)
	state.Regs.Set64(cpustate.RIP, 0x1000)

	step := func(s *cpustate.State) error {
		s.Regs.Set64(cpustate.RIP, s.Regs.Get64(cpustate.RIP)+1)
		return nil
	}

	in := New(state, step)
	go in.Start()
	in.Post(Packet{Msg: CmdSetExitAddr, Addr: 0x1005})
	in.Post(Packet{Msg: CmdRun})

	deadline := time.After(2 * time.Second)
	for state.Regs.Get64(cpustate.RIP) < 0x1005 {
		select {
		case <-deadline:
			t.Fatal("interpreter did not reach exit address in time")
		default:
		}
	}
	in.Stop()
	if got := state.Regs.Get64(cpustate.RIP); got < 0x1005 {
		t.Fatalf("RIP = %#x, want >= 0x1005", got)
	}
}

func TestStepOneExecutesExactlyOneInstruction(t *testing.T) {
	state := cpustate.New(true)
	var count int32
	step := func(s *cpustate.State) error {
		atomic.AddInt32(&count, 1)
		return nil
	}
	in := New(state, step)
	go in.Start()
	in.Post(Packet{Msg: CmdStepOne})
	time.Sleep(50 * time.Millisecond)
	in.Stop()
	if got := atomic.LoadInt32(&count); got != 1 {
		t.Fatalf("step count = %d, want 1", got)
	}
}

func TestRunStopsAtExitPosition(t *testing.T) {
	state := cpustate.New(true)
	step := func(s *cpustate.State) error {
		s.Regs.Set64(cpustate.RIP, s.Regs.Get64(cpustate.RIP)+1)
		return nil
	}

	in := New(state, step)
	go in.Start()
	in.Post(Packet{Msg: CmdSetExitPosition, Addr: 5})
	in.Post(Packet{Msg: CmdRun})

	deadline := time.After(2 * time.Second)
	for in.Instructions() < 5 {
		select {
		case <-deadline:
			t.Fatal("interpreter did not reach exit position in time")
		default:
		}
	}
	in.Stop()
	if got := in.Instructions(); got != 5 {
		t.Fatalf("Instructions() = %d, want 5 (exit position is an independent kill switch from exitAddr)", got)
	}
}

func TestStepErrorStopsTheLoop(t *testing.T) {
	state := cpustate.New(true)
	var count int32
	step := func(s *cpustate.State) error {
		atomic.AddInt32(&count, 1)
		return errors.New("boom")
	}
	in := New(state, step)
	go in.Start()
	in.Post(Packet{Msg: CmdRun})
	time.Sleep(50 * time.Millisecond)
	in.Stop()
	if got := atomic.LoadInt32(&count); got != 1 {
		t.Fatalf("step count = %d, want 1 (a failing Step must stop the run loop)", got)
	}
}
