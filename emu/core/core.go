/*
 * x86emu - interpreter loop
 *
 * Copyright (c) 2024-2026, the x86emu contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package core runs the fetch-decode-execute loop on its own goroutine,
// driven by a caller-supplied Step function, and exposes the same
// start/stop/post-command handshake the rest of the ambient stack uses for
// its worker goroutines.
package core

import (
	"log/slog"
	"sync"
	"time"

	"github.com/relsec/x86emu/emu/cpustate"
)

// StepFunc executes exactly one guest instruction against state, returning
// an error only for interpreter-internal failures (the decoder choking);
// guest-level faults are recorded on state via RaiseFault, not returned.
type StepFunc func(state *cpustate.State) error

// Command is a message posted to a running interpreter.
type Command int

const (
	CmdRun Command = iota
	CmdPause
	CmdStepOne
	CmdSetExitAddr
	CmdSetExitPosition
)

// Packet carries a Command plus its argument (the exit address for
// CmdSetExitAddr, the instruction-count target for CmdSetExitPosition,
// ignored otherwise) to a running Interp.
type Packet struct {
	Msg  Command
	Addr uint64
}

// Interp owns one interpreter goroutine over a shared cpustate.State.
type Interp struct {
	State *cpustate.State
	Step  StepFunc

	wg      sync.WaitGroup
	done    chan struct{}
	cmd     chan Packet
	running bool

	// exitAddr, when non-zero, stops the loop once RIP reaches it (used by
	// the debug console's "run to address").
	exitAddr uint64

	// exitPosition, when non-zero, stops the loop once instrCount reaches
	// it — an instruction-count kill switch independent of exitAddr, for
	// "run N instructions" workflows that don't know or care what address
	// execution lands on.
	exitPosition uint64

	// instrCount is the number of instructions Step has successfully
	// executed since the Interp was created.
	instrCount uint64

	// forceBreak is set by Stop/Break from another goroutine between
	// instructions; it does not interrupt a Step already in flight.
	forceBreak bool
}

func New(state *cpustate.State, step StepFunc) *Interp {
	return &Interp{
		State: state,
		Step:  step,
		done:  make(chan struct{}),
		cmd:   make(chan Packet, 8),
	}
}

// Start runs the fetch-execute loop until Stop is called. Call it as its
// own goroutine.
func (in *Interp) Start() {
	in.wg.Add(1)
	defer in.wg.Done()
	for {
		select {
		case <-in.done:
			slog.Info("interpreter core shutting down")
			return
		case pkt := <-in.cmd:
			in.handle(pkt)
		default:
		}

		if !in.running || in.forceBreak {
			time.Sleep(time.Millisecond)
			continue
		}

		if in.exitAddr != 0 && in.State.Regs.Get64(cpustate.RIP) == in.exitAddr {
			in.running = false
			continue
		}

		if in.exitPosition != 0 && in.instrCount >= in.exitPosition {
			in.running = false
			continue
		}

		if err := in.Step(in.State); err != nil {
			slog.Error("interpreter step failed", "error", err)
			in.running = false
			continue
		}
		in.instrCount++

		if in.State.Faulted {
			slog.Warn("guest fault left unhandled", "fault", in.State.Last)
			in.running = false
		}
	}
}

func (in *Interp) handle(pkt Packet) {
	switch pkt.Msg {
	case CmdRun:
		in.running = true
		in.forceBreak = false
	case CmdPause:
		in.running = false
	case CmdStepOne:
		in.forceBreak = false
		if err := in.Step(in.State); err != nil {
			slog.Error("interpreter single step failed", "error", err)
		} else {
			in.instrCount++
		}
		in.forceBreak = true
	case CmdSetExitAddr:
		in.exitAddr = pkt.Addr
	case CmdSetExitPosition:
		in.exitPosition = pkt.Addr
	}
}

// Instructions returns the number of instructions Step has successfully
// executed since the Interp was created.
func (in *Interp) Instructions() uint64 {
	return in.instrCount
}

// Post sends a command to the running interpreter loop.
func (in *Interp) Post(pkt Packet) {
	in.cmd <- pkt
}

// Break requests the loop pause before its next instruction.
func (in *Interp) Break() {
	in.forceBreak = true
}

// Stop signals the loop to exit and waits up to one second for it to do so.
func (in *Interp) Stop() {
	close(in.done)
	waited := make(chan struct{})
	go func() {
		in.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(time.Second):
		slog.Warn("timed out waiting for interpreter core to finish")
	}
}
