package cpustate

import (
	"github.com/relsec/x86emu/emu/exception"
	"github.com/relsec/x86emu/emu/fpu"
	"github.com/relsec/x86emu/emu/maps"
)

// State is the full interpreter-visible machine state: the register file,
// the FPU/SIMD register files, the guest address space, and the process
// bookkeeping (TLS/FLS, handles, LastError, SEH/VEH) that shim routines and
// the fault dispatcher consult.
type State struct {
	Regs  *Registers
	FPU   *fpu.Stack
	Simd  *Simd
	Space *maps.Space
	Stack *StackOps

	TLS *IndexTable
	FLS *IndexTable

	Handles *HandleTable

	lastError uint32
	Exc       ExceptionCursors

	// Banzai downgrades faults that would otherwise stop the interpreter:
	// with it set, RaiseFault records the fault in Last without setting
	// Faulted. The address space does not consult it; reads and writes of
	// unmapped memory return an error whether or not it is set.
	Banzai bool

	// Faulted is set by RaiseFault when no SEH/VEH handler consumes the
	// fault; the interpreter loop checks this after every instruction.
	Faulted bool
	Last    *exception.Fault
}

// New creates a fully wired interpreter state for the given bitness.
func New(is64Bit bool) *State {
	space := maps.New(is64Bit)
	regs := NewRegisters()
	return &State{
		Regs:  regs,
		FPU:   fpu.NewStack(),
		Simd:  NewSimd(),
		Space: space,
		Stack: &StackOps{Regs: regs, Space: space, Is64Bit: is64Bit},
		TLS:   NewIndexTable(),
		FLS:   NewIndexTable(),
		Handles: NewHandleTable(),
	}
}

func (s *State) LastError() uint32     { return s.lastError }
func (s *State) SetLastError(v uint32) { s.lastError = v }

// RaiseFault records the fault as current. If Banzai is set the fault is
// downgraded to a recorded-but-non-fatal condition and the caller may choose
// to skip the faulting instruction. Otherwise, if a VEH or SEH handler is
// registered it defers to the caller (the interpreter's dispatch loop) to
// invoke it and decide whether execution continues; if none is registered,
// Faulted is set and the interpreter loop stops.
func (s *State) RaiseFault(f *exception.Fault) {
	s.Last = f
	if s.Banzai {
		return
	}
	if s.Exc.VEHHead != 0 || s.Exc.SEHHead != 0 {
		return
	}
	s.Faulted = true
}

// ClearFault resets the fault-pending flag once a handler has processed it.
func (s *State) ClearFault() {
	s.Faulted = false
	s.Last = nil
}
