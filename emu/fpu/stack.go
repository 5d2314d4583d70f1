/*
 * x86emu - x87 register stack
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

package fpu

import "errors"

// ErrOverflow and ErrUnderflow are returned by Push/Pop when the 8-slot
// stack is exhausted in the relevant direction.
var (
	ErrOverflow  = errors.New("fpu: stack overflow")
	ErrUnderflow = errors.New("fpu: stack underflow")
)

const numSlots = 8

// Stack is the eight-slot rotating x87 register stack. Index i always means
// physical slot (top+i) mod 8.
type Stack struct {
	slots   [numSlots]F80
	top     uint8 // 0..7
	depth   int   // 0..8
	invalid [numSlots]bool

	Control    uint16 // FPU control word, default 0x027F
	Status     uint16 // FPU status word (C0..C3, busy bits folded in on read)
	Tag        uint16 // FPU tag word, default 0xFFFF
	IP         uint64 // last FPU instruction pointer
	OperandPtr uint64 // last FPU data operand pointer
	LastOpcode uint16
	MXCSR      uint32
}

// NewStack returns a freshly FNINIT'd stack.
func NewStack() *Stack {
	s := &Stack{}
	s.Init()
	return s
}

// Init resets the stack to its post-FNINIT state.
func (s *Stack) Init() {
	*s = Stack{Control: 0x027f, Tag: 0xffff}
}

func (s *Stack) physicalIndex(i int) int {
	return (int(s.top) + i) % numSlots
}

// PhysicalIndex exposes the rotation math for tests and traces.
func (s *Stack) PhysicalIndex(i int) int { return s.physicalIndex(i) }

// Depth returns the number of logically valid entries, 0..8.
func (s *Stack) Depth() int { return s.depth }

// Top returns the current TOP cursor, 0..7.
func (s *Stack) Top() uint8 { return s.top }

// PushF80 pushes v onto the stack, returning ErrOverflow if depth is already 8.
func (s *Stack) PushF80(v F80) error {
	if s.depth == numSlots {
		return ErrOverflow
	}
	s.top = (s.top + numSlots - 1) % numSlots
	s.slots[s.top] = v
	s.invalid[s.top] = false
	s.depth++
	return nil
}

// PushF64 converts v to extended precision and pushes it.
func (s *Stack) PushF64(v float64) error {
	return s.PushF80(FromF64(v))
}

// Pop returns the TOP slot and advances TOP, or ErrUnderflow if depth is 0.
// The backing storage of the popped slot is left untouched.
func (s *Stack) Pop() (F80, error) {
	if s.depth == 0 {
		return F80{}, ErrUnderflow
	}
	v := s.slots[s.top]
	s.top = (s.top + 1) % numSlots
	s.depth--
	return v, nil
}

// Get returns logical slot i, marking it invalid (and returning the real
// indefinite encoding) if the stack is too shallow to contain it.
func (s *Stack) Get(i int) F80 {
	idx := s.physicalIndex(i)
	if s.depth == 0 || i >= s.depth {
		s.invalid[idx] = true
		return RealIndefinite()
	}
	return s.slots[idx]
}

// Set writes logical slot i directly, clearing its invalid bit. Used by
// instructions that overwrite ST(0) in place (FADD ST,ST(i) and friends).
func (s *Stack) Set(i int, v F80) {
	idx := s.physicalIndex(i)
	s.slots[idx] = v
	s.invalid[idx] = false
}

// IsInvalid reports whether logical slot i has its invalid tag set.
func (s *Stack) IsInvalid(i int) bool {
	return s.invalid[s.physicalIndex(i)]
}

// SetInvalid sets logical slot i's invalid tag without touching its value,
// for restoring a snapshot's tag word independently of the slot contents.
func (s *Stack) SetInvalid(i int, invalid bool) {
	s.invalid[s.physicalIndex(i)] = invalid
}

// Swap exchanges logical slots i and j (FXCH).
func (s *Stack) Swap(i, j int) {
	pi, pj := s.physicalIndex(i), s.physicalIndex(j)
	s.slots[pi], s.slots[pj] = s.slots[pj], s.slots[pi]
	s.invalid[pi], s.invalid[pj] = s.invalid[pj], s.invalid[pi]
}

// Peek returns the raw contents of physical slot idx, bypassing TOP
// rotation. Test-only: real instructions always address through Get/Set.
func (s *Stack) Peek(idx int) F80 { return s.slots[idx%numSlots] }

// packedStatus folds TOP, C0-C3 and the busy bit into the architectural
// 16-bit status word layout.
func (s *Stack) packedStatus() uint16 {
	st := s.Status &^ (0x3800 | 0x8000)
	st |= uint16(s.top) << 11
	if s.depth == numSlots {
		st |= 0x8000 // FPU busy / stack fault marker used by traces
	}
	return st
}

// StatusWord returns the full status word as it would be read by FSTSW.
func (s *Stack) StatusWord() uint16 { return s.packedStatus() }
