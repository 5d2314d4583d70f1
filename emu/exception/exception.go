/*
 * x86emu - Guest fault model
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

// Package exception defines the closed set of guest CPU faults the
// interpreter can raise, and the Fault error type that carries one plus the
// faulting address and instruction pointer.
package exception

import "fmt"

// Kind is one of the fixed fault categories the interpreter can raise.
type Kind int

const (
	Int3 Kind = iota
	Div0
	SignChangeOnDivision
	PopfCannotReadStack
	WritingWord
	SettingRipToNonMappedAddr
	QWordDereferencing
	DWordDereferencing
	WordDereferencing
	ByteDereferencing
	BadAddressDereferencing
	SettingXmmOperand
	ReadingXmmOperand
)

var kindNames = [...]string{
	Int3:                      "int 3",
	Div0:                      "division by zero",
	SignChangeOnDivision:      "sign change exception on division",
	PopfCannotReadStack:       "popf cannot read stack",
	WritingWord:               "exception writing word",
	SettingRipToNonMappedAddr: "setting rip to non mapped addr",
	QWordDereferencing:        "error dereferencing qword",
	DWordDereferencing:        "error dereferencing dword",
	WordDereferencing:         "error dereferencing word",
	ByteDereferencing:         "error dereferencing byte",
	BadAddressDereferencing:   "exception dereferencing bad address",
	SettingXmmOperand:         "exception setting xmm operand",
	ReadingXmmOperand:         "exception reading xmm operand",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("exception.Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Fault is the error raised when the interpreter hits a guest exception.
// RIP is the address of the faulting instruction; Addr is the operand
// address involved, when the fault is a dereference (zero otherwise).
type Fault struct {
	Kind Kind
	RIP  uint64
	Addr uint64
}

func New(kind Kind, rip uint64) *Fault {
	return &Fault{Kind: kind, RIP: rip}
}

func NewAt(kind Kind, rip, addr uint64) *Fault {
	return &Fault{Kind: kind, RIP: rip, Addr: addr}
}

func (f *Fault) Error() string {
	if f.Addr != 0 {
		return fmt.Sprintf("%s at rip=%#x addr=%#x", f.Kind, f.RIP, f.Addr)
	}
	return fmt.Sprintf("%s at rip=%#x", f.Kind, f.RIP)
}

// Is reports whether err is a *Fault of the same Kind, ignoring RIP/Addr.
// It satisfies the errors.Is contract so callers can write
// errors.Is(err, exception.New(exception.Div0, 0)).
func (f *Fault) Is(target error) bool {
	other, ok := target.(*Fault)
	if !ok {
		return false
	}
	return f.Kind == other.Kind
}
