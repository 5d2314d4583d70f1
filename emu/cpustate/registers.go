/*
 * x86emu - General purpose and segment register file
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

// Package cpustate aggregates the x86-64 register file, EFLAGS, FPU stack,
// stack push/pop helpers, TLS/FLS tables, handle table, LastError slot and
// SEH/VEH cursors behind the surface an instruction dispatcher drives.
package cpustate

import (
	"fmt"
	"strings"

	"github.com/relsec/x86emu/emu/flags"
)

// Reg names a general-purpose register by its 64-bit identity. Narrower
// views (EAX, AX, AL, AH, ...) are derived, never stored separately.
type Reg int

const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	RIP
	numGPR
)

// NumGPR is the number of slots in the general-purpose register file,
// exported for packages that size their own mirrors of it (serialize).
const NumGPR = int(numGPR)

var gpr64Names = [...]string{
	RAX: "rax", RCX: "rcx", RDX: "rdx", RBX: "rbx",
	RSP: "rsp", RBP: "rbp", RSI: "rsi", RDI: "rdi",
	R8: "r8", R9: "r9", R10: "r10", R11: "r11",
	R12: "r12", R13: "r13", R14: "r14", R15: "r15",
	RIP: "rip",
}

var gpr32Names = [...]string{
	RAX: "eax", RCX: "ecx", RDX: "edx", RBX: "ebx",
	RSP: "esp", RBP: "ebp", RSI: "esi", RDI: "edi",
	R8: "r8d", R9: "r9d", R10: "r10d", R11: "r11d",
	R12: "r12d", R13: "r13d", R14: "r14d", R15: "r15d",
}

var gpr16Names = [...]string{
	RAX: "ax", RCX: "cx", RDX: "dx", RBX: "bx",
	RSP: "sp", RBP: "bp", RSI: "si", RDI: "di",
	R8: "r8w", R9: "r9w", R10: "r10w", R11: "r11w",
	R12: "r12w", R13: "r13w", R14: "r14w", R15: "r15w",
}

// 8-bit low names exist for every GPR; AH/BH/CH/DH (the legacy high-byte
// views) exist only for RAX/RBX/RCX/RDX and only outside a REX prefix. The
// dispatcher is responsible for not asking for AH on R8-R15.
var gpr8LowNames = [...]string{
	RAX: "al", RCX: "cl", RDX: "dl", RBX: "bl",
	RSP: "spl", RBP: "bpl", RSI: "sil", RDI: "dil",
	R8: "r8b", R9: "r9b", R10: "r10b", R11: "r11b",
	R12: "r12b", R13: "r13b", R14: "r14b", R15: "r15b",
}

var gpr8HighNames = map[Reg]string{RAX: "ah", RCX: "ch", RDX: "dh", RBX: "bh"}

// Seg is a segment register. Only FS and GS carry a meaningful base in the
// flat-memory model this interpreter implements; the others are modeled
// purely for selector/fetch completeness.
type Seg int

const (
	SegES Seg = iota
	SegCS
	SegSS
	SegDS
	SegFS
	SegGS
	numSeg
)

// NumSeg is the number of segment register slots, exported for packages
// that size their own mirrors of it (serialize).
const NumSeg = int(numSeg)

// Registers holds the full general-purpose/segment/control register file
// plus EFLAGS, independent of the FPU/SIMD state (see Simd and fpu.Stack).
type Registers struct {
	gpr  [numGPR]uint64
	seg  [numSeg]uint16
	segBase [numSeg]uint64 // meaningful only for FS/GS
	eflags  flags.EFlags

	// Control/debug/test registers are opaque 64-bit stores: nothing in
	// this interpreter interprets their bits, they just round-trip for
	// code that reads CR0/CR3/CR4/DR7/etc. as part of anti-analysis checks.
	cr [16]uint64
	dr [8]uint64
}

func NewRegisters() *Registers {
	return &Registers{}
}

// Get64/Set64 access the full 64-bit register.
func (r *Registers) Get64(reg Reg) uint64     { return r.gpr[reg] }
func (r *Registers) Set64(reg Reg, v uint64)  { r.gpr[reg] = v }

// Set32 writes the low 32 bits and, per the architectural rule, zero-extends
// into the upper 32 bits of the same register.
func (r *Registers) Set32(reg Reg, v uint32) {
	r.gpr[reg] = uint64(v)
}

func (r *Registers) Get32(reg Reg) uint32 { return uint32(r.gpr[reg]) }

// Set16 mutates only the low 16 bits, leaving bits 16-63 untouched.
func (r *Registers) Set16(reg Reg, v uint16) {
	r.gpr[reg] = (r.gpr[reg] &^ 0xffff) | uint64(v)
}

func (r *Registers) Get16(reg Reg) uint16 { return uint16(r.gpr[reg]) }

// SetLow8 mutates only bits 0-7.
func (r *Registers) SetLow8(reg Reg, v uint8) {
	r.gpr[reg] = (r.gpr[reg] &^ 0xff) | uint64(v)
}

func (r *Registers) GetLow8(reg Reg) uint8 { return uint8(r.gpr[reg]) }

// SetHigh8 mutates bits 8-15 (AH/BH/CH/DH only).
func (r *Registers) SetHigh8(reg Reg, v uint8) {
	r.gpr[reg] = (r.gpr[reg] &^ 0xff00) | (uint64(v) << 8)
}

func (r *Registers) GetHigh8(reg Reg) uint8 { return uint8(r.gpr[reg] >> 8) }

// ZeroExtendAll clears the upper 32 bits of every GPR, the effect a 32-bit
// mode switch (or any 32-bit-width write) has architecturally.
func (r *Registers) ZeroExtendAll() {
	for i := range r.gpr {
		r.gpr[i] &= 0xffffffff
	}
}

// ByName resolves a case-insensitive register name (any width) to the GPR
// it belongs to and the width it names.
func ByName(name string) (reg Reg, width flags.Width, high bool, ok bool) {
	name = strings.ToLower(name)
	for g, n := range gpr64Names {
		if n == name {
			return Reg(g), flags.W64, false, true
		}
	}
	for g, n := range gpr32Names {
		if n == name {
			return Reg(g), flags.W32, false, true
		}
	}
	for g, n := range gpr16Names {
		if n == name {
			return Reg(g), flags.W16, false, true
		}
	}
	for g, n := range gpr8LowNames {
		if n == name {
			return Reg(g), flags.W8, false, true
		}
	}
	for g, n := range gpr8HighNames {
		if n == name {
			return g, flags.W8, true, true
		}
	}
	return 0, 0, false, false
}

// Name renders reg at the given width using architectural register names.
func Name(reg Reg, width flags.Width) string {
	switch width {
	case flags.W64:
		return gpr64Names[reg]
	case flags.W32:
		return gpr32Names[reg]
	case flags.W16:
		return gpr16Names[reg]
	default:
		return gpr8LowNames[reg]
	}
}

func (r *Registers) EFlags() *flags.EFlags { return &r.eflags }

func (r *Registers) SegSelector(s Seg) uint16    { return r.seg[s] }
func (r *Registers) SetSegSelector(s Seg, v uint16) { r.seg[s] = v }
func (r *Registers) SegBase(s Seg) uint64        { return r.segBase[s] }
func (r *Registers) SetSegBase(s Seg, v uint64)  { r.segBase[s] = v }

func (r *Registers) CR(n int) uint64      { return r.cr[n] }
func (r *Registers) SetCR(n int, v uint64) { r.cr[n] = v }
func (r *Registers) DR(n int) uint64      { return r.dr[n] }
func (r *Registers) SetDR(n int, v uint64) { r.dr[n] = v }

func (r *Registers) String() string {
	return fmt.Sprintf(
		"rax=%016x rbx=%016x rcx=%016x rdx=%016x\nrsi=%016x rdi=%016x rbp=%016x rsp=%016x\nrip=%016x eflags=%08x",
		r.gpr[RAX], r.gpr[RBX], r.gpr[RCX], r.gpr[RDX],
		r.gpr[RSI], r.gpr[RDI], r.gpr[RBP], r.gpr[RSP],
		r.gpr[RIP], r.eflags.Pack())
}
