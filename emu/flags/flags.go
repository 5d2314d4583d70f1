/*
 * x86emu - Integer ALU flag engine
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

// Package flags computes EFLAGS updates for the integer ALU and shift/rotate
// instruction families, at the four operand widths the processor supports.
package flags

// Width is an ALU operand width in bits.
type Width uint8

const (
	W8  Width = 8
	W16 Width = 16
	W32 Width = 32
	W64 Width = 64
)

// EFlags holds the boolean status bits tracked by the emulator. Unused
// architectural bits (reserved, always-one bit 1) are not modeled here and
// are forced by Pack.
type EFlags struct {
	CF    bool // Carry
	PF    bool // Parity
	AF    bool // Auxiliary carry
	ZF    bool // Zero
	SF    bool // Sign
	TF    bool // Trap
	IF    bool // Interrupt enable
	DF    bool // Direction
	OF    bool // Overflow
	IOPL1 bool // I/O privilege level bit 0
	IOPL2 bool // I/O privilege level bit 1
	NT    bool // Nested task
	RF    bool // Resume
	VM    bool // Virtual 8086 mode
	AC    bool // Alignment check
	VIF   bool // Virtual interrupt flag
	VIP   bool // Virtual interrupt pending
	ID    bool // ID flag (CPUID availability)
}

// bit positions within the packed 32-bit EFLAGS word.
const (
	bitCF  = 0
	bitPF  = 2
	bitAF  = 4
	bitZF  = 6
	bitSF  = 7
	bitTF  = 8
	bitIF  = 9
	bitDF  = 10
	bitOF  = 11
	bitIOPL1 = 12
	bitIOPL2 = 13
	bitNT  = 14
	bitRF  = 16
	bitVM  = 17
	bitAC  = 18
	bitVIF = 19
	bitVIP = 20
	bitID  = 21
)

// Pack serializes the flags into the architectural 32-bit EFLAGS layout.
// Bit 1 is forced set and bit 15 is forced clear, matching real hardware.
func (f *EFlags) Pack() uint32 {
	var v uint32
	setBit := func(pos int, b bool) {
		if b {
			v |= 1 << uint(pos)
		}
	}
	setBit(bitCF, f.CF)
	v |= 1 << 1
	setBit(bitPF, f.PF)
	setBit(bitAF, f.AF)
	setBit(bitZF, f.ZF)
	setBit(bitSF, f.SF)
	setBit(bitTF, f.TF)
	setBit(bitIF, f.IF)
	setBit(bitDF, f.DF)
	setBit(bitOF, f.OF)
	setBit(bitIOPL1, f.IOPL1)
	setBit(bitIOPL2, f.IOPL2)
	setBit(bitNT, f.NT)
	setBit(bitRF, f.RF)
	setBit(bitVM, f.VM)
	setBit(bitAC, f.AC)
	setBit(bitVIF, f.VIF)
	setBit(bitVIP, f.VIP)
	setBit(bitID, f.ID)
	return v
}

// Unpack loads the flags from a packed 32-bit EFLAGS word.
func (f *EFlags) Unpack(v uint32) {
	bit := func(pos int) bool { return (v>>uint(pos))&1 != 0 }
	f.CF = bit(bitCF)
	f.PF = bit(bitPF)
	f.AF = bit(bitAF)
	f.ZF = bit(bitZF)
	f.SF = bit(bitSF)
	f.TF = bit(bitTF)
	f.IF = bit(bitIF)
	f.DF = bit(bitDF)
	f.OF = bit(bitOF)
	f.IOPL1 = bit(bitIOPL1)
	f.IOPL2 = bit(bitIOPL2)
	f.NT = bit(bitNT)
	f.RF = bit(bitRF)
	f.VM = bit(bitVM)
	f.AC = bit(bitAC)
	f.VIF = bit(bitVIF)
	f.VIP = bit(bitVIP)
	f.ID = bit(bitID)
}

// parityTable[b] is true when byte b has even parity (popcount(b)%2==0).
var parityTable [256]bool

func init() {
	for i := range parityTable {
		n := 0
		for v := i; v != 0; v >>= 1 {
			n += v & 1
		}
		parityTable[i] = n%2 == 0
	}
}

func mask(w Width) uint64 {
	if w == W64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(w)) - 1
}

func signBit(w Width) uint64 {
	return uint64(1) << uint(w-1)
}

func truncate(w Width, v uint64) uint64 {
	return v & mask(w)
}

func sign(w Width, v uint64) bool {
	return v&signBit(w) != 0
}

func shiftCountMask(w Width) uint8 {
	if w == W64 {
		return 0x3f
	}
	return 0x1f
}

func (f *EFlags) setZSP(w Width, result uint64) {
	f.ZF = result == 0
	f.SF = sign(w, result)
	f.PF = parityTable[byte(result)]
}

// Add computes a+b truncated to width w and updates f. cin is the incoming
// carry (false for a plain ADD, the current CF for ADC).
func Add(f *EFlags, w Width, a, b uint64, cin bool) uint64 {
	var c uint64
	if cin {
		c = 1
	}
	wide := (a & mask(w)) + (b & mask(w)) + c
	result := truncate(w, wide)
	f.CF = wide > mask(w)
	f.OF = (sign(w, a) == sign(w, b)) && (sign(w, result) != sign(w, a))
	f.AF = ((a ^ b ^ result) >> 4 & 1) != 0
	f.setZSP(w, result)
	return result
}

// Sub computes a-b truncated to width w and updates f. cin is the incoming
// borrow (false for a plain SUB, the current CF for SBB).
func Sub(f *EFlags, w Width, a, b uint64, cin bool) uint64 {
	var c uint64
	if cin {
		c = 1
	}
	bc := (b & mask(w)) + c
	wide := (a & mask(w)) - bc
	result := truncate(w, wide)
	f.CF = (a & mask(w)) < bc
	f.OF = (sign(w, a) != sign(w, b)) && (sign(w, result) != sign(w, a))
	f.AF = ((a ^ b ^ result) >> 4 & 1) != 0
	f.setZSP(w, result)
	return result
}

// Inc computes a+1 truncated to width w. CF is left untouched.
func Inc(f *EFlags, w Width, a uint64) uint64 {
	result := truncate(w, a+1)
	f.OF = truncate(w, a) == signedMax(w)
	f.AF = ((a ^ 1 ^ result) >> 4 & 1) != 0
	f.setZSP(w, result)
	return result
}

// Dec computes a-1 truncated to width w. CF is left untouched.
func Dec(f *EFlags, w Width, a uint64) uint64 {
	result := truncate(w, a-1)
	f.OF = truncate(w, a) == signedMin(w)
	f.AF = ((a ^ 1 ^ result) >> 4 & 1) != 0
	f.setZSP(w, result)
	return result
}

func signedMax(w Width) uint64 {
	return mask(w) >> 1
}

func signedMin(w Width) uint64 {
	return signBit(w)
}

// Neg computes -a truncated to width w.
//
// Architecturally CF is clear iff the operand is zero; the mwemu source this
// spec was distilled from always sets CF. This implementation follows the
// architectural rule (fidelity over source-compatibility) per the documented
// open question.
func Neg(f *EFlags, w Width, a uint64) uint64 {
	av := truncate(w, a)
	result := truncate(w, -av)
	f.CF = av != 0
	f.OF = av == signedMin(w)
	f.AF = ((av ^ 0 ^ result) >> 4 & 1) != 0
	f.setZSP(w, result)
	return result
}

// And, Or and Xor compute bitwise operations; CF and OF are cleared, AF is
// left undefined by the architecture (cleared here), ZF/SF/PF follow result.
func And(f *EFlags, w Width, a, b uint64) uint64 { return logic(f, w, a&b) }
func Or(f *EFlags, w Width, a, b uint64) uint64  { return logic(f, w, a|b) }
func Xor(f *EFlags, w Width, a, b uint64) uint64 { return logic(f, w, a^b) }

// Test computes a&b for flag purposes only, discarding the result.
func Test(f *EFlags, w Width, a, b uint64) {
	logic(f, w, a&b)
}

func logic(f *EFlags, w Width, v uint64) uint64 {
	result := truncate(w, v)
	f.CF = false
	f.OF = false
	f.AF = false
	f.setZSP(w, result)
	return result
}

// shift kind selectors.
type shiftOp int

const (
	opShl shiftOp = iota
	opShr
	opSar
	opRol
	opRor
	opRcl
	opRcr
)

// Shl, Shr, Sar and Sal shift a by count (masked to the width's count size).
// Sal is an alias for Shl, matching the architectural encoding.
func Shl(f *EFlags, w Width, a uint64, count uint8) uint64 { return shift(f, w, opShl, a, count) }
func Sal(f *EFlags, w Width, a uint64, count uint8) uint64 { return shift(f, w, opShl, a, count) }
func Shr(f *EFlags, w Width, a uint64, count uint8) uint64 { return shift(f, w, opShr, a, count) }
func Sar(f *EFlags, w Width, a uint64, count uint8) uint64 { return shift(f, w, opSar, a, count) }

func shift(f *EFlags, w Width, op shiftOp, a uint64, count uint8) uint64 {
	count &= shiftCountMask(w)
	if count == 0 {
		return truncate(w, a)
	}
	av := truncate(w, a)
	var result uint64
	var lastOut bool
	switch op {
	case opShl:
		if count <= uint8(w) {
			lastOut = (av>>(uint(w)-uint(count)))&1 != 0
		}
		result = truncate(w, av<<uint(count))
		f.CF = lastOut
		if count == 1 {
			f.OF = f.CF != sign(w, result)
		}
	case opShr:
		lastOut = (av>>(uint(count)-1))&1 != 0
		result = truncate(w, av>>uint(count))
		f.CF = lastOut
		if count == 1 {
			f.OF = sign(w, av)
		}
	case opSar:
		signed := signExtend(w, av)
		lastOut = (av>>(uint(count)-1))&1 != 0
		result = truncate(w, uint64(signed>>uint(count)))
		f.CF = lastOut
		if count == 1 {
			f.OF = false
		}
	}
	f.setZSP(w, result)
	return result
}

func signExtend(w Width, v uint64) int64 {
	shiftAmt := 64 - uint(w)
	return int64(v<<shiftAmt) >> shiftAmt
}

// Rol and Ror rotate a by count, masked to the width's count size.
func Rol(f *EFlags, w Width, a uint64, count uint8) uint64 { return rotate(f, w, opRol, a, count) }
func Ror(f *EFlags, w Width, a uint64, count uint8) uint64 { return rotate(f, w, opRor, a, count) }

func rotate(f *EFlags, w Width, op shiftOp, a uint64, count uint8) uint64 {
	bits := uint(w)
	effective := count & shiftCountMask(w)
	effective %= uint8(bits)
	av := truncate(w, a)
	var result uint64
	if op == opRol {
		if effective == 0 {
			result = av
		} else {
			result = truncate(w, (av<<effective)|(av>>(bits-uint(effective))))
		}
	} else {
		if effective == 0 {
			result = av
		} else {
			result = truncate(w, (av>>effective)|(av<<(bits-uint(effective))))
		}
	}
	if count&shiftCountMask(w) == 0 {
		return result
	}
	if op == opRol {
		f.CF = result&1 != 0
	} else {
		f.CF = result&signBit(w) != 0
	}
	if count&shiftCountMask(w) == 1 {
		if op == opRol {
			f.OF = sign(w, result) != (result&1 != 0)
		} else {
			next := (result >> (bits - 2)) & 1
			f.OF = sign(w, result) != (next != 0)
		}
	}
	return result
}

// Rcl and Rcr rotate a through CF, using an extended (width+1)-bit vector.
func Rcl(f *EFlags, w Width, a uint64, count uint8) uint64 { return rotateCarry(f, w, opRcl, a, count) }
func Rcr(f *EFlags, w Width, a uint64, count uint8) uint64 { return rotateCarry(f, w, opRcr, a, count) }

func rotateCarry(f *EFlags, w Width, op shiftOp, a uint64, count uint8) uint64 {
	bits := uint(w)
	total := bits + 1
	cmask := shiftCountMask(w)
	// RCL/RCR counts are masked the same as other shifts, then reduced mod
	// (width+1) because the rotation includes the carry bit.
	effective := uint(count&cmask) % total
	av := truncate(w, a)
	var cin uint64
	if f.CF {
		cin = 1
	}
	extended := av | (cin << bits)
	var result uint64
	if effective != 0 {
		if op == opRcl {
			result = ((extended << effective) | (extended >> (total - effective))) & ((uint64(1) << total) - 1)
		} else {
			result = ((extended >> effective) | (extended << (total - effective))) & ((uint64(1) << total) - 1)
		}
	} else {
		result = extended
	}
	if count&cmask != 0 {
		f.CF = (result>>bits)&1 != 0
	}
	out := truncate(w, result)
	if count&cmask == 1 {
		if op == opRcl {
			f.OF = f.CF != sign(w, out)
		} else {
			f.OF = sign(w, av) != sign(w, out)
		}
	}
	return out
}

// Imul2 computes the signed two-operand product of a and b, truncated to
// width w. CF and OF are both set iff the widened result does not fit back
// into w signed bits.
func Imul2(f *EFlags, w Width, a, b uint64) uint64 {
	sa := signExtend(w, truncate(w, a))
	sb := signExtend(w, truncate(w, b))
	wide := sa * sb
	result := truncate(w, uint64(wide))
	fits := signExtend(w, result) == wide
	f.CF = !fits
	f.OF = !fits
	return result
}

// Mul computes the unsigned product of a and b at width w, returning the
// truncated low half and the high half of the widened product. CF and OF are
// set iff the high half is non-zero; AF/PF/ZF/SF are architecturally
// undefined: PF/ZF/SF are set here from the low half for determinism and AF
// is left unchanged.
func Mul(f *EFlags, w Width, a, b uint64) (lo, hi uint64) {
	wide := (truncate(w, a)) * (truncate(w, b))
	lo = truncate(w, wide)
	hi = truncate(w, wide>>uint(w))
	f.CF = hi != 0
	f.OF = hi != 0
	f.setZSP(w, lo)
	return lo, hi
}

// Shld shifts src into the high bits of dst by count, as if the pair formed
// a double-width value being shifted left, returning the new dst.
func Shld(f *EFlags, w Width, dst, src uint64, count uint8) uint64 {
	count &= shiftCountMask(w)
	if count == 0 {
		return truncate(w, dst)
	}
	bits := uint(w)
	d := truncate(w, dst)
	s := truncate(w, src)
	wide := (d << bits) | s
	shifted := wide << uint(count)
	result := truncate(w, shifted>>bits)
	f.CF = (d>>(bits-uint(count)))&1 != 0
	if count == 1 {
		f.OF = sign(w, result) != sign(w, d)
	}
	f.setZSP(w, result)
	return result
}

// Shrd shifts src into the low bits of dst by count, as if the pair formed a
// double-width value being shifted right, returning the new dst.
func Shrd(f *EFlags, w Width, dst, src uint64, count uint8) uint64 {
	count &= shiftCountMask(w)
	if count == 0 {
		return truncate(w, dst)
	}
	bits := uint(w)
	d := truncate(w, dst)
	s := truncate(w, src)
	wide := (s << bits) | d
	shifted := wide >> uint(count)
	result := truncate(w, shifted)
	f.CF = (d>>(uint(count)-1))&1 != 0
	if count == 1 {
		f.OF = sign(w, d) != sign(w, result)
	}
	f.setZSP(w, result)
	return result
}
