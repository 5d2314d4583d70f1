/*
 * x86emu - 80-bit extended precision float
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

// Package fpu implements the 80-bit extended precision float used by the x87
// stack, and the 8-slot rotating stack itself.
package fpu

import (
	"math"
	"math/bits"
)

// F80 is an 80-bit extended precision value: sign (1 bit), biased exponent
// (15 bits) and a 64-bit significand with an explicit integer bit.
type F80 struct {
	Sign bool
	Exp  uint16 // 15-bit biased exponent, bias 16383
	Mant uint64
}

const f64Bias = 1023
const f80Bias = 16383

// Zero returns a signed zero.
func Zero(sign bool) F80 { return F80{Sign: sign} }

// Infinity returns a signed infinity.
func Infinity(sign bool) F80 { return F80{Sign: sign, Exp: 0x7fff, Mant: 0x8000000000000000} }

// QNaN returns the canonical quiet NaN.
func QNaN() F80 { return F80{Sign: false, Exp: 0x7fff, Mant: 0xc000000000000000} }

// RealIndefinite returns the x87 "real indefinite" encoding produced by
// invalid operations.
func RealIndefinite() F80 { return F80{Sign: true, Exp: 0x7fff, Mant: 0x8000000000000000} }

// One and Pi are the x87 FLD1/FLDPI load-constant values.
var (
	One = F80{Sign: false, Exp: 0x3fff, Mant: 0x8000000000000000}
	Pi  = F80{Sign: false, Exp: 0x4000, Mant: 0xc90fdaa22168c234}
)

func (v F80) IsZero() bool    { return v.Exp == 0 && v.Mant == 0 }
func (v F80) IsInf() bool     { return v.Exp == 0x7fff && v.Mant == 0x8000000000000000 }
func (v F80) IsNaN() bool     { return v.Exp == 0x7fff && v.Mant != 0x8000000000000000 && v.Mant != 0 }
func (v F80) IsIndefinite() bool {
	return v.Sign && v.Exp == 0x7fff && v.Mant == 0x8000000000000000
}
func (v F80) IsDenormal() bool { return v.Exp == 0 && v.Mant != 0 }

// Negated returns v with its sign flipped.
func (v F80) Negated() F80 { v.Sign = !v.Sign; return v }

// Raw packs v into the 80-bit (10-byte, little-endian) x87 register image:
// 8 bytes of mantissa followed by 2 bytes of sign|exponent.
func (v F80) Raw() [10]byte {
	var b [10]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v.Mant >> (8 * i))
	}
	se := v.Exp & 0x7fff
	if v.Sign {
		se |= 0x8000
	}
	b[8] = byte(se)
	b[9] = byte(se >> 8)
	return b
}

// FromRaw unpacks the 10-byte x87 register image produced by Raw.
func FromRaw(b [10]byte) F80 {
	var mant uint64
	for i := 0; i < 8; i++ {
		mant |= uint64(b[i]) << (8 * i)
	}
	se := uint16(b[8]) | uint16(b[9])<<8
	return F80{Sign: se&0x8000 != 0, Exp: se & 0x7fff, Mant: mant}
}

// FromF64 converts an IEEE-754 double to 80-bit extended precision, exactly
// (f80 has strictly more range and precision than f64).
func FromF64(f float64) F80 {
	bits64 := math.Float64bits(f)
	sign := bits64>>63 != 0
	exp64 := uint16(bits64>>52) & 0x7ff
	frac := bits64 & ((1 << 52) - 1)

	switch {
	case exp64 == 0 && frac == 0:
		return Zero(sign)
	case exp64 == 0x7ff && frac == 0:
		return Infinity(sign)
	case exp64 == 0x7ff:
		nan := QNaN()
		nan.Sign = sign
		return nan
	case exp64 == 0:
		// Subnormal double: normalize into f80's much wider exponent range.
		shift := bits.LeadingZeros64(frac) - 11 // align to bit 52
		mant := frac << uint(shift+11)          // leading bit becomes the integer bit 63
		e := int32(1) - int32(f64Bias) - int32(shift) + f80Bias
		return F80{Sign: sign, Exp: uint16(e), Mant: mant}
	default:
		e := int32(exp64) - f64Bias + f80Bias
		mant := (uint64(1) << 63) | (frac << 11)
		return F80{Sign: sign, Exp: uint16(e), Mant: mant}
	}
}

// ToF64 converts the 80-bit value to the nearest IEEE-754 double, rounding
// to zero on underflow and to infinity on overflow, and preserving NaN-ness.
func (v F80) ToF64() float64 {
	switch {
	case v.IsNaN():
		bits64 := uint64(0x7ff8000000000000)
		if v.Sign {
			bits64 |= 1 << 63
		}
		return math.Float64frombits(bits64)
	case v.IsInf():
		if v.Sign {
			return math.Inf(-1)
		}
		return math.Inf(1)
	case v.IsZero():
		if v.Sign {
			return math.Copysign(0, -1)
		}
		return 0
	}
	e := int32(v.Exp) - f80Bias + f64Bias
	frac := (v.Mant >> 11) & ((1 << 52) - 1)
	// Round to nearest using the bits dropped below bit 11.
	roundBits := v.Mant & 0x7ff
	if roundBits > 0x400 || (roundBits == 0x400 && frac&1 == 1) {
		frac++
		if frac == (1 << 52) {
			frac = 0
			e++
		}
	}
	switch {
	case e <= 0:
		var z float64
		if v.Sign {
			z = math.Copysign(0, -1)
		}
		return z
	case e >= 0x7ff:
		if v.Sign {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	bits64 := (uint64(e) << 52) | frac
	if v.Sign {
		bits64 |= 1 << 63
	}
	return math.Float64frombits(bits64)
}

func magnitudeGE(a, b F80) bool {
	if a.Exp != b.Exp {
		return a.Exp > b.Exp
	}
	return a.Mant >= b.Mant
}

// Add computes a+b with exponent alignment and mantissa renormalization, per
// the x87 extended-precision addition algorithm.
func Add(a, b F80) F80 {
	switch {
	case a.IsNaN():
		return a
	case b.IsNaN():
		return b
	case a.IsInf() && b.IsInf():
		if a.Sign != b.Sign {
			return RealIndefinite()
		}
		return a
	case a.IsInf():
		return a
	case b.IsInf():
		return b
	case a.IsZero() && b.IsZero():
		if a.Sign == b.Sign {
			return Zero(a.Sign)
		}
		return Zero(false)
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	}

	hi, lo := a, b
	if !magnitudeGE(hi, lo) {
		hi, lo = lo, hi
	}
	diff := uint(hi.Exp) - uint(lo.Exp)
	var loMant uint64
	if diff < 64 {
		loMant = lo.Mant >> diff
	}

	if hi.Sign == lo.Sign {
		sum, carry := bits.Add64(hi.Mant, loMant, 0)
		exp := hi.Exp
		if carry != 0 {
			sum = (sum >> 1) | (1 << 63)
			exp++
		}
		return F80{Sign: hi.Sign, Exp: exp, Mant: sum}
	}

	diffMant, _ := bits.Sub64(hi.Mant, loMant, 0)
	if diffMant == 0 {
		return Zero(false)
	}
	shift := bits.LeadingZeros64(diffMant)
	exp := int32(hi.Exp) - int32(shift)
	if exp <= 0 {
		return Zero(hi.Sign)
	}
	return F80{Sign: hi.Sign, Exp: uint16(exp), Mant: diffMant << uint(shift)}
}

// Sub computes a-b.
func Sub(a, b F80) F80 {
	return Add(a, b.Negated())
}

// Compare returns -1, 0 or 1 as a<b, a==b or a>b, and ok=false if either
// operand is NaN (an unordered comparison).
func Compare(a, b F80) (result int, ok bool) {
	if a.IsNaN() || b.IsNaN() {
		return 0, false
	}
	if a.IsZero() && b.IsZero() {
		return 0, true
	}
	diff := Sub(a, b)
	switch {
	case diff.IsZero():
		return 0, true
	case diff.Sign:
		return -1, true
	default:
		return 1, true
	}
}

// ToUint64 truncates v toward zero into an unsigned 64-bit integer, along
// with its sign. Values with a biased exponent below the bias convert to 0,
// per the extended-precision to-integer conversion rule.
func (v F80) ToUint64() (value uint64, negative bool) {
	if v.Exp < f80Bias || v.IsZero() {
		return 0, v.Sign
	}
	shift := int32(v.Exp) - f80Bias - 63
	switch {
	case shift >= 0:
		if shift >= 64 {
			return 0, v.Sign
		}
		return v.Mant << uint(shift), v.Sign
	case shift <= -64:
		return 0, v.Sign
	default:
		return v.Mant >> uint(-shift), v.Sign
	}
}

// FromUint64 builds a normalized F80 from an unsigned magnitude and sign.
func FromUint64(value uint64, negative bool) F80 {
	if value == 0 {
		return Zero(negative)
	}
	shift := bits.LeadingZeros64(value)
	mant := value << uint(shift)
	exp := int32(f80Bias) + 63 - int32(shift)
	return F80{Sign: negative, Exp: uint16(exp), Mant: mant}
}
