/*
 * x86emu - Packed BCD (FBSTP/FBLD) conversion
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

// BCDPositive and BCDNegative are the sign-byte encodings of a packed BCD
// ten-byte block (byte 9).
const (
	BCDPositive byte = 0x0a
	BCDNegative byte = 0x0b
)

// EncodeBCD packs value (at most 18 decimal digits) into the ten-byte packed
// BCD layout: bytes 0..8 hold 18 digits, least-significant byte first, each
// byte's low nibble the units digit of its pair and high nibble the tens
// digit; byte 9 holds the sign.
func EncodeBCD(value uint64, negative bool) [10]byte {
	var b [10]byte
	v := value
	for i := 0; i < 9; i++ {
		pair := v % 100
		v /= 100
		b[i] = byte((pair/10)<<4 | (pair % 10))
	}
	if negative {
		b[9] = BCDNegative
	} else {
		b[9] = BCDPositive
	}
	return b
}

// DecodeBCD reverses EncodeBCD, accumulating least-significant-first with a
// multiply-by-100 accumulator.
func DecodeBCD(b [10]byte) (value uint64, negative bool) {
	mul := uint64(1)
	for i := 0; i < 9; i++ {
		lo := uint64(b[i] & 0x0f)
		hi := uint64((b[i] >> 4) & 0x0f)
		value += (hi*10 + lo) * mul
		mul *= 100
	}
	negative = b[9] == BCDNegative
	return value, negative
}

// BCDFromF80 stores st as packed BCD (FBSTP), truncating toward zero.
func BCDFromF80(st F80) [10]byte {
	value, negative := st.ToUint64()
	return EncodeBCD(value, negative)
}

// BCDToF80 loads a packed BCD block as an extended-precision value (FBLD).
func BCDToF80(b [10]byte) F80 {
	value, negative := DecodeBCD(b)
	return FromUint64(value, negative)
}
