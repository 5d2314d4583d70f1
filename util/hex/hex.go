/*
 * x86emu - Hex dump formatting
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

// Package hex renders byte slices the way the debug console's memory
// examine command shows them: a classic 16-bytes-per-line hex-plus-ASCII
// dump, keyed to the guest virtual address each line starts at.
package hex

import "strings"

var hexMap = "0123456789abcdef"

func FormatByte(str *strings.Builder, b byte) {
	str.WriteByte(hexMap[(b>>4)&0xf])
	str.WriteByte(hexMap[b&0xf])
}

func FormatWord16(str *strings.Builder, v uint16) {
	FormatByte(str, byte(v>>8))
	FormatByte(str, byte(v))
}

func FormatDword32(str *strings.Builder, v uint32) {
	for shift := 24; shift >= 0; shift -= 8 {
		FormatByte(str, byte(v>>uint(shift)))
	}
}

func FormatQword64(str *strings.Builder, v uint64) {
	for shift := 56; shift >= 0; shift -= 8 {
		FormatByte(str, byte(v>>uint(shift)))
	}
}

func FormatAddr(addr uint64, is64Bit bool) string {
	var b strings.Builder
	if is64Bit {
		FormatQword64(&b, addr)
	} else {
		FormatDword32(&b, uint32(addr))
	}
	return b.String()
}

// Dump renders data starting at base, 16 bytes per line, in the
// "addr: hex.. hex..  ascii" layout.
func Dump(base uint64, data []byte, is64Bit bool) string {
	var out strings.Builder
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		line := data[off:end]

		out.WriteString(FormatAddr(base+uint64(off), is64Bit))
		out.WriteString(": ")

		for i := 0; i < 16; i++ {
			if i < len(line) {
				FormatByte(&out, line[i])
				out.WriteByte(' ')
			} else {
				out.WriteString("   ")
			}
			if i == 7 {
				out.WriteByte(' ')
			}
		}

		out.WriteString(" |")
		for _, b := range line {
			if b >= 0x20 && b < 0x7f {
				out.WriteByte(b)
			} else {
				out.WriteByte('.')
			}
		}
		out.WriteString("|\n")
	}
	return out.String()
}
