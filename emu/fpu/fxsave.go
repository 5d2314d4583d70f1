/*
 * x86emu - FXSAVE area layout
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

import "encoding/binary"

// FXSave area byte offsets, per the architectural 512-byte layout.
const (
	FXOffControl    = 0
	FXOffStatus     = 2
	FXOffTag        = 4
	FXOffOpcode     = 6
	FXOffRIP        = 8
	FXOffRDP        = 16
	FXOffMXCSR      = 24
	FXOffMXCSRMask  = 28
	FXOffST         = 32  // ST0..ST7, 16 bytes apart, 10 bytes used each
	FXOffXMM        = 160 // XMM0..XMM15, 16 bytes apart
	FXSaveAreaSize  = 512
	fxSTStride      = 16
	fxXMMStride     = 16
)

// SaveFX serializes the stack and 16 XMM registers into a 512-byte FXSAVE
// image. xmm holds the 16 XMM register images, 16 bytes each.
func (s *Stack) SaveFX(xmm [16][16]byte) [FXSaveAreaSize]byte {
	var area [FXSaveAreaSize]byte
	// Tag bit i (physical register i) is clear for a slot inside the
	// current depth and set for an empty one.
	tag := uint16(0xffff)
	for i := 0; i < s.depth; i++ {
		tag &^= 1 << uint(s.physicalIndex(i))
	}
	binary.LittleEndian.PutUint16(area[FXOffControl:], s.Control)
	binary.LittleEndian.PutUint16(area[FXOffStatus:], s.packedStatus())
	binary.LittleEndian.PutUint16(area[FXOffTag:], tag)
	binary.LittleEndian.PutUint16(area[FXOffOpcode:], s.LastOpcode)
	binary.LittleEndian.PutUint64(area[FXOffRIP:], s.IP)
	binary.LittleEndian.PutUint64(area[FXOffRDP:], s.OperandPtr)
	binary.LittleEndian.PutUint32(area[FXOffMXCSR:], s.MXCSR)
	binary.LittleEndian.PutUint32(area[FXOffMXCSRMask:], 0xffff)

	for i := 0; i < numSlots; i++ {
		raw := s.slots[s.physicalIndex(i)].Raw()
		copy(area[FXOffST+i*fxSTStride:], raw[:])
	}
	for i := 0; i < 16; i++ {
		copy(area[FXOffXMM+i*fxXMMStride:], xmm[i][:])
	}
	return area
}

// LoadFX reverses SaveFX, restoring the stack's control words and ST0..ST7,
// and returning the 16 XMM register images.
func (s *Stack) LoadFX(area [FXSaveAreaSize]byte) (xmm [16][16]byte) {
	s.Control = binary.LittleEndian.Uint16(area[FXOffControl:])
	s.Status = binary.LittleEndian.Uint16(area[FXOffStatus:])
	s.top = uint8((s.Status >> 11) & 0x7)
	s.Tag = binary.LittleEndian.Uint16(area[FXOffTag:])
	s.LastOpcode = binary.LittleEndian.Uint16(area[FXOffOpcode:])
	s.IP = binary.LittleEndian.Uint64(area[FXOffRIP:])
	s.OperandPtr = binary.LittleEndian.Uint64(area[FXOffRDP:])
	s.MXCSR = binary.LittleEndian.Uint32(area[FXOffMXCSR:])

	s.depth = 0
	for i := 0; i < numSlots; i++ {
		var raw [10]byte
		copy(raw[:], area[FXOffST+i*fxSTStride:FXOffST+i*fxSTStride+10])
		s.slots[s.physicalIndex(i)] = FromRaw(raw)
		tagBit := (s.Tag >> uint(i)) & 1
		s.invalid[i] = tagBit == 1
		if tagBit == 0 {
			s.depth++
		}
	}
	for i := 0; i < 16; i++ {
		copy(xmm[i][:], area[FXOffXMM+i*fxXMMStride:FXOffXMM+i*fxXMMStride+16])
	}
	return xmm
}
