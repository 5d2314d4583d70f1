/*
 * x86emu - Guest-side doubly linked list heads
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

// Package structures provides typed, address-space-backed views over the
// Windows process-image fabric a guest binary expects to find mapped: the
// PEB/TEB/LDR chains in both pointer widths, KUSER_SHARED_DATA, resource and
// TLS directory records, and the handful of POSIX structures the Linux
// backend's libc shims marshal. Every type's Load reads its fields directly
// out of a maps.Space at a given guest address; Save writes them back.
package structures

import "github.com/relsec/x86emu/emu/maps"

// ListEntry32 is the 32-bit LIST_ENTRY: two forward/backward pointers.
type ListEntry32 struct {
	Flink uint32
	Blink uint32
}

func LoadListEntry32(addr uint64, sp *maps.Space) (ListEntry32, error) {
	f, err := sp.ReadDword(addr)
	if err != nil {
		return ListEntry32{}, err
	}
	b, err := sp.ReadDword(addr + 4)
	if err != nil {
		return ListEntry32{}, err
	}
	return ListEntry32{Flink: f, Blink: b}, nil
}

func (l ListEntry32) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteDword(addr, l.Flink); err != nil {
		return err
	}
	return sp.WriteDword(addr+4, l.Blink)
}

// ListEntry64 is the 64-bit LIST_ENTRY.
type ListEntry64 struct {
	Flink uint64
	Blink uint64
}

func LoadListEntry64(addr uint64, sp *maps.Space) (ListEntry64, error) {
	f, err := sp.ReadQword(addr)
	if err != nil {
		return ListEntry64{}, err
	}
	b, err := sp.ReadQword(addr + 8)
	if err != nil {
		return ListEntry64{}, err
	}
	return ListEntry64{Flink: f, Blink: b}, nil
}

func (l ListEntry64) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteQword(addr, l.Flink); err != nil {
		return err
	}
	return sp.WriteQword(addr+8, l.Blink)
}
