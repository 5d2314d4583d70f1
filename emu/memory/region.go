/*
 * x86emu - Memory region
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

// Package memory implements one contiguous named guest-address-space region:
// a little-endian byte array with typed accessors, file-backed load/save,
// and bounded string scanning. Regions know nothing about each other; the
// maps package indexes a set of them.
package memory

import (
	"crypto/md5" //nolint:gosec // content fingerprint for tests, not security-sensitive
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"unicode/utf16"
)

// ErrOutOfRange is returned whenever an access falls outside [base, bottom).
var ErrOutOfRange = errors.New("memory: access out of range")

// maxStringScan bounds read_string/read_wide_string against runaway guest
// pointers that are missing their terminator.
const maxStringScan = 1_000_000

// Region is one named, contiguous, byte-addressable span of guest memory.
type Region struct {
	Name   string
	base   uint64
	bottom uint64 // base + len(bytes)
	bytes  []byte
}

// New creates a region of size bytes named name, based at base.
func New(name string, base uint64, size uint64) *Region {
	return &Region{
		Name:   name,
		base:   base,
		bottom: base + size,
		bytes:  make([]byte, size),
	}
}

func (r *Region) Base() uint64 { return r.base }
func (r *Region) Size() uint64 { return r.bottom - r.base }
func (r *Region) Bottom() uint64 { return r.bottom }

// SetBase relocates the region, keeping its size.
func (r *Region) SetBase(base uint64) {
	size := r.Size()
	r.base = base
	r.bottom = base + size
}

// SetSize resizes the backing store, preserving existing content.
func (r *Region) SetSize(size uint64) {
	if size == uint64(len(r.bytes)) {
		r.bottom = r.base + size
		return
	}
	grown := make([]byte, size)
	copy(grown, r.bytes)
	r.bytes = grown
	r.bottom = r.base + size
}

// Extend grows the region by n bytes.
func (r *Region) Extend(n uint64) {
	r.SetSize(r.Size() + n)
}

// Inside reports whether address a falls in [base, bottom).
func (r *Region) Inside(a uint64) bool {
	return a >= r.base && a < r.bottom
}

// Contains reports whether the half-open span [a, a+n) is entirely inside
// the region.
func (r *Region) Contains(a, n uint64) bool {
	return a >= r.base && n <= r.bottom-a && a+n <= r.bottom
}

func (r *Region) off(a uint64) uint64 { return a - r.base }

// ReadBytes returns a copy of the n bytes at a, or ErrOutOfRange.
func (r *Region) ReadBytes(a uint64, n uint64) ([]byte, error) {
	if !r.Contains(a, n) {
		return nil, fmt.Errorf("%w: region %q read [%#x,%#x)", ErrOutOfRange, r.Name, a, a+n)
	}
	off := r.off(a)
	out := make([]byte, n)
	copy(out, r.bytes[off:off+n])
	return out, nil
}

// WriteBytes writes data at a. If the write would cross the region boundary
// it is rejected wholesale (no partial write) rather than truncated, per the
// strict-mode resolution of the source's silent-truncation behavior.
func (r *Region) WriteBytes(a uint64, data []byte) error {
	if !r.Contains(a, uint64(len(data))) {
		return fmt.Errorf("%w: region %q write [%#x,%#x)", ErrOutOfRange, r.Name, a, a+uint64(len(data)))
	}
	off := r.off(a)
	copy(r.bytes[off:off+uint64(len(data))], data)
	return nil
}

func (r *Region) ReadByte(a uint64) (uint8, error) {
	b, err := r.ReadBytes(a, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Region) WriteByte(a uint64, v uint8) error {
	return r.WriteBytes(a, []byte{v})
}

func (r *Region) ReadWord(a uint64) (uint16, error) {
	b, err := r.ReadBytes(a, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Region) WriteWord(a uint64, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return r.WriteBytes(a, b[:])
}

func (r *Region) ReadDword(a uint64) (uint32, error) {
	b, err := r.ReadBytes(a, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Region) WriteDword(a uint64, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return r.WriteBytes(a, b[:])
}

func (r *Region) ReadQword(a uint64) (uint64, error) {
	b, err := r.ReadBytes(a, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Region) WriteQword(a uint64, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return r.WriteBytes(a, b[:])
}

// Oword is a 128-bit (XMM-sized) little-endian value, low qword first.
type Oword struct {
	Lo uint64
	Hi uint64
}

func (r *Region) ReadOword(a uint64) (Oword, error) {
	b, err := r.ReadBytes(a, 16)
	if err != nil {
		return Oword{}, err
	}
	return Oword{
		Lo: binary.LittleEndian.Uint64(b[0:8]),
		Hi: binary.LittleEndian.Uint64(b[8:16]),
	}, nil
}

func (r *Region) WriteOword(a uint64, v Oword) error {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], v.Lo)
	binary.LittleEndian.PutUint64(b[8:16], v.Hi)
	return r.WriteBytes(a, b[:])
}

// ReadString scans a NUL-terminated byte string starting at a, bounded by
// maxStringScan.
func (r *Region) ReadString(a uint64) (string, error) {
	if !r.Inside(a) {
		return "", fmt.Errorf("%w: region %q read_string at %#x", ErrOutOfRange, r.Name, a)
	}
	off := r.off(a)
	limit := uint64(len(r.bytes))
	out := make([]byte, 0, 32)
	for i := uint64(0); off+i < limit && i < maxStringScan; i++ {
		c := r.bytes[off+i]
		if c == 0 {
			return string(out), nil
		}
		out = append(out, c)
	}
	return string(out), nil
}

// ReadWideString scans a NUL-terminated UTF-16LE string starting at a,
// bounded by maxStringScan code units.
func (r *Region) ReadWideString(a uint64) (string, error) {
	if !r.Inside(a) {
		return "", fmt.Errorf("%w: region %q read_wide_string at %#x", ErrOutOfRange, r.Name, a)
	}
	var units []uint16
	off := r.off(a)
	limit := uint64(len(r.bytes))
	for i := uint64(0); off+2*i+1 < limit && i < maxStringScan; i++ {
		u := binary.LittleEndian.Uint16(r.bytes[off+2*i:])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), nil
}

// WriteWideString encodes s as UTF-16LE plus a trailing NUL word at a.
func (r *Region) WriteWideString(a uint64, s string) error {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 2*(len(units)+1))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2*i:], u)
	}
	return r.WriteBytes(a, buf)
}

// Load populates the region's bytes from the start of a file.
func (r *Region) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	n := uint64(len(data))
	if n > r.Size() {
		n = r.Size()
	}
	copy(r.bytes, data[:n])
	return nil
}

// LoadChunk populates size bytes at the start of the region from path,
// starting at file offset.
func (r *Region) LoadChunk(path string, offset int64, size uint64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if size > r.Size() {
		size = r.Size()
	}
	buf := make([]byte, size)
	n, err := f.ReadAt(buf, offset)
	if err != nil && n == 0 {
		return err
	}
	copy(r.bytes, buf[:n])
	return nil
}

// Save dumps size bytes starting at addr to path.
func (r *Region) Save(addr uint64, size uint64, path string) error {
	data, err := r.ReadBytes(addr, size)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// MD5 fingerprints the region's full content, for test assertions.
func (r *Region) MD5() [16]byte {
	return md5.Sum(r.bytes) //nolint:gosec
}

// Bytes exposes the raw backing store (used by the address space for raw
// dumps and by the serializer). Callers must not retain the slice past a
// resize.
func (r *Region) Bytes() []byte { return r.bytes }
