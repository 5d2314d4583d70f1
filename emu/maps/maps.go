/*
 * x86emu - Address space and software TLB
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

// Package maps indexes a set of memory.Region values by base address and by
// name, backs lookups with a direct-mapped software TLB, and implements the
// 32-bit/64-bit allocation policy used to place libraries and heap blocks.
package maps

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relsec/x86emu/emu/memory"
)

// Allocation windows. Library images are placed inside [LIBSnn_MIN,
// LIBSnn_MAX); general-purpose allocations fall below that window. The
// upstream project pins these to specific addresses chosen to stay clear of
// Windows' own DLL load range; we keep the same shape without claiming to
// match any particular Windows build's actual layout.
const (
	LIBS32Min uint64 = 0x6f000000
	LIBS32Max uint64 = 0x7f000000
	LIBS64Min uint64 = 0x00007ff000000000
	LIBS64Max uint64 = 0x00007fff00000000

	defaultAlignment = 0x1000
	maxAllocSize     = 0xffffff

	tlbSize      = 2048
	invalidEntry = ^uint64(0)
)

func alignUp(addr, align uint64) uint64 {
	return (addr + align - 1) &^ (align - 1)
}

func lpfOf(addr uint64) uint64 {
	return addr &^ 0xfff
}

type tlbEntry struct {
	lpf    uint64
	region int // index into Space.regions, or -1
}

// Space is a set of named, non-overlapping regions plus the TLB that caches
// address-to-region lookups.
type Space struct {
	Banzai  bool
	Is64Bit bool

	regions   []*memory.Region // stable slot; freed slots become nil
	byBase    map[uint64]int
	byName    map[string]int
	freeSlots []int

	tlb [tlbSize]tlbEntry
}

// New creates an empty address space for the given bitness.
func New(is64Bit bool) *Space {
	s := &Space{
		Is64Bit: is64Bit,
		byBase:  make(map[uint64]int),
		byName:  make(map[string]int),
	}
	s.FlushTLB()
	return s
}

// FlushTLB invalidates every TLB entry.
func (s *Space) FlushTLB() {
	for i := range s.tlb {
		s.tlb[i] = tlbEntry{lpf: invalidEntry, region: -1}
	}
}

func (s *Space) tlbIndex(lpf, length uint64) int {
	const mask = uint64(tlbSize-1) << 12
	return int(((lpf + length) & mask) >> 12)
}

// CreateMap allocates a new named region at base with the given size.
func (s *Space) CreateMap(name string, base, size uint64) (*memory.Region, error) {
	if _, exists := s.byName[name]; exists {
		return nil, fmt.Errorf("maps: region name %q already exists", name)
	}
	if _, exists := s.byBase[base]; exists {
		return nil, fmt.Errorf("maps: region base %#x already exists", base)
	}

	r := memory.New(name, base, size)
	idx := s.allocSlot(r)
	s.byBase[base] = idx
	s.byName[name] = idx
	return r, nil
}

func (s *Space) allocSlot(r *memory.Region) int {
	if n := len(s.freeSlots); n > 0 {
		idx := s.freeSlots[n-1]
		s.freeSlots = s.freeSlots[:n-1]
		s.regions[idx] = r
		return idx
	}
	s.regions = append(s.regions, r)
	return len(s.regions) - 1
}

// GetByName looks up a region by its exact name.
func (s *Space) GetByName(name string) (*memory.Region, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.regions[idx], true
}

// GetByAddr returns the region whose [base, bottom) contains addr, using the
// TLB as a first-level cache.
func (s *Space) GetByAddr(addr uint64) (*memory.Region, bool) {
	return s.getByAddr(addr, 0)
}

func (s *Space) getByAddr(addr, length uint64) (*memory.Region, bool) {
	lpf := lpfOf(addr)
	idx := s.tlbIndex(lpf, length)
	e := &s.tlb[idx]
	if e.lpf == lpf && e.region >= 0 {
		if r := s.regions[e.region]; r != nil && r.Inside(addr) {
			return r, true
		}
	}
	e.lpf = invalidEntry
	e.region = -1

	ri := s.regionAt(addr)
	if ri < 0 {
		return nil, false
	}
	r := s.regions[ri]
	if !r.Inside(addr) {
		return nil, false
	}
	e.lpf = lpf
	e.region = ri
	return r, true
}

// regionAt finds the slot of the region with the greatest base <= addr,
// returning -1 if none exists (the region need not actually contain addr).
func (s *Space) regionAt(addr uint64) int {
	bestBase := uint64(0)
	best := -1
	haveBest := false
	for base, idx := range s.byBase {
		if s.regions[idx] == nil {
			continue
		}
		if base <= addr && (!haveBest || base > bestBase) {
			bestBase, best, haveBest = base, idx, true
		}
	}
	return best
}

// IsAllocated reports whether addr falls inside a live region.
func (s *Space) IsAllocated(addr uint64) bool {
	_, ok := s.GetByAddr(addr)
	return ok
}

// Free removes the region named name and flushes the TLB.
func (s *Space) Free(name string) error {
	idx, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("maps: no such region %q", name)
	}
	r := s.regions[idx]
	delete(s.byName, name)
	delete(s.byBase, r.Base())
	s.regions[idx] = nil
	s.freeSlots = append(s.freeSlots, idx)
	s.FlushTLB()
	return nil
}

// Dealloc removes the region based exactly at addr and flushes the TLB.
func (s *Space) Dealloc(addr uint64) error {
	idx, ok := s.byBase[addr]
	if !ok {
		return fmt.Errorf("maps: no region based at %#x", addr)
	}
	return s.Free(s.regions[idx].Name)
}

// sortedBases returns the bases of all live regions in ascending order.
func (s *Space) sortedBases() []uint64 {
	bases := make([]uint64, 0, len(s.byBase))
	for b := range s.byBase {
		bases = append(bases, b)
	}
	sort.Slice(bases, func(i, j int) bool { return bases[i] < bases[j] })
	return bases
}

// Alloc places a general-purpose allocation below the library window for
// the space's bitness.
func (s *Space) Alloc(size uint64) (uint64, bool) {
	if s.Is64Bit {
		return s.findGap(size, 1, LIBS64Min, false)
	}
	return s.findGap(size, 1, LIBS32Min, false)
}

// Lib32Alloc places a 32-bit library image inside [LIBS32_MIN, LIBS32_MAX).
func (s *Space) Lib32Alloc(size uint64) (uint64, bool) {
	return s.findGap(size, LIBS32Min, LIBS32Max, true)
}

// Lib64Alloc places a 64-bit library image inside [LIBS64_MIN, LIBS64_MAX).
func (s *Space) Lib64Alloc(size uint64) (uint64, bool) {
	return s.findGap(size, LIBS64Min, LIBS64Max, true)
}

func (s *Space) findGap(size, bottom, top uint64, lib bool) (uint64, bool) {
	if size > maxAllocSize {
		size = maxAllocSize
	}
	size = alignUp(size, defaultAlignment)
	prev := alignUp(bottom, defaultAlignment)

	for _, base := range s.sortedBases() {
		idx := s.byBase[base]
		r := s.regions[idx]
		if lib && base < bottom {
			continue
		}
		if prev > base {
			continue
		}
		if base-prev >= size {
			return prev, true
		}
		prev = alignUp(r.Bottom(), defaultAlignment)
	}

	if top < prev {
		prev = alignUp(top, defaultAlignment)
	}
	if top-prev >= size {
		return prev, true
	}
	return 0, false
}

// WriteBytes writes data starting at addr, resolving the owning region via
// GetByAddr. It never spans two regions: the whole write must fit inside
// the owning region, as Region.WriteBytes also requires.
func (s *Space) WriteBytes(addr uint64, data []byte) error {
	r, ok := s.getByAddr(addr, uint64(len(data)))
	if !ok {
		return fmt.Errorf("%w: address %#x not mapped", memory.ErrOutOfRange, addr)
	}
	return r.WriteBytes(addr, data)
}

// ReadBytes reads length bytes starting at addr, resolving the owning region
// via GetByAddr.
func (s *Space) ReadBytes(addr, length uint64) ([]byte, error) {
	r, ok := s.getByAddr(addr, length)
	if !ok {
		return nil, fmt.Errorf("%w: address %#x not mapped", memory.ErrOutOfRange, addr)
	}
	return r.ReadBytes(addr, length)
}

// ReadByte, ReadWord, ReadDword, ReadQword and their Write counterparts are
// thin conveniences over ReadBytes/WriteBytes for guest-structure code that
// walks PEB/TEB/LDR fields one scalar at a time.
func (s *Space) ReadByte(addr uint64) (uint8, error) {
	r, ok := s.getByAddr(addr, 1)
	if !ok {
		return 0, fmt.Errorf("%w: address %#x not mapped", memory.ErrOutOfRange, addr)
	}
	return r.ReadByte(addr)
}

func (s *Space) WriteByte(addr uint64, v uint8) error {
	r, ok := s.getByAddr(addr, 1)
	if !ok {
		return fmt.Errorf("%w: address %#x not mapped", memory.ErrOutOfRange, addr)
	}
	return r.WriteByte(addr, v)
}

func (s *Space) ReadWord(addr uint64) (uint16, error) {
	r, ok := s.getByAddr(addr, 2)
	if !ok {
		return 0, fmt.Errorf("%w: address %#x not mapped", memory.ErrOutOfRange, addr)
	}
	return r.ReadWord(addr)
}

func (s *Space) WriteWord(addr uint64, v uint16) error {
	r, ok := s.getByAddr(addr, 2)
	if !ok {
		return fmt.Errorf("%w: address %#x not mapped", memory.ErrOutOfRange, addr)
	}
	return r.WriteWord(addr, v)
}

func (s *Space) ReadDword(addr uint64) (uint32, error) {
	r, ok := s.getByAddr(addr, 4)
	if !ok {
		return 0, fmt.Errorf("%w: address %#x not mapped", memory.ErrOutOfRange, addr)
	}
	return r.ReadDword(addr)
}

func (s *Space) WriteDword(addr uint64, v uint32) error {
	r, ok := s.getByAddr(addr, 4)
	if !ok {
		return fmt.Errorf("%w: address %#x not mapped", memory.ErrOutOfRange, addr)
	}
	return r.WriteDword(addr, v)
}

func (s *Space) ReadQword(addr uint64) (uint64, error) {
	r, ok := s.getByAddr(addr, 8)
	if !ok {
		return 0, fmt.Errorf("%w: address %#x not mapped", memory.ErrOutOfRange, addr)
	}
	return r.ReadQword(addr)
}

func (s *Space) WriteQword(addr uint64, v uint64) error {
	r, ok := s.getByAddr(addr, 8)
	if !ok {
		return fmt.Errorf("%w: address %#x not mapped", memory.ErrOutOfRange, addr)
	}
	return r.WriteQword(addr, v)
}

func (s *Space) ReadWideString(addr uint64) (string, error) {
	r, ok := s.getByAddr(addr, 0)
	if !ok {
		return "", fmt.Errorf("%w: address %#x not mapped", memory.ErrOutOfRange, addr)
	}
	return r.ReadWideString(addr)
}

// SearchBytes scans every live region for the first occurrence of needle,
// returning its address.
func (s *Space) SearchBytes(needle []byte) (uint64, bool) {
	for _, base := range s.sortedBases() {
		r := s.regions[s.byBase[base]]
		if off := indexOf(r.Bytes(), needle); off >= 0 {
			return r.Base() + uint64(off), true
		}
	}
	return 0, false
}

// SearchBytesFrom scans live regions at or after addr for needle.
func (s *Space) SearchBytesFrom(addr uint64, needle []byte) (uint64, bool) {
	for _, base := range s.sortedBases() {
		r := s.regions[s.byBase[base]]
		if r.Bottom() <= addr {
			continue
		}
		start := uint64(0)
		if addr > r.Base() {
			start = addr - r.Base()
		}
		if off := indexOf(r.Bytes()[start:], needle); off >= 0 {
			return r.Base() + start + uint64(off), true
		}
	}
	return 0, false
}

// SearchSpacedBytes matches a "." wildcard pattern such as "4d 5a . .",
// scanning every live region.
func (s *Space) SearchSpacedBytes(pattern string) (uint64, bool) {
	tokens := strings.Fields(pattern)
	for _, base := range s.sortedBases() {
		r := s.regions[s.byBase[base]]
		data := r.Bytes()
		for i := 0; i+len(tokens) <= len(data); i++ {
			if matchSpacedAt(data, i, tokens) {
				return r.Base() + uint64(i), true
			}
		}
	}
	return 0, false
}

func matchSpacedAt(data []byte, at int, tokens []string) bool {
	for j, tok := range tokens {
		if tok == "." {
			continue
		}
		var b byte
		if _, err := fmt.Sscanf(tok, "%02x", &b); err != nil {
			return false
		}
		if data[at+j] != b {
			return false
		}
	}
	return true
}

// SearchString finds the first occurrence of a NUL-terminated ASCII string.
func (s *Space) SearchString(needle string) (uint64, bool) {
	return s.SearchBytes(append([]byte(needle), 0))
}

func indexOf(haystack, needle []byte) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// TotalMapped returns the sum of the sizes of every live region.
func (s *Space) TotalMapped() uint64 {
	var total uint64
	for _, r := range s.regions {
		if r != nil {
			total += r.Size()
		}
	}
	return total
}

// Names lists the names of every live region, in base-address order.
func (s *Space) Names() []string {
	bases := s.sortedBases()
	out := make([]string, 0, len(bases))
	for _, b := range bases {
		out = append(out, s.regions[s.byBase[b]].Name)
	}
	return out
}
