/*
 * x86emu - Snapshot serializer
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

// Package serialize dumps and restores interpreter state as a gob-encoded
// Snapshot plus one sibling "{base:08x}-{name}.bin" file per live memory
// region. The format is versioned by gob's own wire format; byte-exact
// interop with any other implementation is not a goal.
package serialize

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/relsec/x86emu/emu/cpustate"
	"github.com/relsec/x86emu/emu/fpu"
	"github.com/relsec/x86emu/emu/maps"
)

// RegionHeader records the on-disk layout of one region's sibling .bin file.
type RegionHeader struct {
	Name string
	Base uint64
	Size uint64
}

// Snapshot is a flattened, gob-friendly mirror of cpustate.State. Region
// contents are not embedded here; Save writes them as sibling files and
// Load reads them back using the Regions list below.
type Snapshot struct {
	Is64Bit bool
	Banzai  bool

	GPR     [cpustate.NumGPR]uint64
	SegSel  [cpustate.NumSeg]uint16
	SegBase [cpustate.NumSeg]uint64
	CR      [16]uint64
	DR      [8]uint64
	EFlags  uint32

	FPUControl    uint16
	FPUStatus     uint16
	FPUTag        uint16
	FPUTop        uint8
	FPUSlots      [8][10]byte
	FPUInvalid    [8]bool
	FPUDepth      int
	FPUIP         uint64
	FPUOperandPtr uint64
	FPULastOpcode uint16
	FPUMXCSR      uint32

	XMMLow  [16][16]byte
	XMMHigh [16][16]byte

	LastError uint32
	SEHHead   uint64
	VEHHead   uint64

	TLS []uint64
	FLS []uint64

	Regions []RegionHeader
}

func regionFileName(base uint64, name string) string {
	return fmt.Sprintf("%08x-%s.bin", base, name)
}

// Save writes path as the gob-encoded Snapshot and, in a sibling directory
// named path+".regions", one file per live memory region.
func Save(state *cpustate.State, path string) error {
	snap := toSnapshot(state)

	dir := path + ".regions"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, name := range state.Space.Names() {
		r, _ := state.Space.GetByName(name)
		snap.Regions = append(snap.Regions, RegionHeader{Name: r.Name, Base: r.Base(), Size: r.Size()})
		if err := os.WriteFile(filepath.Join(dir, regionFileName(r.Base(), r.Name)), r.Bytes(), 0o644); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(snap)
}

// Load replaces state's memory regions, registers, FPU and SIMD state,
// LastError, SEH/VEH heads and TLS/FLS tables with the contents of the
// snapshot at path. The handle table is not part of the snapshot and is
// left as it was.
func Load(state *cpustate.State, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var snap Snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return err
	}

	dir := path + ".regions"
	newSpace := maps.New(snap.Is64Bit)
	for _, rh := range snap.Regions {
		r, err := newSpace.CreateMap(rh.Name, rh.Base, rh.Size)
		if err != nil {
			return err
		}
		if err := r.Load(filepath.Join(dir, regionFileName(rh.Base, rh.Name))); err != nil {
			return err
		}
	}

	fromSnapshot(state, &snap, newSpace)
	return nil
}

func toSnapshot(state *cpustate.State) Snapshot {
	var snap Snapshot
	snap.Is64Bit = state.Stack.Is64Bit
	snap.Banzai = state.Banzai

	for i := 0; i < cpustate.NumGPR; i++ {
		snap.GPR[i] = state.Regs.Get64(cpustate.Reg(i))
	}
	for i := 0; i < cpustate.NumSeg; i++ {
		snap.SegSel[i] = state.Regs.SegSelector(cpustate.Seg(i))
		snap.SegBase[i] = state.Regs.SegBase(cpustate.Seg(i))
	}
	for i := 0; i < 16; i++ {
		snap.CR[i] = state.Regs.CR(i)
	}
	for i := 0; i < 8; i++ {
		snap.DR[i] = state.Regs.DR(i)
	}
	snap.EFlags = state.Regs.EFlags().Pack()

	snap.FPUControl = state.FPU.Control
	snap.FPUStatus = state.FPU.StatusWord()
	snap.FPUTag = state.FPU.Tag
	snap.FPUTop = state.FPU.Top()
	snap.FPUDepth = state.FPU.Depth()
	snap.FPUIP = state.FPU.IP
	snap.FPUOperandPtr = state.FPU.OperandPtr
	snap.FPULastOpcode = state.FPU.LastOpcode
	snap.FPUMXCSR = state.FPU.MXCSR
	for i := 0; i < snap.FPUDepth; i++ {
		snap.FPUSlots[i] = state.FPU.Get(i).Raw()
		snap.FPUInvalid[i] = state.FPU.IsInvalid(i)
	}

	for i := 0; i < 16; i++ {
		snap.XMMLow[i] = state.Simd.GetXMM(i)
		ymm := state.Simd.GetYMM(i)
		copy(snap.XMMHigh[i][:], ymm[16:])
	}

	snap.LastError = state.LastError()
	snap.SEHHead = state.Exc.SEHHead
	snap.VEHHead = state.Exc.VEHHead

	snap.TLS = state.TLS.Snapshot()
	snap.FLS = state.FLS.Snapshot()

	return snap
}

func fromSnapshot(state *cpustate.State, snap *Snapshot, space *maps.Space) {
	state.Space = space
	state.Stack = &cpustate.StackOps{Regs: state.Regs, Space: space, Is64Bit: snap.Is64Bit}
	state.Banzai = snap.Banzai

	for i := 0; i < cpustate.NumGPR; i++ {
		state.Regs.Set64(cpustate.Reg(i), snap.GPR[i])
	}
	for i := 0; i < cpustate.NumSeg; i++ {
		state.Regs.SetSegSelector(cpustate.Seg(i), snap.SegSel[i])
		state.Regs.SetSegBase(cpustate.Seg(i), snap.SegBase[i])
	}
	for i := 0; i < 16; i++ {
		state.Regs.SetCR(i, snap.CR[i])
	}
	for i := 0; i < 8; i++ {
		state.Regs.SetDR(i, snap.DR[i])
	}
	state.Regs.EFlags().Unpack(snap.EFlags)

	state.FPU = fpu.NewStack()
	state.FPU.Control = snap.FPUControl
	state.FPU.Tag = snap.FPUTag
	state.FPU.IP = snap.FPUIP
	state.FPU.OperandPtr = snap.FPUOperandPtr
	state.FPU.LastOpcode = snap.FPULastOpcode
	state.FPU.MXCSR = snap.FPUMXCSR
	for i := snap.FPUDepth - 1; i >= 0; i-- {
		_ = state.FPU.PushF80(fpu.FromRaw(snap.FPUSlots[i]))
	}
	for i := 0; i < snap.FPUDepth; i++ {
		state.FPU.SetInvalid(i, snap.FPUInvalid[i])
	}

	for i := 0; i < 16; i++ {
		state.Simd.SetXMM(i, snap.XMMLow[i])
		var ymm [32]byte
		copy(ymm[:16], snap.XMMLow[i][:])
		copy(ymm[16:], snap.XMMHigh[i][:])
		state.Simd.SetYMM(i, ymm)
	}

	state.SetLastError(snap.LastError)
	state.Exc.SEHHead = snap.SEHHead
	state.Exc.VEHHead = snap.VEHHead

	state.TLS.Restore(snap.TLS)
	state.FLS.Restore(snap.FLS)
}
