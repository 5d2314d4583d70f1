package structures

import "github.com/relsec/x86emu/emu/maps"

// ActCtxSectionKeyedData32 is the record FindActCtxSectionString fills in
// for a 32-bit process: where a queried manifest section lives and the
// activation context handle it belongs to.
type ActCtxSectionKeyedData32 struct {
	CbSize                      uint32
	DataFormatVersion           uint32
	Data                        uint32
	Length                      uint32
	SectionGlobalData           uint32
	SectionGlobalDataLength     uint32
	SectionBase                 uint32
	SectionTotalLength          uint32
	ActCtx                      uint32
	AssemblyRosterIndex         uint32
	Flags                       uint32
	AssemblyMetadata            [64]byte
}

const SizeActCtxSectionKeyedData32 = 108

func (a ActCtxSectionKeyedData32) Save(addr uint64, sp *maps.Space) error {
	dwords := []struct {
		off uint64
		v   uint32
	}{
		{0, a.CbSize}, {4, a.DataFormatVersion}, {8, a.Data}, {12, a.Length},
		{16, a.SectionGlobalData}, {20, a.SectionGlobalDataLength},
		{24, a.SectionBase}, {28, a.SectionTotalLength}, {32, a.ActCtx},
		{36, a.AssemblyRosterIndex}, {40, a.Flags},
	}
	for _, d := range dwords {
		if err := sp.WriteDword(addr+d.off, d.v); err != nil {
			return err
		}
	}
	return sp.WriteBytes(addr+44, a.AssemblyMetadata[:])
}

// ActCtxSectionKeyedData64 is the 64-bit counterpart; the pointer-sized
// fields widen while CbSize and the *Length/*RosterIndex/Flags dwords do
// not.
type ActCtxSectionKeyedData64 struct {
	CbSize                  uint32
	DataFormatVersion       uint32
	Data                    uint64
	Length                  uint32
	SectionGlobalData       uint64
	SectionGlobalDataLength uint32
	SectionBase             uint64
	SectionTotalLength      uint32
	ActCtx                  uint64
	AssemblyRosterIndex     uint32
	Flags                   uint32
	AssemblyMetadata        [64]byte
}

const SizeActCtxSectionKeyedData64 = 136

func (a ActCtxSectionKeyedData64) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteDword(addr, a.CbSize); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+4, a.DataFormatVersion); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+8, a.Data); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+16, a.Length); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+24, a.SectionGlobalData); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+32, a.SectionGlobalDataLength); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+40, a.SectionBase); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+48, a.SectionTotalLength); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+56, a.ActCtx); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+64, a.AssemblyRosterIndex); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+68, a.Flags); err != nil {
		return err
	}
	return sp.WriteBytes(addr+72, a.AssemblyMetadata[:])
}
