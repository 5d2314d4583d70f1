package structures

import "github.com/relsec/x86emu/emu/maps"

// Stat mirrors the x86-64 Linux struct stat, as the fstat/newfstatat
// syscall shims hand back to guest libc.
type Stat struct {
	Dev      uint64
	Ino      uint64
	Nlink    uint64
	Mode     uint32
	UID      uint32
	GID      uint32
	Pad0     uint32
	Rdev     uint64
	Size     int64
	Blksize  int64
	Blocks   int64
	AtimeSec uint64
	AtimeNsec uint64
	MtimeSec  uint64
	MtimeNsec uint64
	CtimeSec  uint64
	CtimeNsec uint64
	Reserved  [3]int64
}

const SizeStat = 144

// FakeStat returns stat() results for a plausible regular file, good
// enough for guest code that only checks size/mode rather than reading
// anything back out of a real filesystem.
func FakeStat() Stat {
	return Stat{
		Dev: 64769, Ino: 41946037, Nlink: 1, Mode: 33188,
		Size: 2794, Blksize: 4096, Blocks: 8,
		AtimeSec: 1692634621, AtimeNsec: 419117625,
		MtimeSec: 1690443336, MtimeNsec: 991482376,
		CtimeSec: 1690443336, CtimeNsec: 995482376,
	}
}

func (s Stat) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteQword(addr, s.Dev); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+8, s.Ino); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+16, s.Nlink); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+24, s.Mode); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+28, s.UID); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+32, s.GID); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+36, s.Pad0); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+40, s.Rdev); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+48, uint64(s.Size)); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+56, uint64(s.Blksize)); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+64, uint64(s.Blocks)); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+72, s.AtimeSec); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+80, s.AtimeNsec); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+88, s.MtimeSec); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+96, s.MtimeNsec); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+104, s.CtimeSec); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+112, s.CtimeNsec); err != nil {
		return err
	}
	for i, r := range s.Reserved {
		if err := sp.WriteQword(addr+120+uint64(i*8), uint64(r)); err != nil {
			return err
		}
	}
	return nil
}

// Hostent mirrors struct hostent as gethostbyname returns it, trimmed to
// the fields guest code dereferences directly rather than the full
// h_aliases/h_addr_list chains.
type Hostent struct {
	Name     uint64
	AliasList uint64
	AddrType uint16
	Length   uint16
	AddrList uint64
}

const SizeHostent = 32

func NewHostent() Hostent {
	return Hostent{Length: 4}
}

func (h Hostent) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteQword(addr, h.Name); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+8, h.AliasList); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+16, h.AddrType); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+20, h.Length); err != nil {
		return err
	}
	return sp.WriteQword(addr+24, h.AddrList)
}

// CpInfo mirrors CPINFO as GetCPInfo returns for the active codepage.
type CpInfo struct {
	MaxCharSize uint32
	DefaultChar [2]byte
	LeadByte    [12]byte
}

const SizeCpInfo = 18

func NewCpInfo() CpInfo {
	c := CpInfo{MaxCharSize: 1}
	c.DefaultChar[0] = '?'
	return c
}

func LoadCpInfo(addr uint64, sp *maps.Space) (CpInfo, error) {
	var c CpInfo
	var err error
	if c.MaxCharSize, err = sp.ReadDword(addr); err != nil {
		return c, err
	}
	for i := range c.DefaultChar {
		if c.DefaultChar[i], err = sp.ReadByte(addr + 4 + uint64(i)); err != nil {
			return c, err
		}
	}
	for i := range c.LeadByte {
		if c.LeadByte[i], err = sp.ReadByte(addr + 6 + uint64(i)); err != nil {
			return c, err
		}
	}
	return c, nil
}

func (c CpInfo) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteDword(addr, c.MaxCharSize); err != nil {
		return err
	}
	for i, b := range c.DefaultChar {
		if err := sp.WriteByte(addr+4+uint64(i), b); err != nil {
			return err
		}
	}
	for i, b := range c.LeadByte {
		if err := sp.WriteByte(addr+6+uint64(i), b); err != nil {
			return err
		}
	}
	return nil
}

// MemoryOperation is one entry of the instruction-level read/write trace,
// kept purely in Go and never marshaled against guest memory.
type MemoryOperation struct {
	Pos      uint64
	Rip      uint64
	Op       string
	Bits     uint32
	Address  uint64
	OldValue uint64
	NewValue uint64
	Name     string
}
