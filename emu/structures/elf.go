package structures

import "github.com/relsec/x86emu/emu/maps"

// ElfHeader64 is a read-only typed view over an ELF64 file header, for
// the Linux-targeted loader path identifying entry point, program header
// table location, and machine type before mapping segments.
type ElfHeader64 struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	PhOff     uint64
	ShOff     uint64
	Flags     uint32
	EhSize    uint16
	PhEntSize uint16
	PhNum     uint16
	ShEntSize uint16
	ShNum     uint16
	ShStrNdx  uint16
}

const SizeElfHeader64 = 64

// ElfMagic is the 4-byte ELF identification prefix.
var ElfMagic = [4]byte{0x7f, 'E', 'L', 'F'}

func LoadElfHeader64(addr uint64, sp *maps.Space) (ElfHeader64, error) {
	var h ElfHeader64
	ident, err := sp.ReadBytes(addr, 16)
	if err != nil {
		return h, err
	}
	copy(h.Ident[:], ident)
	if h.Type, err = sp.ReadWord(addr + 16); err != nil {
		return h, err
	}
	if h.Machine, err = sp.ReadWord(addr + 18); err != nil {
		return h, err
	}
	if h.Version, err = sp.ReadDword(addr + 20); err != nil {
		return h, err
	}
	if h.Entry, err = sp.ReadQword(addr + 24); err != nil {
		return h, err
	}
	if h.PhOff, err = sp.ReadQword(addr + 32); err != nil {
		return h, err
	}
	if h.ShOff, err = sp.ReadQword(addr + 40); err != nil {
		return h, err
	}
	if h.Flags, err = sp.ReadDword(addr + 48); err != nil {
		return h, err
	}
	if h.EhSize, err = sp.ReadWord(addr + 52); err != nil {
		return h, err
	}
	if h.PhEntSize, err = sp.ReadWord(addr + 54); err != nil {
		return h, err
	}
	if h.PhNum, err = sp.ReadWord(addr + 56); err != nil {
		return h, err
	}
	if h.ShEntSize, err = sp.ReadWord(addr + 58); err != nil {
		return h, err
	}
	if h.ShNum, err = sp.ReadWord(addr + 60); err != nil {
		return h, err
	}
	h.ShStrNdx, err = sp.ReadWord(addr + 62)
	return h, err
}

// IsValid reports whether Ident carries the ELF magic and is laid out
// for a 64-bit little-endian target, the only kind this interpreter
// loads.
func (h ElfHeader64) IsValid() bool {
	return h.Ident[0] == ElfMagic[0] && h.Ident[1] == ElfMagic[1] &&
		h.Ident[2] == ElfMagic[2] && h.Ident[3] == ElfMagic[3] &&
		h.Ident[4] == 2 && h.Ident[5] == 1
}

// ProgramHeader64 is one PT_* entry of the ELF program header table; the
// loader walks PT_LOAD entries to map segments and PT_TLS to lay out the
// initial TLS template.
type ProgramHeader64 struct {
	Type     uint32
	Flags    uint32
	Offset   uint64
	VAddr    uint64
	PAddr    uint64
	FileSize uint64
	MemSize  uint64
	Align    uint64
}

const SizeProgramHeader64 = 56

// Well-known p_type values.
const (
	PtNull = 0
	PtLoad = 1
	PtTLS  = 7
)

func LoadProgramHeader64(addr uint64, sp *maps.Space) (ProgramHeader64, error) {
	var p ProgramHeader64
	var err error
	if p.Type, err = sp.ReadDword(addr); err != nil {
		return p, err
	}
	if p.Flags, err = sp.ReadDword(addr + 4); err != nil {
		return p, err
	}
	if p.Offset, err = sp.ReadQword(addr + 8); err != nil {
		return p, err
	}
	if p.VAddr, err = sp.ReadQword(addr + 16); err != nil {
		return p, err
	}
	if p.PAddr, err = sp.ReadQword(addr + 24); err != nil {
		return p, err
	}
	if p.FileSize, err = sp.ReadQword(addr + 32); err != nil {
		return p, err
	}
	if p.MemSize, err = sp.ReadQword(addr + 40); err != nil {
		return p, err
	}
	p.Align, err = sp.ReadQword(addr + 48)
	return p, err
}
