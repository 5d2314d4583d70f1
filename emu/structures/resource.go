package structures

import "github.com/relsec/x86emu/emu/maps"

// ImageResourceDirectory is the root and every subdirectory node of the
// .rsrc resource tree.
type ImageResourceDirectory struct {
	Characteristics     uint32
	TimeDateStamp       uint32
	MajorVersion        uint16
	MinorVersion        uint16
	NumberOfNamedEntries uint16
	NumberOfIDEntries    uint16
}

const SizeImageResourceDirectory = 16

func LoadImageResourceDirectory(addr uint64, sp *maps.Space) (ImageResourceDirectory, error) {
	var d ImageResourceDirectory
	var err error
	if d.Characteristics, err = sp.ReadDword(addr); err != nil {
		return d, err
	}
	if d.TimeDateStamp, err = sp.ReadDword(addr + 4); err != nil {
		return d, err
	}
	if d.MajorVersion, err = sp.ReadWord(addr + 8); err != nil {
		return d, err
	}
	if d.MinorVersion, err = sp.ReadWord(addr + 10); err != nil {
		return d, err
	}
	if d.NumberOfNamedEntries, err = sp.ReadWord(addr + 12); err != nil {
		return d, err
	}
	d.NumberOfIDEntries, err = sp.ReadWord(addr + 14)
	return d, err
}

// ImageResourceDirectoryEntry is one entry under an ImageResourceDirectory,
// keyed either by name or by numeric ID, pointing either at a nested
// directory or at a leaf ImageResourceDataEntry.
type ImageResourceDirectoryEntry struct {
	NameOrID        uint32
	DataOrDirectory uint32
}

const SizeImageResourceDirectoryEntry = 8

func LoadImageResourceDirectoryEntry(addr uint64, sp *maps.Space) (ImageResourceDirectoryEntry, error) {
	var e ImageResourceDirectoryEntry
	var err error
	if e.NameOrID, err = sp.ReadDword(addr); err != nil {
		return e, err
	}
	e.DataOrDirectory, err = sp.ReadDword(addr + 4)
	return e, err
}

func (e ImageResourceDirectoryEntry) IsName() bool { return e.NameOrID&0x8000_0000 != 0 }
func (e ImageResourceDirectoryEntry) IsID() bool    { return !e.IsName() }
func (e ImageResourceDirectoryEntry) NameOrIDValue() uint32 { return e.NameOrID &^ 0x8000_0000 }
func (e ImageResourceDirectoryEntry) IsDirectory() bool { return e.DataOrDirectory&0x8000_0000 != 0 }
func (e ImageResourceDirectoryEntry) Offset() uint32 { return e.DataOrDirectory &^ 0x8000_0000 }

// ImageResourceDataEntry32 is a leaf resource record in a 32-bit image:
// the RVA and size of the raw resource bytes plus its code page.
type ImageResourceDataEntry32 struct {
	OffsetToData uint32
	Size         uint32
	CodePage     uint32
	Reserved     uint32
}

const SizeImageResourceDataEntry32 = 16

func LoadImageResourceDataEntry32(addr uint64, sp *maps.Space) (ImageResourceDataEntry32, error) {
	var e ImageResourceDataEntry32
	var err error
	if e.OffsetToData, err = sp.ReadDword(addr); err != nil {
		return e, err
	}
	if e.Size, err = sp.ReadDword(addr + 4); err != nil {
		return e, err
	}
	if e.CodePage, err = sp.ReadDword(addr + 8); err != nil {
		return e, err
	}
	e.Reserved, err = sp.ReadDword(addr + 12)
	return e, err
}

// ImageResourceDataEntry64 is the 64-bit counterpart.
type ImageResourceDataEntry64 struct {
	OffsetToData uint64
	Size         uint64
	CodePage     uint64
	Reserved     uint64
}

const SizeImageResourceDataEntry64 = 32

func LoadImageResourceDataEntry64(addr uint64, sp *maps.Space) (ImageResourceDataEntry64, error) {
	var e ImageResourceDataEntry64
	var err error
	if e.OffsetToData, err = sp.ReadQword(addr); err != nil {
		return e, err
	}
	if e.Size, err = sp.ReadQword(addr + 8); err != nil {
		return e, err
	}
	if e.CodePage, err = sp.ReadQword(addr + 16); err != nil {
		return e, err
	}
	e.Reserved, err = sp.ReadQword(addr + 24)
	return e, err
}
