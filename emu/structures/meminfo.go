package structures

import "github.com/relsec/x86emu/emu/maps"

// MemoryBasicInformation mirrors MEMORY_BASIC_INFORMATION as returned by
// VirtualQuery against a 32-bit address space.
type MemoryBasicInformation struct {
	BaseAddress       uint32
	AllocationBase    uint32
	AllocationProtect uint32
	PartitionID       uint16
	RegionSize        uint32
	State             uint32
	Protect           uint32
	Type              uint32
}

const SizeMemoryBasicInformation = 30

// GuessMemoryBasicInformation fills in a plausible MBI for a region VirtualQuery
// has no exact metadata for: base and allocation base set to base, the
// given region size, and 0xff for both protection fields. State, Type and
// PartitionID are left zero.
func GuessMemoryBasicInformation(base, size uint32) MemoryBasicInformation {
	return MemoryBasicInformation{
		BaseAddress: base, AllocationBase: base, AllocationProtect: 0xff,
		RegionSize: size, Protect: 0xff,
	}
}

func LoadMemoryBasicInformation(addr uint64, sp *maps.Space) (MemoryBasicInformation, error) {
	var m MemoryBasicInformation
	var err error
	if m.BaseAddress, err = sp.ReadDword(addr); err != nil {
		return m, err
	}
	if m.AllocationBase, err = sp.ReadDword(addr + 4); err != nil {
		return m, err
	}
	if m.AllocationProtect, err = sp.ReadDword(addr + 8); err != nil {
		return m, err
	}
	if m.PartitionID, err = sp.ReadWord(addr + 12); err != nil {
		return m, err
	}
	if m.RegionSize, err = sp.ReadDword(addr + 14); err != nil {
		return m, err
	}
	if m.State, err = sp.ReadDword(addr + 18); err != nil {
		return m, err
	}
	if m.Protect, err = sp.ReadDword(addr + 22); err != nil {
		return m, err
	}
	m.Type, err = sp.ReadDword(addr + 26)
	return m, err
}

func (m MemoryBasicInformation) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteDword(addr, m.BaseAddress); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+4, m.AllocationBase); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+8, m.AllocationProtect); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+12, m.PartitionID); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+14, m.RegionSize); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+18, m.State); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+22, m.Protect); err != nil {
		return err
	}
	return sp.WriteDword(addr+26, m.Type)
}
