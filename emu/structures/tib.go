package structures

import "github.com/relsec/x86emu/emu/maps"

// NtTib32 is the Thread Information Block every TEB embeds at offset 0:
// the SEH exception-handler chain head, the stack bounds, and fiber/TLS
// scratch pointers.
type NtTib32 struct {
	ExceptionList        uint32
	StackBase            uint32
	StackLimit           uint32
	SubSystemTib         uint32
	FiberData            uint32
	ArbitraryUserPointer uint32
	Self                 uint32
}

const SizeNtTib32 = 28

func LoadNtTib32(addr uint64, sp *maps.Space) (NtTib32, error) {
	var t NtTib32
	var err error
	if t.ExceptionList, err = sp.ReadDword(addr); err != nil {
		return t, err
	}
	if t.StackBase, err = sp.ReadDword(addr + 4); err != nil {
		return t, err
	}
	if t.StackLimit, err = sp.ReadDword(addr + 8); err != nil {
		return t, err
	}
	if t.SubSystemTib, err = sp.ReadDword(addr + 12); err != nil {
		return t, err
	}
	if t.FiberData, err = sp.ReadDword(addr + 16); err != nil {
		return t, err
	}
	if t.ArbitraryUserPointer, err = sp.ReadDword(addr + 20); err != nil {
		return t, err
	}
	t.Self, err = sp.ReadDword(addr + 24)
	return t, err
}

func (t NtTib32) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteDword(addr, t.ExceptionList); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+4, t.StackBase); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+8, t.StackLimit); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+12, t.SubSystemTib); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+16, t.FiberData); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+20, t.ArbitraryUserPointer); err != nil {
		return err
	}
	return sp.WriteDword(addr+24, t.Self)
}

// NtTib64 is the 64-bit NT_TIB.
type NtTib64 struct {
	ExceptionList        uint64
	StackBase            uint64
	StackLimit           uint64
	SubSystemTib         uint64
	FiberData            uint64
	ArbitraryUserPointer uint64
	Self                 uint64
}

const SizeNtTib64 = 56

func LoadNtTib64(addr uint64, sp *maps.Space) (NtTib64, error) {
	var t NtTib64
	var err error
	if t.ExceptionList, err = sp.ReadQword(addr); err != nil {
		return t, err
	}
	if t.StackBase, err = sp.ReadQword(addr + 8); err != nil {
		return t, err
	}
	if t.StackLimit, err = sp.ReadQword(addr + 16); err != nil {
		return t, err
	}
	if t.SubSystemTib, err = sp.ReadQword(addr + 24); err != nil {
		return t, err
	}
	if t.FiberData, err = sp.ReadQword(addr + 32); err != nil {
		return t, err
	}
	if t.ArbitraryUserPointer, err = sp.ReadQword(addr + 40); err != nil {
		return t, err
	}
	t.Self, err = sp.ReadQword(addr + 48)
	return t, err
}

func (t NtTib64) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteQword(addr, t.ExceptionList); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+8, t.StackBase); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+16, t.StackLimit); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+24, t.SubSystemTib); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+32, t.FiberData); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+40, t.ArbitraryUserPointer); err != nil {
		return err
	}
	return sp.WriteQword(addr+48, t.Self)
}
