package structures

import "github.com/relsec/x86emu/emu/maps"

// LdrDataTableEntry32 is one node of the loader's module list, keyed into
// three independent rings (load order, memory order, initialization
// order) via its own ListEntry32 heads. InMemoryOrderLinks sits 8 bytes
// after InLoadOrderLinks at a fixed offset across real entries, so walking
// InMemoryOrder.Flink and subtracting 8 recovers the load-order entry
// address — the trick every loader-aware shellcode uses instead of walking
// InLoadOrder directly.
type LdrDataTableEntry32 struct {
	InLoadOrderLinks           ListEntry32
	InMemoryOrderLinks         ListEntry32
	InInitializationOrderLinks ListEntry32
	DllBase                    uint32
	EntryPoint                 uint32
	SizeOfImage                uint32
	FullDllName                UnicodeString32
	BaseDllName                UnicodeString32
	Flags                      uint32
	LoadCount                  uint16
	TlsIndex                   uint16
	HashLinks                  ListEntry32
	TimeDateStamp              uint32
}

const SizeLdrDataTableEntry32 = 0x48

const (
	offLdr32DllBase       = 0x18
	offLdr32EntryPoint    = 0x1c
	offLdr32SizeOfImage   = 0x20
	offLdr32FullDllName   = 0x24
	offLdr32BaseDllName   = 0x2c
	offLdr32Flags         = 0x34
	offLdr32LoadCount     = 0x38
	offLdr32TlsIndex      = 0x3a
	offLdr32HashLinks     = 0x3c
	offLdr32TimeDateStamp = 0x44
)

func LoadLdrDataTableEntry32(addr uint64, sp *maps.Space) (LdrDataTableEntry32, error) {
	var e LdrDataTableEntry32
	var err error
	if e.InLoadOrderLinks, err = LoadListEntry32(addr, sp); err != nil {
		return e, err
	}
	if e.InMemoryOrderLinks, err = LoadListEntry32(addr+8, sp); err != nil {
		return e, err
	}
	if e.InInitializationOrderLinks, err = LoadListEntry32(addr+16, sp); err != nil {
		return e, err
	}
	if e.DllBase, err = sp.ReadDword(addr + offLdr32DllBase); err != nil {
		return e, err
	}
	if e.EntryPoint, err = sp.ReadDword(addr + offLdr32EntryPoint); err != nil {
		return e, err
	}
	if e.SizeOfImage, err = sp.ReadDword(addr + offLdr32SizeOfImage); err != nil {
		return e, err
	}
	if e.FullDllName, err = LoadUnicodeString32(addr+offLdr32FullDllName, sp); err != nil {
		return e, err
	}
	if e.BaseDllName, err = LoadUnicodeString32(addr+offLdr32BaseDllName, sp); err != nil {
		return e, err
	}
	if e.Flags, err = sp.ReadDword(addr + offLdr32Flags); err != nil {
		return e, err
	}
	if e.LoadCount, err = sp.ReadWord(addr + offLdr32LoadCount); err != nil {
		return e, err
	}
	if e.TlsIndex, err = sp.ReadWord(addr + offLdr32TlsIndex); err != nil {
		return e, err
	}
	if e.HashLinks, err = LoadListEntry32(addr+offLdr32HashLinks, sp); err != nil {
		return e, err
	}
	e.TimeDateStamp, err = sp.ReadDword(addr + offLdr32TimeDateStamp)
	return e, err
}

func (e LdrDataTableEntry32) Save(addr uint64, sp *maps.Space) error {
	if err := e.InLoadOrderLinks.Save(addr, sp); err != nil {
		return err
	}
	if err := e.InMemoryOrderLinks.Save(addr+8, sp); err != nil {
		return err
	}
	if err := e.InInitializationOrderLinks.Save(addr+16, sp); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+offLdr32DllBase, e.DllBase); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+offLdr32EntryPoint, e.EntryPoint); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+offLdr32SizeOfImage, e.SizeOfImage); err != nil {
		return err
	}
	if err := e.FullDllName.Save(addr+offLdr32FullDllName, sp); err != nil {
		return err
	}
	if err := e.BaseDllName.Save(addr+offLdr32BaseDllName, sp); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+offLdr32Flags, e.Flags); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+offLdr32LoadCount, e.LoadCount); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+offLdr32TlsIndex, e.TlsIndex); err != nil {
		return err
	}
	if err := e.HashLinks.Save(addr+offLdr32HashLinks, sp); err != nil {
		return err
	}
	return sp.WriteDword(addr+offLdr32TimeDateStamp, e.TimeDateStamp)
}

// LdrDataTableEntry64 is the 64-bit counterpart; the same three-ring
// topology, wider links and pointers.
type LdrDataTableEntry64 struct {
	InLoadOrderLinks           ListEntry64
	InMemoryOrderLinks         ListEntry64
	InInitializationOrderLinks ListEntry64
	DllBase                    uint64
	EntryPoint                 uint64
	SizeOfImage                uint64
	FullDllName                UnicodeString64
	BaseDllName                UnicodeString64
	Flags                      uint32
	LoadCount                  uint16
	TlsIndex                   uint16
	HashLinks                  ListEntry64
	TimeDateStamp              uint32
}

const SizeLdrDataTableEntry64 = 0x98

const (
	offLdr64DllBase       = 0x30
	offLdr64EntryPoint    = 0x38
	offLdr64SizeOfImage   = 0x40
	offLdr64FullDllName   = 0x48
	offLdr64BaseDllName   = 0x58
	offLdr64Flags         = 0x68
	offLdr64LoadCount     = 0x6c
	offLdr64TlsIndex      = 0x6e
	offLdr64HashLinks     = 0x70
	offLdr64TimeDateStamp = 0x80
)

func LoadLdrDataTableEntry64(addr uint64, sp *maps.Space) (LdrDataTableEntry64, error) {
	var e LdrDataTableEntry64
	var err error
	if e.InLoadOrderLinks, err = LoadListEntry64(addr, sp); err != nil {
		return e, err
	}
	if e.InMemoryOrderLinks, err = LoadListEntry64(addr+0x10, sp); err != nil {
		return e, err
	}
	if e.InInitializationOrderLinks, err = LoadListEntry64(addr+0x20, sp); err != nil {
		return e, err
	}
	if e.DllBase, err = sp.ReadQword(addr + offLdr64DllBase); err != nil {
		return e, err
	}
	if e.EntryPoint, err = sp.ReadQword(addr + offLdr64EntryPoint); err != nil {
		return e, err
	}
	if e.SizeOfImage, err = sp.ReadQword(addr + offLdr64SizeOfImage); err != nil {
		return e, err
	}
	if e.FullDllName, err = LoadUnicodeString64(addr+offLdr64FullDllName, sp); err != nil {
		return e, err
	}
	if e.BaseDllName, err = LoadUnicodeString64(addr+offLdr64BaseDllName, sp); err != nil {
		return e, err
	}
	if e.Flags, err = sp.ReadDword(addr + offLdr64Flags); err != nil {
		return e, err
	}
	if e.LoadCount, err = sp.ReadWord(addr + offLdr64LoadCount); err != nil {
		return e, err
	}
	if e.TlsIndex, err = sp.ReadWord(addr + offLdr64TlsIndex); err != nil {
		return e, err
	}
	if e.HashLinks, err = LoadListEntry64(addr+offLdr64HashLinks, sp); err != nil {
		return e, err
	}
	e.TimeDateStamp, err = sp.ReadDword(addr + offLdr64TimeDateStamp)
	return e, err
}

func (e LdrDataTableEntry64) Save(addr uint64, sp *maps.Space) error {
	if err := e.InLoadOrderLinks.Save(addr, sp); err != nil {
		return err
	}
	if err := e.InMemoryOrderLinks.Save(addr+0x10, sp); err != nil {
		return err
	}
	if err := e.InInitializationOrderLinks.Save(addr+0x20, sp); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+offLdr64DllBase, e.DllBase); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+offLdr64EntryPoint, e.EntryPoint); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+offLdr64SizeOfImage, e.SizeOfImage); err != nil {
		return err
	}
	if err := e.FullDllName.Save(addr+offLdr64FullDllName, sp); err != nil {
		return err
	}
	if err := e.BaseDllName.Save(addr+offLdr64BaseDllName, sp); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+offLdr64Flags, e.Flags); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+offLdr64LoadCount, e.LoadCount); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+offLdr64TlsIndex, e.TlsIndex); err != nil {
		return err
	}
	if err := e.HashLinks.Save(addr+offLdr64HashLinks, sp); err != nil {
		return err
	}
	return sp.WriteDword(addr+offLdr64TimeDateStamp, e.TimeDateStamp)
}

// PebLdrData32 is the PEB_LDR_DATA list-head structure the PEB's Ldr field
// points at: the three module-list heads LdrDataTableEntry32 links into.
type PebLdrData32 struct {
	Length                            uint32
	Initialized                       uint32
	SsHandle                          uint32
	InLoadOrderModuleList             ListEntry32
	InMemoryOrderModuleList           ListEntry32
	InInitializationOrderModuleList   ListEntry32
	EntryInProgress                   uint32
	ShutdownInProgress                uint32
	ShutdownThreadID                  uint32
}

const SizePebLdrData32 = 48

func NewPebLdrData32() PebLdrData32 {
	return PebLdrData32{Length: SizePebLdrData32}
}

func LoadPebLdrData32(addr uint64, sp *maps.Space) (PebLdrData32, error) {
	var d PebLdrData32
	var err error
	if d.Length, err = sp.ReadDword(addr); err != nil {
		return d, err
	}
	if d.Initialized, err = sp.ReadDword(addr + 4); err != nil {
		return d, err
	}
	if d.SsHandle, err = sp.ReadDword(addr + 8); err != nil {
		return d, err
	}
	if d.InLoadOrderModuleList, err = LoadListEntry32(addr+12, sp); err != nil {
		return d, err
	}
	if d.InMemoryOrderModuleList, err = LoadListEntry32(addr+20, sp); err != nil {
		return d, err
	}
	if d.InInitializationOrderModuleList, err = LoadListEntry32(addr+28, sp); err != nil {
		return d, err
	}
	if d.EntryInProgress, err = sp.ReadDword(addr + 36); err != nil {
		return d, err
	}
	if d.ShutdownInProgress, err = sp.ReadDword(addr + 40); err != nil {
		return d, err
	}
	d.ShutdownThreadID, err = sp.ReadDword(addr + 44)
	return d, err
}

func (d PebLdrData32) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteDword(addr, d.Length); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+4, d.Initialized); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+8, d.SsHandle); err != nil {
		return err
	}
	if err := d.InLoadOrderModuleList.Save(addr+12, sp); err != nil {
		return err
	}
	if err := d.InMemoryOrderModuleList.Save(addr+20, sp); err != nil {
		return err
	}
	if err := d.InInitializationOrderModuleList.Save(addr+28, sp); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+36, d.EntryInProgress); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+40, d.ShutdownInProgress); err != nil {
		return err
	}
	return sp.WriteDword(addr+44, d.ShutdownThreadID)
}

// PebLdrData64 is the 64-bit PEB_LDR_DATA.
type PebLdrData64 struct {
	Length                          uint32
	Initialized                     uint32
	SsHandle                        uint64
	InLoadOrderModuleList           ListEntry64
	InMemoryOrderModuleList         ListEntry64
	InInitializationOrderModuleList ListEntry64
	EntryInProgress                 ListEntry64
}

const SizePebLdrData64 = 80

func NewPebLdrData64() PebLdrData64 {
	return PebLdrData64{Length: SizePebLdrData64}
}

func LoadPebLdrData64(addr uint64, sp *maps.Space) (PebLdrData64, error) {
	var d PebLdrData64
	var err error
	if d.Length, err = sp.ReadDword(addr); err != nil {
		return d, err
	}
	if d.Initialized, err = sp.ReadDword(addr + 4); err != nil {
		return d, err
	}
	if d.SsHandle, err = sp.ReadQword(addr + 8); err != nil {
		return d, err
	}
	if d.InLoadOrderModuleList, err = LoadListEntry64(addr+0x10, sp); err != nil {
		return d, err
	}
	if d.InMemoryOrderModuleList, err = LoadListEntry64(addr+0x20, sp); err != nil {
		return d, err
	}
	if d.InInitializationOrderModuleList, err = LoadListEntry64(addr+0x30, sp); err != nil {
		return d, err
	}
	d.EntryInProgress, err = LoadListEntry64(addr+0x40, sp)
	return d, err
}

func (d PebLdrData64) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteDword(addr, d.Length); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+4, d.Initialized); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+8, d.SsHandle); err != nil {
		return err
	}
	if err := d.InLoadOrderModuleList.Save(addr+0x10, sp); err != nil {
		return err
	}
	if err := d.InMemoryOrderModuleList.Save(addr+0x20, sp); err != nil {
		return err
	}
	if err := d.InInitializationOrderModuleList.Save(addr+0x30, sp); err != nil {
		return err
	}
	return d.EntryInProgress.Save(addr+0x40, sp)
}
