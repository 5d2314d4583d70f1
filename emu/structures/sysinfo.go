package structures

import "github.com/relsec/x86emu/emu/maps"

// SystemTime mirrors SYSTEMTIME as returned by GetSystemTime.
type SystemTime struct {
	Year        uint16
	Month       uint16
	DayOfWeek   uint16
	Day         uint16
	Hour        uint16
	Minute      uint16
	Second      uint16
	Milliseconds uint16
}

const SizeSystemTime = 16

func (t SystemTime) Save(addr uint64, sp *maps.Space) error {
	words := [8]uint16{t.Year, t.Month, t.DayOfWeek, t.Day, t.Hour, t.Minute, t.Second, t.Milliseconds}
	for i, w := range words {
		if err := sp.WriteWord(addr+uint64(i*2), w); err != nil {
			return err
		}
	}
	return nil
}

func LoadSystemTime(addr uint64, sp *maps.Space) (SystemTime, error) {
	var t SystemTime
	var err error
	if t.Year, err = sp.ReadWord(addr); err != nil {
		return t, err
	}
	if t.Month, err = sp.ReadWord(addr + 2); err != nil {
		return t, err
	}
	if t.DayOfWeek, err = sp.ReadWord(addr + 4); err != nil {
		return t, err
	}
	if t.Day, err = sp.ReadWord(addr + 6); err != nil {
		return t, err
	}
	if t.Hour, err = sp.ReadWord(addr + 8); err != nil {
		return t, err
	}
	if t.Minute, err = sp.ReadWord(addr + 10); err != nil {
		return t, err
	}
	if t.Second, err = sp.ReadWord(addr + 12); err != nil {
		return t, err
	}
	t.Milliseconds, err = sp.ReadWord(addr + 14)
	return t, err
}

// OsVersionInfo mirrors OSVERSIONINFOA.
type OsVersionInfo struct {
	VersionInfoSize uint32
	MajorVersion    uint32
	MinorVersion    uint32
	BuildNumber     uint32
	PlatformID      uint32
	ServicePack     [128]byte
}

const SizeOsVersionInfo = 20 + 128

// NewOsVersionInfo reports Windows 10 19042 ("20H2"). The 10.0 major/minor
// pair matches NewKUserSharedData; the build number does not (that one
// reports 0x6c51).
func NewOsVersionInfo() OsVersionInfo {
	o := OsVersionInfo{VersionInfoSize: SizeOsVersionInfo, MajorVersion: 10, MinorVersion: 0, BuildNumber: 19042, PlatformID: 2}
	copy(o.ServicePack[:], "Service Pack 0")
	return o
}

func (o OsVersionInfo) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteDword(addr, o.VersionInfoSize); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+4, o.MajorVersion); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+8, o.MinorVersion); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+12, o.BuildNumber); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+16, o.PlatformID); err != nil {
		return err
	}
	return sp.WriteBytes(addr+20, o.ServicePack[:])
}

// SystemInfo32 mirrors SYSTEM_INFO as returned to a 32-bit process by
// GetSystemInfo.
type SystemInfo32 struct {
	OemID                uint32
	ProcessorArchitecture uint32
	PageSize             uint32
	MinAppAddress        uint32
	MaxAppAddress        uint32
	ActiveProcessorMask  uint32
	NumberOfProcessors   uint32
	ProcessorType        uint32
	AllocGranularity     uint32
	ProcessorLevel       uint16
	ProcessorRevision    uint16
}

const SizeSystemInfo32 = 42

func NewSystemInfo32() SystemInfo32 {
	return SystemInfo32{
		OemID: 0x1337, ProcessorArchitecture: 9, PageSize: 4096,
		ActiveProcessorMask: 1, NumberOfProcessors: 4, ProcessorType: 586,
		AllocGranularity: 65536, ProcessorLevel: 5, ProcessorRevision: 0xff,
	}
}

func (s SystemInfo32) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteDword(addr, s.OemID); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+4, s.ProcessorArchitecture); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+8, 0); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+10, s.PageSize); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+14, s.MinAppAddress); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+18, s.MaxAppAddress); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+22, s.ActiveProcessorMask); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+26, s.NumberOfProcessors); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+30, s.ProcessorType); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+34, s.AllocGranularity); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+38, s.ProcessorLevel); err != nil {
		return err
	}
	return sp.WriteWord(addr+40, s.ProcessorRevision)
}

// SystemInfo64 is the 64-bit SYSTEM_INFO.
type SystemInfo64 struct {
	ProcessorArchitecture uint32
	PageSize              uint32
	MinAppAddress         uint64
	MaxAppAddress         uint64
	ActiveProcessorMask   uint64
	NumberOfProcessors    uint32
	ProcessorType         uint32
	AllocGranularity      uint32
	ProcessorLevel        uint16
	ProcessorRevision     uint16
}

const SizeSystemInfo64 = 48

func NewSystemInfo64() SystemInfo64 {
	return SystemInfo64{
		ProcessorArchitecture: 9, PageSize: 4096,
		MinAppAddress: 0x10000, MaxAppAddress: 0x7ffffffeffff,
		ActiveProcessorMask: 0xff, NumberOfProcessors: 8, ProcessorType: 8664,
		AllocGranularity: 65536, ProcessorLevel: 6, ProcessorRevision: 0xa201,
	}
}

func (s SystemInfo64) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteWord(addr, uint16(s.ProcessorArchitecture)); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+2, 0); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+4, s.PageSize); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+8, s.MinAppAddress); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+16, s.MaxAppAddress); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+24, s.ActiveProcessorMask); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+32, s.NumberOfProcessors); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+36, s.ProcessorType); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+40, s.AllocGranularity); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+44, s.ProcessorLevel); err != nil {
		return err
	}
	return sp.WriteWord(addr+46, s.ProcessorRevision)
}
