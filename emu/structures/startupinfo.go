package structures

import "github.com/relsec/x86emu/emu/maps"

// StartupInfo32 mirrors STARTUPINFOA as GetStartupInfo returns it to a
// 32-bit process.
type StartupInfo32 struct {
	Cb            uint32
	Reserved      uint32
	Desktop       uint32
	Title         uint32
	X             uint32
	Y             uint32
	XSize         uint32
	YSize         uint32
	XCountChars   uint32
	YCountChars   uint32
	FillAttribute uint32
	Flags         uint32
	ShowWindow    uint16
	CbReserved2   uint16
	LpReserved2   uint32
	StdInput      uint32
	StdOutput     uint32
	StdError      uint32
}

const SizeStartupInfo32 = 68

func NewStartupInfo32() StartupInfo32 {
	return StartupInfo32{Cb: SizeStartupInfo32, X: 10, Y: 10, XSize: 300, YSize: 200, ShowWindow: 1}
}

func (s StartupInfo32) Save(addr uint64, sp *maps.Space) error {
	dwords := []struct {
		off uint64
		v   uint32
	}{
		{0, s.Cb}, {4, s.Reserved}, {8, s.Desktop}, {12, s.Title},
		{16, s.X}, {20, s.Y}, {24, s.XSize}, {28, s.YSize},
		{32, s.XCountChars}, {36, s.YCountChars}, {40, s.FillAttribute}, {44, s.Flags},
	}
	for _, d := range dwords {
		if err := sp.WriteDword(addr+d.off, d.v); err != nil {
			return err
		}
	}
	if err := sp.WriteWord(addr+48, s.ShowWindow); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+50, s.CbReserved2); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+52, s.LpReserved2); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+56, s.StdInput); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+60, s.StdOutput); err != nil {
		return err
	}
	return sp.WriteDword(addr+64, s.StdError)
}

// StartupInfo64 is the 64-bit STARTUPINFOA: Reserved/Desktop/Title and
// the reserved2/std-handle fields widen to pointer size.
type StartupInfo64 struct {
	Cb            uint32
	Reserved      uint64
	Desktop       uint64
	Title         uint64
	X             uint32
	Y             uint32
	XSize         uint32
	YSize         uint32
	XCountChars   uint32
	YCountChars   uint32
	FillAttribute uint32
	Flags         uint32
	ShowWindow    uint16
	CbReserved2   uint16
	LpReserved2   uint64
	StdInput      uint32
	StdOutput     uint32
	StdError      uint32
}

const SizeStartupInfo64 = 84

func NewStartupInfo64() StartupInfo64 {
	return StartupInfo64{Cb: SizeStartupInfo64, X: 10, Y: 10, XSize: 300, YSize: 200, ShowWindow: 1}
}

func (s StartupInfo64) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteDword(addr, s.Cb); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+4, s.Reserved); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+12, s.Desktop); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+20, s.Title); err != nil {
		return err
	}
	dwords := []struct {
		off uint64
		v   uint32
	}{
		{28, s.X}, {32, s.Y}, {36, s.XSize}, {40, s.YSize},
		{44, s.XCountChars}, {48, s.YCountChars}, {52, s.FillAttribute}, {56, s.Flags},
	}
	for _, d := range dwords {
		if err := sp.WriteDword(addr+d.off, d.v); err != nil {
			return err
		}
	}
	if err := sp.WriteWord(addr+60, s.ShowWindow); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+62, s.CbReserved2); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+64, s.LpReserved2); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+72, s.StdInput); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+76, s.StdOutput); err != nil {
		return err
	}
	return sp.WriteDword(addr+80, s.StdError)
}
