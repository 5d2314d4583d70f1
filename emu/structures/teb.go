package structures

import "github.com/relsec/x86emu/emu/maps"

// TEB32 holds the fields of the Thread Environment Block that shims and
// guest code actually touch: the embedded NtTib, process/thread IDs, the
// PEB pointer, LastError, the TLS slot array pointer, and the activation
// context stack pointer. Real TEBs run to ~1KiB of mostly-reserved
// padding; fields this interpreter never populates are omitted rather
// than carried as dead reserved arrays.
type TEB32 struct {
	NtTib                         NtTib32
	EnvironmentPointer            uint32
	ProcessID                     uint32
	ThreadID                      uint32
	ActiveRpcHandle               uint32
	ThreadLocalStoragePointer     uint32
	ProcessEnvironmentBlock       uint32
	LastErrorValue                uint32
	CountOfOwnedCriticalSections  uint32
	CsrClientThread               uint32
	Win32ThreadInfo               uint32
	WOW32Reserved                 uint32
	CurrentLocale                 uint32
	FpSoftwareStatusRegister      uint32
	ExceptionCode                 uint32
	ActivationContextStackPointer uint32
}

const SizeTEB32 = 1000

const (
	offTeb32EnvironmentPointer        = 28
	offTeb32ProcessID                 = 32
	offTeb32ThreadID                  = 36
	offTeb32ActiveRpcHandle           = 40
	offTeb32ThreadLocalStoragePointer = 44
	offTeb32Peb                       = 48
	offTeb32LastError                 = 52
	offTeb32CountOwnedCritSections    = 56
	offTeb32CsrClientThread           = 60
	offTeb32Win32ThreadInfo           = 64
	offTeb32Wow32Reserved             = 70
	offTeb32CurrentLocale             = 74
	offTeb32FpSoftwareStatus          = 78
	offTeb32ExceptionCode             = 82
	offTeb32ActCtxStackPointer        = 86
)

func NewTEB32(pebAddr uint32, pid, tid uint32) TEB32 {
	return TEB32{ProcessEnvironmentBlock: pebAddr, ProcessID: pid, ThreadID: tid}
}

func LoadTEB32(addr uint64, sp *maps.Space) (TEB32, error) {
	var t TEB32
	var err error
	if t.NtTib, err = LoadNtTib32(addr, sp); err != nil {
		return t, err
	}
	if t.EnvironmentPointer, err = sp.ReadDword(addr + offTeb32EnvironmentPointer); err != nil {
		return t, err
	}
	if t.ProcessID, err = sp.ReadDword(addr + offTeb32ProcessID); err != nil {
		return t, err
	}
	if t.ThreadID, err = sp.ReadDword(addr + offTeb32ThreadID); err != nil {
		return t, err
	}
	if t.ActiveRpcHandle, err = sp.ReadDword(addr + offTeb32ActiveRpcHandle); err != nil {
		return t, err
	}
	if t.ThreadLocalStoragePointer, err = sp.ReadDword(addr + offTeb32ThreadLocalStoragePointer); err != nil {
		return t, err
	}
	if t.ProcessEnvironmentBlock, err = sp.ReadDword(addr + offTeb32Peb); err != nil {
		return t, err
	}
	if t.LastErrorValue, err = sp.ReadDword(addr + offTeb32LastError); err != nil {
		return t, err
	}
	if t.CountOfOwnedCriticalSections, err = sp.ReadDword(addr + offTeb32CountOwnedCritSections); err != nil {
		return t, err
	}
	if t.CsrClientThread, err = sp.ReadDword(addr + offTeb32CsrClientThread); err != nil {
		return t, err
	}
	if t.Win32ThreadInfo, err = sp.ReadDword(addr + offTeb32Win32ThreadInfo); err != nil {
		return t, err
	}
	if t.WOW32Reserved, err = sp.ReadDword(addr + offTeb32Wow32Reserved); err != nil {
		return t, err
	}
	if t.CurrentLocale, err = sp.ReadDword(addr + offTeb32CurrentLocale); err != nil {
		return t, err
	}
	if t.FpSoftwareStatusRegister, err = sp.ReadDword(addr + offTeb32FpSoftwareStatus); err != nil {
		return t, err
	}
	if t.ExceptionCode, err = sp.ReadDword(addr + offTeb32ExceptionCode); err != nil {
		return t, err
	}
	t.ActivationContextStackPointer, err = sp.ReadDword(addr + offTeb32ActCtxStackPointer)
	return t, err
}

func (t TEB32) Save(addr uint64, sp *maps.Space) error {
	if err := t.NtTib.Save(addr, sp); err != nil {
		return err
	}
	writes := []struct {
		off uint64
		v   uint32
	}{
		{offTeb32EnvironmentPointer, t.EnvironmentPointer},
		{offTeb32ProcessID, t.ProcessID},
		{offTeb32ThreadID, t.ThreadID},
		{offTeb32ActiveRpcHandle, t.ActiveRpcHandle},
		{offTeb32ThreadLocalStoragePointer, t.ThreadLocalStoragePointer},
		{offTeb32Peb, t.ProcessEnvironmentBlock},
		{offTeb32LastError, t.LastErrorValue},
		{offTeb32CountOwnedCritSections, t.CountOfOwnedCriticalSections},
		{offTeb32CsrClientThread, t.CsrClientThread},
		{offTeb32Win32ThreadInfo, t.Win32ThreadInfo},
		{offTeb32Wow32Reserved, t.WOW32Reserved},
		{offTeb32CurrentLocale, t.CurrentLocale},
		{offTeb32FpSoftwareStatus, t.FpSoftwareStatusRegister},
		{offTeb32ExceptionCode, t.ExceptionCode},
		{offTeb32ActCtxStackPointer, t.ActivationContextStackPointer},
	}
	for _, w := range writes {
		if err := sp.WriteDword(addr+w.off, w.v); err != nil {
			return err
		}
	}
	return nil
}

// TEB64 is the 64-bit counterpart.
type TEB64 struct {
	NtTib                         NtTib64
	EnvironmentPointer             uint64
	ProcessID                      uint64
	ThreadID                       uint64
	ActiveRpcHandle                uint64
	ThreadLocalStoragePointer      uint64
	ProcessEnvironmentBlock        uint64
	LastErrorValue                 uint32
	CountOfOwnedCriticalSections   uint32
	CsrClientThread                uint64
	Win32ThreadInfo                uint64
	WOW64Reserved                  uint64
	CurrentLocale                  uint32
	FpSoftwareStatusRegister       uint32
	ExceptionCode                  uint64
	ActivationContextStackPointer  uint64
}

const SizeTEB64 = 1712

const (
	offTeb64EnvironmentPointer     = 56
	offTeb64ProcessID              = 64
	offTeb64ThreadID               = 72
	offTeb64ActiveRpcHandle        = 80
	offTeb64ThreadLocalStorage     = 88
	offTeb64Peb                    = 96
	offTeb64LastError              = 104
	offTeb64CountOwnedCrit         = 108
	offTeb64CsrClientThread        = 112
	offTeb64Win32ThreadInfo        = 120
	offTeb64Wow64Reserved          = 192
	offTeb64CurrentLocale          = 200
	offTeb64FpSoftwareStatus       = 204
	offTeb64ExceptionCode          = 356
	offTeb64ActCtxStackPointer     = 360
)

func NewTEB64(pebAddr uint64, pid, tid uint64) TEB64 {
	return TEB64{ProcessEnvironmentBlock: pebAddr, ProcessID: pid, ThreadID: tid}
}

func LoadTEB64(addr uint64, sp *maps.Space) (TEB64, error) {
	var t TEB64
	var err error
	if t.NtTib, err = LoadNtTib64(addr, sp); err != nil {
		return t, err
	}
	if t.EnvironmentPointer, err = sp.ReadQword(addr + offTeb64EnvironmentPointer); err != nil {
		return t, err
	}
	if t.ProcessID, err = sp.ReadQword(addr + offTeb64ProcessID); err != nil {
		return t, err
	}
	if t.ThreadID, err = sp.ReadQword(addr + offTeb64ThreadID); err != nil {
		return t, err
	}
	if t.ActiveRpcHandle, err = sp.ReadQword(addr + offTeb64ActiveRpcHandle); err != nil {
		return t, err
	}
	if t.ThreadLocalStoragePointer, err = sp.ReadQword(addr + offTeb64ThreadLocalStorage); err != nil {
		return t, err
	}
	if t.ProcessEnvironmentBlock, err = sp.ReadQword(addr + offTeb64Peb); err != nil {
		return t, err
	}
	if t.LastErrorValue, err = sp.ReadDword(addr + offTeb64LastError); err != nil {
		return t, err
	}
	if t.CountOfOwnedCriticalSections, err = sp.ReadDword(addr + offTeb64CountOwnedCrit); err != nil {
		return t, err
	}
	if t.CsrClientThread, err = sp.ReadQword(addr + offTeb64CsrClientThread); err != nil {
		return t, err
	}
	if t.Win32ThreadInfo, err = sp.ReadQword(addr + offTeb64Win32ThreadInfo); err != nil {
		return t, err
	}
	if t.WOW64Reserved, err = sp.ReadQword(addr + offTeb64Wow64Reserved); err != nil {
		return t, err
	}
	if t.CurrentLocale, err = sp.ReadDword(addr + offTeb64CurrentLocale); err != nil {
		return t, err
	}
	if t.FpSoftwareStatusRegister, err = sp.ReadDword(addr + offTeb64FpSoftwareStatus); err != nil {
		return t, err
	}
	if t.ExceptionCode, err = sp.ReadQword(addr + offTeb64ExceptionCode); err != nil {
		return t, err
	}
	t.ActivationContextStackPointer, err = sp.ReadQword(addr + offTeb64ActCtxStackPointer)
	return t, err
}

func (t TEB64) Save(addr uint64, sp *maps.Space) error {
	if err := t.NtTib.Save(addr, sp); err != nil {
		return err
	}
	qwords := []struct {
		off uint64
		v   uint64
	}{
		{offTeb64EnvironmentPointer, t.EnvironmentPointer},
		{offTeb64ProcessID, t.ProcessID},
		{offTeb64ThreadID, t.ThreadID},
		{offTeb64ActiveRpcHandle, t.ActiveRpcHandle},
		{offTeb64ThreadLocalStorage, t.ThreadLocalStoragePointer},
		{offTeb64Peb, t.ProcessEnvironmentBlock},
		{offTeb64CsrClientThread, t.CsrClientThread},
		{offTeb64Win32ThreadInfo, t.Win32ThreadInfo},
		{offTeb64Wow64Reserved, t.WOW64Reserved},
		{offTeb64ExceptionCode, t.ExceptionCode},
		{offTeb64ActCtxStackPointer, t.ActivationContextStackPointer},
	}
	for _, w := range qwords {
		if err := sp.WriteQword(addr+w.off, w.v); err != nil {
			return err
		}
	}
	if err := sp.WriteDword(addr+offTeb64LastError, t.LastErrorValue); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+offTeb64CountOwnedCrit, t.CountOfOwnedCriticalSections); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+offTeb64FpSoftwareStatus, t.FpSoftwareStatusRegister); err != nil {
		return err
	}
	return sp.WriteDword(addr+offTeb64CurrentLocale, t.CurrentLocale)
}
