package structures

import (
	"github.com/relsec/x86emu/emu/cpustate"
	"github.com/relsec/x86emu/emu/maps"
)

// ContextFull / ContextControl / ContextInteger / ContextSegments mirror
// the CONTEXT_* flag bits SEH handlers check in ContextFlags before
// trusting a given field group.
const (
	ContextControl  = 0x00010001
	ContextInteger  = 0x00010002
	ContextSegments = 0x00010004
	ContextFull     = ContextControl | ContextInteger | ContextSegments
)

// ContextRecord32 mirrors the 32-bit WOW64_CONTEXT/CONTEXT: the register
// file snapshot an SEH handler or GetThreadContext caller receives.
type ContextRecord32 struct {
	ContextFlags uint32
	Dr0, Dr1, Dr2, Dr3, Dr6, Dr7 uint32
	SegGs, SegFs, SegEs, SegDs uint32
	Edi, Esi, Ebx, Edx, Ecx, Eax uint32
	Ebp, Eip uint32
	SegCs    uint32
	EFlags   uint32
	Esp      uint32
	SegSs    uint32
}

const SizeContextRecord32 = 0x2cc

// ContextRecord32FromState builds a CONTEXT from live 32-bit register
// state for handing to a registered SEH handler.
func ContextRecord32FromState(st *cpustate.State) ContextRecord32 {
	r := st.Regs
	return ContextRecord32{
		ContextFlags: ContextFull,
		SegGs:        uint32(r.SegSelector(cpustate.SegGS)),
		SegFs:        uint32(r.SegSelector(cpustate.SegFS)),
		SegEs:        uint32(r.SegSelector(cpustate.SegES)),
		SegDs:        uint32(r.SegSelector(cpustate.SegDS)),
		Edi:          r.Get32(cpustate.RDI),
		Esi:          r.Get32(cpustate.RSI),
		Ebx:          r.Get32(cpustate.RBX),
		Edx:          r.Get32(cpustate.RDX),
		Ecx:          r.Get32(cpustate.RCX),
		Eax:          r.Get32(cpustate.RAX),
		Ebp:          r.Get32(cpustate.RBP),
		Eip:          r.Get32(cpustate.RIP),
		SegCs:        uint32(r.SegSelector(cpustate.SegCS)),
		EFlags:       r.EFlags().Pack(),
		Esp:          r.Get32(cpustate.RSP),
		SegSs:        uint32(r.SegSelector(cpustate.SegSS)),
	}
}

// ApplyTo writes the record's register fields back into live state, as a
// SEH handler does via SetThreadContext before resuming execution.
func (c ContextRecord32) ApplyTo(st *cpustate.State) {
	r := st.Regs
	r.Set32(cpustate.RDI, c.Edi)
	r.Set32(cpustate.RSI, c.Esi)
	r.Set32(cpustate.RBX, c.Ebx)
	r.Set32(cpustate.RDX, c.Edx)
	r.Set32(cpustate.RCX, c.Ecx)
	r.Set32(cpustate.RAX, c.Eax)
	r.Set32(cpustate.RBP, c.Ebp)
	r.Set32(cpustate.RIP, c.Eip)
	r.Set32(cpustate.RSP, c.Esp)
	r.EFlags().Unpack(c.EFlags)
}

func (c ContextRecord32) Save(addr uint64, sp *maps.Space) error {
	fields := []uint32{
		c.ContextFlags, c.Dr0, c.Dr1, c.Dr2, c.Dr3, c.Dr6, c.Dr7,
		c.SegGs, c.SegFs, c.SegEs, c.SegDs,
		c.Edi, c.Esi, c.Ebx, c.Edx, c.Ecx, c.Eax,
		c.Ebp, c.Eip, c.SegCs, c.EFlags, c.Esp, c.SegSs,
	}
	for i, v := range fields {
		off := uint64(i * 4)
		if i >= 7 { // skip the 112-byte FloatSave area after Dr7
			off += 112
		}
		if err := sp.WriteDword(addr+off, v); err != nil {
			return err
		}
	}
	return nil
}

// ContextRecord64 mirrors the x86-64 CONTEXT structure's general-purpose
// and control register group, trimmed of the floating-point/XSAVE area a
// guest rarely needs marshaled through a typed view.
type ContextRecord64 struct {
	ContextFlags uint32
	Dr0, Dr1, Dr2, Dr3, Dr6, Dr7 uint64
	Rax, Rcx, Rdx, Rbx uint64
	Rsp, Rbp, Rsi, Rdi uint64
	R8, R9, R10, R11, R12, R13, R14, R15 uint64
	Rip    uint64
	EFlags uint32
	SegCs, SegDs, SegEs, SegFs, SegGs, SegSs uint16
}

const SizeContextRecord64 = 0x4d0

const (
	offCtx64Flags  = 0x30
	offCtx64Dr0    = 0x48
	offCtx64Rax    = 0x78
	offCtx64Rcx    = 0x80
	offCtx64Rdx    = 0x88
	offCtx64Rbx    = 0x90
	offCtx64Rsp    = 0x98
	offCtx64Rbp    = 0xa0
	offCtx64Rsi    = 0xa8
	offCtx64Rdi    = 0xb0
	offCtx64R8     = 0xb8
	offCtx64R9     = 0xc0
	offCtx64R10    = 0xc8
	offCtx64R11    = 0xd0
	offCtx64R12    = 0xd8
	offCtx64R13    = 0xe0
	offCtx64R14    = 0xe8
	offCtx64R15    = 0xf0
	offCtx64Rip    = 0xf8
	offCtx64SegCs  = 0x38
	offCtx64SegDs  = 0x3a
	offCtx64SegEs  = 0x3c
	offCtx64SegFs  = 0x3e
	offCtx64SegGs  = 0x40
	offCtx64SegSs  = 0x42
	offCtx64EFlags = 0x44
)

func ContextRecord64FromState(st *cpustate.State) ContextRecord64 {
	r := st.Regs
	return ContextRecord64{
		ContextFlags: ContextFull,
		Rax: r.Get64(cpustate.RAX), Rcx: r.Get64(cpustate.RCX),
		Rdx: r.Get64(cpustate.RDX), Rbx: r.Get64(cpustate.RBX),
		Rsp: r.Get64(cpustate.RSP), Rbp: r.Get64(cpustate.RBP),
		Rsi: r.Get64(cpustate.RSI), Rdi: r.Get64(cpustate.RDI),
		R8: r.Get64(cpustate.R8), R9: r.Get64(cpustate.R9),
		R10: r.Get64(cpustate.R10), R11: r.Get64(cpustate.R11),
		R12: r.Get64(cpustate.R12), R13: r.Get64(cpustate.R13),
		R14: r.Get64(cpustate.R14), R15: r.Get64(cpustate.R15),
		Rip:    r.Get64(cpustate.RIP),
		EFlags: r.EFlags().Pack(),
		SegCs:  r.SegSelector(cpustate.SegCS), SegDs: r.SegSelector(cpustate.SegDS),
		SegEs: r.SegSelector(cpustate.SegES), SegFs: r.SegSelector(cpustate.SegFS),
		SegGs: r.SegSelector(cpustate.SegGS), SegSs: r.SegSelector(cpustate.SegSS),
	}
}

func (c ContextRecord64) ApplyTo(st *cpustate.State) {
	r := st.Regs
	r.Set64(cpustate.RAX, c.Rax)
	r.Set64(cpustate.RCX, c.Rcx)
	r.Set64(cpustate.RDX, c.Rdx)
	r.Set64(cpustate.RBX, c.Rbx)
	r.Set64(cpustate.RSP, c.Rsp)
	r.Set64(cpustate.RBP, c.Rbp)
	r.Set64(cpustate.RSI, c.Rsi)
	r.Set64(cpustate.RDI, c.Rdi)
	r.Set64(cpustate.R8, c.R8)
	r.Set64(cpustate.R9, c.R9)
	r.Set64(cpustate.R10, c.R10)
	r.Set64(cpustate.R11, c.R11)
	r.Set64(cpustate.R12, c.R12)
	r.Set64(cpustate.R13, c.R13)
	r.Set64(cpustate.R14, c.R14)
	r.Set64(cpustate.R15, c.R15)
	r.Set64(cpustate.RIP, c.Rip)
	r.EFlags().Unpack(c.EFlags)
}

func (c ContextRecord64) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteDword(addr+offCtx64Flags, c.ContextFlags); err != nil {
		return err
	}
	qwords := []struct {
		off uint64
		v   uint64
	}{
		{offCtx64Dr0, c.Dr0}, {offCtx64Dr0 + 8, c.Dr1}, {offCtx64Dr0 + 16, c.Dr2},
		{offCtx64Dr0 + 24, c.Dr3}, {offCtx64Dr0 + 32, c.Dr6}, {offCtx64Dr0 + 40, c.Dr7},
		{offCtx64Rax, c.Rax}, {offCtx64Rcx, c.Rcx}, {offCtx64Rdx, c.Rdx}, {offCtx64Rbx, c.Rbx},
		{offCtx64Rsp, c.Rsp}, {offCtx64Rbp, c.Rbp}, {offCtx64Rsi, c.Rsi}, {offCtx64Rdi, c.Rdi},
		{offCtx64R8, c.R8}, {offCtx64R9, c.R9}, {offCtx64R10, c.R10}, {offCtx64R11, c.R11},
		{offCtx64R12, c.R12}, {offCtx64R13, c.R13}, {offCtx64R14, c.R14}, {offCtx64R15, c.R15},
		{offCtx64Rip, c.Rip},
	}
	for _, q := range qwords {
		if err := sp.WriteQword(addr+q.off, q.v); err != nil {
			return err
		}
	}
	if err := sp.WriteWord(addr+offCtx64SegCs, c.SegCs); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+offCtx64SegDs, c.SegDs); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+offCtx64SegEs, c.SegEs); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+offCtx64SegFs, c.SegFs); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+offCtx64SegGs, c.SegGs); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+offCtx64SegSs, c.SegSs); err != nil {
		return err
	}
	return sp.WriteDword(addr+offCtx64EFlags, c.EFlags)
}
