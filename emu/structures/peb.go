package structures

import "github.com/relsec/x86emu/emu/maps"

// PEB32 covers the Process Environment Block fields guest code and shims
// actually read: the BeingDebugged byte anti-debug checks probe,
// ImageBaseAddress, the Ldr pointer PEB_LDR_DATA lives at, and
// ProcessParameters (RTL_USER_PROCESS_PARAMETERS, holding the command
// line and environment block).
type PEB32 struct {
	BeingDebugged      uint8
	ImageBaseAddress   uint32
	Ldr                uint32
	ProcessParameters  uint32
	PostProcessInit    uint32
	SessionID          uint32
}

const SizePEB32 = 0x238

const (
	offPeb32BeingDebugged = 2
	offPeb32ImageBase     = 8
	offPeb32Ldr           = 12
	offPeb32ProcessParams = 16
	offPeb32PostProcInit  = 56
	offPeb32SessionID     = 64
)

func NewPEB32(imageBase, ldr, processParameters uint32) PEB32 {
	return PEB32{ImageBaseAddress: imageBase, Ldr: ldr, ProcessParameters: processParameters}
}

func LoadPEB32(addr uint64, sp *maps.Space) (PEB32, error) {
	var p PEB32
	var err error
	if p.BeingDebugged, err = sp.ReadByte(addr + offPeb32BeingDebugged); err != nil {
		return p, err
	}
	if p.ImageBaseAddress, err = sp.ReadDword(addr + offPeb32ImageBase); err != nil {
		return p, err
	}
	if p.Ldr, err = sp.ReadDword(addr + offPeb32Ldr); err != nil {
		return p, err
	}
	if p.ProcessParameters, err = sp.ReadDword(addr + offPeb32ProcessParams); err != nil {
		return p, err
	}
	if p.PostProcessInit, err = sp.ReadDword(addr + offPeb32PostProcInit); err != nil {
		return p, err
	}
	p.SessionID, err = sp.ReadDword(addr + offPeb32SessionID)
	return p, err
}

func (p PEB32) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteByte(addr+offPeb32BeingDebugged, p.BeingDebugged); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+offPeb32ImageBase, p.ImageBaseAddress); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+offPeb32Ldr, p.Ldr); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+offPeb32ProcessParams, p.ProcessParameters); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+offPeb32PostProcInit, p.PostProcessInit); err != nil {
		return err
	}
	return sp.WriteDword(addr+offPeb32SessionID, p.SessionID)
}

// PEB64 additionally carries the fields the 64-bit distillation calls out
// explicitly: NumberOfProcessors, the process heap pointers, the OS
// version triple, the activation-context data pointers, and
// MinimumStackCommit.
type PEB64 struct {
	BeingDebugged          uint8
	ImageBaseAddress       uint64
	Ldr                    uint64
	ProcessParameters      uint64
	ProcessHeap            uint64
	NumberOfProcessors     uint32
	OSMajorVersion         uint32
	OSMinorVersion         uint32
	OSBuildNumber          uint16
	PostProcessInitRoutine uint64
	SessionID              uint64
	ActivationContextData          uint64
	SystemDefaultActivationContext uint64
	MinimumStackCommit             uint64
}

const SizePEB64 = 0x7c8

const (
	offPeb64BeingDebugged      = 2
	offPeb64ImageBase          = 16
	offPeb64Ldr                = 24
	offPeb64ProcessParams      = 32
	offPeb64ProcessHeap        = 48
	offPeb64NumberOfProcessors = 184
	offPeb64OSMajorVersion     = 188
	offPeb64OSMinorVersion     = 192
	offPeb64OSBuildNumber      = 196
	offPeb64PostProcessInit    = 464
	offPeb64SessionID          = 488
	offPeb64ActCtxData         = 536
	offPeb64SystemDefaultActCtx = 552
	offPeb64MinimumStackCommit = 584
)

func NewPEB64(imageBase, ldr, processParameters uint64) PEB64 {
	return PEB64{ImageBaseAddress: imageBase, Ldr: ldr, ProcessParameters: processParameters}
}

func LoadPEB64(addr uint64, sp *maps.Space) (PEB64, error) {
	var p PEB64
	var err error
	if p.BeingDebugged, err = sp.ReadByte(addr + offPeb64BeingDebugged); err != nil {
		return p, err
	}
	if p.ImageBaseAddress, err = sp.ReadQword(addr + offPeb64ImageBase); err != nil {
		return p, err
	}
	if p.Ldr, err = sp.ReadQword(addr + offPeb64Ldr); err != nil {
		return p, err
	}
	if p.ProcessParameters, err = sp.ReadQword(addr + offPeb64ProcessParams); err != nil {
		return p, err
	}
	if p.ProcessHeap, err = sp.ReadQword(addr + offPeb64ProcessHeap); err != nil {
		return p, err
	}
	if p.NumberOfProcessors, err = sp.ReadDword(addr + offPeb64NumberOfProcessors); err != nil {
		return p, err
	}
	if p.OSMajorVersion, err = sp.ReadDword(addr + offPeb64OSMajorVersion); err != nil {
		return p, err
	}
	if p.OSMinorVersion, err = sp.ReadDword(addr + offPeb64OSMinorVersion); err != nil {
		return p, err
	}
	if p.OSBuildNumber, err = sp.ReadWord(addr + offPeb64OSBuildNumber); err != nil {
		return p, err
	}
	if p.PostProcessInitRoutine, err = sp.ReadQword(addr + offPeb64PostProcessInit); err != nil {
		return p, err
	}
	if p.SessionID, err = sp.ReadQword(addr + offPeb64SessionID); err != nil {
		return p, err
	}
	if p.ActivationContextData, err = sp.ReadQword(addr + offPeb64ActCtxData); err != nil {
		return p, err
	}
	if p.SystemDefaultActivationContext, err = sp.ReadQword(addr + offPeb64SystemDefaultActCtx); err != nil {
		return p, err
	}
	p.MinimumStackCommit, err = sp.ReadQword(addr + offPeb64MinimumStackCommit)
	return p, err
}

func (p PEB64) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteByte(addr+offPeb64BeingDebugged, p.BeingDebugged); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+offPeb64ImageBase, p.ImageBaseAddress); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+offPeb64Ldr, p.Ldr); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+offPeb64ProcessParams, p.ProcessParameters); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+offPeb64ProcessHeap, p.ProcessHeap); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+offPeb64NumberOfProcessors, p.NumberOfProcessors); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+offPeb64OSMajorVersion, p.OSMajorVersion); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+offPeb64OSMinorVersion, p.OSMinorVersion); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+offPeb64OSBuildNumber, p.OSBuildNumber); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+offPeb64PostProcessInit, p.PostProcessInitRoutine); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+offPeb64SessionID, p.SessionID); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+offPeb64ActCtxData, p.ActivationContextData); err != nil {
		return err
	}
	if err := sp.WriteQword(addr+offPeb64SystemDefaultActCtx, p.SystemDefaultActivationContext); err != nil {
		return err
	}
	return sp.WriteQword(addr+offPeb64MinimumStackCommit, p.MinimumStackCommit)
}
