package cpustate

import (
	"encoding/binary"
	"errors"

	"github.com/relsec/x86emu/emu/maps"
)

// ErrStackWidthMismatch is returned by Push32/Pop32 on a 64-bit-configured
// StackOps and by Push64/Pop64 on a 32-bit-configured one: the two pairs
// are not interchangeable, matching the guest ISA's own CS.D-bit-driven
// push/pop width rather than auto-sizing to whatever the caller passes.
var ErrStackWidthMismatch = errors.New("cpustate: push/pop width does not match configured stack bitness")

// StackOps pushes and pops values through a Registers' RSP against a
// backing address space. Is64Bit fixes which of Push32/Pop32 or
// Push64/Pop64 is valid for this emulator instance.
type StackOps struct {
	Regs    *Registers
	Space   *maps.Space
	Is64Bit bool
}

// Push32 decrements RSP by 4 and stores the low 32 bits of v. Valid only
// when the stack is configured 32-bit.
func (s *StackOps) Push32(v uint32) error {
	if s.Is64Bit {
		return ErrStackWidthMismatch
	}
	sp := s.Regs.Get64(RSP) - 4
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	if err := s.Space.WriteBytes(sp, b); err != nil {
		return err
	}
	s.Regs.Set64(RSP, sp)
	return nil
}

// Pop32 reads the top of stack as a 32-bit value and advances RSP by 4.
// Valid only when the stack is configured 32-bit.
func (s *StackOps) Pop32() (uint32, error) {
	if s.Is64Bit {
		return 0, ErrStackWidthMismatch
	}
	sp := s.Regs.Get64(RSP)
	b, err := s.Space.ReadBytes(sp, 4)
	if err != nil {
		return 0, err
	}
	s.Regs.Set64(RSP, sp+4)
	return binary.LittleEndian.Uint32(b), nil
}

// Push64 decrements RSP by 8 and stores v. Valid only when the stack is
// configured 64-bit.
func (s *StackOps) Push64(v uint64) error {
	if !s.Is64Bit {
		return ErrStackWidthMismatch
	}
	sp := s.Regs.Get64(RSP) - 8
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	if err := s.Space.WriteBytes(sp, b); err != nil {
		return err
	}
	s.Regs.Set64(RSP, sp)
	return nil
}

// Pop64 reads the top of stack as a 64-bit value and advances RSP by 8.
// Valid only when the stack is configured 64-bit.
func (s *StackOps) Pop64() (uint64, error) {
	if !s.Is64Bit {
		return 0, ErrStackWidthMismatch
	}
	sp := s.Regs.Get64(RSP)
	b, err := s.Space.ReadBytes(sp, 8)
	if err != nil {
		return 0, err
	}
	s.Regs.Set64(RSP, sp+8)
	return binary.LittleEndian.Uint64(b), nil
}
