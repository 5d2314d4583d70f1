package cpustate

import "encoding/binary"

// Simd holds the 16 architectural vector registers, each viewed either as
// a 128-bit XMM lane or a 256-bit YMM lane (the upper 128 bits are kept
// alongside the low half so AVX code and legacy SSE code share storage).
type Simd struct {
	low  [16][16]byte // XMM0-15
	high [16][16]byte // upper half of YMM0-15
}

func NewSimd() *Simd { return &Simd{} }

func (s *Simd) GetXMM(i int) [16]byte { return s.low[i] }
func (s *Simd) SetXMM(i int, v [16]byte) {
	s.low[i] = v
	s.high[i] = [16]byte{} // writing XMM zeroes the upper YMM half, per the VEX-encoded rule
}

func (s *Simd) GetYMM(i int) [32]byte {
	var out [32]byte
	copy(out[:16], s.low[i][:])
	copy(out[16:], s.high[i][:])
	return out
}

func (s *Simd) SetYMM(i int, v [32]byte) {
	copy(s.low[i][:], v[:16])
	copy(s.high[i][:], v[16:])
}

func (s *Simd) GetXMM64(i int, lane int) uint64 {
	return binary.LittleEndian.Uint64(s.low[i][lane*8:])
}

func (s *Simd) SetXMM64(i int, lane int, v uint64) {
	binary.LittleEndian.PutUint64(s.low[i][lane*8:], v)
}

func (s *Simd) GetXMM32(i int, lane int) uint32 {
	return binary.LittleEndian.Uint32(s.low[i][lane*4:])
}

func (s *Simd) SetXMM32(i int, lane int, v uint32) {
	binary.LittleEndian.PutUint32(s.low[i][lane*4:], v)
}
