package structures

import "github.com/relsec/x86emu/emu/maps"

// UnicodeString32 mirrors UNICODE_STRING as laid out inside a 32-bit
// process: a length/capacity pair in bytes (not characters) plus a flat
// pointer to a UTF-16LE buffer that need not be NUL-terminated.
type UnicodeString32 struct {
	Length        uint16
	MaximumLength uint16
	Buffer        uint32
}

const SizeUnicodeString32 = 8

func LoadUnicodeString32(addr uint64, sp *maps.Space) (UnicodeString32, error) {
	length, err := sp.ReadWord(addr)
	if err != nil {
		return UnicodeString32{}, err
	}
	maxLen, err := sp.ReadWord(addr + 2)
	if err != nil {
		return UnicodeString32{}, err
	}
	buf, err := sp.ReadDword(addr + 4)
	if err != nil {
		return UnicodeString32{}, err
	}
	return UnicodeString32{Length: length, MaximumLength: maxLen, Buffer: buf}, nil
}

func (u UnicodeString32) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteWord(addr, u.Length); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+2, u.MaximumLength); err != nil {
		return err
	}
	return sp.WriteDword(addr+4, u.Buffer)
}

// Decode reads the UTF-16LE buffer this string describes and returns it as
// a Go string.
func (u UnicodeString32) Decode(sp *maps.Space) (string, error) {
	return readUTF16(sp, uint64(u.Buffer), int(u.Length))
}

// UnicodeString64 is the 64-bit UNICODE_STRING: same length/capacity pair,
// four bytes of alignment padding, and an 8-byte buffer pointer.
type UnicodeString64 struct {
	Length        uint16
	MaximumLength uint16
	Padding       uint32
	Buffer        uint64
}

const SizeUnicodeString64 = 0x10

func LoadUnicodeString64(addr uint64, sp *maps.Space) (UnicodeString64, error) {
	length, err := sp.ReadWord(addr)
	if err != nil {
		return UnicodeString64{}, err
	}
	maxLen, err := sp.ReadWord(addr + 2)
	if err != nil {
		return UnicodeString64{}, err
	}
	pad, err := sp.ReadDword(addr + 4)
	if err != nil {
		return UnicodeString64{}, err
	}
	buf, err := sp.ReadQword(addr + 8)
	if err != nil {
		return UnicodeString64{}, err
	}
	return UnicodeString64{Length: length, MaximumLength: maxLen, Padding: pad, Buffer: buf}, nil
}

func (u UnicodeString64) Save(addr uint64, sp *maps.Space) error {
	if err := sp.WriteWord(addr, u.Length); err != nil {
		return err
	}
	if err := sp.WriteWord(addr+2, u.MaximumLength); err != nil {
		return err
	}
	if err := sp.WriteDword(addr+4, u.Padding); err != nil {
		return err
	}
	return sp.WriteQword(addr+8, u.Buffer)
}

func (u UnicodeString64) Decode(sp *maps.Space) (string, error) {
	return readUTF16(sp, u.Buffer, int(u.Length))
}

func readUTF16(sp *maps.Space, addr uint64, byteLen int) (string, error) {
	if byteLen <= 0 {
		return "", nil
	}
	raw, err := sp.ReadBytes(addr, uint64(byteLen))
	if err != nil {
		return "", err
	}
	units := make([]uint16, len(raw)/2)
	for i := range units {
		units[i] = uint16(raw[2*i]) | uint16(raw[2*i+1])<<8
	}
	return decodeUTF16(units), nil
}
