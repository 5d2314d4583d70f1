package structures

import "github.com/relsec/x86emu/emu/maps"

// TlsDirectory32 mirrors IMAGE_TLS_DIRECTORY32: the thread-local storage
// template range, the index slot the loader assigns, and the callback
// array address. DS:[FS:[0x2c]] + TlsIndex*4 locates this thread's TLS
// array entry.
type TlsDirectory32 struct {
	TlsDataStart  uint32
	TlsDataEnd    uint32
	TlsIndex      uint32
	TlsCallbacks  uint32
	ZeroFillSize  uint32
	Characteristic uint32
}

const SizeTlsDirectory32 = 24

func LoadTlsDirectory32(addr uint64, sp *maps.Space) (TlsDirectory32, error) {
	var t TlsDirectory32
	var err error
	if t.TlsDataStart, err = sp.ReadDword(addr); err != nil {
		return t, err
	}
	if t.TlsDataEnd, err = sp.ReadDword(addr + 4); err != nil {
		return t, err
	}
	if t.TlsIndex, err = sp.ReadDword(addr + 8); err != nil {
		return t, err
	}
	if t.TlsCallbacks, err = sp.ReadDword(addr + 12); err != nil {
		return t, err
	}
	if t.ZeroFillSize, err = sp.ReadDword(addr + 16); err != nil {
		return t, err
	}
	t.Characteristic, err = sp.ReadDword(addr + 20)
	return t, err
}

// TlsDirectory64 is the 64-bit IMAGE_TLS_DIRECTORY64. Characteristic sits
// at +34, two bytes into ZeroFillSize's dword rather than after it — an
// odd non-dword-aligned layout, kept as the loader actually lays it out.
type TlsDirectory64 struct {
	TlsDataStart   uint64
	TlsDataEnd     uint64
	TlsIndex       uint64
	TlsCallbacks   uint64
	ZeroFillSize   uint32
	Characteristic uint32
}

const SizeTlsDirectory64 = 40

func LoadTlsDirectory64(addr uint64, sp *maps.Space) (TlsDirectory64, error) {
	var t TlsDirectory64
	var err error
	if t.TlsDataStart, err = sp.ReadQword(addr); err != nil {
		return t, err
	}
	if t.TlsDataEnd, err = sp.ReadQword(addr + 8); err != nil {
		return t, err
	}
	if t.TlsIndex, err = sp.ReadQword(addr + 16); err != nil {
		return t, err
	}
	if t.TlsCallbacks, err = sp.ReadQword(addr + 24); err != nil {
		return t, err
	}
	if t.ZeroFillSize, err = sp.ReadDword(addr + 32); err != nil {
		return t, err
	}
	t.Characteristic, err = sp.ReadDword(addr + 34)
	return t, err
}

// ImageTlsCallback is the signature every TLS callback entry point sees:
// PVOID DllHandle, DWORD Reason, PVOID Reserved.
type ImageTlsCallback struct {
	DllHandle uint32
	Reason    uint32
	Reserved  uint32
}

const SizeImageTlsCallback = 12
