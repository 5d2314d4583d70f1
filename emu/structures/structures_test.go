package structures

import (
	"testing"

	"github.com/relsec/x86emu/emu/maps"
)

func newSpace(t *testing.T, is64 bool, base, size uint64) *maps.Space {
	t.Helper()
	sp := maps.New(is64)
	if _, err := sp.CreateMap("test", base, size); err != nil {
		t.Fatalf("CreateMap: %v", err)
	}
	return sp
}

func TestUnicodeString32RoundTrip(t *testing.T) {
	sp := newSpace(t, false, 0x400000, 0x1000)
	u := UnicodeString32{Length: 10, MaximumLength: 12, Buffer: 0x401000}
	if err := u.Save(0x400100, sp); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadUnicodeString32(0x400100, sp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != u {
		t.Fatalf("got %+v want %+v", got, u)
	}
}

func TestUnicodeStringDecode(t *testing.T) {
	sp := newSpace(t, true, 0x400000, 0x2000)
	name := "kernel32.dll"
	buf := make([]byte, 0, len(name)*2)
	for _, r := range name {
		buf = append(buf, byte(r), 0)
	}
	const strAddr = 0x401000
	if err := sp.WriteBytes(strAddr, buf); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	u := UnicodeString64{Length: uint16(len(buf)), MaximumLength: uint16(len(buf) + 2), Buffer: strAddr}
	if err := u.Save(0x400100, sp); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadUnicodeString64(0x400100, sp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s, err := got.Decode(sp)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s != name {
		t.Fatalf("got %q want %q", s, name)
	}
}

func TestListEntryRoundTrip(t *testing.T) {
	sp := newSpace(t, true, 0x10000, 0x1000)
	e := ListEntry64{Flink: 0x10100, Blink: 0x10200}
	if err := e.Save(0x10050, sp); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadListEntry64(0x10050, sp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != e {
		t.Fatalf("got %+v want %+v", got, e)
	}
}

// TestPebTebLdrChain walks a minimal PEB -> LDR -> module entry chain the
// way guest code resolving kernel32's base address would, confirming the
// 64-bit offsets line up end to end.
func TestPebTebLdrChain(t *testing.T) {
	sp := newSpace(t, true, 0x7ff000000000, 0x10000)
	const (
		pebAddr = 0x7ff000000000
		ldrAddr = 0x7ff000001000
		modAddr = 0x7ff000002000
		teb     = 0x7ff000003000
		imgBase = 0x7ff000010000
	)

	peb := NewPEB64(imgBase, ldrAddr, 0)
	if err := peb.Save(pebAddr, sp); err != nil {
		t.Fatalf("peb.Save: %v", err)
	}

	ldr := NewPebLdrData64()
	ldr.InLoadOrderModuleList = ListEntry64{Flink: modAddr, Blink: modAddr}
	if err := ldr.Save(ldrAddr, sp); err != nil {
		t.Fatalf("ldr.Save: %v", err)
	}

	entry := LdrDataTableEntry64{
		InLoadOrderLinks: ListEntry64{Flink: ldrAddr, Blink: ldrAddr},
		DllBase:          imgBase,
		SizeOfImage:      0x20000,
	}
	if err := entry.Save(modAddr, sp); err != nil {
		t.Fatalf("entry.Save: %v", err)
	}

	t32 := NewTEB64(pebAddr, 1, 2)
	if err := t32.Save(teb, sp); err != nil {
		t.Fatalf("teb.Save: %v", err)
	}

	gotTeb, err := LoadTEB64(teb, sp)
	if err != nil {
		t.Fatalf("LoadTEB64: %v", err)
	}
	if gotTeb.ProcessEnvironmentBlock != pebAddr {
		t.Fatalf("teb.Peb = %#x want %#x", gotTeb.ProcessEnvironmentBlock, pebAddr)
	}

	gotPeb, err := LoadPEB64(gotTeb.ProcessEnvironmentBlock, sp)
	if err != nil {
		t.Fatalf("LoadPEB64: %v", err)
	}
	if gotPeb.ImageBaseAddress != imgBase {
		t.Fatalf("peb.ImageBaseAddress = %#x want %#x", gotPeb.ImageBaseAddress, imgBase)
	}

	gotLdr, err := LoadPebLdrData64(gotPeb.Ldr, sp)
	if err != nil {
		t.Fatalf("LoadPebLdrData64: %v", err)
	}

	gotEntry, err := LoadLdrDataTableEntry64(gotLdr.InLoadOrderModuleList.Flink, sp)
	if err != nil {
		t.Fatalf("LoadLdrDataTableEntry64: %v", err)
	}
	if gotEntry.DllBase != imgBase {
		t.Fatalf("entry.DllBase = %#x want %#x", gotEntry.DllBase, imgBase)
	}
	if gotEntry.SizeOfImage != 0x20000 {
		t.Fatalf("entry.SizeOfImage = %#x want %#x", gotEntry.SizeOfImage, 0x20000)
	}
}

func TestKUserSharedDataFixedAddress(t *testing.T) {
	sp := newSpace(t, true, KUserSharedDataAddress, SizeKUserSharedData)
	k := NewKUserSharedData()
	if err := k.Save(sp); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadKUserSharedData(sp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.NtBuildNumber != 0x6c51 {
		t.Fatalf("NtBuildNumber = %#x want 0x6c51", got.NtBuildNumber)
	}
	if got.TickCountMultiplier != 0x0fa00000 {
		t.Fatalf("TickCountMultiplier = %#x want 0x0fa00000", got.TickCountMultiplier)
	}
	if got.XStateEnabledFeatures != 0x1f {
		t.Fatalf("XStateEnabledFeatures = %#x want 0x1f", got.XStateEnabledFeatures)
	}
	if got.QpcBias != 0x8000000000000000 {
		t.Fatalf("QpcBias = %#x want 0x8000000000000000", got.QpcBias)
	}
	if got.NtProductType != NtProductWinNt {
		t.Fatalf("NtProductType = %d want %d", got.NtProductType, NtProductWinNt)
	}
}

func TestStatFakeRoundTrip(t *testing.T) {
	sp := newSpace(t, true, 0x500000, 0x1000)
	s := FakeStat()
	if err := s.Save(0x500100, sp); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mode, err := sp.ReadDword(0x500100 + 24)
	if err != nil {
		t.Fatalf("ReadDword: %v", err)
	}
	if mode != s.Mode {
		t.Fatalf("mode = %#x want %#x", mode, s.Mode)
	}
	size, err := sp.ReadQword(0x500100 + 48)
	if err != nil {
		t.Fatalf("ReadQword: %v", err)
	}
	if int64(size) != s.Size {
		t.Fatalf("size = %d want %d", int64(size), s.Size)
	}
}

func TestElfHeader64Valid(t *testing.T) {
	sp := newSpace(t, true, 0x400000, 0x1000)
	ident := []byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	if err := sp.WriteBytes(0x400000, ident); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if err := sp.WriteWord(0x400010, 2); err != nil { // ET_EXEC
		t.Fatalf("WriteWord: %v", err)
	}
	if err := sp.WriteQword(0x400018, 0x401000); err != nil { // e_entry
		t.Fatalf("WriteQword: %v", err)
	}
	h, err := LoadElfHeader64(0x400000, sp)
	if err != nil {
		t.Fatalf("LoadElfHeader64: %v", err)
	}
	if !h.IsValid() {
		t.Fatalf("expected valid ELF64 header")
	}
	if h.Entry != 0x401000 {
		t.Fatalf("Entry = %#x want %#x", h.Entry, 0x401000)
	}
}
