package memory

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInsideBoundaries(t *testing.T) {
	r := New("code", 0x1000, 0x100)
	if !r.Inside(0x1000) {
		t.Fatal("base must be inside")
	}
	if r.Inside(0x1100) {
		t.Fatal("bottom (exclusive) must not be inside")
	}
	if r.Inside(0x0fff) {
		t.Fatal("byte before base must not be inside")
	}
}

func TestWidthRoundTrips(t *testing.T) {
	r := New("data", 0x2000, 0x100)
	if err := r.WriteByte(0x2000, 0xab); err != nil {
		t.Fatal(err)
	}
	if v, err := r.ReadByte(0x2000); err != nil || v != 0xab {
		t.Fatalf("byte round trip: %d, %v", v, err)
	}
	if err := r.WriteWord(0x2002, 0x1234); err != nil {
		t.Fatal(err)
	}
	if v, err := r.ReadWord(0x2002); err != nil || v != 0x1234 {
		t.Fatalf("word round trip: %#x, %v", v, err)
	}
	if err := r.WriteDword(0x2004, 0xdeadbeef); err != nil {
		t.Fatal(err)
	}
	if v, err := r.ReadDword(0x2004); err != nil || v != 0xdeadbeef {
		t.Fatalf("dword round trip: %#x, %v", v, err)
	}
	if err := r.WriteQword(0x2008, 0x0102030405060708); err != nil {
		t.Fatal(err)
	}
	if v, err := r.ReadQword(0x2008); err != nil || v != 0x0102030405060708 {
		t.Fatalf("qword round trip: %#x, %v", v, err)
	}
	ov := Oword{Lo: 0x1111111111111111, Hi: 0x2222222222222222}
	if err := r.WriteOword(0x2010, ov); err != nil {
		t.Fatal(err)
	}
	if v, err := r.ReadOword(0x2010); err != nil || v != ov {
		t.Fatalf("oword round trip: %+v, %v", v, err)
	}
}

func TestReadWriteOutOfRange(t *testing.T) {
	r := New("small", 0x3000, 4)
	if _, err := r.ReadDword(0x3002); err == nil {
		t.Fatal("read crossing region end must fail")
	}
	if err := r.WriteDword(0x3001, 0); err == nil {
		t.Fatal("write crossing region end must fail")
	}
	before, _ := r.ReadBytes(0x3000, 4)
	_ = r.WriteDword(0x3001, 0xffffffff)
	after, _ := r.ReadBytes(0x3000, 4)
	for i := range before {
		if before[i] != after[i] {
			t.Fatal("rejected write must not partially modify the region")
		}
	}
}

func TestReadStringTerminatesOnZero(t *testing.T) {
	r := New("s", 0x4000, 0x100)
	_ = r.WriteBytes(0x4000, []byte("hello\x00world"))
	got, err := r.ReadString(0x4000)
	if err != nil || got != "hello" {
		t.Fatalf("ReadString = %q, %v", got, err)
	}
}

func TestReadWideStringRoundTrip(t *testing.T) {
	r := New("w", 0x5000, 0x100)
	if err := r.WriteWideString(0x5000, "hi"); err != nil {
		t.Fatal(err)
	}
	got, err := r.ReadWideString(0x5000)
	if err != nil || got != "hi" {
		t.Fatalf("ReadWideString = %q, %v", got, err)
	}
}

func TestReadStringCapsAtMaxScan(t *testing.T) {
	r := New("big", 0x6000, maxStringScan+0x100)
	for i := range r.bytes {
		r.bytes[i] = 'a'
	}
	got, err := r.ReadString(0x6000)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != maxStringScan {
		t.Fatalf("ReadString len = %d, want cap %d", len(got), maxStringScan)
	}
}

func TestExtendGrowsKeepingContent(t *testing.T) {
	r := New("grow", 0x7000, 4)
	_ = r.WriteDword(0x7000, 0xcafebabe)
	r.Extend(4)
	if r.Size() != 8 {
		t.Fatalf("size after extend = %d, want 8", r.Size())
	}
	if v, err := r.ReadDword(0x7000); err != nil || v != 0xcafebabe {
		t.Fatalf("content lost after extend: %#x, %v", v, err)
	}
}

func TestSetBaseRelocatesWindow(t *testing.T) {
	r := New("reloc", 0x1000, 0x10)
	r.SetBase(0x9000)
	if r.Inside(0x1000) {
		t.Fatal("old base must no longer be inside")
	}
	if !r.Inside(0x9000) {
		t.Fatal("new base must be inside")
	}
}

func TestLoadAndSaveRoundTripThroughFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}

	r := New("ld", 0xa000, uint64(len(payload)))
	if err := r.Load(path); err != nil {
		t.Fatal(err)
	}
	got, _ := r.ReadBytes(0xa000, uint64(len(payload)))
	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("Load mismatch at %d: %d != %d", i, got[i], payload[i])
		}
	}

	outPath := filepath.Join(dir, "out.bin")
	if err := r.Save(0xa000, 4, outPath); err != nil {
		t.Fatal(err)
	}
	saved, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 4 || saved[0] != 1 || saved[3] != 4 {
		t.Fatalf("Save wrote %v, want first 4 bytes of payload", saved)
	}
}

func TestLoadChunkHonorsOffset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunk.bin")
	_ = os.WriteFile(path, []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee}, 0o644)

	r := New("chunk", 0xb000, 2)
	if err := r.LoadChunk(path, 2, 2); err != nil {
		t.Fatal(err)
	}
	got, _ := r.ReadBytes(0xb000, 2)
	if got[0] != 0xcc || got[1] != 0xdd {
		t.Fatalf("LoadChunk = %x, want cc dd", got)
	}
}

func TestMD5ChangesWithContent(t *testing.T) {
	r := New("h", 0xc000, 16)
	h1 := r.MD5()
	_ = r.WriteByte(0xc000, 1)
	h2 := r.MD5()
	if h1 == h2 {
		t.Fatal("MD5 must change after a write")
	}
}
