package serialize

import (
	"path/filepath"
	"testing"

	"github.com/relsec/x86emu/emu/cpustate"
)

func populatedState(t *testing.T) *cpustate.State {
	t.Helper()
	st := cpustate.New(true)

	st.Regs.Set64(cpustate.RAX, 0x1122334455667788)
	st.Regs.Set64(cpustate.RIP, 0x140001000)
	st.Regs.SetSegSelector(cpustate.SegFS, 0x53)
	st.Regs.SetSegBase(cpustate.SegFS, 0x7ffe0000)
	st.Regs.SetCR(3, 0xdeadbeef)
	st.Regs.EFlags().Unpack(0x246)

	if err := st.FPU.PushF64(3.5); err != nil {
		t.Fatal(err)
	}
	if err := st.FPU.PushF64(-1.25); err != nil {
		t.Fatal(err)
	}

	st.Simd.SetXMM(0, [16]byte{1, 2, 3, 4})
	var ymm [32]byte
	copy(ymm[:], []byte{5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24})
	st.Simd.SetYMM(1, ymm)

	st.TLS.Set(2, 0xcafef00d)
	st.FLS.Set(0, 0x1)
	st.Banzai = true
	st.SetLastError(0x57)
	st.Exc.SEHHead = 0x19fe00
	st.Exc.VEHHead = 0x19fe10

	if _, err := st.Space.CreateMap("image", 0x140000000, 0x4000); err != nil {
		t.Fatal(err)
	}
	if err := st.Space.WriteBytes(0x140000000, []byte{0x90, 0x90, 0xc3}); err != nil {
		t.Fatal(err)
	}

	return st
}

func TestSaveLoadRoundTrip(t *testing.T) {
	orig := populatedState(t)
	path := filepath.Join(t.TempDir(), "snap.bin")

	if err := Save(orig, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored := cpustate.New(true)
	if err := Load(restored, path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := restored.Regs.Get64(cpustate.RAX); got != 0x1122334455667788 {
		t.Fatalf("RAX = %#x", got)
	}
	if got := restored.Regs.Get64(cpustate.RIP); got != 0x140001000 {
		t.Fatalf("RIP = %#x", got)
	}
	if got := restored.Regs.SegSelector(cpustate.SegFS); got != 0x53 {
		t.Fatalf("FS selector = %#x", got)
	}
	if got := restored.Regs.SegBase(cpustate.SegFS); got != 0x7ffe0000 {
		t.Fatalf("FS base = %#x", got)
	}
	if got := restored.Regs.CR(3); got != 0xdeadbeef {
		t.Fatalf("CR3 = %#x", got)
	}
	if got := restored.Regs.EFlags().Pack(); got != 0x246 {
		t.Fatalf("EFlags = %#x", got)
	}

	if restored.FPU.Depth() != 2 {
		t.Fatalf("FPU depth = %d, want 2", restored.FPU.Depth())
	}
	if got := restored.FPU.Get(0).ToF64(); got != -1.25 {
		t.Fatalf("ST(0) = %v, want -1.25", got)
	}
	if got := restored.FPU.Get(1).ToF64(); got != 3.5 {
		t.Fatalf("ST(1) = %v, want 3.5", got)
	}

	if got := restored.Simd.GetXMM(0); got != [16]byte{1, 2, 3, 4} {
		t.Fatalf("XMM0 = %v", got)
	}
	if got := restored.Simd.GetYMM(1); got != (func() [32]byte {
		var v [32]byte
		copy(v[:], []byte{5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24})
		return v
	}()) {
		t.Fatalf("YMM1 = %v", got)
	}

	if got := restored.TLS.Get(2); got != 0xcafef00d {
		t.Fatalf("TLS[2] = %#x", got)
	}
	if got := restored.FLS.Get(0); got != 0x1 {
		t.Fatalf("FLS[0] = %#x", got)
	}
	if !restored.Banzai {
		t.Fatal("Banzai not restored")
	}
	if got := restored.LastError(); got != 0x57 {
		t.Fatalf("LastError = %#x", got)
	}
	if restored.Exc.SEHHead != 0x19fe00 || restored.Exc.VEHHead != 0x19fe10 {
		t.Fatalf("exception cursors not restored: %+v", restored.Exc)
	}

	data, err := restored.Space.ReadBytes(0x140000000, 3)
	if err != nil {
		t.Fatalf("ReadBytes after restore: %v", err)
	}
	if string(data) != "\x90\x90\xc3" {
		t.Fatalf("region contents = %x", data)
	}
}

// TestSaveLoadPreservesFPUInvalidTag confirms a stack-empty read's invalid
// tag survives a save/load round trip rather than silently clearing, which
// would desync tag-word-driven FPU exception logic after a restore.
func TestSaveLoadPreservesFPUInvalidTag(t *testing.T) {
	orig := populatedState(t)
	orig.FPU.SetInvalid(0, true)
	if !orig.FPU.IsInvalid(0) {
		t.Fatal("setup: expected ST(0) to be tagged invalid before save")
	}
	if orig.FPU.IsInvalid(1) {
		t.Fatal("setup: expected ST(1) to remain tagged valid before save")
	}

	path := filepath.Join(t.TempDir(), "snap.bin")
	if err := Save(orig, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored := cpustate.New(true)
	if err := Load(restored, path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !restored.FPU.IsInvalid(0) {
		t.Fatal("ST(0) invalid tag must survive save/load")
	}
	if restored.FPU.IsInvalid(1) {
		t.Fatal("ST(1) must remain tagged valid after save/load")
	}
}
