package cpustate

import (
	"testing"

	"github.com/relsec/x86emu/emu/exception"
)

func TestPushPopRoundTrip64(t *testing.T) {
	s := New(true)
	_, _ = s.Space.CreateMap("stack", 0x7ff000, 0x1000)
	s.Regs.Set64(RSP, 0x7ff800)
	if err := s.Stack.Push64(0xdeadbeefcafebabe); err != nil {
		t.Fatal(err)
	}
	if got := s.Regs.Get64(RSP); got != 0x7ff7f8 {
		t.Fatalf("RSP after push = %#x, want 0x7ff7f8", got)
	}
	v, err := s.Stack.Pop64()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xdeadbeefcafebabe {
		t.Fatalf("popped %#x, want 0xdeadbeefcafebabe", v)
	}
	if got := s.Regs.Get64(RSP); got != 0x7ff800 {
		t.Fatalf("RSP after pop = %#x, want 0x7ff800", got)
	}
}

func TestPushPop32UsesFourByteSlots(t *testing.T) {
	s := New(false)
	_, _ = s.Space.CreateMap("stack", 0x400000, 0x1000)
	s.Regs.Set64(RSP, 0x400800)
	if err := s.Stack.Push32(0x11223344); err != nil {
		t.Fatal(err)
	}
	if got := s.Regs.Get64(RSP); got != 0x4007fc {
		t.Fatalf("RSP after 32-bit push = %#x, want 0x4007fc", got)
	}
	v, err := s.Stack.Pop32()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x11223344 {
		t.Fatalf("popped %#x, want 0x11223344", v)
	}
	if got := s.Regs.Get64(RSP); got != 0x400800 {
		t.Fatalf("RSP after 32-bit pop = %#x, want 0x400800", got)
	}
}

func TestPush32OnA64BitStackErrors(t *testing.T) {
	s := New(true)
	_, _ = s.Space.CreateMap("stack", 0x7ff000, 0x1000)
	s.Regs.Set64(RSP, 0x7ff800)
	if err := s.Stack.Push32(1); err != ErrStackWidthMismatch {
		t.Fatalf("Push32 on 64-bit stack = %v, want ErrStackWidthMismatch", err)
	}
	if _, err := s.Stack.Pop32(); err != ErrStackWidthMismatch {
		t.Fatalf("Pop32 on 64-bit stack = %v, want ErrStackWidthMismatch", err)
	}
}

func TestPush64OnA32BitStackErrors(t *testing.T) {
	s := New(false)
	_, _ = s.Space.CreateMap("stack", 0x400000, 0x1000)
	s.Regs.Set64(RSP, 0x400800)
	if err := s.Stack.Push64(1); err != ErrStackWidthMismatch {
		t.Fatalf("Push64 on 32-bit stack = %v, want ErrStackWidthMismatch", err)
	}
	if _, err := s.Stack.Pop64(); err != ErrStackWidthMismatch {
		t.Fatalf("Pop64 on 32-bit stack = %v, want ErrStackWidthMismatch", err)
	}
}

func TestTLSAllocGetSet(t *testing.T) {
	tbl := NewIndexTable()
	idx := tbl.Alloc()
	tbl.Set(idx, 0xcafe)
	if got := tbl.Get(idx); got != 0xcafe {
		t.Fatalf("TLS slot = %#x, want 0xcafe", got)
	}
	tbl.Free(idx)
	if got := tbl.Get(idx); got != 0 {
		t.Fatalf("freed TLS slot = %#x, want 0", got)
	}
}

func TestTLSAutogrowsOnOutOfRangeSet(t *testing.T) {
	tbl := NewIndexTable()
	tbl.Set(40, 0x1234)
	if got := tbl.Get(40); got != 0x1234 {
		t.Fatalf("autogrown slot = %#x, want 0x1234", got)
	}
	if got := tbl.Get(39); got != 0 {
		t.Fatalf("slot 39 should be zero, got %#x", got)
	}
}

func TestHandleTableOpenCloseLookup(t *testing.T) {
	ht := NewHandleTable()
	h := ht.Open(HandleFile, "file:///C:/sample.exe")
	kind, uri, ok := ht.Lookup(h)
	if !ok || kind != HandleFile || uri != "file:///C:/sample.exe" {
		t.Fatalf("Lookup = %v,%q,%v", kind, uri, ok)
	}
	if !ht.Close(h) {
		t.Fatal("Close must succeed on a live handle")
	}
	if _, _, ok := ht.Lookup(h); ok {
		t.Fatal("closed handle must not resolve")
	}
}

func TestRaiseFaultWithoutHandlerStopsInterpreter(t *testing.T) {
	s := New(true)
	s.RaiseFault(exception.New(exception.Div0, 0x401000))
	if !s.Faulted {
		t.Fatal("fault with no SEH/VEH registered must set Faulted")
	}
}

func TestRaiseFaultWithHandlerDefersToDispatch(t *testing.T) {
	s := New(true)
	s.Exc.SEHHead = 0x7ffe1000
	s.RaiseFault(exception.New(exception.Div0, 0x401000))
	if s.Faulted {
		t.Fatal("fault with a registered SEH handler must not halt the interpreter directly")
	}
	if s.Last == nil {
		t.Fatal("Last fault must still be recorded for the dispatcher")
	}
}

func TestBanzaiSuppressesFault(t *testing.T) {
	s := New(true)
	s.Banzai = true
	s.RaiseFault(exception.New(exception.BadAddressDereferencing, 0x401000))
	if s.Faulted {
		t.Fatal("banzai mode must not halt the interpreter")
	}
}
