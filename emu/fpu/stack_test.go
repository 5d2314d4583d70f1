package fpu

import "testing"

func TestPushGetDepth(t *testing.T) {
	s := NewStack()
	if err := s.PushF80(One); err != nil {
		t.Fatal(err)
	}
	if s.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", s.Depth())
	}
	if got := s.Get(0); got != One {
		t.Fatalf("Get(0) = %+v, want One", got)
	}
}

func TestPushPopRestoresValue(t *testing.T) {
	s := NewStack()
	_ = s.PushF80(One)
	before := s.Get(0)
	_ = s.PushF80(Pi)
	_, err := s.Pop()
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Get(0); got != before {
		t.Fatalf("after pop Get(0) = %+v, want %+v", got, before)
	}
}

func TestOverflowOnNinthPush(t *testing.T) {
	s := NewStack()
	for i := 0; i < 8; i++ {
		if err := s.PushF80(FromUint64(uint64(i), false)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := s.PushF80(One); err != ErrOverflow {
		t.Fatalf("9th push = %v, want ErrOverflow", err)
	}
}

func TestUnderflowOnEmptyPop(t *testing.T) {
	s := NewStack()
	if _, err := s.Pop(); err != ErrUnderflow {
		t.Fatalf("pop on empty = %v, want ErrUnderflow", err)
	}
}

func TestGetBeyondDepthMarksInvalid(t *testing.T) {
	s := NewStack()
	_ = s.PushF80(One)
	v := s.Get(3)
	if !v.IsIndefinite() {
		t.Fatalf("Get beyond depth = %+v, want real indefinite", v)
	}
	if !s.IsInvalid(3) {
		t.Fatal("slot beyond depth must be marked invalid")
	}
}

func TestFld1FldPiFaddScenario(t *testing.T) {
	s := NewStack()
	s.Init() // FNINIT
	if err := s.PushF80(One); err != nil {
		t.Fatal(err)
	}
	if err := s.PushF80(Pi); err != nil {
		t.Fatal(err)
	}
	if got := s.Peek(7); got != One {
		t.Fatalf("ST(7) = %+v, want One", got)
	}
	if got := s.Peek(6); got != Pi {
		t.Fatalf("ST(6) = %+v, want Pi", got)
	}
	sum := Add(s.Get(0), s.Get(1)) // FADD ST,ST(1): ST0=pi, ST1=one
	s.Set(0, sum)
	want := F80{Sign: false, Exp: 0x4001, Mant: 0x8487ed5110b4611a}
	if got := s.Peek(6); got != want {
		t.Fatalf("after FADD ST,ST(1), ST(6) = %+v (raw %x), want %+v", got, got.Raw(), want)
	}
}

func TestSwapExchangesSlots(t *testing.T) {
	s := NewStack()
	_ = s.PushF80(One)
	_ = s.PushF80(Pi)
	s.Swap(0, 1)
	if s.Get(0) != One || s.Get(1) != Pi {
		t.Fatal("Swap did not exchange slots")
	}
}

func TestSaveLoadFXRoundTrip(t *testing.T) {
	s := NewStack()
	_ = s.PushF80(One)
	_ = s.PushF80(Pi)
	s.Control = 0x037a
	s.MXCSR = 0x1fa0
	var xmm [16][16]byte
	xmm[3][0] = 0xab
	area := s.SaveFX(xmm)
	if len(area) != FXSaveAreaSize {
		t.Fatalf("area size = %d, want %d", len(area), FXSaveAreaSize)
	}

	s2 := NewStack()
	gotXMM := s2.LoadFX(area)
	if s2.Get(0) != Pi || s2.Get(1) != One {
		t.Fatal("FXSAVE/FXRSTOR did not restore ST0/ST1")
	}
	if s2.Control != 0x037a || s2.MXCSR != 0x1fa0 {
		t.Fatal("FXSAVE/FXRSTOR did not restore control words")
	}
	if gotXMM[3][0] != 0xab {
		t.Fatal("FXSAVE/FXRSTOR did not restore XMM state")
	}
}
