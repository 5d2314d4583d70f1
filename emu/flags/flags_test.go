package flags

import "testing"

func popcount(v uint8) int {
	n := 0
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}

func TestParityTableMatchesPopcount(t *testing.T) {
	for i := 0; i < 256; i++ {
		want := popcount(uint8(i))%2 == 0
		if parityTable[i] != want {
			t.Fatalf("parityTable[%d] = %v, want %v", i, parityTable[i], want)
		}
	}
}

func TestAddExhaustive8(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			var f EFlags
			result := Add(&f, W8, uint64(a), uint64(b), false)
			want := uint64((a + b) & 0xff)
			if result != want {
				t.Fatalf("Add(%d,%d)=%d want %d", a, b, result, want)
			}
			wantCF := a+b > 0xff
			if f.CF != wantCF {
				t.Fatalf("Add(%d,%d) CF=%v want %v", a, b, f.CF, wantCF)
			}
			sa, sb, sr := int8(a), int8(b), int8(result)
			wantOF := (sa >= 0) == (sb >= 0) && (sr >= 0) != (sa >= 0)
			if f.OF != wantOF {
				t.Fatalf("Add(%d,%d) OF=%v want %v", a, b, f.OF, wantOF)
			}
			if f.ZF != (result == 0) {
				t.Fatalf("Add(%d,%d) ZF wrong", a, b)
			}
			if f.SF != (result&0x80 != 0) {
				t.Fatalf("Add(%d,%d) SF wrong", a, b)
			}
			if f.PF != parityTable[byte(result)] {
				t.Fatalf("Add(%d,%d) PF wrong", a, b)
			}
			wantAF := ((uint64(a) ^ uint64(b) ^ result) & 0x10) != 0
			if f.AF != wantAF {
				t.Fatalf("Add(%d,%d) AF=%v want %v", a, b, f.AF, wantAF)
			}
		}
	}
}

func TestSubExhaustive8(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			var f EFlags
			result := Sub(&f, W8, uint64(a), uint64(b), false)
			want := uint64((a - b) & 0xff)
			if result != want {
				t.Fatalf("Sub(%d,%d)=%d want %d", a, b, result, want)
			}
			wantCF := a < b
			if f.CF != wantCF {
				t.Fatalf("Sub(%d,%d) CF=%v want %v", a, b, f.CF, wantCF)
			}
			sa, sb, sr := int8(a), int8(b), int8(result)
			wantOF := (sa >= 0) != (sb >= 0) && (sr >= 0) != (sa >= 0)
			if f.OF != wantOF {
				t.Fatalf("Sub(%d,%d) OF=%v want %v", a, b, f.OF, wantOF)
			}
		}
	}
}

func TestPFDependsOnlyOnLow8Bits(t *testing.T) {
	var f1, f2 EFlags
	Add(&f1, W32, 0x1234_0042, 0x0000_0001, false)
	Add(&f2, W32, 0xABCD_0042, 0x0000_0001, false)
	if f1.PF != f2.PF {
		t.Fatalf("PF depends on high bits: %v vs %v", f1.PF, f2.PF)
	}
}

func TestWidenedModuloAgreement(t *testing.T) {
	widths := []Width{W8, W16, W32, W64}
	sizes := map[Width]uint64{W8: 8, W16: 16, W32: 32, W64: 64}
	inputs := []uint64{0, 1, 2, 0x7f, 0x80, 0xff, 0x1234, 0xffffffff, 0xdeadbeef, ^uint64(0)}
	for _, w := range widths {
		m := mask(w)
		for _, a := range inputs {
			for _, b := range inputs {
				var f EFlags
				got := Add(&f, w, a, b, false)
				want := ((a & m) + (b & m)) & m
				if got != want {
					t.Fatalf("width %d: Add(%x,%x)=%x want %x", sizes[w], a, b, got, want)
				}
				var fs EFlags
				gotS := Sub(&fs, w, a, b, false)
				wantS := ((a & m) - (b & m)) & m
				if gotS != wantS {
					t.Fatalf("width %d: Sub(%x,%x)=%x want %x", sizes[w], a, b, gotS, wantS)
				}
			}
		}
	}
}

func TestIncDecOverflow(t *testing.T) {
	var f EFlags
	Inc(&f, W8, 0x7f)
	if !f.OF {
		t.Fatal("INC of signed_max must set OF")
	}
	f.CF = true
	Inc(&f, W8, 0x7f)
	if !f.CF {
		t.Fatal("INC must not touch CF")
	}
	var f2 EFlags
	Dec(&f2, W8, 0x80)
	if !f2.OF {
		t.Fatal("DEC of signed_min must set OF")
	}
}

func TestNegFidelity(t *testing.T) {
	var f EFlags
	r := Neg(&f, W8, 0)
	if r != 0 || f.CF {
		t.Fatalf("NEG(0): result=%d CF=%v, want 0/false", r, f.CF)
	}
	var f2 EFlags
	Neg(&f2, W8, 1)
	if !f2.CF {
		t.Fatal("NEG(1) must set CF")
	}
	var f3 EFlags
	Neg(&f3, W8, 0x80)
	if !f3.OF {
		t.Fatal("NEG(signed_min) must set OF")
	}
}

func TestLogicClearsCFAndOF(t *testing.T) {
	var f EFlags
	f.CF, f.OF = true, true
	And(&f, W32, 0xff00ff00, 0x0f0f0f0f)
	if f.CF || f.OF {
		t.Fatal("AND must clear CF/OF")
	}
}

func TestShiftCountZeroNoFlagChange(t *testing.T) {
	var f EFlags
	f.CF = true
	f.ZF = false
	before := f
	Shl(&f, W32, 0x1234, 0)
	if f != before {
		t.Fatalf("shift by 0 must not touch flags: got %+v want %+v", f, before)
	}
}

func TestShlCarryAndOverflow(t *testing.T) {
	var f EFlags
	result := Shl(&f, W8, 0x81, 1)
	if result != 0x02 {
		t.Fatalf("SHL 0x81,1 = %#x want 0x02", result)
	}
	if !f.CF {
		t.Fatal("SHL 0x81,1 must set CF from the bit shifted out")
	}
}

func TestSarSignExtends(t *testing.T) {
	var f EFlags
	result := Sar(&f, W8, 0x80, 4)
	if result != 0xf8 {
		t.Fatalf("SAR 0x80,4 = %#x want 0xf8", result)
	}
}

func TestRolRorRoundTrip(t *testing.T) {
	var f EFlags
	v := Rol(&f, W8, 0x81, 3)
	var f2 EFlags
	back := Ror(&f2, W8, v, 3)
	if back != 0x81 {
		t.Fatalf("ROL then ROR did not round-trip: got %#x", back)
	}
}

func TestRclThroughCarry(t *testing.T) {
	var f EFlags
	f.CF = true
	result := Rcl(&f, W8, 0x00, 1)
	if result != 0x01 {
		t.Fatalf("RCL 0x00,1 with CF=1 = %#x want 0x01", result)
	}
}

func TestImul2Overflow(t *testing.T) {
	var f EFlags
	Imul2(&f, W8, 0x80, 0xff) // -128 and -1 as 8-bit patterns
	if !f.CF || !f.OF {
		t.Fatal("IMUL -128 * -1 at 8 bits must overflow")
	}
	var f2 EFlags
	r := Imul2(&f2, W8, 3, 4)
	if r != 12 || f2.CF || f2.OF {
		t.Fatalf("IMUL 3*4 = %d CF=%v OF=%v, want 12/false/false", r, f2.CF, f2.OF)
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	f := EFlags{CF: true, ZF: true, SF: true, DF: true, IF: true}
	packed := f.Pack()
	if packed&0x2 == 0 {
		t.Fatal("bit 1 must be forced set")
	}
	if packed&0x8000 != 0 {
		t.Fatal("bit 15 must be forced clear")
	}
	var g EFlags
	g.Unpack(packed)
	if g != f {
		t.Fatalf("round trip mismatch: got %+v want %+v", g, f)
	}
}

func TestShldShrdCountOne(t *testing.T) {
	var f EFlags
	result := Shld(&f, W16, 0x0001, 0x8000, 1)
	if result != 0x0003 {
		t.Fatalf("SHLD 0x0001,0x8000,1 = %#x want 0x0003", result)
	}
	var f2 EFlags
	result2 := Shrd(&f2, W16, 0x8000, 0x0001, 1)
	if result2 != 0xc000 {
		t.Fatalf("SHRD 0x8000,0x0001,1 = %#x want 0xc000", result2)
	}
}
