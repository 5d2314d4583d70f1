package fpu

import (
	"math"
	"testing"
)

func TestFromF64OneAndPiConstants(t *testing.T) {
	if got := FromF64(1.0); got != One {
		t.Fatalf("FromF64(1.0) = %+v, want One %+v", got, One)
	}
	// math.Pi carries 53 significant bits, so it matches the FLDPI constant
	// in every mantissa bit except the low 11.
	if got := FromF64(math.Pi); got.Sign || got.Exp != Pi.Exp || got.Mant != Pi.Mant&^0x7ff {
		t.Fatalf("FromF64(math.Pi) = %+v, want Pi %+v with the low 11 mantissa bits clear", got, Pi)
	}
}

func TestF64RoundTrip(t *testing.T) {
	values := []float64{0, 1, -1, 0.5, 3.14159265358979, 1e10, -1e-10, 123456.789}
	for _, v := range values {
		got := FromF64(v).ToF64()
		if got != v {
			t.Fatalf("round trip of %v gave %v", v, got)
		}
	}
}

func TestF64RoundTripNaNAndInf(t *testing.T) {
	if !math.IsNaN(FromF64(math.NaN()).ToF64()) {
		t.Fatal("NaN-ness not preserved")
	}
	if !math.IsInf(FromF64(math.Inf(1)).ToF64(), 1) {
		t.Fatal("+Inf not preserved")
	}
	if !math.IsInf(FromF64(math.Inf(-1)).ToF64(), -1) {
		t.Fatal("-Inf not preserved")
	}
}

func TestAddOnePlusPiMatchesReference(t *testing.T) {
	sum := Add(Pi, One)
	want := F80{Sign: false, Exp: 0x4001, Mant: 0x8487ed5110b4611a}
	if sum != want {
		t.Fatalf("1+pi = %+v (raw %x), want %+v", sum, sum.Raw(), want)
	}
}

func TestRawRoundTrip(t *testing.T) {
	for _, v := range []F80{One, Pi, Zero(false), Zero(true), Infinity(false), RealIndefinite()} {
		if got := FromRaw(v.Raw()); got != v {
			t.Fatalf("Raw round trip: got %+v want %+v", got, v)
		}
	}
}

func TestAddCancelsToCanonicalZero(t *testing.T) {
	sum := Add(One, One.Negated())
	if !sum.IsZero() || sum.Sign {
		t.Fatalf("1 + (-1) = %+v, want canonical +0", sum)
	}
}

func TestCompareOrdersCorrectly(t *testing.T) {
	r, ok := Compare(One, Pi)
	if !ok || r != -1 {
		t.Fatalf("Compare(1, pi) = %d,%v want -1,true", r, ok)
	}
	r, ok = Compare(Pi, One)
	if !ok || r != 1 {
		t.Fatalf("Compare(pi, 1) = %d,%v want 1,true", r, ok)
	}
	r, ok = Compare(One, One)
	if !ok || r != 0 {
		t.Fatalf("Compare(1, 1) = %d,%v want 0,true", r, ok)
	}
}

func TestCompareUnorderedOnNaN(t *testing.T) {
	if _, ok := Compare(QNaN(), One); ok {
		t.Fatal("compare against NaN must be unordered")
	}
}

func TestToUint64FromUint64RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 9, 10, 42, 12345, 99999999, 12345678901234567} {
		f := FromUint64(v, false)
		got, neg := f.ToUint64()
		if got != v || neg {
			t.Fatalf("round trip of %d gave %d,%v", v, got, neg)
		}
	}
}
