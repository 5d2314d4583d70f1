package fpu

import "testing"

func TestBCDRoundTripAndSignByte(t *testing.T) {
	// 999999999999999999 (18 nines) is the largest value the packed
	// 9-byte/18-digit BCD image can hold; x87 BCD never carries more.
	values := []uint64{0, 1, 9, 10, 42, 12345, 99999999, 999999999999999999}
	for _, v := range values {
		b := EncodeBCD(v, false)
		if b[9] != BCDPositive {
			t.Fatalf("EncodeBCD(%d) sign byte = %#x, want 0x0a", v, b[9])
		}
		got, neg := DecodeBCD(b)
		if got != v || neg {
			t.Fatalf("BCD round trip of %d gave %d,%v", v, got, neg)
		}
	}
}

func TestBCDEncode259MatchesReference(t *testing.T) {
	b := EncodeBCD(259, false)
	if b[0] != 0x59 {
		t.Fatalf("EncodeBCD(259)[0] = %#x, want 0x59", b[0])
	}
	if b[1] != 0x02 {
		t.Fatalf("EncodeBCD(259)[1] = %#x, want 0x02", b[1])
	}
}

func TestBCDNegativeSignByte(t *testing.T) {
	b := EncodeBCD(1, true)
	if b[9] != BCDNegative {
		t.Fatalf("sign byte = %#x, want 0x0b", b[9])
	}
}

func TestBCDViaF80(t *testing.T) {
	st := FromUint64(259, false)
	b := BCDFromF80(st)
	back := BCDToF80(b)
	v, neg := back.ToUint64()
	if v != 259 || neg {
		t.Fatalf("BCD via F80 round trip gave %d,%v", v, neg)
	}
}
