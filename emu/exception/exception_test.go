package exception

import (
	"errors"
	"strings"
	"testing"
)

func TestStringCoversEveryKind(t *testing.T) {
	for k := Int3; k <= ReadingXmmOperand; k++ {
		if k.String() == "" {
			t.Fatalf("kind %d has no name", k)
		}
	}
}

func TestUnknownKindStillStringsSafely(t *testing.T) {
	k := Kind(999)
	if k.String() == "" {
		t.Fatal("unknown kind must still produce some text")
	}
}

func TestErrorsIsMatchesByKindOnly(t *testing.T) {
	a := NewAt(Div0, 0x401000, 0)
	b := New(Div0, 0x999999)
	if !errors.Is(a, b) {
		t.Fatal("two Div0 faults at different addresses must compare equal via errors.Is")
	}
	c := New(Int3, 0x401000)
	if errors.Is(a, c) {
		t.Fatal("different kinds must not compare equal")
	}
}

func TestErrorIncludesAddrWhenSet(t *testing.T) {
	f := NewAt(BadAddressDereferencing, 0x1000, 0xdeadbeef)
	if got := f.Error(); !strings.Contains(got, "addr=0xdeadbeef") {
		t.Fatalf("Error() = %q, want it to include addr=0xdeadbeef", got)
	}
}
