package hex

import (
	"strings"
	"testing"
)

func TestFormatByteProducesTwoHexDigits(t *testing.T) {
	var b strings.Builder
	FormatByte(&b, 0xa5)
	if b.String() != "a5" {
		t.Fatalf("FormatByte(0xa5) = %q, want a5", b.String())
	}
}

func TestFormatAddrWidthMatchesBitness(t *testing.T) {
	if got := FormatAddr(0x401000, false); got != "00401000" {
		t.Fatalf("32-bit addr = %q, want 00401000", got)
	}
	if got := FormatAddr(0x7ffe0000, true); got != "000000007ffe0000" {
		t.Fatalf("64-bit addr = %q", got)
	}
}

func TestDumpShowsAsciiSidebar(t *testing.T) {
	data := []byte("Hello, world!\x00\x01\x02")
	out := Dump(0x1000, data, false)
	if !strings.Contains(out, "Hello, world!") {
		t.Fatalf("dump missing printable ascii sidebar: %s", out)
	}
	if !strings.Contains(out, "00001000:") {
		t.Fatalf("dump missing address column: %s", out)
	}
}

func TestDumpHandlesPartialFinalLine(t *testing.T) {
	data := []byte{1, 2, 3}
	out := Dump(0x2000, data, false)
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected exactly one line, got: %q", out)
	}
}
