package configparser

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.cfg")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadParsesWellKnownKeys(t *testing.T) {
	path := writeTemp(t, "# sample config\nbitness = 64\nbanzai = true\nentrypoint = 0x401000\n")
	cfg := Default()
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Bitness != 64 || !cfg.Banzai || cfg.EntryPoint != 0x401000 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadSkipsBlankLinesAndComments(t *testing.T) {
	path := writeTemp(t, "\n   \n# just a comment\nbitness = 32\n")
	cfg := Default()
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Bitness != 32 {
		t.Fatalf("Bitness = %d, want 32", cfg.Bitness)
	}
}

func TestLoadRoutesUnknownKeysToExtra(t *testing.T) {
	path := writeTemp(t, "mystery = a, b, c\n")
	cfg := Default()
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if got := cfg.Extra["MYSTERY"]; len(got) != 3 || got[0] != "a" {
		t.Fatalf("Extra[MYSTERY] = %v", got)
	}
}

func TestLoadRoutesRegisteredKeyToHandler(t *testing.T) {
	var seen []string
	Register("TRACE", func(values []string) error {
		seen = values
		return nil
	})
	path := writeTemp(t, "trace = cpu, mem\n")
	cfg := Default()
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != "cpu" || seen[1] != "mem" {
		t.Fatalf("handler saw %v", seen)
	}
}

func TestLoadRejectsLineWithoutEquals(t *testing.T) {
	path := writeTemp(t, "this is not valid\n")
	cfg := Default()
	if err := Load(path, &cfg); err == nil {
		t.Fatal("line without '=' must be rejected")
	}
}

func TestParseUintAcceptsHexPrefix(t *testing.T) {
	path := writeTemp(t, "stackbase = 0x7ffdf000\n")
	cfg := Default()
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.StackBase != 0x7ffdf000 {
		t.Fatalf("StackBase = %#x", cfg.StackBase)
	}
}
