package traceconfig

import (
	"os"
	"path/filepath"
	"testing"

	config "github.com/relsec/x86emu/config/configparser"
)

func TestTraceRegistrationEnablesCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.cfg")
	if err := os.WriteFile(path, []byte("trace = cpu, fpu\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	if err := config.Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if !Enabled(CPU) || !Enabled(FPU) {
		t.Fatal("cpu and fpu trace categories must be enabled")
	}
	if Enabled(Memory) {
		t.Fatal("mem trace category must not be enabled")
	}
}

func TestUnknownCategoryRejected(t *testing.T) {
	if err := setTrace([]string{"bogus"}); err == nil {
		t.Fatal("unknown trace category must be rejected")
	}
}
