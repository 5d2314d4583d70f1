/*
 * x86emu - Configuration file parser
 *
 * Copyright (c) 2024-2026, the x86emu contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package configparser loads the emulator's "key = value" configuration
// file and dispatches each recognized key to whichever package registered
// interest in it with Register, the same init()-time side-effect
// registration idiom the rest of the ambient stack uses for device/trace
// categories.
package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Config is the parsed, strongly typed configuration the rest of the
// emulator reads at startup. Keys not recognized here but registered via
// Register (trace categories, debug toggles) are routed through Extra.
type Config struct {
	Bitness    int    // 32 or 64
	Banzai     bool   // downgrade faults to soft failures
	EntryPoint uint64 // initial RIP
	StackBase  uint64
	StackSize  uint64
	Libs32Min  uint64
	Libs32Max  uint64
	Libs64Min  uint64
	Libs64Max  uint64
	LogFile    string

	Extra map[string][]string // raw values for keys routed through Register
}

// Default returns a Config with the emulator's baseline values: 32-bit, a
// 1 MiB stack size, and no entry point, stack base or library-window
// overrides (those fields stay zero).
func Default() Config {
	return Config{
		Bitness:   32,
		StackSize: 0x100000,
		Extra:     map[string][]string{},
	}
}

// Handler is invoked once per occurrence of a registered key, receiving the
// raw comma-separated values on the line.
type Handler func(values []string) error

var registry = map[string]Handler{}

// Register associates a configuration key with a handler, to be called from
// an init() function the way the rest of the ambient stack registers
// trace/debug categories.
func Register(key string, fn Handler) {
	registry[strings.ToUpper(key)] = fn
}

var ErrUnknownKey = errors.New("configparser: unknown key")

// Load reads path line by line ('#' starts a comment, blank lines are
// skipped) applying "key = value[, value...]" lines onto cfg, and routing
// unrecognized keys to any handler registered via Register.
func Load(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	lineNo := 0
	for {
		raw, err := reader.ReadString('\n')
		lineNo++
		if len(raw) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if perr := applyLine(raw, lineNo, cfg); perr != nil {
			return perr
		}
		if err != nil && errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func applyLine(raw string, lineNo int, cfg *Config) error {
	line := raw
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return fmt.Errorf("configparser: line %d: expected key = value", lineNo)
	}
	key := strings.ToUpper(strings.TrimSpace(line[:eq]))
	rest := strings.TrimSpace(line[eq+1:])
	values := splitValues(rest)

	if applyWellKnown(key, values, cfg) {
		return nil
	}
	if fn, ok := registry[key]; ok {
		return fn(values)
	}
	if cfg.Extra == nil {
		cfg.Extra = map[string][]string{}
	}
	cfg.Extra[key] = values
	return nil
}

func splitValues(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func applyWellKnown(key string, values []string, cfg *Config) bool {
	if len(values) == 0 {
		return false
	}
	v := values[0]
	switch key {
	case "BITNESS":
		n, err := strconv.Atoi(v)
		if err == nil {
			cfg.Bitness = n
		}
	case "BANZAI":
		cfg.Banzai = parseBool(v)
	case "ENTRYPOINT":
		cfg.EntryPoint = parseUint(v)
	case "STACKBASE":
		cfg.StackBase = parseUint(v)
	case "STACKSIZE":
		cfg.StackSize = parseUint(v)
	case "LIBS32MIN":
		cfg.Libs32Min = parseUint(v)
	case "LIBS32MAX":
		cfg.Libs32Max = parseUint(v)
	case "LIBS64MIN":
		cfg.Libs64Min = parseUint(v)
	case "LIBS64MAX":
		cfg.Libs64Max = parseUint(v)
	case "LOGFILE":
		cfg.LogFile = v
	default:
		return false
	}
	return true
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseUint(s string) uint64 {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0
	}
	return v
}
