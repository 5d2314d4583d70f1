/*
 * x86emu - Trace category registration
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

// Package traceconfig registers the "trace = cpu, mem, fpu" configuration
// key at init time, the same side-effect-import idiom the rest of the
// ambient stack uses to let a package own a slice of the config grammar
// without the parser knowing about it.
package traceconfig

import (
	"fmt"
	"strings"

	config "github.com/relsec/x86emu/config/configparser"
)

// Category is one trace-able subsystem.
type Category string

const (
	CPU    Category = "cpu"
	Memory Category = "mem"
	FPU    Category = "fpu"
	Shims  Category = "shims"
)

var enabled = map[Category]bool{}

func init() {
	config.Register("TRACE", setTrace)
}

func setTrace(values []string) error {
	for _, v := range values {
		cat := Category(strings.ToLower(v))
		switch cat {
		case CPU, Memory, FPU, Shims:
			enabled[cat] = true
		default:
			return fmt.Errorf("traceconfig: unknown trace category %q", v)
		}
	}
	return nil
}

// Enabled reports whether a trace category was turned on in the config.
func Enabled(cat Category) bool {
	return enabled[cat]
}
