/*
 * x86emu - Debug console command parser
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

// Package parser implements the debug console's command language: register
// dump, memory examine/deposit, breakpoint set/continue/stop, banzai
// toggle, and snapshot save/load, dispatched through the same
// minimum-match-length command table idiom the rest of the ambient stack
// uses for its own console.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/relsec/x86emu/emu/core"
	"github.com/relsec/x86emu/emu/cpustate"
	"github.com/relsec/x86emu/emu/serialize"
	"github.com/relsec/x86emu/util/hex"
)

// Console bundles the state a command needs: the running interpreter, the
// CPU state it drives, and the set of software breakpoint addresses the
// console itself tracks (the interpreter only knows about exitAddr).
type Console struct {
	Interp      *core.Interp
	State       *cpustate.State
	Breakpoints map[uint64]bool
}

func NewConsole(in *core.Interp, state *cpustate.State) *Console {
	return &Console{Interp: in, State: state, Breakpoints: map[uint64]bool{}}
}

type cmdLine struct {
	line string
	pos  int
}

type cmd struct {
	name     string
	min      int
	process  func(*cmdLine, *Console) (bool, string, error)
	complete func(*cmdLine, *Console) []string
}

var cmdList = []cmd{
	{name: "registers", min: 1, process: showRegisters},
	{name: "examine", min: 1, process: examine},
	{name: "deposit", min: 1, process: deposit},
	{name: "break", min: 3, process: setBreak},
	{name: "delete", min: 3, process: deleteBreak},
	{name: "continue", min: 1, process: cont},
	{name: "step", min: 2, process: step},
	{name: "stop", min: 3, process: stop},
	{name: "banzai", min: 3, process: banzai},
	{name: "save", min: 2, process: save},
	{name: "load", min: 2, process: load},
	{name: "quit", min: 1, process: quit},
}

// ProcessCommand executes one line of input, returning the text to print,
// whether the console should exit, and any error.
func ProcessCommand(commandLine string, c *Console) (quit bool, output string, err error) {
	line := cmdLine{line: commandLine}
	word := line.getWord()
	if word == "" {
		return false, "", nil
	}

	match := matchList(word)
	switch len(match) {
	case 0:
		return false, "", errors.New("command not found: " + word)
	case 1:
		return match[0].process(&line, c)
	default:
		return false, "", errors.New("ambiguous command: " + word)
	}
}

// CompleteCmd supports liner's tab completion.
func CompleteCmd(commandLine string, c *Console) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord()

	if !line.isEOL() && commandLine[len(commandLine)-1] != ' ' {
		matches := matchList(name)
		out := make([]string, len(matches))
		for i, m := range matches {
			out[i] = m.name
		}
		return out
	}

	match := matchList(name)
	if len(match) != 1 || match[0].complete == nil {
		return nil
	}
	return match[0].complete(&line, c)
}

func matchCommand(m cmd, word string) bool {
	if len(word) > len(m.name) {
		return false
	}
	for i := range word {
		if word[i] != m.name[i] {
			return false
		}
	}
	return len(word) >= m.min
}

func matchList(word string) []cmd {
	if word == "" {
		return nil
	}
	var out []cmd
	for _, m := range cmdList {
		if matchCommand(m, strings.ToLower(word)) {
			out = append(out, m)
		}
	}
	return out
}

func (l *cmdLine) skipSpace() {
	for l.pos < len(l.line) && unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
}

func (l *cmdLine) isEOL() bool { return l.pos >= len(l.line) }

func (l *cmdLine) getWord() string {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.line) && !unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
	return l.line[start:l.pos]
}

func (l *cmdLine) rest() string {
	l.skipSpace()
	return l.line[l.pos:]
}

func parseAddr(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	return strconv.ParseUint(s, 16, 64)
}

func showRegisters(_ *cmdLine, c *Console) (bool, string, error) {
	return false, c.State.Regs.String(), nil
}

func examine(l *cmdLine, c *Console) (bool, string, error) {
	fields := strings.Fields(l.rest())
	if len(fields) == 0 {
		return false, "", errors.New("examine requires an address")
	}
	addr, err := parseAddr(fields[0])
	if err != nil {
		return false, "", fmt.Errorf("bad address %q: %w", fields[0], err)
	}
	length := uint64(16)
	if len(fields) > 1 {
		n, err := strconv.ParseUint(fields[1], 0, 32)
		if err == nil {
			length = n
		}
	}
	data, err := c.State.Space.ReadBytes(addr, length)
	if err != nil {
		return false, "", err
	}
	return false, hex.Dump(addr, data, c.State.Stack.Is64Bit), nil
}

func deposit(l *cmdLine, c *Console) (bool, string, error) {
	fields := strings.Fields(l.rest())
	if len(fields) < 2 {
		return false, "", errors.New("deposit requires an address and a byte value")
	}
	addr, err := parseAddr(fields[0])
	if err != nil {
		return false, "", err
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 8)
	if err != nil {
		return false, "", err
	}
	if err := c.State.Space.WriteBytes(addr, []byte{byte(v)}); err != nil {
		return false, "", err
	}
	return false, "", nil
}

func setBreak(l *cmdLine, c *Console) (bool, string, error) {
	addr, err := parseAddr(l.rest())
	if err != nil {
		return false, "", err
	}
	c.Breakpoints[addr] = true
	c.Interp.Post(core.Packet{Msg: core.CmdSetExitAddr, Addr: addr})
	return false, fmt.Sprintf("breakpoint set at %#x", addr), nil
}

func deleteBreak(l *cmdLine, c *Console) (bool, string, error) {
	addr, err := parseAddr(l.rest())
	if err != nil {
		return false, "", err
	}
	delete(c.Breakpoints, addr)
	return false, "", nil
}

func cont(_ *cmdLine, c *Console) (bool, string, error) {
	c.Interp.Post(core.Packet{Msg: core.CmdRun})
	return false, "", nil
}

func step(_ *cmdLine, c *Console) (bool, string, error) {
	c.Interp.Post(core.Packet{Msg: core.CmdStepOne})
	return false, c.State.Regs.String(), nil
}

func stop(_ *cmdLine, c *Console) (bool, string, error) {
	c.Interp.Post(core.Packet{Msg: core.CmdPause})
	c.Interp.Break()
	return false, "", nil
}

func banzai(l *cmdLine, c *Console) (bool, string, error) {
	word := strings.ToLower(l.getWord())
	switch word {
	case "on":
		c.State.Banzai = true
	case "off":
		c.State.Banzai = false
	default:
		return false, "", errors.New("banzai requires on or off")
	}
	return false, "", nil
}

func save(l *cmdLine, c *Console) (bool, string, error) {
	path := l.rest()
	if path == "" {
		return false, "", errors.New("save requires a path")
	}
	if err := serialize.Save(c.State, path); err != nil {
		return false, "", err
	}
	return false, "saved to " + path, nil
}

func load(l *cmdLine, c *Console) (bool, string, error) {
	path := l.rest()
	if path == "" {
		return false, "", errors.New("load requires a path")
	}
	if err := serialize.Load(c.State, path); err != nil {
		return false, "", err
	}
	return false, "loaded from " + path, nil
}

func quit(_ *cmdLine, _ *Console) (bool, string, error) {
	return true, "", nil
}
