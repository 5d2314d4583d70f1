/*
 * x86emu - Main process.
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

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/relsec/x86emu/command/parser"
	"github.com/relsec/x86emu/command/reader"
	config "github.com/relsec/x86emu/config/configparser"
	_ "github.com/relsec/x86emu/config/traceconfig"
	"github.com/relsec/x86emu/emu/core"
	"github.com/relsec/x86emu/emu/cpustate"
	"github.com/relsec/x86emu/emu/serialize"
	"github.com/relsec/x86emu/util/logger"
)

var Logger *slog.Logger

// noDecoder is the StepFunc run when no external instruction decoder is
// wired in: the decoder/dispatcher is an external collaborator (see
// spec.md's scope note), so a standalone build of this command has
// nothing to fetch-decode-execute against and simply halts. A real
// deployment links its own decoder and calls core.New with it directly.
func noDecoder(state *cpustate.State) error {
	return errors.New("no instruction decoder wired in; this build only supports snapshot/debug-console workflows")
}

func main() {
	optConfig := getopt.StringLong("config", 'c', "x86emu.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optSnapshot := getopt.StringLong("snapshot", 's', "", "Snapshot file to load at startup")
	optBanzai := getopt.BoolLong("banzai", 'z', "Downgrade faults to soft failures")
	optBits := getopt.IntLong("bits", 'b', 32, "Address width: 32 or 64")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	debug := false
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, &debug))
	slog.SetDefault(Logger)

	Logger.Info("x86emu started")

	cfg := config.Default()
	if _, err := os.Stat(*optConfig); err == nil {
		if err := config.Load(*optConfig, &cfg); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}
	if *optBits != 0 {
		cfg.Bitness = *optBits
	}
	if *optBanzai {
		cfg.Banzai = true
	}

	state := cpustate.New(cfg.Bitness == 64)
	state.Banzai = cfg.Banzai

	if cfg.StackBase != 0 {
		if _, err := state.Space.CreateMap("stack", cfg.StackBase, cfg.StackSize); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
		if cfg.Bitness == 64 {
			state.Regs.Set64(cpustate.RSP, cfg.StackBase+cfg.StackSize)
		} else {
			state.Regs.Set32(cpustate.RSP, uint32(cfg.StackBase+cfg.StackSize))
		}
	}
	if cfg.EntryPoint != 0 {
		state.Regs.Set64(cpustate.RIP, cfg.EntryPoint)
	}

	if *optSnapshot != "" {
		if err := serialize.Load(state, *optSnapshot); err != nil {
			Logger.Error("loading snapshot: " + err.Error())
			os.Exit(1)
		}
		Logger.Info("snapshot loaded from " + *optSnapshot)
	}

	interp := core.New(state, noDecoder)
	go interp.Start()
	console := parser.NewConsole(interp, state)

	fmt.Println("x86emu debug console. Type 'quit' to exit.")
	reader.ConsoleReader(console)

	interp.Stop()
	Logger.Info("x86emu shutting down")
}
