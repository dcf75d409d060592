// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/pkg/profile"

	"github.com/lassandro/gopic/pkg/debugger"
	"github.com/lassandro/gopic/pkg/hexfile"
	"github.com/lassandro/gopic/pkg/machine"
)

var helpvar bool
var debugvar bool
var cyclesvar uint64
var profilevar bool
var shouldexit bool

const usage = "gopic [-debug] [-cycles #] [-profile] filename"

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in a debug CLI")
	flag.Uint64Var(&cyclesvar, "cycles", 0, "Stops after this many cycles")
	flag.BoolVar(&profilevar, "profile", false, "Writes a CPU profile")
	flag.Parse()
}

// During a free run single keypresses 0-5 toggle the matching GPIO pin
func pollPins(mc *machine.Machine) {
	var buf [16]byte

	n, err := os.Stdin.Read(buf[:])

	if err != nil {
		return
	}

	for _, key := range buf[:n] {
		if key < '0' || key > '5' {
			continue
		}

		pin := key - '0'
		high := mc.State.Gpio.Pins&(uint8(1)<<pin) == 0

		mc.DrivePin(pin, high)

		level := 0
		if high {
			level = 1
		}

		fmt.Printf("\033[1mGP%d\033[0m=%d\r\n", pin, level)
	}
}

func gopic() (code int) {
	defer func() {
		if r := recover(); r != nil {
			log.Println(r)
			code = 2
		}
	}()

	if helpvar {
		fmt.Println(usage)
		return 0
	}

	if profilevar {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	args := flag.Args()

	if len(args) != 1 {
		log.Println(usage)
		return 1
	}

	file, err := os.Open(args[0])

	if err != nil {
		log.Println(err)
		return 1
	}

	var mc machine.Machine
	mc.Reset(machine.RESET_POR)

	if err := hexfile.Load(file, &mc); err != nil {
		log.Println(err)
		file.Close()
		return 1
	}

	file.Close()

	if debugvar {
		var dbg debugger.Debugger
		dbg.HandleBreak = handleBreak
		dbg.HandleRead = handleRead
		dbg.HandleWrite = handleWrite
		mc.Debugger = &dbg

		c := make(chan os.Signal, 1)
		defer close(c)

		signal.Notify(c, os.Interrupt)
		go func() {
			for range c {
				fmt.Println()
				dbg.Break = true
			}
		}()
	}

	enterRawTerm()
	defer exitRawTerm()

	if debugvar {
		debugREPL(mc.Debugger.(*debugger.Debugger), &mc)
	}

	var poll uint64

	stop := func(mc *machine.Machine) bool {
		if shouldexit {
			return true
		}

		if cyclesvar > 0 && mc.State.Cycles >= cyclesvar {
			return true
		}

		return mc.State.Cycles >= poll
	}

	for !shouldexit {
		poll = mc.State.Cycles + 4096

		switch mc.Run(stop) {
		case machine.STOP_HALTED:
			log.Println("standby with no wake source")
			return 0

		case machine.STOP_BUDGET:
			if cyclesvar > 0 && mc.State.Cycles >= cyclesvar {
				return 0
			}

			pollPins(&mc)

		case machine.STOP_RESET:
			log.Printf("reset (%s)", mc.State.LastReset)
		}
	}

	return 0
}

func main() {
	os.Exit(gopic())
}
