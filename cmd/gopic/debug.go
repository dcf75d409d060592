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
	"bufio"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lassandro/gopic/pkg/debugger"
	"github.com/lassandro/gopic/pkg/encoding"
	"github.com/lassandro/gopic/pkg/hexfile"
	"github.com/lassandro/gopic/pkg/machine"
)

var lastcmd []string
var stepcount uint64

func debugBreak(dbg *debugger.Debugger, args []string) {
	const usage = "break [add|list|remove]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [0x####]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		addr, err := encoding.DecodeHex(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		exists := false

		for _, breakpoint := range dbg.Breakpoints {
			if breakpoint.Addr == addr {
				exists = true
				break
			}
		}

		if !exists {
			dbg.Breakpoints = append(
				dbg.Breakpoints,
				debugger.Breakpoint{Addr: addr},
			)

			fmt.Printf("Breakpoint added [%#04x]\n", addr)
		}

	case "l", "ls", "list":
		const usage = "break list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(dbg.Breakpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%#x\n", int64(digits)+1)
		}

		for i, breakpoint := range dbg.Breakpoints {
			log.Printf(fmtstring, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			log.Println(err)
			return
		}

		if i < 0 || i >= int64(len(dbg.Breakpoints)) {
			log.Println("Invalid breakpoint number")
			return
		}

		dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
		dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = make([]debugger.Breakpoint, 0)
		fmt.Println("Breakpoints reset")

	default:
		log.Printf("break: '%s' is not a valid command\n", cmd)
	}
}

func debugWatch(dbg *debugger.Debugger, args []string) {
	const usage = "watch [add|list|rm]"

	if len(args) == 0 {
		log.Println(usage)
		return
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x##] [read|write|readwrite]"

		if len(args) != 2 {
			log.Println(usage)
			return
		}

		addr, err := encoding.DecodeHex(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "rwrite", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			log.Println(usage)
			return
		}

		exists := false

		for _, watchpoint := range dbg.Watchpoints {
			if watchpoint.Addr == uint8(addr) && watchpoint.Type == wtype {
				exists = true
				break
			}
		}

		if !exists {
			dbg.Watchpoints = append(
				dbg.Watchpoints,
				debugger.Watchpoint{Addr: uint8(addr), Type: wtype},
			)

			var typename string
			switch wtype {
			case debugger.ReadWatch:
				typename = "R"
			case debugger.WriteWatch:
				typename = "W"
			case debugger.ReadWriteWatch:
				typename = "RW"
			}

			fmt.Printf("Watchpoint added [%#02x] (%s)\n", uint8(addr), typename)
		}

	case "l", "ls", "list":
		const usage = "watch list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(dbg.Watchpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%#x %%s\n", int64(digits)+1)
		}

		for i, watchpoint := range dbg.Watchpoints {
			switch watchpoint.Type {
			case debugger.WriteWatch:
				log.Printf(fmtstring, i, watchpoint.Addr, "write")
			case debugger.ReadWatch:
				log.Printf(fmtstring, i, watchpoint.Addr, "read")
			case debugger.ReadWriteWatch:
				log.Printf(fmtstring, i, watchpoint.Addr, "rwrite")
			}
		}

	case "r", "rm", "remove":
		const usage = "watch rm [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.ParseInt(args[0], 10, 64)

		if err != nil {
			log.Println(err)
			return
		}

		if i < 0 || i >= int64(len(dbg.Watchpoints)) {
			log.Println("Invalid watchpoint number")
			return
		}

		dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
		dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = make([]debugger.Watchpoint, 0)
		fmt.Println("Watchpoints reset")

	default:
		log.Printf("watch: '%s' is not a valid command\n", cmd)
	}
}

func debugReg(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	const usage = "register [W|PC|STATUS|FSR|PCLATH|0x##] [0x##]"

	if len(args) == 0 {
		dbg.PrintState(mc)
		return
	}

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	name := strings.ToUpper(args[0])

	switch name {
	case "W":
		mc.State.W = uint8(value)
	case "PC":
		mc.State.Program = value & 0x1FFF
	case "STATUS":
		mc.State.Status = uint8(value)
	case "FSR":
		mc.State.Fsr = uint8(value)
	case "PCLATH":
		mc.State.Pclath = uint8(value) & 0x1F
	case "INTCON":
		mc.State.Intcon = uint8(value)
	default:
		addr, err := encoding.DecodeHex(args[0])

		if err != nil {
			log.Println("Invalid register")
			return
		}

		mc.Poke(uint8(addr), uint8(value))
		name = fmt.Sprintf("[%#02x]", uint8(addr))
	}

	fmt.Printf("\033[1m%s:\033[0m %#02x\n", name, value)
}

func debugDisasm(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	const usage = "disasm [0x####] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	addr := mc.State.Program
	var size uint16 = 8

	if len(args) > 0 {
		value, err := encoding.DecodeHex(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		addr = value
	}

	if len(args) > 1 {
		value, err := strconv.ParseInt(args[1], 10, 16)

		if err != nil {
			log.Println(err)
			return
		}

		size = uint16(value)
	}

	dbg.PrintDisasm(mc, addr, size)
}

func debugMemory(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	const usage = "memory [0x##] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	var addr uint8 = 0x20
	var size uint16 = 16

	if len(args) > 0 {
		value, err := encoding.DecodeHex(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		addr = uint8(value)
	}

	if len(args) > 1 {
		value, err := strconv.ParseInt(args[1], 10, 16)

		if err != nil {
			log.Println(err)
			return
		}

		size = uint16(value)
	}

	dbg.PrintMem(mc, addr, size)
}

func debugEeprom(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	const usage = "eeprom [0x##] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	var addr uint8
	var size uint16 = 16

	if len(args) > 0 {
		value, err := encoding.DecodeHex(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		addr = uint8(value)
	}

	if len(args) > 1 {
		value, err := strconv.ParseInt(args[1], 10, 16)

		if err != nil {
			log.Println(err)
			return
		}

		size = uint16(value)
	}

	dbg.PrintEeprom(mc, addr, size)
}

func printPins(label string, value uint8) {
	fmt.Printf("\033[1m%s:\033[0m", label)

	for pin := 5; pin >= 0; pin-- {
		fmt.Printf(" %d", (value>>pin)&1)
	}

	fmt.Println()
}

func debugGpio(mc *machine.Machine, args []string) {
	const usage = "gpio"

	if len(args) > 0 {
		log.Println(usage)
		return
	}

	gpio := &mc.State.Gpio

	fmt.Println("\033[1;30m      5 4 3 2 1 0\033[0m")
	printPins("PINS", gpio.Pins)
	printPins("TRIS", gpio.Tris)
	printPins("LAT ", gpio.Latch)
	printPins("WPU ", gpio.Wpu)
	printPins("IOC ", gpio.Ioc)
}

func debugDrive(mc *machine.Machine, args []string) {
	const usage = "drive [0-5] [0|1]"

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	pin, err := strconv.ParseUint(args[0], 10, 8)

	if err != nil || pin > 5 {
		log.Println(usage)
		return
	}

	mc.DrivePin(uint8(pin), args[1] != "0")
	printPins("PINS", mc.State.Gpio.Pins)
}

func debugTimers(mc *machine.Machine, args []string) {
	const usage = "timers"

	if len(args) > 0 {
		log.Println(usage)
		return
	}

	state := &mc.State

	fmt.Printf(
		"\033[1mTMR0:\033[0m%#02x \033[1mPRE:\033[0m%d "+
			"\033[1mOPTION:\033[0m%#02x\n",
		state.Timer0.Counter,
		state.Timer0.Prescaler,
		state.Option,
	)

	fmt.Printf(
		"\033[1mTMR1:\033[0m%#04x \033[1mPRE:\033[0m%d "+
			"\033[1mT1CON:\033[0m%#02x\n",
		state.Timer1.Counter,
		state.Timer1.Prescaler,
		state.T1con,
	)

	enabled := "off"
	if state.Wdt.Enabled {
		enabled = "on"
	}

	fmt.Printf(
		"\033[1mWDT:\033[0m%s \033[1mCOUNT:\033[0m%d \033[1mPERIOD:\033[0m%d\n",
		enabled,
		state.Wdt.Counter,
		state.Wdt.Period,
	)
}

var intconNames = [8]string{
	"GPIF", "INTF", "T0IF", "GPIE", "INTE", "T0IE", "PEIE", "GIE",
}

func debugInterrupts(mc *machine.Machine, args []string) {
	const usage = "interrupts"

	if len(args) > 0 {
		log.Println(usage)
		return
	}

	fmt.Printf("\033[1mINTCON:\033[0m%#02x [", mc.State.Intcon)

	for i := 7; i >= 0; i-- {
		if mc.State.Intcon&(uint8(1)<<i) != 0 {
			fmt.Printf(" %s", intconNames[i])
		} else {
			fmt.Printf(" \033[1;30m%s\033[0m", intconNames[i])
		}
	}

	fmt.Println(" ]")

	fmt.Printf(
		"\033[1mPIR1:\033[0m%#02x \033[1mPIE1:\033[0m%#02x\n",
		mc.State.Pir1,
		mc.State.Pie1,
	)
}

func debugJump(mc *machine.Machine, args []string) {
	const usage = "jump [0x####]"

	if len(args) != 1 {
		fmt.Println(usage)
		return
	}

	addr, err := encoding.DecodeHex(args[0])

	if err != nil {
		log.Println(err)
		return
	}

	mc.State.Program = addr & 0x1FFF

	fmt.Printf("\033[1mPC:\033[0m %#04x\n", mc.State.Program)
}

func debugSet(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	const usage = "set [0x##] [0x##]"

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	addr, err := encoding.DecodeHex(args[0])

	if err != nil {
		log.Println(err)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	mc.Poke(uint8(addr), uint8(value))
	dbg.PrintMem(mc, uint8(addr), 1)
}

func debugLoad(mc *machine.Machine, args []string) {
	const usage = "load [filename]"

	if len(args) != 1 {
		log.Println(usage)
		return
	}

	file, err := os.Open(args[0])

	if err != nil {
		log.Println(err)
		return
	}

	defer file.Close()

	mc.Reset(machine.RESET_POR)

	if err := hexfile.Load(file, mc); err != nil {
		log.Println(err)
		return
	}

	fmt.Printf("Loaded %s\n", args[0])
}

func debugReset(mc *machine.Machine, args []string) {
	const usage = "reset [por|bod|mclr|wdt]"

	kind := machine.RESET_MCLR

	if len(args) > 0 {
		switch args[0] {
		case "por":
			kind = machine.RESET_POR
		case "bod", "brownout":
			kind = machine.RESET_BROWNOUT
		case "mclr":
			kind = machine.RESET_MCLR
		case "wdt":
			kind = machine.RESET_WDT
		default:
			log.Println(usage)
			return
		}
	}

	mc.Reset(kind)
	fmt.Printf("Reset (%s)\n", kind)
}

func debugREPL(dbg *debugger.Debugger, mc *machine.Machine) {
	exitRawTerm()
	defer enterRawTerm()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\033[1;30m(pic)\033[0m ")

		if !scanner.Scan() {
			fmt.Println()
			shouldexit = true
			return
		}

		args := strings.Split(strings.TrimSpace(scanner.Text()), " ")

		if len(args[0]) == 0 {
			if len(lastcmd) == 0 {
				continue
			}
			args = lastcmd
		} else {
			lastcmd = make([]string, len(args))
			copy(lastcmd, args)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			debugBreak(dbg, args)

		case "w", "wp", "watch", "watchpoint":
			debugWatch(dbg, args)

		case "r", "reg", "register", "registers":
			debugReg(dbg, mc, args)

		case "d", "dis", "disasm":
			debugDisasm(dbg, mc, args)

		case "m", "mem", "memory":
			debugMemory(dbg, mc, args)

		case "e", "ee", "eeprom":
			debugEeprom(dbg, mc, args)

		case "g", "gpio":
			debugGpio(mc, args)

		case "drive":
			debugDrive(mc, args)

		case "t", "timer", "timers":
			debugTimers(mc, args)

		case "i", "int", "interrupts":
			debugInterrupts(mc, args)

		case "j", "jmp", "jump":
			debugJump(mc, args)

		case "set":
			debugSet(dbg, mc, args)

		case "load":
			debugLoad(mc, args)

		case "c", "continue", "run":
			dbg.Break = false
			return

		case "n", "next", "s", "step":
			const usage = "step [#]"

			stepcount = 1

			if len(args) > 0 {
				value, err := strconv.ParseUint(args[0], 10, 64)

				if err != nil || value == 0 {
					log.Println(usage)
					continue
				}

				stepcount = value
			}

			dbg.Break = true
			return

		case "q", "quit", "exit":
			shouldexit = true
			return

		case "clear":
			fmt.Print("\033[H\033[2J")

		case "reset":
			debugReset(mc, args)

		default:
			fmt.Printf("error: '%s' is not a valid command\n", cmd)
		}
	}
}

func handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if dbg.Break && stepcount > 1 {
		stepcount--
		return
	}

	if !dbg.Break {
		fmt.Println()
		fmt.Println("Program stopped")
		dbg.PrintState(mc)
		dbg.PrintDisasm(mc, mc.State.Program, 4)
	}
	debugREPL(dbg, mc)
}

func handleRead(addr uint8, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped")
	dbg.PrintMem(mc, addr, 1)
	debugREPL(dbg, mc)
}

func handleWrite(addr uint8, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped")
	dbg.PrintMem(mc, addr, 1)
	debugREPL(dbg, mc)
}
