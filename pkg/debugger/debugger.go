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

package debugger

import (
	"fmt"

	"github.com/lassandro/gopic/pkg/encoding"
	"github.com/lassandro/gopic/pkg/machine"
)

func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.Break {
		dbg.HandleBreak(dbg, mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.Program == breakpoint.Addr {
			dbg.HandleBreak(dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Read(addr uint8, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleRead(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint8, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleWrite(addr, dbg, mc)
			break
		}
	}
}

var statusNames = [8]string{"C", "DC", "Z", "PD", "TO", "RP0", "RP1", "IRP"}

func (dbg *Debugger) PrintState(mc *machine.Machine) {
	state := &mc.State

	fmt.Printf(
		"\033[1mW:\033[0m%#02x \033[1mPC:\033[0m%#04x "+
			"\033[1mSP:\033[0m%d \033[1mCYCLES:\033[0m%d",
		state.W,
		state.Program,
		state.StackPtr,
		state.Cycles,
	)

	if state.Sleeping {
		fmt.Print(" \033[1;30m(sleeping)\033[0m")
	}

	fmt.Println()

	fmt.Printf("\033[1mSTATUS:\033[0m%#02x [", state.Status)

	for i := 7; i >= 0; i-- {
		if state.Status&(uint8(1)<<i) != 0 {
			fmt.Printf(" %s", statusNames[i])
		} else {
			fmt.Printf(" \033[1;30m%s\033[0m", statusNames[i])
		}
	}

	fmt.Println(" ]")

	fmt.Printf(
		"\033[1mFSR:\033[0m%#02x \033[1mPCLATH:\033[0m%#02x "+
			"\033[1mINTCON:\033[0m%#02x \033[1mPIR1:\033[0m%#02x "+
			"\033[1mOPTION:\033[0m%#02x\n",
		state.Fsr,
		state.Pclath,
		state.Intcon,
		state.Pir1,
		state.Option,
	)
}

func (dbg *Debugger) PrintDisasm(mc *machine.Machine, addr, count uint16) {
	for i := addr; i < addr+count && i < machine.ROM_SIZE; i++ {
		word := mc.ReadProgram(i)
		inst := encoding.Decode(word)

		if i == mc.State.Program {
			fmt.Print("\033[1m>\033[0m")
		} else {
			fmt.Print(" ")
		}

		fmt.Printf("\033[1m[%#04x]\033[0m ", i)

		if word == 0 {
			fmt.Printf("\033[1;30m%04x\033[0m %s\n", word, inst)
		} else {
			fmt.Printf("%04x %s\n", word, inst)
		}
	}
}

func (dbg *Debugger) PrintMem(mc *machine.Machine, addr uint8, count uint16) {
	for i := uint16(addr); i < uint16(addr)+count && i <= 0xFF; i++ {
		if (i-uint16(addr))%4 == 0 {
			if i != uint16(addr) {
				fmt.Println()
			}
			fmt.Printf("\033[1m[%#02x]\033[0m ", i)
		}

		result := mc.Peek(uint8(i))

		if result == 0 {
			fmt.Printf("\033[1;30m%#02x\033[0m ", result)
		} else {
			fmt.Printf("%#02x ", result)
		}
	}

	fmt.Println()
}

func (dbg *Debugger) PrintEeprom(mc *machine.Machine, addr uint8, count uint16) {
	for i := uint16(addr); i < uint16(addr)+count; i++ {
		if i >= machine.EEPROM_SIZE {
			break
		}

		if (i-uint16(addr))%4 == 0 {
			if i != uint16(addr) {
				fmt.Println()
			}
			fmt.Printf("\033[1m[%#02x]\033[0m ", i)
		}

		result := mc.State.Eeprom[i]

		if result == 0 {
			fmt.Printf("\033[1;30m%#02x\033[0m ", result)
		} else {
			fmt.Printf("%#02x ", result)
		}
	}

	fmt.Println()
}
