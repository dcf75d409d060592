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

package machine

// StepCycle advances the machine by one instruction cycle. Multi-cycle
// instructions and interrupt dispatch occupy the following cycles, during
// which only the peripherals advance. In standby only the watchdog runs.
func (mc *Machine) StepCycle() {
	if mc.State.Sleeping {
		mc.State.Cycles++
		mc.tickWdt()

		return
	}

	if mc.stall == 0 {
		mc.stall = mc.execute()
	}

	mc.stall--
	mc.State.Cycles++

	mc.tickTimer0()
	mc.tickTimer1()
	mc.tickWdt()

	if mc.stall == 0 {
		mc.stall = mc.checkInterrupts()
	}
}

// StepInstruction advances to the next instruction boundary.
func (mc *Machine) StepInstruction() {
	mc.StepCycle()

	for mc.stall > 0 {
		mc.StepCycle()
	}
}

// Run executes instructions until a breakpoint, a reset, terminal standby,
// or the stop predicate firing. The breakpoint at the starting address is
// skipped so that resuming from one makes progress.
func (mc *Machine) Run(stop func(*Machine) bool) StopReason {
	mc.resetEvent = false

	for first := true; ; first = false {
		if !first && mc.Breakpoints[mc.State.Program] {
			return STOP_BREAKPOINT
		}

		if stop != nil && stop(mc) {
			return STOP_BUDGET
		}

		if mc.State.Sleeping && !mc.canWake() {
			return STOP_HALTED
		}

		mc.StepInstruction()

		if mc.resetEvent {
			return STOP_RESET
		}
	}
}

// Step executes up to count instructions, stopping early on the same
// conditions as Run.
func (mc *Machine) Step(count uint) StopReason {
	mc.resetEvent = false

	for i := uint(0); i < count; i++ {
		if i > 0 && mc.Breakpoints[mc.State.Program] {
			return STOP_BREAKPOINT
		}

		if mc.State.Sleeping && !mc.canWake() {
			return STOP_HALTED
		}

		mc.StepInstruction()

		if mc.resetEvent {
			return STOP_RESET
		}
	}

	return STOP_STEP
}

// Reset applies the register reset table for the given cause. Power-on and
// brown-out clear everything; MCLR and watchdog resets preserve W, FSR, the
// file, the stack, and the cycle counter. In STATUS they clear the bank
// selects, and a watchdog reset also clears TO.
func (mc *Machine) Reset(kind ResetKind) {
	state := &mc.State

	state.Program = VEC_RESET
	state.Pclath = 0x00
	state.Intcon = 0x00
	state.Pir1 = 0x00
	state.Pie1 = 0x00
	state.Option = INIT_OPTION
	state.T1con = 0x00
	state.Cmcon = INIT_CMCON
	state.Osccal = INIT_OSCCAL

	state.Gpio.Latch = 0x00
	state.Gpio.Tris = INIT_TRISIO
	state.Gpio.Wpu = INIT_WPU
	state.Gpio.Ioc = 0x00

	state.Timer0 = Timer0{}
	state.Timer1 = Timer1{}
	state.Wdt.Counter = 0

	state.Eecon1 = 0x00
	state.Eearm = 0

	state.Sleeping = false
	mc.stall = 0

	switch kind {
	case RESET_POR, RESET_BROWNOUT:
		state.W = 0x00
		state.Fsr = 0x00
		state.Status = INIT_STATUS
		state.File = [128]uint8{}
		state.Stack = [8]uint16{}
		state.StackPtr = 0
		state.Cycles = 0
		state.Gpio.Pins = INIT_PINS

		if kind == RESET_BROWNOUT {
			state.Pcon = PCON_POR
		} else {
			state.Pcon = 0x00
		}

	case RESET_MCLR:
		state.Status &= FLAG_TO | FLAG_PD | FLAG_Z | FLAG_DC | FLAG_C

	case RESET_WDT:
		state.Status &= FLAG_PD | FLAG_Z | FLAG_DC | FLAG_C
	}

	state.Gpio.Compare = mc.gpioLevels()
	state.LastReset = kind

	mc.resetEvent = true
}

// Snapshot returns a copy of the full machine state.
func (mc *Machine) Snapshot() MachineState {
	return mc.State
}

func (mc *Machine) SetBreakpoint(addr uint16) {
	if mc.Breakpoints == nil {
		mc.Breakpoints = make(map[uint16]bool)
	}

	mc.Breakpoints[addr&0x1FFF] = true
}

func (mc *Machine) ClearBreakpoint(addr uint16) {
	delete(mc.Breakpoints, addr&0x1FFF)
}

// Peek reads a register without the side effects of a program read: the
// interrupt-on-change baseline is untouched and no debugger hook fires.
func (mc *Machine) Peek(addr uint8) uint8 {
	debugger := mc.Debugger
	compare := mc.State.Gpio.Compare

	mc.Debugger = nil
	result := mc.read(addr)
	mc.Debugger = debugger
	mc.State.Gpio.Compare = compare

	return result
}

// Poke writes a register without firing the debugger write hook.
func (mc *Machine) Poke(addr uint8, value uint8) {
	debugger := mc.Debugger

	mc.Debugger = nil
	mc.write(addr, value)
	mc.Debugger = debugger
}
