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

import (
	"github.com/pkg/errors"

	"github.com/lassandro/gopic/pkg/encoding"
)

var ErrProgramRange = errors.New("program address out of range")

// LoadWord stores one 14-bit word into program memory. Used by the HEX
// loader, never during execution.
func (mc *Machine) LoadWord(addr uint16, word uint16) error {
	if addr >= ROM_SIZE {
		return errors.Wrapf(ErrProgramRange, "address %#04x", addr)
	}

	mc.State.Rom[addr] = word & 0x3FFF

	return nil
}

// LoadEeprom stores one byte into the EEPROM data memory.
func (mc *Machine) LoadEeprom(addr uint16, value uint8) error {
	if addr >= EEPROM_SIZE {
		return errors.Wrapf(ErrProgramRange, "EEPROM address %#04x", addr)
	}

	mc.State.Eeprom[addr] = value

	return nil
}

// SetConfig records the configuration word. WDTE gates the watchdog.
func (mc *Machine) SetConfig(word uint16) {
	mc.State.Config = word & 0x3FFF
	mc.State.Wdt.Enabled = word&CONFIG_WDTE != 0
}

// ReadProgram returns the 14-bit word at addr; out-of-range fetches read 0.
func (mc *Machine) ReadProgram(addr uint16) uint16 {
	if addr >= ROM_SIZE {
		return 0x0000
	}

	return mc.State.Rom[addr]
}

func (mc *Machine) push(addr uint16) {
	mc.State.Stack[mc.State.StackPtr] = addr & 0x1FFF
	mc.State.StackPtr = (mc.State.StackPtr + 1) & 0x7
}

func (mc *Machine) pop() uint16 {
	mc.State.StackPtr = (mc.State.StackPtr - 1) & 0x7
	return mc.State.Stack[mc.State.StackPtr]
}

// resolve maps a 7-bit register address and bank select to the full banked
// address. Aliased registers and the general purpose file always land in
// bank 0.
func resolve(addr uint8, bank1 bool) uint8 {
	switch addr {
	case REG_INDF, REG_PCL, REG_STATUS, REG_FSR, REG_PCLATH, REG_INTCON:
		return addr
	}

	if addr >= 0x20 {
		return addr
	}

	if bank1 {
		return addr | 0x80
	}

	return addr
}

// resolveFile resolves an instruction file operand, routing INDF through
// FSR. Returns false for the INDF-through-INDF case, which reads 0 and
// drops writes.
func (mc *Machine) resolveFile(file uint16) (uint8, bool) {
	addr := uint8(file) & 0x7F

	if addr == REG_INDF {
		fsr := mc.State.Fsr

		if fsr&0x7F == 0 {
			return 0, false
		}

		return resolve(fsr&0x7F, fsr&0x80 != 0), true
	}

	return resolve(addr, mc.State.Status&FLAG_RP0 != 0), true
}

func (mc *Machine) read(addr uint8) uint8 {
	var result uint8

	switch addr {
	case REG_TMR0:
		result = mc.State.Timer0.Counter
	case REG_PCL:
		result = uint8(mc.State.Program)
	case REG_STATUS:
		result = mc.State.Status
	case REG_FSR:
		result = mc.State.Fsr
	case REG_GPIO:
		result = mc.gpioRead()
	case REG_PCLATH:
		result = mc.State.Pclath
	case REG_INTCON:
		result = mc.State.Intcon
	case REG_PIR1:
		result = mc.State.Pir1
	case REG_TMR1L:
		result = uint8(mc.State.Timer1.Counter)
	case REG_TMR1H:
		result = uint8(mc.State.Timer1.Counter >> 8)
	case REG_T1CON:
		result = mc.State.T1con
	case REG_CMCON:
		result = mc.State.Cmcon
	case REG_OPTION:
		result = mc.State.Option
	case REG_TRISIO:
		result = mc.State.Gpio.Tris
	case REG_PIE1:
		result = mc.State.Pie1
	case REG_PCON:
		result = mc.State.Pcon
	case REG_OSCCAL:
		result = mc.State.Osccal
	case REG_WPU:
		result = mc.State.Gpio.Wpu
	case REG_IOC:
		result = mc.State.Gpio.Ioc
	case REG_EEDAT:
		result = mc.State.Eedat
	case REG_EEADR:
		result = mc.State.Eeadr
	case REG_EECON1:
		result = mc.State.Eecon1
	case REG_EECON2:
		result = 0x00
	default:
		if addr&0x7F >= 0x20 {
			result = mc.State.File[addr&0x7F]
		}
	}

	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return result
}

func (mc *Machine) write(addr uint8, value uint8) {
	switch addr {
	case REG_TMR0:
		mc.State.Timer0.Counter = value
		mc.State.Timer0.Inhibit = 2

		if mc.State.Option&OPTION_PSA == 0 {
			mc.State.Timer0.Prescaler = 0
		}
	case REG_PCL:
		mc.State.Program = uint16(mc.State.Pclath&0x1F)<<8 | uint16(value)
	case REG_STATUS:
		// TO and PD are set by hardware events only
		mc.State.Status = (value &^ (FLAG_TO | FLAG_PD)) |
			(mc.State.Status & (FLAG_TO | FLAG_PD))
	case REG_FSR:
		mc.State.Fsr = value
	case REG_GPIO:
		mc.State.Gpio.Latch = value & 0x3F
	case REG_PCLATH:
		mc.State.Pclath = value & 0x1F
	case REG_INTCON:
		mc.State.Intcon = value
	case REG_PIR1:
		mc.State.Pir1 = value
	case REG_TMR1L:
		mc.State.Timer1.Counter =
			(mc.State.Timer1.Counter & 0xFF00) | uint16(value)
	case REG_TMR1H:
		mc.State.Timer1.Counter =
			uint16(value)<<8 | (mc.State.Timer1.Counter & 0x00FF)
	case REG_T1CON:
		mc.State.T1con = value & 0x7F
	case REG_CMCON:
		mc.State.Cmcon = value
	case REG_OPTION:
		mc.State.Option = value
	case REG_TRISIO:
		// GP3 is input-only
		mc.State.Gpio.Tris = (value & 0x3F) | 0x08
	case REG_PIE1:
		mc.State.Pie1 = value
	case REG_PCON:
		mc.State.Pcon = value & (PCON_POR | PCON_BOD)
	case REG_OSCCAL:
		mc.State.Osccal = value
	case REG_WPU:
		mc.State.Gpio.Wpu = value & 0x37
	case REG_IOC:
		mc.State.Gpio.Ioc = value & 0x3F
	case REG_EEDAT:
		mc.State.Eedat = value
	case REG_EEADR:
		mc.State.Eeadr = value & 0x7F
	case REG_EECON1:
		mc.eepromControl(value)
	case REG_EECON2:
		mc.eepromArm(value)
	default:
		if addr&0x7F >= 0x20 {
			mc.State.File[addr&0x7F] = value
		}
	}

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

func (mc *Machine) readFile(file uint16) uint8 {
	addr, ok := mc.resolveFile(file)

	if !ok {
		return 0x00
	}

	return mc.read(addr)
}

// writeFile stores a result into a file operand and returns the cycle cost:
// 2 when the destination is PCL, 1 otherwise.
func (mc *Machine) writeFile(file uint16, value uint8) uint {
	addr, ok := mc.resolveFile(file)

	if !ok {
		return 1
	}

	mc.write(addr, value)

	if addr == REG_PCL {
		return 2
	}

	return 1
}

func (mc *Machine) writeback(inst encoding.Instruction, result uint8) uint {
	if inst.Dest == encoding.DEST_F {
		return mc.writeFile(inst.File, result)
	}

	mc.State.W = result

	return 1
}

func (mc *Machine) setZero(result uint8) {
	if result == 0 {
		mc.State.Status |= FLAG_Z
	} else {
		mc.State.Status &^= FLAG_Z
	}
}

func (mc *Machine) setCarry(carry bool) {
	if carry {
		mc.State.Status |= FLAG_C
	} else {
		mc.State.Status &^= FLAG_C
	}
}

func (mc *Machine) setDigit(digit bool) {
	if digit {
		mc.State.Status |= FLAG_DC
	} else {
		mc.State.Status &^= FLAG_DC
	}
}

func (mc *Machine) skip() {
	mc.State.Program = (mc.State.Program + 1) & 0x1FFF
}

func (mc *Machine) fetch() uint16 {
	if mc.State.Program >= ROM_SIZE {
		return 0x0000
	}

	return mc.State.Rom[mc.State.Program]
}

// execute runs a single instruction and returns its cycle cost.
func (mc *Machine) execute() uint {
	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	inst := encoding.Decode(mc.fetch())

	mc.State.Program = (mc.State.Program + 1) & 0x1FFF

	switch inst.Opcode {
	// ADDWF |00 0111 |d|fffffff | Add W and f
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_ADDWF:
		value := mc.readFile(inst.File)
		sum := uint16(mc.State.W) + uint16(value)

		mc.setCarry(sum > 0xFF)
		mc.setDigit((mc.State.W&0xF)+(value&0xF) > 0xF)

		cycles := mc.writeback(inst, uint8(sum))
		mc.setZero(uint8(sum))

		return cycles

	// ANDWF |00 0101 |d|fffffff | AND W with f
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_ANDWF:
		result := mc.State.W & mc.readFile(inst.File)

		cycles := mc.writeback(inst, result)
		mc.setZero(result)

		return cycles

	// CLRF  |00 0001 |1|fffffff | Clear f
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_CLRF:
		cycles := mc.writeFile(inst.File, 0x00)
		mc.setZero(0x00)

		return cycles

	// CLRW  |00 0001 |0|0000000 | Clear W
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_CLRW:
		mc.State.W = 0x00
		mc.setZero(0x00)

		return 1

	// COMF  |00 1001 |d|fffffff | Complement f
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_COMF:
		result := ^mc.readFile(inst.File)

		cycles := mc.writeback(inst, result)
		mc.setZero(result)

		return cycles

	// DECF  |00 0011 |d|fffffff | Decrement f
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_DECF:
		result := mc.readFile(inst.File) - 1

		cycles := mc.writeback(inst, result)
		mc.setZero(result)

		return cycles

	// DECFSZ|00 1011 |d|fffffff | Decrement f, skip if zero
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_DECFSZ:
		result := mc.readFile(inst.File) - 1
		cycles := mc.writeback(inst, result)

		if result == 0 {
			mc.skip()
			return 2
		}

		return cycles

	// INCF  |00 1010 |d|fffffff | Increment f
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_INCF:
		result := mc.readFile(inst.File) + 1

		cycles := mc.writeback(inst, result)
		mc.setZero(result)

		return cycles

	// INCFSZ|00 1111 |d|fffffff | Increment f, skip if zero
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_INCFSZ:
		result := mc.readFile(inst.File) + 1
		cycles := mc.writeback(inst, result)

		if result == 0 {
			mc.skip()
			return 2
		}

		return cycles

	// IORWF |00 0100 |d|fffffff | Inclusive OR W with f
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_IORWF:
		result := mc.State.W | mc.readFile(inst.File)

		cycles := mc.writeback(inst, result)
		mc.setZero(result)

		return cycles

	// MOVF  |00 1000 |d|fffffff | Move f
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_MOVF:
		result := mc.readFile(inst.File)

		cycles := mc.writeback(inst, result)
		mc.setZero(result)

		return cycles

	// MOVWF |00 0000 |1|fffffff | Move W to f
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_MOVWF:
		return mc.writeFile(inst.File, mc.State.W)

	// RLF   |00 1101 |d|fffffff | Rotate left f through carry
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_RLF:
		value := mc.readFile(inst.File)
		result := value << 1

		if mc.State.Status&FLAG_C != 0 {
			result |= 0x01
		}

		cycles := mc.writeback(inst, result)
		mc.setCarry(value&0x80 != 0)

		return cycles

	// RRF   |00 1100 |d|fffffff | Rotate right f through carry
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_RRF:
		value := mc.readFile(inst.File)
		result := value >> 1

		if mc.State.Status&FLAG_C != 0 {
			result |= 0x80
		}

		cycles := mc.writeback(inst, result)
		mc.setCarry(value&0x01 != 0)

		return cycles

	// SUBWF |00 0010 |d|fffffff | Subtract W from f
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_SUBWF:
		value := mc.readFile(inst.File)
		result := value - mc.State.W

		mc.setCarry(value >= mc.State.W)
		mc.setDigit(value&0xF >= mc.State.W&0xF)

		cycles := mc.writeback(inst, result)
		mc.setZero(result)

		return cycles

	// SWAPF |00 1110 |d|fffffff | Swap nibbles of f
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_SWAPF:
		value := mc.readFile(inst.File)

		return mc.writeback(inst, value<<4|value>>4)

	// XORWF |00 0110 |d|fffffff | Exclusive OR W with f
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_XORWF:
		result := mc.State.W ^ mc.readFile(inst.File)

		cycles := mc.writeback(inst, result)
		mc.setZero(result)

		return cycles

	// BCF   |01 |00 |bbb |fffffff | Clear bit b of f
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_BCF:
		value := mc.readFile(inst.File) &^ (uint8(1) << inst.Bit)

		return mc.writeFile(inst.File, value)

	// BSF   |01 |01 |bbb |fffffff | Set bit b of f
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_BSF:
		value := mc.readFile(inst.File) | uint8(1)<<inst.Bit

		return mc.writeFile(inst.File, value)

	// BTFSC |01 |10 |bbb |fffffff | Skip next if bit b of f clear
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_BTFSC:
		if mc.readFile(inst.File)&(uint8(1)<<inst.Bit) == 0 {
			mc.skip()
			return 2
		}

		return 1

	// BTFSS |01 |11 |bbb |fffffff | Skip next if bit b of f set
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_BTFSS:
		if mc.readFile(inst.File)&(uint8(1)<<inst.Bit) != 0 {
			mc.skip()
			return 2
		}

		return 1

	// ADDLW |11 1110 |kkkkkkkk | Add literal and W
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_ADDLW:
		literal := uint8(inst.Literal)
		sum := uint16(mc.State.W) + uint16(literal)

		mc.setCarry(sum > 0xFF)
		mc.setDigit((mc.State.W&0xF)+(literal&0xF) > 0xF)

		mc.State.W = uint8(sum)
		mc.setZero(mc.State.W)

		return 1

	// ANDLW |11 1001 |kkkkkkkk | AND literal with W
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_ANDLW:
		mc.State.W &= uint8(inst.Literal)
		mc.setZero(mc.State.W)

		return 1

	// IORLW |11 1000 |kkkkkkkk | Inclusive OR literal with W
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_IORLW:
		mc.State.W |= uint8(inst.Literal)
		mc.setZero(mc.State.W)

		return 1

	// MOVLW |11 00xx |kkkkkkkk | Move literal to W
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_MOVLW:
		mc.State.W = uint8(inst.Literal)

		return 1

	// SUBLW |11 1100 |kkkkkkkk | Subtract W from literal
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_SUBLW:
		literal := uint8(inst.Literal)
		result := literal - mc.State.W

		mc.setCarry(literal >= mc.State.W)
		mc.setDigit(literal&0xF >= mc.State.W&0xF)

		mc.State.W = result
		mc.setZero(result)

		return 1

	// XORLW |11 1010 |kkkkkkkk | Exclusive OR literal with W
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_XORLW:
		mc.State.W ^= uint8(inst.Literal)
		mc.setZero(mc.State.W)

		return 1

	// CALL  |100 |kkkkkkkkkkk | Call subroutine
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_CALL:
		mc.push(mc.State.Program)
		mc.State.Program = (inst.Literal & 0x7FF) |
			uint16(mc.State.Pclath&0x18)<<8

		return 2

	// GOTO  |101 |kkkkkkkkkkk | Unconditional branch
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_GOTO:
		mc.State.Program = (inst.Literal & 0x7FF) |
			uint16(mc.State.Pclath&0x18)<<8

		return 2

	// RETURN|00 0000 0000 1000 | Return from subroutine
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_RETURN:
		mc.State.Program = mc.pop()

		return 2

	// RETLW |11 01xx |kkkkkkkk | Return with literal in W
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_RETLW:
		mc.State.W = uint8(inst.Literal)
		mc.State.Program = mc.pop()

		return 2

	// RETFIE|00 0000 0000 1001 | Return from interrupt
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_RETFIE:
		mc.State.Program = mc.pop()
		mc.State.Intcon |= FLAG_GIE

		return 2

	// SLEEP |00 0000 0110 0011 | Enter standby mode
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_SLEEP:
		mc.State.Status = (mc.State.Status | FLAG_TO) &^ FLAG_PD
		mc.State.Wdt.Counter = 0
		mc.State.Sleeping = true

		return 1

	// CLRWDT|00 0000 0110 0100 | Clear watchdog timer
	// ----- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case encoding.OP_CLRWDT:
		mc.State.Wdt.Counter = 0

		if mc.State.Option&OPTION_PSA != 0 {
			mc.State.Timer0.Prescaler = 0
		}

		mc.State.Status |= FLAG_TO | FLAG_PD

		return 1
	}

	return 1
}
