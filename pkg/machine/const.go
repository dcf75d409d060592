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

const (
	ROM_SIZE    uint16 = 1024
	EEPROM_SIZE        = 128
	STACK_DEPTH        = 8
)

const (
	VEC_RESET     uint16 = 0x0000
	VEC_INTERRUPT        = 0x0004
)

// Register file map. Bank 1 registers carry bit 7 set; INDF, PCL, STATUS,
// FSR, PCLATH and INTCON alias across both banks.
const (
	REG_INDF   uint8 = 0x00
	REG_TMR0         = 0x01
	REG_PCL          = 0x02
	REG_STATUS       = 0x03
	REG_FSR          = 0x04
	REG_GPIO         = 0x05
	REG_PCLATH       = 0x0A
	REG_INTCON       = 0x0B
	REG_PIR1         = 0x0C
	REG_TMR1L        = 0x0E
	REG_TMR1H        = 0x0F
	REG_T1CON        = 0x10
	REG_CMCON        = 0x19
	REG_OPTION       = 0x81
	REG_TRISIO       = 0x85
	REG_PIE1         = 0x8C
	REG_PCON         = 0x8E
	REG_OSCCAL       = 0x90
	REG_WPU          = 0x95
	REG_IOC          = 0x96
	REG_EEDAT        = 0x9A
	REG_EEADR        = 0x9B
	REG_EECON1       = 0x9C
	REG_EECON2       = 0x9D
)

// STATUS bits
const (
	FLAG_C   uint8 = 1 << 0
	FLAG_DC        = 1 << 1
	FLAG_Z         = 1 << 2
	FLAG_PD        = 1 << 3
	FLAG_TO        = 1 << 4
	FLAG_RP0       = 1 << 5
	FLAG_RP1       = 1 << 6
	FLAG_IRP       = 1 << 7
)

// INTCON bits
const (
	FLAG_GPIF uint8 = 1 << 0
	FLAG_INTF       = 1 << 1
	FLAG_T0IF       = 1 << 2
	FLAG_GPIE       = 1 << 3
	FLAG_INTE       = 1 << 4
	FLAG_T0IE       = 1 << 5
	FLAG_PEIE       = 1 << 6
	FLAG_GIE        = 1 << 7
)

// PIR1/PIE1 bits, flag and enable share positions
const (
	FLAG_TMR1IF uint8 = 1 << 0
	FLAG_CMIF         = 1 << 3
	FLAG_EEIF         = 1 << 7
)

// OPTION_REG bits
const (
	OPTION_PS     uint8 = 0x07
	OPTION_PSA          = 1 << 3
	OPTION_T0SE         = 1 << 4
	OPTION_T0CS         = 1 << 5
	OPTION_INTEDG       = 1 << 6
	OPTION_GPPU         = 1 << 7
)

// T1CON bits
const (
	T1CON_TMR1ON  uint8 = 1 << 0
	T1CON_TMR1CS        = 1 << 1
	T1CON_T1SYNC        = 1 << 2
	T1CON_T1OSCEN       = 1 << 3
	T1CON_CKPS          = 0x30
	T1CON_TMR1GE        = 1 << 6
)

// EECON1 bits
const (
	EECON_RD    uint8 = 1 << 0
	EECON_WR          = 1 << 1
	EECON_WREN        = 1 << 2
	EECON_WRERR       = 1 << 3
)

// PCON bits, active low power status flags
const (
	PCON_BOD uint8 = 1 << 0
	PCON_POR       = 1 << 1
)

// Configuration word bits
const (
	CONFIG_WDTE uint16 = 1 << 3
)

// Register values after a power-on reset (datasheet Table 9-1)
const (
	INIT_STATUS uint8 = 0x18
	INIT_OPTION       = 0xFF
	INIT_TRISIO       = 0x3F
	INIT_WPU          = 0x37
	INIT_CMCON        = 0x07
	INIT_OSCCAL       = 0x80
	INIT_PINS         = 0x3F
)

// Nominal watchdog period in instruction cycles: 18ms at Fosc=4MHz
const WDT_PERIOD uint32 = 18000
