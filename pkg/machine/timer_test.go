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

package machine_test

import (
	"testing"

	"github.com/lassandro/gopic/pkg/machine"
)

func TestTimer0Internal(t *testing.T) {
	var mc machine.Machine

	mc.Reset(machine.RESET_POR)
	mc.State.Option = machine.OPTION_PSA // 1:1, internal clock

	testLoadWords(t, &mc, make([]uint16, 8))

	mc.Step(4)

	if mc.State.Timer0.Counter != 4 {
		t.Errorf("Counter mismatch\nwant:4\nhave:%d", mc.State.Timer0.Counter)
	}
}

func TestTimer0Prescaler(t *testing.T) {
	var mc machine.Machine

	mc.Reset(machine.RESET_POR)
	mc.State.Option = 0x01 // 1:4 prescale, internal clock

	testLoadWords(t, &mc, make([]uint16, 16))

	mc.Step(8)

	if mc.State.Timer0.Counter != 2 {
		t.Errorf("Counter mismatch\nwant:2\nhave:%d", mc.State.Timer0.Counter)
	}
}

func TestTimer0Overflow(t *testing.T) {
	var mc machine.Machine

	mc.Reset(machine.RESET_POR)
	mc.State.Option = machine.OPTION_PSA
	mc.State.Timer0.Counter = 0xFF

	testLoadWords(t, &mc, make([]uint16, 4))

	mc.Step(1)

	if mc.State.Timer0.Counter != 0x00 {
		t.Errorf("Counter mismatch\nwant:0x00\nhave:%#02x",
			mc.State.Timer0.Counter)
	}

	if mc.State.Intcon&machine.FLAG_T0IF == 0 {
		t.Error("T0IF not set on Timer0 overflow")
	}
}

func TestTimer0WriteInhibit(t *testing.T) {
	var mc machine.Machine

	mc.Reset(machine.RESET_POR)
	mc.State.Option = machine.OPTION_PSA
	mc.State.W = 0x10

	testLoadWords(t, &mc, []uint16{
		0b00_0000_1000_0001, // MOVWF TMR0
		0x0000,
		0x0000,
		0x0000,
	})

	// The write and the cycle after it do not count
	mc.Step(2)

	if mc.State.Timer0.Counter != 0x10 {
		t.Errorf("Counter mismatch\nwant:0x10\nhave:%#02x",
			mc.State.Timer0.Counter)
	}

	mc.Step(1)

	if mc.State.Timer0.Counter != 0x11 {
		t.Errorf("Counter mismatch\nwant:0x11\nhave:%#02x",
			mc.State.Timer0.Counter)
	}
}

func TestTimer0WriteClearsPrescaler(t *testing.T) {
	var mc machine.Machine

	mc.Reset(machine.RESET_POR)
	mc.State.Option = 0x00 // 1:2 prescale, assigned to Timer0
	mc.State.Timer0.Prescaler = 1

	testLoadWords(t, &mc, []uint16{
		0b00_0000_1000_0001, // MOVWF TMR0
	})

	mc.Step(1)

	if mc.State.Timer0.Prescaler != 0 {
		t.Errorf("Prescaler mismatch\nwant:0\nhave:%d",
			mc.State.Timer0.Prescaler)
	}
}

func TestTimer1Internal(t *testing.T) {
	var mc machine.Machine

	mc.Reset(machine.RESET_POR)
	mc.State.T1con = machine.T1CON_TMR1ON

	testLoadWords(t, &mc, make([]uint16, 8))

	mc.Step(4)

	if mc.State.Timer1.Counter != 4 {
		t.Errorf("Counter mismatch\nwant:4\nhave:%d", mc.State.Timer1.Counter)
	}
}

func TestTimer1Prescaler(t *testing.T) {
	var mc machine.Machine

	mc.Reset(machine.RESET_POR)
	mc.State.T1con = machine.T1CON_TMR1ON | 0x10 // 1:2 prescale

	testLoadWords(t, &mc, make([]uint16, 8))

	mc.Step(4)

	if mc.State.Timer1.Counter != 2 {
		t.Errorf("Counter mismatch\nwant:2\nhave:%d", mc.State.Timer1.Counter)
	}
}

func TestTimer1Overflow(t *testing.T) {
	var mc machine.Machine

	mc.Reset(machine.RESET_POR)
	mc.State.T1con = machine.T1CON_TMR1ON
	mc.State.Timer1.Counter = 0xFFFF

	testLoadWords(t, &mc, make([]uint16, 4))

	mc.Step(1)

	if mc.State.Timer1.Counter != 0x0000 {
		t.Errorf("Counter mismatch\nwant:0x0000\nhave:%#04x",
			mc.State.Timer1.Counter)
	}

	if mc.State.Pir1&machine.FLAG_TMR1IF == 0 {
		t.Error("TMR1IF not set on Timer1 overflow")
	}
}

func TestTimer1Disabled(t *testing.T) {
	var mc machine.Machine

	mc.Reset(machine.RESET_POR)

	testLoadWords(t, &mc, make([]uint16, 4))

	mc.Step(4)

	if mc.State.Timer1.Counter != 0 {
		t.Errorf("Counter mismatch\nwant:0\nhave:%d", mc.State.Timer1.Counter)
	}
}

func TestTimer1RegisterAccess(t *testing.T) {
	var mc machine.Machine

	mc.Reset(machine.RESET_POR)

	mc.Poke(machine.REG_TMR1H, 0x12)
	mc.Poke(machine.REG_TMR1L, 0x34)

	if mc.State.Timer1.Counter != 0x1234 {
		t.Errorf("Counter mismatch\nwant:0x1234\nhave:%#04x",
			mc.State.Timer1.Counter)
	}

	if have := mc.Peek(machine.REG_TMR1H); have != 0x12 {
		t.Errorf("TMR1H mismatch\nwant:0x12\nhave:%#02x", have)
	}

	if have := mc.Peek(machine.REG_TMR1L); have != 0x34 {
		t.Errorf("TMR1L mismatch\nwant:0x34\nhave:%#02x", have)
	}
}
