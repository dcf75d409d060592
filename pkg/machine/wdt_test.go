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

func TestWdtTimeoutReset(t *testing.T) {
	var mc machine.Machine

	mc.Reset(machine.RESET_POR)
	mc.State.Wdt.Enabled = true
	mc.State.Wdt.Period = 3
	mc.State.Option = 0x00 // prescaler on Timer0

	testLoadWords(t, &mc, make([]uint16, 8))

	for i := 0; i < 3; i++ {
		mc.StepCycle()
	}

	if mc.State.LastReset != machine.RESET_WDT {
		t.Fatalf("LastReset mismatch\nwant:%v\nhave:%v",
			machine.RESET_WDT, mc.State.LastReset)
	}

	if mc.State.Program != 0x0000 {
		t.Errorf("Program mismatch\nwant:0x0000\nhave:%#04x",
			mc.State.Program)
	}

	if mc.State.Status&machine.FLAG_TO != 0 {
		t.Error("TO not cleared by watchdog reset")
	}
}

func TestWdtPostscaler(t *testing.T) {
	var mc machine.Machine

	mc.Reset(machine.RESET_POR)
	mc.State.Wdt.Enabled = true
	mc.State.Wdt.Period = 2
	mc.State.Option = machine.OPTION_PSA | 0x01 // 1:2 postscale

	testLoadWords(t, &mc, make([]uint16, 8))

	// First timeout only advances the postscaler
	mc.StepCycle()
	mc.StepCycle()

	if mc.State.LastReset != machine.RESET_POR {
		t.Fatal("Reset before postscaler elapsed")
	}

	mc.StepCycle()
	mc.StepCycle()

	if mc.State.LastReset != machine.RESET_WDT {
		t.Fatalf("LastReset mismatch\nwant:%v\nhave:%v",
			machine.RESET_WDT, mc.State.LastReset)
	}
}

func TestWdtSleepWake(t *testing.T) {
	var mc machine.Machine

	mc.Reset(machine.RESET_POR)
	mc.State.Wdt.Enabled = true
	mc.State.Wdt.Period = 3
	mc.State.Option = 0x00 // prescaler on Timer0

	testLoadWords(t, &mc, []uint16{
		0b00_0000_0110_0011, // SLEEP
		0b11_0000_0001_0001, // MOVLW 0x11
	})

	// SLEEP, two standby cycles (the second one wakes), then MOVLW
	if reason := mc.Step(4); reason != machine.STOP_STEP {
		t.Fatalf("StopReason mismatch\nwant:%d\nhave:%d",
			machine.STOP_STEP, reason)
	}

	if mc.State.Sleeping {
		t.Error("Machine still sleeping after watchdog wake")
	}

	if mc.State.W != 0x11 {
		t.Errorf("W mismatch\nwant:0x11\nhave:%#02x", mc.State.W)
	}

	if mc.State.Status&machine.FLAG_TO != 0 {
		t.Error("TO not cleared by watchdog wake")
	}

	if mc.State.Status&machine.FLAG_PD != 0 {
		t.Error("PD not cleared by SLEEP")
	}
}

func TestWdtDisabled(t *testing.T) {
	var mc machine.Machine

	mc.Reset(machine.RESET_POR)
	mc.State.Wdt.Period = 2

	testLoadWords(t, &mc, make([]uint16, 8))

	mc.Step(6)

	if mc.State.LastReset != machine.RESET_POR {
		t.Error("Watchdog fired while disabled")
	}

	if mc.State.Wdt.Counter != 0 {
		t.Errorf("Counter mismatch\nwant:0\nhave:%d", mc.State.Wdt.Counter)
	}
}

func TestClrwdt(t *testing.T) {
	var mc machine.Machine

	mc.Reset(machine.RESET_POR)
	mc.State.Wdt.Enabled = true
	mc.State.Wdt.Counter = 10
	mc.State.Status = 0x00
	mc.State.Option = machine.OPTION_PSA
	mc.State.Timer0.Prescaler = 3

	testLoadWords(t, &mc, []uint16{
		0b00_0000_0110_0100, // CLRWDT
	})

	mc.StepInstruction()

	// One watchdog tick lands after the instruction clears the counter
	if mc.State.Wdt.Counter != 1 {
		t.Errorf("Counter mismatch\nwant:1\nhave:%d", mc.State.Wdt.Counter)
	}

	if mc.State.Timer0.Prescaler != 0 {
		t.Errorf("Prescaler mismatch\nwant:0\nhave:%d",
			mc.State.Timer0.Prescaler)
	}

	want := uint8(machine.FLAG_TO | machine.FLAG_PD)
	if mc.State.Status&want != want {
		t.Errorf("Status mismatch\nwant:%#02x\nhave:%#02x",
			want, mc.State.Status&want)
	}
}

func TestWdtConfigGate(t *testing.T) {
	var mc machine.Machine

	mc.SetConfig(machine.CONFIG_WDTE)

	if !mc.State.Wdt.Enabled {
		t.Error("WDTE did not enable the watchdog")
	}

	mc.SetConfig(0x0000)

	if mc.State.Wdt.Enabled {
		t.Error("Watchdog enabled with WDTE clear")
	}
}
