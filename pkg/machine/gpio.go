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

// gpioLevels composes the visible pin levels: external drive on inputs, the
// output latch on outputs.
func (mc *Machine) gpioLevels() uint8 {
	gpio := &mc.State.Gpio

	return (gpio.Pins&gpio.Tris | gpio.Latch&^gpio.Tris) & 0x3F
}

// gpioRead samples the port and recaptures the mismatch baseline used for
// interrupt-on-change.
func (mc *Machine) gpioRead() uint8 {
	levels := mc.gpioLevels()
	mc.State.Gpio.Compare = levels

	return levels
}

// DrivePin sets the external level of a single pin and propagates the edge
// to interrupt-on-change, the INT pin, and the timer clock inputs.
func (mc *Machine) DrivePin(pin uint8, high bool) {
	if pin > 5 {
		return
	}

	before := mc.gpioLevels()

	if high {
		mc.State.Gpio.Pins |= uint8(1) << pin
	} else {
		mc.State.Gpio.Pins &^= uint8(1) << pin
	}

	after := mc.gpioLevels()

	if before == after {
		return
	}

	rising := after&(uint8(1)<<pin) != 0

	if (after^mc.State.Gpio.Compare)&mc.State.Gpio.Ioc&mc.State.Gpio.Tris != 0 {
		mc.State.Intcon |= FLAG_GPIF
	}

	// GP2 doubles as T0CKI and INT
	if pin == 2 {
		if mc.State.Option&OPTION_T0CS != 0 {
			if rising != (mc.State.Option&OPTION_T0SE != 0) {
				mc.clockTimer0()
			}
		}

		if rising == (mc.State.Option&OPTION_INTEDG != 0) {
			mc.State.Intcon |= FLAG_INTF
		}
	}

	// GP5 doubles as T1CKI
	if pin == 5 && rising {
		t1con := mc.State.T1con

		if t1con&T1CON_TMR1ON != 0 && t1con&T1CON_TMR1CS != 0 {
			mc.clockTimer1()
		}
	}

	if mc.State.Sleeping && mc.wakePending() {
		mc.wake(false)
	}
}
