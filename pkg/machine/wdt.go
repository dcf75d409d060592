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

// tickWdt advances the watchdog by one instruction cycle. A timeout while
// awake resets the part with TO clear; a timeout in standby wakes it.
func (mc *Machine) tickWdt() {
	if !mc.State.Wdt.Enabled {
		return
	}

	if mc.State.Wdt.Period == 0 {
		mc.State.Wdt.Period = WDT_PERIOD
	}

	mc.State.Wdt.Counter++

	if mc.State.Wdt.Counter < mc.State.Wdt.Period {
		return
	}

	mc.State.Wdt.Counter = 0

	// The shared prescaler postscales the WDT when PSA assigns it here
	if mc.State.Option&OPTION_PSA != 0 {
		rate := uint16(1) << (mc.State.Option & OPTION_PS)

		mc.State.Timer0.Prescaler++

		if mc.State.Timer0.Prescaler < rate {
			return
		}

		mc.State.Timer0.Prescaler = 0
	}

	if mc.State.Sleeping {
		mc.wake(true)
	} else {
		mc.Reset(RESET_WDT)
	}
}
