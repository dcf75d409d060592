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

// tickTimer0 advances Timer0 by one instruction cycle when it is clocked
// internally. Writes to TMR0 inhibit counting for two cycles.
func (mc *Machine) tickTimer0() {
	if mc.State.Timer0.Inhibit > 0 {
		mc.State.Timer0.Inhibit--
		return
	}

	if mc.State.Option&OPTION_T0CS != 0 {
		return
	}

	mc.clockTimer0()
}

// clockTimer0 applies one clock event to Timer0, through the prescaler when
// it is assigned. Overflow raises T0IF.
func (mc *Machine) clockTimer0() {
	if mc.State.Option&OPTION_PSA == 0 {
		rate := uint16(2) << (mc.State.Option & OPTION_PS)

		mc.State.Timer0.Prescaler++

		if mc.State.Timer0.Prescaler < rate {
			return
		}

		mc.State.Timer0.Prescaler = 0
	}

	mc.State.Timer0.Counter++

	if mc.State.Timer0.Counter == 0 {
		mc.State.Intcon |= FLAG_T0IF
	}
}

// tickTimer1 advances Timer1 by one instruction cycle when it is enabled and
// clocked internally.
func (mc *Machine) tickTimer1() {
	t1con := mc.State.T1con

	if t1con&T1CON_TMR1ON == 0 || t1con&T1CON_TMR1CS != 0 {
		return
	}

	mc.clockTimer1()
}

// clockTimer1 applies one clock event to Timer1 through its prescaler.
// Overflow raises TMR1IF.
func (mc *Machine) clockTimer1() {
	rate := uint8(1) << ((mc.State.T1con & T1CON_CKPS) >> 4)

	mc.State.Timer1.Prescaler++

	if mc.State.Timer1.Prescaler < rate {
		return
	}

	mc.State.Timer1.Prescaler = 0
	mc.State.Timer1.Counter++

	if mc.State.Timer1.Counter == 0 {
		mc.State.Pir1 |= FLAG_TMR1IF
	}
}
