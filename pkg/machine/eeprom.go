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

// eepromControl handles writes to EECON1. RD completes immediately; WR
// requires WREN and a completed EECON2 arming sequence, otherwise WRERR is
// latched.
func (mc *Machine) eepromControl(value uint8) {
	mc.State.Eecon1 = value & (EECON_WREN | EECON_WRERR)

	if value&EECON_RD != 0 {
		mc.State.Eedat = mc.State.Eeprom[mc.State.Eeadr&0x7F]
	}

	if value&EECON_WR != 0 {
		if value&EECON_WREN != 0 && mc.State.Eearm == 2 {
			mc.State.Eeprom[mc.State.Eeadr&0x7F] = mc.State.Eedat
			mc.State.Pir1 |= FLAG_EEIF
		} else {
			mc.State.Eecon1 |= EECON_WRERR
		}

		mc.State.Eearm = 0
	}
}

// eepromArm tracks the 0x55/0xAA unlock sequence written to EECON2.
func (mc *Machine) eepromArm(value uint8) {
	switch {
	case value == 0x55:
		mc.State.Eearm = 1
	case value == 0xAA && mc.State.Eearm == 1:
		mc.State.Eearm = 2
	default:
		mc.State.Eearm = 0
	}
}
