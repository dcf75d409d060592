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

package hexfile

import (
	"bufio"
	"encoding/hex"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/lassandro/gopic/pkg/machine"
)

var (
	ErrFormat   = errors.New("malformed record")
	ErrChecksum = errors.New("record checksum mismatch")
)

// Record types
const (
	recData         = 0x00
	recEndOfFile    = 0x01
	recExtendedSeg  = 0x02
	recExtendedAddr = 0x04
)

// Word address regions. The HEX file addresses bytes, two per program
// word, little-endian.
const (
	wordConfig   uint32 = 0x2007
	wordEepromLo uint32 = 0x2100
	wordEepromHi uint32 = 0x217F
)

// Load parses Intel HEX records from r and fills program memory, the
// EEPROM data region, and the configuration word. Unknown regions such as
// the ID locations are skipped.
func Load(r io.Reader, mc *machine.Machine) error {
	scanner := bufio.NewScanner(r)

	var base uint32
	var record int

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if len(line) == 0 {
			continue
		}

		record++

		if line[0] != ':' {
			return errors.Wrapf(ErrFormat, "record %d", record)
		}

		data, err := hex.DecodeString(line[1:])

		if err != nil {
			return errors.Wrapf(ErrFormat, "record %d", record)
		}

		if len(data) < 5 || len(data) != int(data[0])+5 {
			return errors.Wrapf(ErrFormat, "record %d", record)
		}

		var sum uint8
		for _, value := range data {
			sum += value
		}

		if sum != 0 {
			return errors.Wrapf(ErrChecksum, "record %d", record)
		}

		length := int(data[0])
		addr := uint32(data[1])<<8 | uint32(data[2])
		payload := data[4 : 4+length]

		switch data[3] {
		case recData:
			if length%2 != 0 {
				return errors.Wrapf(ErrFormat, "record %d", record)
			}

			for i := 0; i < length; i += 2 {
				word := uint16(payload[i]) | uint16(payload[i+1])<<8

				err := store(mc, (base+addr+uint32(i))/2, word)

				if err != nil {
					return errors.Wrapf(err, "record %d", record)
				}
			}

		case recEndOfFile:
			return nil

		case recExtendedSeg:
			if length != 2 {
				return errors.Wrapf(ErrFormat, "record %d", record)
			}

			base = (uint32(payload[0])<<8 | uint32(payload[1])) << 4

		case recExtendedAddr:
			if length != 2 {
				return errors.Wrapf(ErrFormat, "record %d", record)
			}

			base = (uint32(payload[0])<<8 | uint32(payload[1])) << 16

		default:
			return errors.Wrapf(ErrFormat, "record %d", record)
		}
	}

	return scanner.Err()
}

func store(mc *machine.Machine, word uint32, value uint16) error {
	switch {
	case word < uint32(machine.ROM_SIZE):
		return mc.LoadWord(uint16(word), value)

	case word == wordConfig:
		mc.SetConfig(value)

	case word >= wordEepromLo && word <= wordEepromHi:
		return mc.LoadEeprom(uint16(word-wordEepromLo), uint8(value))
	}

	return nil
}
