// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package parallel

import (
	"time"

	"github.com/periph-parallel/parallel/gpioreg"
)

// rscdLevel returns the level RSCD must be driven to for dataMode (true)
// or command mode (false), under this descriptor's protocol. The two
// protocols invert the convention; this is intentional.
func (c *Chip) rscdLevel(dataMode bool) gpioreg.Level {
	switch c.proto {
	case Protocol6800:
		if dataMode {
			return gpioreg.High
		}
		return gpioreg.Low
	default: // Protocol8080
		if dataMode {
			return gpioreg.Low
		}
		return gpioreg.High
	}
}

func (c *Chip) bit(pin int) uint32 {
	return uint32(1) << uint(pin&31)
}

// commitMasks applies setMask via the output-set register and clearMask
// via the output-clear register, in the order that guarantees the bit
// shared between a data mask and a strobe mask settles on the data lines
// before the strobe's active edge. clearFirst chooses clear-then-set
// (6800: ENWR rises last) over set-then-clear (8080: ENWR falls last).
func (c *Chip) commitMasks(setMask, clearMask uint32, clearFirst bool) {
	if clearFirst {
		gpioreg.ClearOutputs(c.win, clearMask)
		gpioreg.SetOutputs(c.win, setMask)
	} else {
		gpioreg.SetOutputs(c.win, setMask)
		gpioreg.ClearOutputs(c.win, clearMask)
	}
}

// dataMasks returns the set/clear masks that load the bpc bits of nibble,
// MSB first, onto the active data pins.
func (c *Chip) dataMasks(nibble uint8) (setMask, clearMask uint32) {
	pins := c.activeDataPins()
	for i, pin := range pins {
		b := c.bit(pin)
		if nibble&(1<<uint(c.bpc-1-i)) != 0 {
			setMask |= b
		} else {
			clearMask |= b
		}
	}
	return setMask, clearMask
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// writeBytes implements the write procedure of §4.5: direction setup,
// mode assertion, then 8/bpc nibble or byte phases per input byte, then
// an urgent return of the data pins to input.
func (c *Chip) writeBytes(buf []byte, dataMode bool) error {
	dir := c.computeDirectionWords(gpioreg.Output)
	c.wait()
	c.commitDirectionWords(dir)

	gpioreg.WriteLevel(c.win, c.rscd, c.rscdLevel(dataMode))
	c.advance()
	c.pending = c.tsetup

	enwrBit := c.bit(c.enwr)
	numPhases := 8 / c.bpc
	for _, b := range buf {
		for phase := 0; phase < numPhases; phase++ {
			nibble := nibbleOf(b, phase, c.bpc)

			setMask, clearMask := c.dataMasks(nibble)
			var clearFirst bool
			switch c.proto {
			case Protocol6800:
				setMask |= enwrBit // ENWR rises: active edge
				clearFirst = true
			default: // Protocol8080
				clearMask |= enwrBit // ENWR falls: active edge
				clearFirst = false
			}

			c.wait()
			c.commitMasks(setMask, clearMask, clearFirst)
			c.advance()
			c.pending = c.tclock

			c.wait()
			switch c.proto {
			case Protocol6800:
				gpioreg.WriteLevel(c.win, c.enwr, gpioreg.Low)
			default:
				gpioreg.WriteLevel(c.win, c.enwr, gpioreg.High)
			}
			c.advance()
			if phase == numPhases-1 {
				c.pending = c.tproc
			} else {
				c.pending = c.tclock
			}
		}
	}

	c.commitDirectionWords(c.computeDirectionWords(gpioreg.Input))
	return nil
}

// nibbleOf returns the bpc-wide slice of b transmitted during phase
// (0-indexed), high nibble first in 4-bit mode.
func nibbleOf(b byte, phase, bpc int) uint8 {
	if bpc == 8 {
		return b
	}
	if phase == 0 {
		return b >> 4
	}
	return b & 0x0F
}

// readBytes implements the read procedure of §4.5. Requires RWRD defined;
// callers check that before calling.
func (c *Chip) readBytes(buf []byte, dataMode bool) error {
	setMask, clearMask := uint32(0), uint32(0)
	rscdBit := c.bit(c.rscd)
	if c.rscdLevel(dataMode) == gpioreg.High {
		setMask |= rscdBit
	} else {
		clearMask |= rscdBit
	}
	if c.proto == Protocol6800 {
		setMask |= c.bit(c.rwrd) // enter read mode
	}

	c.wait()
	c.commitMasks(setMask, clearMask, false)
	c.advance()
	c.pending = c.tsetup

	numPhases := 8 / c.bpc
	for i := range buf {
		var acc uint8
		for phase := 0; phase < numPhases; phase++ {
			c.wait()
			switch c.proto {
			case Protocol6800:
				gpioreg.WriteLevel(c.win, c.enwr, gpioreg.High)
			default:
				gpioreg.WriteLevel(c.win, c.rwrd, gpioreg.Low)
			}
			c.advance()
			c.pending = c.tread

			c.wait()
			levels := gpioreg.ReadLevels(c.win)
			nibble := c.sampleNibble(levels)
			acc = (acc << uint(c.bpc)) | nibble
			c.pending = c.tclock // no advance: the sample is instantaneous

			c.wait()
			switch c.proto {
			case Protocol6800:
				gpioreg.WriteLevel(c.win, c.enwr, gpioreg.Low)
			default:
				gpioreg.WriteLevel(c.win, c.rwrd, gpioreg.High)
			}
			c.advance()
			if phase == numPhases-1 {
				c.pending = maxDuration(c.tproc, c.thold)
			} else {
				c.pending = maxDuration(c.tclock, c.thold)
			}
		}
		buf[i] = acc
	}

	if c.proto == Protocol6800 {
		gpioreg.WriteLevel(c.win, c.rwrd, gpioreg.Low) // back to write mode, no wait
	}
	return nil
}

// sampleNibble extracts the bpc data bits from levels (the pin-level
// word), MSB first, in the order the active data pins were wired.
func (c *Chip) sampleNibble(levels uint32) uint8 {
	var nibble uint8
	for _, pin := range c.activeDataPins() {
		nibble <<= 1
		if levels&c.bit(pin) != 0 {
			nibble |= 1
		}
	}
	return nibble
}
