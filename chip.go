// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package parallel

import (
	"errors"
	"time"

	"github.com/periph-parallel/parallel/gpioreg"
)

// Unused marks a pin slot as not wired. Passing Unused for every one of
// D3..D0 selects 4-bit mode; passing it for RWRD selects a write-only
// descriptor.
const Unused = -1

// Protocol selects the wire convention used to latch data onto, or off,
// the bus.
type Protocol int

// The two protocols this package drives.
const (
	// Protocol6800 is the Motorola-style convention: ENWR is a latching
	// enable pulse and RWRD separately selects direction.
	Protocol6800 Protocol = 6800
	// Protocol8080 is the Intel-style convention: ENWR and RWRD are
	// separate active-low write/read strobes.
	Protocol8080 Protocol = 8080
)

// ErrWriteOnly is returned by ReadRegister and ReadData when the
// descriptor's RWRD pin is Unused.
var ErrWriteOnly = errors.New("parallel: descriptor has no read/write pin; write-only")

// Config describes one attached parallel-bus controller: which GPIO lines
// play which role, the chosen protocol, and the five timing parameters
// that shape its pulses.
type Config struct {
	// D7..D0 are the eight data-line pin numbers, MSB first. D3..D0 may
	// all be Unused (or any value outside [0,27]) to select 4-bit mode,
	// wiring only D7..D4. D7..D4 are taken as given, unvalidated.
	D7, D6, D5, D4 int
	D3, D2, D1, D0 int
	// RSCD is the register-select (6800) / command-data (8080) pin,
	// taken as given.
	RSCD int
	// ENWR is the enable (6800) / write-strobe (8080) pin, taken as
	// given.
	ENWR int
	// RWRD is the read/write (6800) / read-strobe (8080) pin. Any value
	// outside [0,27] selects a write-only descriptor.
	RWRD int
	// Protocol selects the wire convention.
	Protocol Protocol
	// TSetup is the delay after mode/strobe direction is asserted, before
	// the first edge.
	TSetup time.Duration
	// TClock is the half-period of the data strobe, and the delay
	// between nibbles in 4-bit mode.
	TClock time.Duration
	// TRead is the delay between asserting the read strobe and sampling
	// the data lines.
	TRead time.Duration
	// TProc is the delay between full bytes.
	TProc time.Duration
	// THold is the minimum hold time for output enable after a read
	// strobe.
	THold time.Duration
}

// Chip is an immutable descriptor for one attached parallel-bus
// controller, plus the mutable Timing Gate cursor the Transfer Engine
// schedules edges against.
//
// A Chip is not safe for concurrent transfers, and must not share any pin
// with another Chip whose transfers may interleave with its own.
type Chip struct {
	win gpioreg.Window

	data  [8]int // D7..D0
	rscd  int
	enwr  int
	rwrd  int
	proto Protocol

	tsetup, tclock, tread, tproc, thold time.Duration

	bpc int // 8 (8-bit mode) or 4 (4-bit mode)

	cursor  time.Time
	pending time.Duration
}

func normalizePin(pin int) int {
	if pin < 0 || pin > 27 {
		return Unused
	}
	return pin
}

// Open validates cfg, ensures the GPIO Register Window is mapped, programs
// the control lines to their idle state, sets every defined data pin to
// input and every defined control pin to output, and arms the Timing Gate
// cursor at the current time.
func Open(cfg Config) (*Chip, error) {
	win, err := gpioreg.Open()
	if err != nil {
		return nil, err
	}
	return newChip(win, cfg), nil
}

// newChip builds a Chip against an already-open Window, so tests can
// supply a gpioregtest.Window in place of a real memory-mapped one.
func newChip(win gpioreg.Window, cfg Config) *Chip {
	c := &Chip{
		win: win,
		data: [8]int{
			cfg.D7, cfg.D6, cfg.D5, cfg.D4,
			normalizePin(cfg.D3), normalizePin(cfg.D2), normalizePin(cfg.D1), normalizePin(cfg.D0),
		},
		rscd:   cfg.RSCD,
		enwr:   cfg.ENWR,
		rwrd:   normalizePin(cfg.RWRD),
		proto:  cfg.Protocol,
		tsetup: cfg.TSetup,
		tclock: cfg.TClock,
		tread:  cfg.TRead,
		tproc:  cfg.TProc,
		thold:  cfg.THold,
	}
	if c.data[4] == Unused {
		c.bpc = 4
	} else {
		c.bpc = 8
	}

	c.idleControlLines()
	c.setDataDirection(gpioreg.Input)
	c.setControlDirection(gpioreg.Output)

	c.cursor = time.Now()
	c.pending = 0
	return c
}

// Close releases the descriptor. Pin directions are not restored: data
// lines are left in the safe input state they were already in.
func (c *Chip) Close() error {
	return nil
}

// idleControlLines programs RWRD (if defined) and ENWR to their
// protocol-specific idle levels.
func (c *Chip) idleControlLines() {
	switch c.proto {
	case Protocol6800:
		if c.rwrd != Unused {
			gpioreg.WriteLevel(c.win, c.rwrd, gpioreg.Low) // write mode
		}
		gpioreg.WriteLevel(c.win, c.enwr, gpioreg.Low) // inactive
	case Protocol8080:
		if c.rwrd != Unused {
			gpioreg.WriteLevel(c.win, c.rwrd, gpioreg.High) // write strobe idle high
		}
		gpioreg.WriteLevel(c.win, c.enwr, gpioreg.High) // write strobe idle high
	}
}

func (c *Chip) setControlDirection(mode gpioreg.Mode) {
	if c.rwrd != Unused {
		gpioreg.SetMode(c.win, c.rwrd, mode)
	}
	gpioreg.SetMode(c.win, c.enwr, mode)
	gpioreg.SetMode(c.win, c.rscd, mode)
}

// setDataDirection sets every defined data pin to mode, via the
// compute/commit snapshot pattern below, with no Timing Gate involvement:
// this is the one-time safe default at construction, not a scheduled bus
// edge.
func (c *Chip) setDataDirection(mode gpioreg.Mode) {
	c.commitDirectionWords(c.computeDirectionWords(mode))
}

// computeDirectionWords snapshots function-select words 0..2 and patches
// in mode for every active data pin, without committing anything. The
// Transfer Engine uses this to stage a direction change at a scheduled
// edge: snapshot, WAIT, then commitDirectionWords.
func (c *Chip) computeDirectionWords(mode gpioreg.Mode) [3]uint32 {
	var words [3]uint32
	for i := range words {
		words[i] = gpioreg.FunctionSelectWord(c.win, i)
	}
	for _, pin := range c.activeDataPins() {
		words[pin/10] = gpioreg.WithMode(words[pin/10], pin, mode)
	}
	return words
}

// commitDirectionWords writes words back one word per write, so pins that
// share a function-select word change direction together; pins in
// different words change one word at a time.
func (c *Chip) commitDirectionWords(words [3]uint32) {
	for i := range words {
		gpioreg.SetFunctionSelectWord(c.win, i, words[i])
	}
}

// activeDataPins returns the data pins this descriptor actually drives:
// D7..D4 in 4-bit mode, D7..D0 in 8-bit mode.
func (c *Chip) activeDataPins() []int {
	return c.data[:c.bpc]
}
