// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpioregtest provides a fake gpioreg.Window for testing the pin
// primitives and the Transfer Engine without real hardware, the same way
// conn/gpio/gpiotest provides fake pins for the rest of the corpus.
package gpioregtest

import "github.com/periph-parallel/parallel/gpioreg"

// Window is a fake gpioreg.Window backed by a plain slice, plus a log of
// every SetWord call so tests can assert on the exact sequence and
// ordering of register writes a transfer performs.
//
// It reproduces one piece of real GPIO controller behavior that a dumb
// memory slice wouldn't: the output-set/output-clear registers latch a
// per-pin output value independently of the pin's function select, the
// same way the real peripheral does, and reading the level register
// returns that latch for any pin currently in Output mode. Pins left in
// Input mode keep whatever level a test pokes into the level register
// directly, simulating an external driver.
type Window struct {
	words []uint32
	latch [2]uint32
	Log   []WriteOp
}

// WriteOp records one SetWord call.
type WriteOp struct {
	Offset int
	Value  uint32
}

// Register word offsets, mirroring the layout gpioreg.Window implementations
// are expected to provide; kept private to this fake so the real package
// never depends on them.
const (
	functionSelectBase = 0
	outputSetBase      = 7
	outputClearBase    = 10
	levelBase          = 13
)

// New returns a Window with n words of backing storage, all zeroed.
func New(n int) *Window {
	return &Window{words: make([]uint32, n)}
}

// Word implements gpioreg.Window.
func (w *Window) Word(offset int) uint32 {
	if offset == levelBase || offset == levelBase+1 {
		return w.levelWord(offset - levelBase)
	}
	return w.words[offset]
}

// levelWord returns, bit by bit, the output latch for any pin currently
// in Output mode and the raw (test-poked) level word bit otherwise.
func (w *Window) levelWord(wordIdx int) uint32 {
	var out uint32
	for bit := 0; bit < 32; bit++ {
		mask := uint32(1) << uint(bit)
		pin := wordIdx*32 + bit
		if w.modeOf(pin) == gpioreg.Output {
			if w.latch[wordIdx]&mask != 0 {
				out |= mask
			}
			continue
		}
		if w.words[levelBase+wordIdx]&mask != 0 {
			out |= mask
		}
	}
	return out
}

// SetWord implements gpioreg.Window.
func (w *Window) SetWord(offset int, v uint32) {
	w.words[offset] = v
	w.Log = append(w.Log, WriteOp{Offset: offset, Value: v})
	switch offset {
	case outputSetBase, outputSetBase + 1:
		w.latch[offset-outputSetBase] |= v
	case outputClearBase, outputClearBase + 1:
		w.latch[offset-outputClearBase] &^= v
	}
}

func (w *Window) modeOf(pin int) gpioreg.Mode {
	off := functionSelectBase + pin/10
	shift := uint(pin%10) * 3
	return gpioreg.Mode((w.words[off] >> shift) & 7)
}

// Reset clears the write log without touching the backing words.
func (w *Window) Reset() {
	w.Log = nil
}

var _ gpioreg.Window = (*Window)(nil)
