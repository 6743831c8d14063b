// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpioreg

import "time"

// Word offsets into the Window, per the Broadcom-style GPIO register
// layout. Only the offsets the pin primitives touch are named; the rest of
// the peripheral's register block (event/edge detection, 37-53 pin bank,
// clocks) is outside this package's scope.
const (
	functionSelectBase = 0  // 6 words, 10 pins each, 3 bits per pin
	outputSetBase      = 7  // 2 words, 1 bit per pin
	outputClearBase    = 10 // 2 words, 1 bit per pin
	levelBase          = 13 // 2 words, 1 bit per pin
	pullControl        = 37 // 0=float, 1=down, 2=up
	pullClockBase      = 38 // 2 words, 1 bit per pin
)

// Mode is the function of a GPIO pin.
type Mode uint8

// The two functions the pin primitives set; the alternate functions (2..7)
// are readable via Mode but are never assigned by this package.
const (
	Input  Mode = 0
	Output Mode = 1
)

// Level is the logic level driven onto, or read from, a pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// Pull is the pull-up/pull-down configuration of an input pin.
type Pull uint8

const (
	PullFloat Pull = 0
	PullDown  Pull = 1
	PullUp    Pull = 2
)

// pullSettle is the datasheet-mandated wait between each step of the
// pull-up/down control dance; not latency-critical the way bus edges are,
// so it uses a plain sleep rather than the Timing Gate's cursor discipline.
const pullSettle = 20 * time.Microsecond

// SetMode sets the function of pin (0..27) to mode, preserving the other
// nine pins packed into the same function-select word.
func SetMode(w Window, pin int, mode Mode) {
	off := functionSelectBase + pin/10
	w.SetWord(off, WithMode(w.Word(off), pin, mode))
}

// WithMode returns word with the 3-bit field for pin set to mode, leaving
// every other pin's field untouched. word must be the function-select word
// that covers pin (pin/10); it is the caller's responsibility to combine
// this with FunctionSelectWord/SetFunctionSelectWord when staging a
// direction change across several pins for a single, glitch-free commit.
func WithMode(word uint32, pin int, mode Mode) uint32 {
	shift := uint(pin%10) * 3
	return (word &^ (7 << shift)) | (uint32(mode) << shift)
}

// FunctionSelectWord returns the raw value of function-select word index
// (0..5), covering pins word*10 .. word*10+9.
func FunctionSelectWord(w Window, word int) uint32 {
	return w.Word(functionSelectBase + word)
}

// SetFunctionSelectWord commits v as function-select word index (0..5) in
// a single register write, used to apply several pins' direction changes
// at once without exposing the intermediate per-pin states.
func SetFunctionSelectWord(w Window, word int, v uint32) {
	w.SetWord(functionSelectBase+word, v)
}

// SetOutputs asserts every pin (0..31) whose bit is set in mask, in a
// single register write.
func SetOutputs(w Window, mask uint32) {
	w.SetWord(outputSetBase, mask)
}

// ClearOutputs deasserts every pin (0..31) whose bit is set in mask, in a
// single register write.
func ClearOutputs(w Window, mask uint32) {
	w.SetWord(outputClearBase, mask)
}

// ReadLevels returns the level of every pin 0..31 as a bitmask in one
// register read.
func ReadLevels(w Window) uint32 {
	return w.Word(levelBase)
}

// GetMode returns the current function of pin.
func GetMode(w Window, pin int) Mode {
	off := functionSelectBase + pin/10
	shift := uint(pin%10) * 3
	return Mode((w.Word(off) >> shift) & 7)
}

// WriteLevel drives pin low or high via the output-set/output-clear
// registers. Writing a 1 bit asserts the action; 0 bits are ignored by the
// hardware, so no read-modify-write is needed.
func WriteLevel(w Window, pin int, level Level) {
	bit := uint32(1) << uint(pin&31)
	if level == Low {
		w.SetWord(outputClearBase+pin/32, bit)
	} else {
		w.SetWord(outputSetBase+pin/32, bit)
	}
}

// ReadLevel returns the current level of pin.
func ReadLevel(w Window, pin int) Level {
	bit := uint32(1) << uint(pin&31)
	return Level(w.Word(levelBase+pin/32)&bit != 0)
}

// SetPull configures the pull-up/down resistor of pin, following the
// datasheet-prescribed sequence: set mode, wait, clock it in, wait, clear
// both control registers. The sequence must not be shortened.
func SetPull(w Window, pin int, pull Pull) {
	w.SetWord(pullControl, uint32(pull))
	time.Sleep(pullSettle)
	bit := uint32(1) << uint(pin&31)
	w.SetWord(pullClockBase+pin/32, bit)
	time.Sleep(pullSettle)
	w.SetWord(pullControl, 0)
	w.SetWord(pullClockBase+pin/32, 0)
}
