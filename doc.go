// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package parallel drives a bit-banged 6800-style (Motorola, enable-pulsed)
// or 8080-style (Intel, read/write-strobed) parallel display bus from a
// GPIO-equipped single-board computer, in 4-bit (nibble-paired) or 8-bit
// width, with optional read support.
//
// parallel is a bus, the same way conn/spi and conn/i2c are buses: it knows
// nothing about any particular controller chip's command set. Driving an
// actual LCD or graphic controller (its init sequence, character set,
// backlight control, ...) is the job of a device package layered on top,
// the way periph.io/x/periph/experimental/devices/hd44780 layers on top of
// host/bcm283x.
//
// The low-level GPIO Register Window and Pin Primitives this package
// drives live in the gpioreg subpackage.
package parallel
