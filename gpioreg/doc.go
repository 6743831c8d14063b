// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpioreg exposes the GPIO Register Window and the Pin Primitives
// built on top of it.
//
// The window is a process-wide mapping of the host's GPIO peripheral into
// this process' address space, addressed as 32-bit words. The pin
// primitives (SetMode, GetMode, WriteLevel, ReadLevel, SetPull) are plain
// functions over a Window so callers, and tests, can substitute a fake
// Window without touching real hardware; see gpioregtest.
//
// Word offsets and field packing follow the Broadcom-style peripheral
// layout documented at
// https://www.raspberrypi.org/wp-content/uploads/2012/02/BCM2835-ARM-Peripherals.pdf
// pages 90-91 and 101-102.
package gpioreg
