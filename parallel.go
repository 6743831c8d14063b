// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package parallel

// WriteCommand sends b to the controller's command register: RSCD is
// driven to command mode (RWRD is left at its idle level), ENWR is pulsed
// once per nibble or byte, and the data pins are returned to input before
// this call returns.
func (c *Chip) WriteCommand(b byte) error {
	return c.writeBytes([]byte{b}, false)
}

// WriteData sends buf to the controller's data register.
func (c *Chip) WriteData(buf []byte) error {
	return c.writeBytes(buf, true)
}

// ReadRegister reads one byte from the controller's status/command
// register. It returns ErrWriteOnly if this descriptor's RWRD pin is
// Unused.
func (c *Chip) ReadRegister() (int, error) {
	if c.rwrd == Unused {
		return 0, ErrWriteOnly
	}
	var buf [1]byte
	if err := c.readBytes(buf[:], false); err != nil {
		return 0, err
	}
	return int(buf[0]), nil
}

// ReadData reads len(buf) bytes from the controller's data register into
// buf. It returns ErrWriteOnly if this descriptor's RWRD pin is Unused.
func (c *Chip) ReadData(buf []byte) error {
	if c.rwrd == Unused {
		return ErrWriteOnly
	}
	return c.readBytes(buf, true)
}
