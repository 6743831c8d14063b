// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package parallelsmoketest exercises parallel.Chip against real GPIO
// hardware, the same way host/bcm283x/bcm283xsmoketest exercises bcm283x.
//
// It assumes each of D7..D0, RSCD and ENWR is jumpered to a second,
// otherwise-unused GPIO pin configured as a plain input, so the test can
// observe on the wire what Chip claims to have driven.
package parallelsmoketest

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/periph-parallel/parallel"
	"github.com/periph-parallel/parallel/gpioreg"
)

// SmokeTest is imported by a smoke test runner the way bcm283xsmoketest and
// ssd1306smoketest are.
type SmokeTest struct{}

// Name implements the SmokeTest interface.
func (s *SmokeTest) Name() string { return "parallel" }

// Description implements the SmokeTest interface.
func (s *SmokeTest) Description() string {
	return "Tests a bit-banged parallel bus against jumpered loopback pins"
}

// Run implements the SmokeTest interface.
func (s *SmokeTest) Run(f *flag.FlagSet, args []string) error {
	// d[0]..d[7] hold D7..D0, matching parallel.Config's field order.
	d := make([]int, 8)
	m := make([]int, 8)
	for i := range d {
		bit := 7 - i
		f.IntVar(&d[i], fmt.Sprintf("d%d", bit), parallel.Unused, fmt.Sprintf("GPIO pin wired to D%d", bit))
		f.IntVar(&m[i], fmt.Sprintf("md%d", bit), parallel.Unused, fmt.Sprintf("monitor pin jumpered to D%d", bit))
	}
	rscd := f.Int("rscd", parallel.Unused, "GPIO pin wired to RS/CD")
	mrscd := f.Int("mrscd", parallel.Unused, "monitor pin jumpered to RS/CD")
	enwr := f.Int("enwr", parallel.Unused, "GPIO pin wired to E/WR")
	menwr := f.Int("menwr", parallel.Unused, "monitor pin jumpered to E/WR")
	proto := f.String("protocol", "6800", "bus protocol: 6800 or 8080")
	if err := f.Parse(args); err != nil {
		return err
	}
	if f.NArg() != 0 {
		f.Usage()
		return errors.New("unrecognized arguments")
	}

	var protocol parallel.Protocol
	switch *proto {
	case "6800":
		protocol = parallel.Protocol6800
	case "8080":
		protocol = parallel.Protocol8080
	default:
		return fmt.Errorf("unknown -protocol %q", *proto)
	}

	win, err := gpioreg.Open()
	if err != nil {
		return err
	}
	for _, pin := range append(append([]int{}, m...), *mrscd, *menwr) {
		gpioreg.SetMode(win, pin, gpioreg.Input)
	}

	c, err := parallel.Open(parallel.Config{
		D7: d[0], D6: d[1], D5: d[2], D4: d[3],
		D3: d[4], D2: d[5], D1: d[6], D0: d[7],
		RSCD: *rscd, ENWR: *enwr, RWRD: parallel.Unused,
		Protocol: protocol,
		TSetup:   time.Microsecond, TClock: 2 * time.Microsecond,
		TProc: 10 * time.Microsecond,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	for _, pattern := range []byte{0x00, 0xFF, 0xA5, 0x5A} {
		if err := c.WriteData([]byte{pattern}); err != nil {
			return err
		}
		// The data pins revert to input immediately after the transfer, so
		// the monitor pins are the only reliable way to read back what was
		// latched; poll once, shortly after, since there is no strobe left
		// to synchronize against.
		time.Sleep(time.Millisecond)
		var got byte
		for i, pin := range m {
			if gpioreg.ReadLevel(win, pin) == gpioreg.High {
				got |= 1 << uint(7-i)
			}
		}
		fmt.Printf("- wrote %#02x, monitor pins read %#02x\n", pattern, got)
	}
	return nil
}
