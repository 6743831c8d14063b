// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package parallel

import (
	"testing"
	"time"

	"github.com/periph-parallel/parallel/gpioreg"
	"github.com/periph-parallel/parallel/gpioreg/gpioregtest"
)

func testConfig8bit() Config {
	return Config{
		D7: 7, D6: 6, D5: 5, D4: 4, D3: 3, D2: 2, D1: 1, D0: 0,
		RSCD: 8, ENWR: 9, RWRD: 10,
		Protocol: Protocol6800,
		TSetup:   time.Microsecond, TClock: time.Microsecond,
		TRead: time.Microsecond, TProc: time.Microsecond, THold: time.Microsecond,
	}
}

func testConfig4bit() Config {
	cfg := testConfig8bit()
	cfg.D3, cfg.D2, cfg.D1, cfg.D0 = Unused, Unused, Unused, Unused
	return cfg
}

func TestNewChip_BitWidth(t *testing.T) {
	c := newChip(gpioregtest.New(64), testConfig8bit())
	if c.bpc != 8 {
		t.Fatalf("got bpc=%d, want 8", c.bpc)
	}
	c = newChip(gpioregtest.New(64), testConfig4bit())
	if c.bpc != 4 {
		t.Fatalf("got bpc=%d, want 4", c.bpc)
	}
}

func TestNewChip_DataPinsStartAsInput(t *testing.T) {
	w := gpioregtest.New(64)
	c := newChip(w, testConfig8bit())
	for _, pin := range c.activeDataPins() {
		if m := gpioreg.GetMode(w, pin); m != gpioreg.Input {
			t.Fatalf("pin %d: got mode %d, want Input", pin, m)
		}
	}
}

func TestNewChip_ControlPinsStartAsOutput(t *testing.T) {
	w := gpioregtest.New(64)
	c := newChip(w, testConfig8bit())
	for _, pin := range []int{c.rscd, c.enwr, c.rwrd} {
		if m := gpioreg.GetMode(w, pin); m != gpioreg.Output {
			t.Fatalf("pin %d: got mode %d, want Output", pin, m)
		}
	}
}

func TestNewChip_IdleLines6800(t *testing.T) {
	w := gpioregtest.New(64)
	cfg := testConfig8bit()
	c := newChip(w, cfg)
	if gpioreg.ReadLevel(w, c.enwr) != gpioreg.Low {
		t.Fatal("ENWR should idle Low under Protocol6800")
	}
}

func TestNewChip_IdleLines8080(t *testing.T) {
	w := gpioregtest.New(64)
	cfg := testConfig8bit()
	cfg.Protocol = Protocol8080
	c := newChip(w, cfg)
	if gpioreg.ReadLevel(w, c.enwr) != gpioreg.High {
		t.Fatal("ENWR should idle High under Protocol8080")
	}
	if gpioreg.ReadLevel(w, c.rwrd) != gpioreg.High {
		t.Fatal("RWRD should idle High under Protocol8080")
	}
}

func TestNewChip_WriteOnly(t *testing.T) {
	w := gpioregtest.New(64)
	cfg := testConfig8bit()
	cfg.RWRD = Unused
	c := newChip(w, cfg)
	if c.rwrd != Unused {
		t.Fatalf("got rwrd=%d, want Unused", c.rwrd)
	}
	if err := c.ReadData(make([]byte, 1)); err != ErrWriteOnly {
		t.Fatalf("got %v, want ErrWriteOnly", err)
	}
}

func TestComputeDirectionWords_PreservesOtherPins(t *testing.T) {
	w := gpioregtest.New(64)
	gpioreg.SetMode(w, 20, gpioreg.Output)
	c := newChip(w, testConfig8bit())
	words := c.computeDirectionWords(gpioreg.Output)
	c.commitDirectionWords(words)
	if m := gpioreg.GetMode(w, 20); m != gpioreg.Output {
		t.Fatalf("unrelated pin 20 disturbed: got %d", m)
	}
	for _, pin := range c.activeDataPins() {
		if m := gpioreg.GetMode(w, pin); m != gpioreg.Output {
			t.Fatalf("pin %d: got %d, want Output", pin, m)
		}
	}
}
