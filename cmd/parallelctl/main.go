// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// parallelctl drives a parallel-bus controller from the command line, for
// bring-up and wiring checks: write a command or data byte, or read one
// back on a descriptor wired for it.
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/periph-parallel/parallel"
)

var cfg struct {
	d7, d6, d5, d4 int
	d3, d2, d1, d0 int
	rscd, enwr, rwrd int
	protocol         string
	tsetup, tclock, tread, tproc, thold time.Duration
	verbose bool
}

func buildConfig() (parallel.Config, error) {
	var proto parallel.Protocol
	switch cfg.protocol {
	case "6800":
		proto = parallel.Protocol6800
	case "8080":
		proto = parallel.Protocol8080
	default:
		return parallel.Config{}, fmt.Errorf("unknown --protocol %q, want 6800 or 8080", cfg.protocol)
	}
	return parallel.Config{
		D7: cfg.d7, D6: cfg.d6, D5: cfg.d5, D4: cfg.d4,
		D3: cfg.d3, D2: cfg.d2, D1: cfg.d1, D0: cfg.d0,
		RSCD: cfg.rscd, ENWR: cfg.enwr, RWRD: cfg.rwrd,
		Protocol: proto,
		TSetup:   cfg.tsetup, TClock: cfg.tclock,
		TRead: cfg.tread, TProc: cfg.tproc, THold: cfg.thold,
	}, nil
}

func openChip() (*parallel.Chip, error) {
	c, err := buildConfig()
	if err != nil {
		return nil, err
	}
	return parallel.Open(c)
}

func parseHex(arg string) ([]byte, error) {
	buf, err := hex.DecodeString(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", arg, err)
	}
	if len(buf) == 0 {
		return nil, errors.New("need at least one byte")
	}
	return buf, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "parallelctl",
		Short: "Drive a bit-banged parallel display bus from the command line",
	}
	root.PersistentFlags().IntVar(&cfg.d7, "d7", parallel.Unused, "GPIO pin wired to D7")
	root.PersistentFlags().IntVar(&cfg.d6, "d6", parallel.Unused, "GPIO pin wired to D6")
	root.PersistentFlags().IntVar(&cfg.d5, "d5", parallel.Unused, "GPIO pin wired to D5")
	root.PersistentFlags().IntVar(&cfg.d4, "d4", parallel.Unused, "GPIO pin wired to D4")
	root.PersistentFlags().IntVar(&cfg.d3, "d3", parallel.Unused, "GPIO pin wired to D3, Unused for 4-bit mode")
	root.PersistentFlags().IntVar(&cfg.d2, "d2", parallel.Unused, "GPIO pin wired to D2, Unused for 4-bit mode")
	root.PersistentFlags().IntVar(&cfg.d1, "d1", parallel.Unused, "GPIO pin wired to D1, Unused for 4-bit mode")
	root.PersistentFlags().IntVar(&cfg.d0, "d0", parallel.Unused, "GPIO pin wired to D0, Unused for 4-bit mode")
	root.PersistentFlags().IntVar(&cfg.rscd, "rscd", parallel.Unused, "GPIO pin wired to RS/CD")
	root.PersistentFlags().IntVar(&cfg.enwr, "enwr", parallel.Unused, "GPIO pin wired to E/WR")
	root.PersistentFlags().IntVar(&cfg.rwrd, "rwrd", parallel.Unused, "GPIO pin wired to R/W or RD, Unused for write-only")
	root.PersistentFlags().StringVar(&cfg.protocol, "protocol", "6800", "bus protocol: 6800 or 8080")
	root.PersistentFlags().DurationVar(&cfg.tsetup, "tsetup", time.Microsecond, "delay after RS/CD before the first strobe edge")
	root.PersistentFlags().DurationVar(&cfg.tclock, "tclock", time.Microsecond, "strobe half-period")
	root.PersistentFlags().DurationVar(&cfg.tread, "tread", time.Microsecond, "delay between read strobe and sampling")
	root.PersistentFlags().DurationVar(&cfg.tproc, "tproc", 40*time.Microsecond, "delay between bytes")
	root.PersistentFlags().DurationVar(&cfg.thold, "thold", time.Microsecond, "minimum hold time after a read strobe")
	root.PersistentFlags().BoolVarP(&cfg.verbose, "verbose", "v", false, "verbose mode")
	root.PersistentPreRun = func(*cobra.Command, []string) {
		if !cfg.verbose {
			log.SetOutput(ioutil.Discard)
		}
		log.SetFlags(log.Lmicroseconds)
	}

	root.AddCommand(newWriteCommandCmd())
	root.AddCommand(newWriteDataCmd())
	root.AddCommand(newReadRegisterCmd())
	root.AddCommand(newReadDataCmd())
	return root
}

func newWriteCommandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write-command <hex byte>",
		Short: "send one byte to the command register",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			buf, err := parseHex(args[0])
			if err != nil {
				return err
			}
			if len(buf) != 1 {
				return errors.New("write-command takes exactly one byte")
			}
			c, err := openChip()
			if err != nil {
				return err
			}
			defer c.Close()
			return c.WriteCommand(buf[0])
		},
	}
}

func newWriteDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write-data <hex bytes>",
		Short: "send one or more bytes to the data register",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			buf, err := parseHex(args[0])
			if err != nil {
				return err
			}
			c, err := openChip()
			if err != nil {
				return err
			}
			defer c.Close()
			return c.WriteData(buf)
		},
	}
}

func newReadRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-command",
		Short: "read one byte from the command/status register",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := openChip()
			if err != nil {
				return err
			}
			defer c.Close()
			v, err := c.ReadRegister()
			if err != nil {
				return err
			}
			fmt.Printf("%#02x\n", v)
			return nil
		},
	}
}

func newReadDataCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "read-data",
		Short: "read n bytes from the data register",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := openChip()
			if err != nil {
				return err
			}
			defer c.Close()
			buf := make([]byte, count)
			if err := c.ReadData(buf); err != nil {
				return err
			}
			fmt.Println(hex.EncodeToString(buf))
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of bytes to read")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "parallelctl: %s.\n", err)
		os.Exit(1)
	}
}
