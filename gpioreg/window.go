// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpioreg

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrUnavailable is returned by Open when the platform's GPIO memory device
// cannot be opened or mapped.
var ErrUnavailable = errors.New("gpioreg: GPIO register window unavailable")

// wordCount is the number of 32-bit words mapped, enough to cover offsets
// 0..39 (pull-up/down clock, the highest offset the pin primitives touch)
// plus the reserved words interleaved between them, per spec ≥ 0xB4 bytes.
const wordCount = 0xB4 / 4

// Window is the GPIO Register Window: a flat array of volatile 32-bit
// words, indexed by word offset, mapped from the GPIO peripheral's
// register block.
//
// Word offsets used by the pin primitives, in words:
//
//	function select   0..5
//	output set         7, 8
//	output clear      10,11
//	pin level         13,14
//	pull control          37
//	pull clock        38,39
type Window interface {
	// Word returns the current value of the word at the given offset.
	Word(offset int) uint32
	// SetWord stores v into the word at the given offset.
	SetWord(offset int, v uint32)
}

// mmapWindow is a Window backed by a shared mapping of /dev/gpiomem or
// /dev/mem, addressed as a []uint32.
type mmapWindow struct {
	words []uint32
}

func (m *mmapWindow) Word(offset int) uint32 {
	return *(*uint32)(atOffset(m.words, offset))
}

func (m *mmapWindow) SetWord(offset int, v uint32) {
	*(*uint32)(atOffset(m.words, offset)) = v
}

func atOffset(words []uint32, offset int) unsafe.Pointer {
	return unsafe.Pointer(&words[offset])
}

var (
	once    sync.Once
	global  *mmapWindow
	openErr error
)

// Open maps the platform's GPIO memory device into the process and returns
// the process-wide Window singleton.
//
// Open is idempotent: concurrent and repeated calls converge on the same
// mapping, which is never unmapped for the lifetime of the process.
func Open() (Window, error) {
	once.Do(func() {
		global, openErr = open()
	})
	if openErr != nil {
		return nil, openErr
	}
	return global, nil
}

func open() (*mmapWindow, error) {
	if w, err := openGPIOMem(); err == nil {
		return w, nil
	}
	w, err := openDevMem(baseAddress())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return w, nil
}

// openGPIOMem maps /dev/gpiomem, the unprivileged path available on
// Raspbian Jessie and later.
func openGPIOMem() (*mmapWindow, error) {
	f, err := os.OpenFile("/dev/gpiomem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mapFile(f, 0, 0)
}

// openDevMem maps /dev/mem at the peripheral's physical base address. This
// requires running as root and is the fallback for hosts without
// /dev/gpiomem. The mapping is aligned to a 4KB page; any sub-page
// remainder of base is applied as a word offset into the mapping.
func openDevMem(base uint64) (*mmapWindow, error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mapFile(f, int64(base&^0xFFF), int(base&0xFFF)/4)
}

func mapFile(f *os.File, at int64, wordOffset int) (*mmapWindow, error) {
	b, err := unix.Mmap(int(f.Fd()), at, 4096, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	header := (*[4096 / 4]uint32)(unsafe.Pointer(&b[0]))
	return &mmapWindow{words: header[wordOffset : wordOffset+wordCount]}, nil
}

// baseAddress queries the virtual file system for the GPIO peripheral's
// physical base address, defaulting to the bcm283x datasheet value if it
// cannot be determined.
func baseAddress() uint64 {
	items, _ := ioutil.ReadDir("/sys/bus/platform/drivers/pinctrl-bcm2835/")
	for _, item := range items {
		if item.Mode()&os.ModeSymlink == 0 {
			continue
		}
		parts := strings.SplitN(path.Base(item.Name()), ".", 2)
		if len(parts) != 2 {
			continue
		}
		if base, err := strconv.ParseUint(parts[0], 16, 64); err == nil {
			return base
		}
	}
	return 0x3F200000
}
