// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package parallel

import "time"

// wait busy-waits until the monotonic clock reaches cursor+pending, the
// timestamp the previous Advance scheduled for the next edge.
//
// If that moment has already passed — the scheduler stole time from this
// goroutine — the cursor is re-armed to now instead of letting the phase
// error accumulate: the next edge is stretched by one pending interval
// rather than emitted late against the original schedule.
func (c *Chip) wait() {
	target := c.cursor.Add(c.pending)
	now := time.Now()
	if now.After(target) {
		c.cursor = now
		return
	}
	for time.Now().Before(target) {
	}
}

// advance commits the scheduled edge: the cursor moves to cursor+pending
// without busy-waiting, so the next wait targets the moment the edge just
// emitted should remain stable until. Callers set c.pending to the next
// phase's delay immediately after calling advance.
func (c *Chip) advance() {
	c.cursor = c.cursor.Add(c.pending)
}
