// SPDX-License-Identifier: AGPL-3.0-or-later
// opensand-dataplane - A DVB-S2/DVB-RCS2 satellite dataplane emulator
// Copyright (C) 2023-2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/opensand-go/opensand-dataplane>

package entity

import "sync"

// l2Counters tracks the per-spot L2 byte counters a satellite relay
// accumulates as it passes traffic between a gateway and its
// terminal population. Each counter is read-and-reset: a stats
// collector calling GetL2FromSt/GetL2FromGw gets the total since the
// last call and the counter goes back to zero.
type l2Counters struct {
	mu   sync.Mutex
	spot map[uint16]*l2Counter
}

type l2Counter struct {
	fromStBytes int64
	fromGwBytes int64
}

func newL2Counters() *l2Counters {
	return &l2Counters{spot: make(map[uint16]*l2Counter)}
}

func (c *l2Counters) entry(spotID uint16) *l2Counter {
	e, ok := c.spot[spotID]
	if !ok {
		e = &l2Counter{}
		c.spot[spotID] = e
	}
	return e
}

// AddFromSt adds n bytes to spotID's running total of traffic received
// from the terminal population.
func (c *l2Counters) AddFromSt(spotID uint16, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry(spotID).fromStBytes += int64(n)
}

// AddFromGw adds n bytes to spotID's running total of traffic received
// from the gateway.
func (c *l2Counters) AddFromGw(spotID uint16, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry(spotID).fromGwBytes += int64(n)
}

// GetFromSt returns spotID's accumulated from-ST byte total and resets
// it to zero.
func (c *l2Counters) GetFromSt(spotID uint16) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(spotID)
	val := e.fromStBytes
	e.fromStBytes = 0
	return val
}

// GetFromGw returns spotID's accumulated from-GW byte total and resets
// it to zero.
func (c *l2Counters) GetFromGw(spotID uint16) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entry(spotID)
	val := e.fromGwBytes
	e.fromGwBytes = 0
	return val
}

// messageLen returns the wire-level byte size of a relayed message,
// used to feed the L2 byte counters. Unrecognized payload types (e.g.
// the plain strings a test might relay) count as zero bytes.
func messageLen(msg any) int {
	switch v := msg.(type) {
	case []byte:
		return len(v)
	case string:
		return len(v)
	case interface{ Bytes() []byte }:
		return len(v.Bytes())
	default:
		return 0
	}
}

// messageBytes extracts a relayed message's raw bytes, used to buffer a
// burst in a QueuedEnvelope. A plain string is copied into a new slice
// rather than aliased, since strings are immutable but the caller may
// mutate the returned slice's backing array.
func messageBytes(msg any) []byte {
	switch v := msg.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	case interface{ Bytes() []byte }:
		return v.Bytes()
	default:
		return nil
	}
}
