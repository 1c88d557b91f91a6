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

// Package dvbfifo implements the MAC-level queue a scheduler drains:
// priority- and PVC-tagged, capacity-bounded in packets, with
// period statistics a caller can snapshot and reset independently of
// the live occupancy counters.
package dvbfifo

import (
	"fmt"
	"sync"
	"time"

	"github.com/opensand-go/opensand-dataplane/internal/dvbconst"
)

// AccessType distinguishes FIFOs scheduled by capacity request (DAMA)
// from those fed by the Slotted-Aloha random-access path; schedulers
// skip the latter entirely.
type AccessType uint8

const (
	AccessDama AccessType = iota
	AccessSaloha
)

// Element wraps one queued payload with the tick it was enqueued at and
// the terminal id it is destined for, so a caller can compute queueing
// delay and a scheduler can look up the destination's MODCOD without
// decoding the payload.
type Element struct {
	Payload    []byte
	Dst        uint16
	EnqueuedAt time.Time
}

// Stats is the snapshot returned by GetStatsContext: current occupancy
// plus the in/out traffic counted since the previous snapshot.
type Stats struct {
	CurrentPktNbr     int
	CurrentLengthByte int
	InPktNbr          int
	OutPktNbr         int
	InLengthByte      int
	OutLengthByte     int
}

// ErrFull is returned by Push/PushFront when the FIFO is at capacity.
var ErrFull = fmt.Errorf("%w: fifo at capacity", dvbconst.ErrResourceError)

// DvbFifo is a MAC-level queue identified by priority, PVC and access
// type, bounded to Capacity packets.
type DvbFifo struct {
	Priority   uint8
	PVC        uint16
	AccessType AccessType
	CarrierID  uint8
	Capacity   int

	mu      sync.Mutex
	queue   []Element
	inPkt   int
	outPkt  int
	inByte  int
	outByte int
}

// New builds an empty DvbFifo with the given identity and capacity.
func New(priority uint8, pvc uint16, access AccessType, carrierID uint8, capacity int) *DvbFifo {
	return &DvbFifo{
		Priority:   priority,
		PVC:        pvc,
		AccessType: access,
		CarrierID:  carrierID,
		Capacity:   capacity,
	}
}

// Push appends payload, destined for dst, to the tail of the queue,
// counting it against the "new" in-counters. It returns ErrFull without
// enqueuing if the FIFO is already at capacity.
func (f *DvbFifo) Push(payload []byte, dst uint16, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) >= f.Capacity {
		return ErrFull
	}
	f.queue = append(f.queue, Element{Payload: payload, Dst: dst, EnqueuedAt: now})
	f.inPkt++
	f.inByte += len(payload)
	return nil
}

// PushFront prepends payload, destined for dst, to the head of the
// queue: the path a scheduler uses to put back an unconsumed fragment
// tail. Because the fragment was already counted as "new" input when it
// first arrived, pushing it back decrements the in-counters rather than
// incrementing them, so the period's new-traffic accounting reflects
// only genuinely new data.
func (f *DvbFifo) PushFront(payload []byte, dst uint16, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) >= f.Capacity {
		return ErrFull
	}
	f.queue = append([]Element{{Payload: payload, Dst: dst, EnqueuedAt: now}}, f.queue...)
	f.inPkt--
	f.inByte -= len(payload)
	return nil
}

// Pop removes and returns the head element. ok is false on an empty
// queue.
func (f *DvbFifo) Pop() (Element, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return Element{}, false
	}
	e := f.queue[0]
	f.queue = f.queue[1:]
	f.outPkt++
	f.outByte += len(e.Payload)
	return e, true
}

// PeekDst returns the destination terminal id of the head element
// without dequeuing it. ok is false on an empty queue.
func (f *DvbFifo) PeekDst() (uint16, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return 0, false
	}
	return f.queue[0].Dst, true
}

// Len reports the current number of queued packets.
func (f *DvbFifo) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Flush drops every queued element and resets all statistics,
// including the current occupancy counters.
func (f *DvbFifo) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = nil
	f.inPkt, f.outPkt, f.inByte, f.outByte = 0, 0, 0, 0
}

// GetStatsContext returns a snapshot of current occupancy plus the
// traffic counted since the previous call, then atomically resets the
// in/out counters for the next period. The current-* fields are live
// occupancy, not reset by this call.
func (f *DvbFifo) GetStatsContext() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()

	currentLen := 0
	for _, e := range f.queue {
		currentLen += len(e.Payload)
	}

	s := Stats{
		CurrentPktNbr:     len(f.queue),
		CurrentLengthByte: currentLen,
		InPktNbr:          f.inPkt,
		OutPktNbr:         f.outPkt,
		InLengthByte:      f.inByte,
		OutLengthByte:     f.outByte,
	}
	f.inPkt, f.outPkt, f.inByte, f.outByte = 0, 0, 0, 0
	return s
}
