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

// Package aloha implements the Slotted-Aloha NCC: per-category slot
// tables, DSA/CRDSA collision resolution, and per-terminal PDU
// reassembly.
package aloha

import (
	"sort"
)

// Packet is one Aloha data transmission as parsed off the wire.
type Packet struct {
	TalID   uint16
	PduID   uint16
	Seq     uint8
	Of      uint8
	Payload []byte

	// Replicas names the other slots carrying a copy of this same
	// logical transmission, for CRDSA's interference-cancellation pass.
	// Left empty for DSA, where each transmission occupies one slot.
	Replicas []SlotRef
}

// SlotRef identifies one time-slot on one carrier.
type SlotRef struct {
	Carrier uint8
	Slot    int
}

// SlotTable accumulates the replicas landing in each (carrier, slot)
// during one Aloha period. Per the concurrency model a slot table is
// only ever touched by the single goroutine running the NCC's channel,
// so it carries no internal locking.
//
// Its storage is the same "push appends under a key, drain removes
// them all" shape as a plain key/value queue, generalized from raw
// byte slices to parsed Packets and keyed by slot rather than by an
// arbitrary string.
type SlotTable struct {
	data map[SlotRef][]Packet
}

// NewSlotTable returns an empty slot table.
func NewSlotTable() *SlotTable {
	return &SlotTable{data: make(map[SlotRef][]Packet)}
}

// Push appends pkt as one more replica in (carrier, slot), returning
// the number of replicas now occupying it.
func (t *SlotTable) Push(carrier uint8, slot int, pkt Packet) int {
	ref := SlotRef{Carrier: carrier, Slot: slot}
	t.data[ref] = append(t.data[ref], pkt)
	return len(t.data[ref])
}

// Drain removes and returns every replica queued in (carrier, slot).
func (t *SlotTable) Drain(carrier uint8, slot int) []Packet {
	ref := SlotRef{Carrier: carrier, Slot: slot}
	v := t.data[ref]
	delete(t.data, ref)
	return v
}

// Occupied lists every slot currently holding at least one replica,
// ordered by (carrier, slot) ascending.
func (t *SlotTable) Occupied() []SlotRef {
	out := make([]SlotRef, 0, len(t.data))
	for ref := range t.data {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Carrier != out[j].Carrier {
			return out[i].Carrier < out[j].Carrier
		}
		return out[i].Slot < out[j].Slot
	})
	return out
}

// Reset clears every slot, discarding any unresolved replicas. Called
// once a frame's collision resolution pass has finished, since the
// table's metrics and occupancy are scoped to a single Aloha frame.
func (t *SlotTable) Reset() {
	t.data = make(map[SlotRef][]Packet)
}

// Len reports the number of occupied slots.
func (t *SlotTable) Len() int {
	return len(t.data)
}
