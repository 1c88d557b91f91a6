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

package aloha

// CollisionAlgorithm selects how a category's slot table is resolved
// each Aloha frame.
type CollisionAlgorithm uint8

const (
	// AlgoDSA accepts only slots that received exactly one replica;
	// any collision rejects every replica in that slot outright.
	AlgoDSA CollisionAlgorithm = iota
	// AlgoCRDSA additionally performs iterative successive
	// interference cancellation: accepting a singleton slot removes
	// that transmission's other replicas from their slots, which can
	// turn a previously-collided slot into a new singleton.
	AlgoCRDSA
)

// Outcome is the result of resolving one category's slot table for one
// Aloha frame. CollisionsBefore/CollisionsAfter count individual
// packets caught in a multi-occupant slot, before and after whatever
// resolution the algorithm performs.
type Outcome struct {
	Accepted         []Packet
	CollisionsBefore int
	CollisionsAfter  int
	TotalSlots       int
}

// Percentage reports CollisionsAfter as a percentage of TotalSlots, or 0
// if the table held no slots at all.
func (o Outcome) Percentage() float64 {
	if o.TotalSlots == 0 {
		return 0
	}
	return float64(o.CollisionsAfter) / float64(o.TotalSlots) * 100
}

// Resolve drains table and applies algo, returning the accepted
// packets sorted by (carrier, slot) and the before/after collision
// counts. The table is empty on return.
func Resolve(table *SlotTable, algo CollisionAlgorithm) Outcome {
	refs := table.Occupied()
	working := make(map[SlotRef][]Packet, len(refs))
	for _, ref := range refs {
		working[ref] = table.Drain(ref.Carrier, ref.Slot)
	}

	// Counted in packets, not slots: a 3-way collision contributes 3 to
	// collisions_before, not 1.
	before := 0
	for _, ref := range refs {
		if n := len(working[ref]); n > 1 {
			before += n
		}
	}

	var accepted []Packet
	switch algo {
	case AlgoCRDSA:
		accepted = resolveCRDSA(refs, working)
	default:
		accepted = resolveDSA(refs, working)
	}

	after := 0
	for _, pkts := range working {
		after += len(pkts)
	}

	return Outcome{
		Accepted:         accepted,
		CollisionsBefore: before,
		CollisionsAfter:  after,
		TotalSlots:       len(refs),
	}
}

// resolveDSA accepts every singleton slot and leaves every collided
// slot's packets in place (dropped, never recovered).
func resolveDSA(refs []SlotRef, working map[SlotRef][]Packet) []Packet {
	var accepted []Packet
	for _, ref := range refs {
		pkts := working[ref]
		if len(pkts) == 1 {
			accepted = append(accepted, pkts[0])
			delete(working, ref)
		}
	}
	return accepted
}

// resolveCRDSA repeatedly accepts singleton slots and cancels each
// accepted transmission's other replicas out of their slots, until a
// pass makes no further progress.
func resolveCRDSA(refs []SlotRef, working map[SlotRef][]Packet) []Packet {
	acceptedAt := make(map[SlotRef]Packet)

	for {
		progressed := false
		for _, ref := range refs {
			pkts := working[ref]
			if len(pkts) != 1 {
				continue
			}
			pkt := pkts[0]
			acceptedAt[ref] = pkt
			delete(working, ref)
			progressed = true

			for _, rep := range pkt.Replicas {
				working[rep] = removeReplica(working[rep], pkt)
				if len(working[rep]) == 0 {
					delete(working, rep)
				}
			}
		}
		if !progressed {
			break
		}
	}

	// refs is already in (carrier, slot) order, so walking it restores
	// that order regardless of which pass accepted each packet.
	accepted := make([]Packet, 0, len(acceptedAt))
	for _, ref := range refs {
		if pkt, ok := acceptedAt[ref]; ok {
			accepted = append(accepted, pkt)
		}
	}
	return accepted
}

// removeReplica drops every packet in pkts matching target's
// (TalID, PduID, Seq) identity, i.e. every copy of the same logical
// transmission that landed in this slot.
func removeReplica(pkts []Packet, target Packet) []Packet {
	out := pkts[:0:0]
	for _, p := range pkts {
		if p.TalID == target.TalID && p.PduID == target.PduID && p.Seq == target.Seq {
			continue
		}
		out = append(out, p)
	}
	return out
}
