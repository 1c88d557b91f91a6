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

// SimulatedTalIDBase is the first terminal id reserved for synthetic
// simulated traffic. Real terminal ids are assigned from a small range
// starting just above dvbconst.BroadcastTalID, so a high sentinel base
// is what actually distinguishes synthetic transmissions from real
// ones; a literal ">BroadcastTalID" test would match every real
// terminal too.
const SimulatedTalIDBase uint16 = 0xF000

// SimulatedTrafficConfig describes one category's injected synthetic
// load for a single Aloha frame.
type SimulatedTrafficConfig struct {
	Category     TerminalCategory
	NbMaxPackets int
	NbReplicas   int
	Ratio        float64 // fraction of NbMaxPackets actually injected, in [0,1]
}

// TrafficGenerator picks which slots synthetic packets land in. Tests
// supply a deterministic one; production code wires one backed by
// math/rand.
type TrafficGenerator interface {
	// NextSlot returns a slot index in [0, slotsPerFrame).
	NextSlot(slotsPerFrame int) int
}

// InjectSimulatedTraffic adds synthetic traffic for cfg into table,
// using carrier 0 for every injected replica and synthetic terminal
// ids counting up from SimulatedTalIDBase so successive calls within
// the same frame don't collide with each other by pdu_id.
func InjectSimulatedTraffic(table *SlotTable, cfg SimulatedTrafficConfig, slotsPerFrame int, gen TrafficGenerator, talIDOffset uint16) {
	count := int(float64(cfg.NbMaxPackets) * cfg.Ratio)
	for i := 0; i < count; i++ {
		talID := SimulatedTalIDBase + talIDOffset + uint16(i)
		slots := make([]SlotRef, 0, cfg.NbReplicas)
		for r := 0; r < cfg.NbReplicas; r++ {
			slots = append(slots, SlotRef{Carrier: 0, Slot: gen.NextSlot(slotsPerFrame)})
		}
		for _, ref := range slots {
			pkt := Packet{
				TalID:    talID,
				PduID:    0,
				Seq:      0,
				Of:       1,
				Payload:  nil,
				Replicas: otherRefs(slots, ref),
			}
			table.Push(ref.Carrier, ref.Slot, pkt)
		}
	}
}

// otherRefs returns every element of all except the first occurrence
// equal to self, so a replica's Replicas list never points back at its
// own slot.
func otherRefs(all []SlotRef, self SlotRef) []SlotRef {
	out := make([]SlotRef, 0, len(all))
	skipped := false
	for _, ref := range all {
		if !skipped && ref == self {
			skipped = true
			continue
		}
		out = append(out, ref)
	}
	return out
}
