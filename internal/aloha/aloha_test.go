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

package aloha_test

import (
	"testing"

	"github.com/opensand-go/opensand-dataplane/internal/aloha"
)

// buildChain lays out the spec's 3-slot/2-replica chain: S1={A1},
// S2={A2,B1}, S3={B2}.
func buildChain() *aloha.SlotTable {
	table := aloha.NewSlotTable()

	a := aloha.Packet{TalID: 1, PduID: 1, Seq: 0, Of: 1, Payload: []byte("A")}
	b := aloha.Packet{TalID: 2, PduID: 1, Seq: 0, Of: 1, Payload: []byte("B")}

	a1 := a
	a1.Replicas = []aloha.SlotRef{{Carrier: 0, Slot: 1}}
	a2 := a
	a2.Replicas = []aloha.SlotRef{{Carrier: 0, Slot: 0}}

	b1 := b
	b1.Replicas = []aloha.SlotRef{{Carrier: 0, Slot: 2}}
	b2 := b
	b2.Replicas = []aloha.SlotRef{{Carrier: 0, Slot: 1}}

	table.Push(0, 0, a1)
	table.Push(0, 1, a2)
	table.Push(0, 1, b1)
	table.Push(0, 2, b2)
	return table
}

func TestResolveCRDSARecoversBothChainedPDUs(t *testing.T) {
	t.Parallel()
	outcome := aloha.Resolve(buildChain(), aloha.AlgoCRDSA)

	if len(outcome.Accepted) != 2 {
		t.Fatalf("Expected both A and B accepted, got %d packets", len(outcome.Accepted))
	}
	seen := map[uint16]bool{}
	for _, pkt := range outcome.Accepted {
		seen[pkt.TalID] = true
	}
	if !seen[1] || !seen[2] {
		t.Errorf("Expected both terminal 1 (A) and terminal 2 (B) accepted, got %v", outcome.Accepted)
	}
	if outcome.CollisionsBefore != 2 {
		t.Errorf("Expected collisions_before 2, got %d", outcome.CollisionsBefore)
	}
	if outcome.CollisionsAfter != 0 {
		t.Errorf("Expected collisions_after 0, got %d", outcome.CollisionsAfter)
	}
}

func TestResolveDSARejectsTheCollidedSlot(t *testing.T) {
	t.Parallel()
	outcome := aloha.Resolve(buildChain(), aloha.AlgoDSA)

	if len(outcome.Accepted) != 2 {
		t.Fatalf("Expected only the two singleton slots accepted, got %d", len(outcome.Accepted))
	}
	for _, pkt := range outcome.Accepted {
		if pkt.TalID != 1 && pkt.TalID != 2 {
			t.Errorf("Unexpected terminal accepted: %d", pkt.TalID)
		}
	}
	if outcome.CollisionsBefore != 2 {
		t.Errorf("Expected collisions_before 2, got %d", outcome.CollisionsBefore)
	}
	if outcome.CollisionsAfter != 2 {
		t.Errorf("Expected collisions_after 2 (DSA never recovers a collided slot), got %d", outcome.CollisionsAfter)
	}
}

func TestResolveCRDSAIsIdempotentOnAcceptedSet(t *testing.T) {
	t.Parallel()
	outcome := aloha.Resolve(buildChain(), aloha.AlgoCRDSA)

	// Re-running CRDSA on a table containing only what was already
	// accepted (no replica cross-references left to cancel) must yield
	// the same accepted set back: every slot is already a singleton.
	replay := aloha.NewSlotTable()
	for i, pkt := range outcome.Accepted {
		replay.Push(0, i, pkt)
	}
	again := aloha.Resolve(replay, aloha.AlgoCRDSA)

	if len(again.Accepted) != len(outcome.Accepted) {
		t.Fatalf("Expected a fixed point, got %d vs %d accepted", len(again.Accepted), len(outcome.Accepted))
	}
}

func TestResolveEmptyTableYieldsNoCollisions(t *testing.T) {
	t.Parallel()
	outcome := aloha.Resolve(aloha.NewSlotTable(), aloha.AlgoCRDSA)
	if len(outcome.Accepted) != 0 {
		t.Errorf("Expected no accepted packets from an empty table, got %d", len(outcome.Accepted))
	}
	if outcome.Percentage() != 0 {
		t.Errorf("Expected 0%% collisions on an empty table, got %f", outcome.Percentage())
	}
}

func TestSlotTableDrainRemovesReplicas(t *testing.T) {
	t.Parallel()
	table := aloha.NewSlotTable()
	table.Push(0, 5, aloha.Packet{TalID: 1})
	table.Push(0, 5, aloha.Packet{TalID: 2})

	if n := table.Len(); n != 1 {
		t.Fatalf("Expected 1 occupied slot, got %d", n)
	}
	replicas := table.Drain(0, 5)
	if len(replicas) != 2 {
		t.Fatalf("Expected 2 replicas drained, got %d", len(replicas))
	}
	if table.Len() != 0 {
		t.Errorf("Expected the slot emptied after drain, got len %d", table.Len())
	}
}

func TestReassemblerCompletesAfterAllParts(t *testing.T) {
	t.Parallel()
	r := aloha.NewReassembler()

	if _, done := r.Add(aloha.Packet{TalID: 1, PduID: 9, Seq: 0, Of: 2, Payload: []byte("first")}); done {
		t.Fatal("Expected the PDU incomplete after its first part")
	}
	parts, done := r.Add(aloha.Packet{TalID: 1, PduID: 9, Seq: 1, Of: 2, Payload: []byte("second")})
	if !done {
		t.Fatal("Expected the PDU complete after its second part")
	}
	if string(parts[0]) != "first" || string(parts[1]) != "second" {
		t.Errorf("Expected parts in order, got %v", parts)
	}
}

func TestReassemblerDropsIncompletePDUOnWrap(t *testing.T) {
	t.Parallel()
	r := aloha.NewReassembler()

	if _, done := r.Add(aloha.Packet{TalID: 1, PduID: 9, Seq: 0, Of: 2, Payload: []byte("stale")}); done {
		t.Fatal("Expected the first PDU incomplete")
	}
	// A new pdu_id arrives for the same terminal before the old one
	// completed: the stale part is dropped, not retained.
	parts, done := r.Add(aloha.Packet{TalID: 1, PduID: 10, Seq: 0, Of: 1, Payload: []byte("fresh")})
	if !done {
		t.Fatal("Expected the new single-part PDU to complete immediately")
	}
	if len(parts) != 1 || string(parts[0]) != "fresh" {
		t.Errorf("Expected only the fresh part, got %v", parts)
	}
}

func TestNCCOnRcvFrameRejectsUnknownTerminal(t *testing.T) {
	t.Parallel()
	categories := map[aloha.TerminalCategory]aloha.CategoryConfig{
		"std": {Algorithm: aloha.AlgoDSA, SlotsPerFrame: 10, Carriers: 1},
	}
	ncc := aloha.NewNCC(categories, func(uint16) (aloha.TerminalCategory, bool) { return "", false })

	err := ncc.OnRcvFrame(0, 0, aloha.Packet{TalID: 42})
	if err == nil {
		t.Fatal("Expected an error for an unrecognized terminal")
	}
}

func TestNCCScheduleResolvesAndReassembles(t *testing.T) {
	t.Parallel()
	categories := map[aloha.TerminalCategory]aloha.CategoryConfig{
		"std": {Algorithm: aloha.AlgoDSA, SlotsPerFrame: 10, Carriers: 1},
	}
	ncc := aloha.NewNCC(categories, func(uint16) (aloha.TerminalCategory, bool) { return "std", true })

	if err := ncc.OnRcvFrame(0, 0, aloha.Packet{TalID: 1, PduID: 1, Seq: 0, Of: 1, Payload: []byte("hi")}); err != nil {
		t.Fatalf("Unexpected error on OnRcvFrame: %v", err)
	}

	results := ncc.Schedule([]aloha.TerminalCategory{"std"})
	if len(results) != 1 {
		t.Fatalf("Expected 1 category result, got %d", len(results))
	}
	if len(results[0].Outcome.Accepted) != 1 {
		t.Fatalf("Expected 1 accepted packet, got %d", len(results[0].Outcome.Accepted))
	}
	if len(results[0].CompletedPDUs) != 1 {
		t.Fatalf("Expected 1 completed PDU, got %d", len(results[0].CompletedPDUs))
	}
	if results[0].CompletedPDUs[0].TalID != 1 {
		t.Errorf("Expected completed PDU attributed to terminal 1, got %d", results[0].CompletedPDUs[0].TalID)
	}
}

type sequentialGenerator struct{ next int }

func (g *sequentialGenerator) NextSlot(slotsPerFrame int) int {
	s := g.next % slotsPerFrame
	g.next++
	return s
}

func TestInjectSimulatedTrafficPlacesReplicasAcrossSlots(t *testing.T) {
	t.Parallel()
	table := aloha.NewSlotTable()
	gen := &sequentialGenerator{}

	aloha.InjectSimulatedTraffic(table, aloha.SimulatedTrafficConfig{
		Category:     "std",
		NbMaxPackets: 2,
		NbReplicas:   2,
		Ratio:        1.0,
	}, 10, gen, 0)

	if table.Len() == 0 {
		t.Fatal("Expected simulated traffic to occupy at least one slot")
	}
	for _, ref := range table.Occupied() {
		for _, pkt := range table.Drain(ref.Carrier, ref.Slot) {
			if pkt.TalID < aloha.SimulatedTalIDBase {
				t.Errorf("Expected a synthetic terminal id >= %d, got %d", aloha.SimulatedTalIDBase, pkt.TalID)
			}
		}
	}
}
