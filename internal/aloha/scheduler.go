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

import (
	"fmt"

	"github.com/opensand-go/opensand-dataplane/internal/dvbconst"
)

// TerminalCategory groups terminals sharing a collision algorithm and
// slot table, e.g. by service class or capability.
type TerminalCategory string

// CategoryConfig binds one category to its collision algorithm and the
// carrier layout used to order accepted packets.
type CategoryConfig struct {
	Algorithm     CollisionAlgorithm
	SlotsPerFrame int
	Carriers      int
}

// SlotsPerCarrier floors the category's total slot count evenly across
// its carriers, per the ordering rule accepted packets are sorted by.
func (c CategoryConfig) SlotsPerCarrier() int {
	if c.Carriers <= 0 {
		return 0
	}
	return c.SlotsPerFrame / c.Carriers
}

// categoryLookup resolves which category a terminal belongs to.
type categoryLookup func(talID uint16) (TerminalCategory, bool)

// NCC runs the Slotted-Aloha access scheme for a spot: one slot table
// and one PDU reassembler per category.
type NCC struct {
	categories  map[TerminalCategory]CategoryConfig
	tables      map[TerminalCategory]*SlotTable
	reassembler *Reassembler
	lookup      categoryLookup
}

// NewNCC builds an NCC for the given category configuration and
// terminal-to-category lookup.
func NewNCC(categories map[TerminalCategory]CategoryConfig, lookup categoryLookup) *NCC {
	tables := make(map[TerminalCategory]*SlotTable, len(categories))
	for cat := range categories {
		tables[cat] = NewSlotTable()
	}
	return &NCC{
		categories:  categories,
		tables:      tables,
		reassembler: NewReassembler(),
		lookup:      lookup,
	}
}

// OnRcvFrame files pkt, received on (carrier, slot), into its
// terminal's category slot table. An unknown terminal is a protocol
// error: the caller logs and drops it.
func (n *NCC) OnRcvFrame(carrier uint8, slot int, pkt Packet) error {
	cat, ok := n.lookup(pkt.TalID)
	if !ok {
		return fmt.Errorf("%w: slotted-aloha packet from unknown terminal %d", dvbconst.ErrProtocolError, pkt.TalID)
	}
	table, ok := n.tables[cat]
	if !ok {
		return fmt.Errorf("%w: no slot table configured for category %q", dvbconst.ErrInitError, cat)
	}
	table.Push(carrier, slot, pkt)
	return nil
}

// CompletedPDU is one terminal's fully reassembled PDU, ready for
// delivery upward.
type CompletedPDU struct {
	TalID uint16
	Parts [][]byte
}

// CategoryResult is one category's outcome for a single Aloha frame:
// its collision metrics plus the PDUs completed by packets it accepted
// this frame.
type CategoryResult struct {
	Category      TerminalCategory
	Outcome       Outcome
	CompletedPDUs []CompletedPDU
}

// Schedule resolves every category's slot table for the current Aloha
// frame, feeds accepted packets to the PDU reassembler, and resets
// each table for the next frame. Results are returned in a
// deterministic category order rather than map iteration order.
func (n *NCC) Schedule(order []TerminalCategory) []CategoryResult {
	results := make([]CategoryResult, 0, len(order))
	for _, cat := range order {
		cfg, ok := n.categories[cat]
		table, ok2 := n.tables[cat]
		if !ok || !ok2 {
			continue
		}

		outcome := Resolve(table, cfg.Algorithm)

		var completed []CompletedPDU
		for _, pkt := range outcome.Accepted {
			if parts, done := n.reassembler.Add(pkt); done {
				completed = append(completed, CompletedPDU{TalID: pkt.TalID, Parts: parts})
			}
		}

		results = append(results, CategoryResult{
			Category:      cat,
			Outcome:       outcome,
			CompletedPDUs: completed,
		})
	}
	return results
}
