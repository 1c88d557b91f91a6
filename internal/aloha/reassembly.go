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
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// pduContext holds one terminal's in-progress PDU: the pdu_id it is
// currently accumulating parts for, and the parts seen so far keyed by
// sequence number.
type pduContext struct {
	mu    sync.Mutex
	pduID uint16
	of    uint8
	parts map[uint8][]byte
}

// Reassembler reconstructs PDUs from Aloha packets carrying
// (pdu_id, seq, of), one in-progress PDU per terminal. A terminal
// starting a new pdu_id before the previous one completed drops it,
// matching the best-effort "no retransmission" contract: nothing waits
// for a lost fragment forever.
type Reassembler struct {
	byTerminal *xsync.Map[uint16, *pduContext]
}

// NewReassembler returns an empty PDU reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{byTerminal: xsync.NewMap[uint16, *pduContext]()}
}

// Add folds pkt into its terminal's in-progress PDU. done reports
// whether every part of the PDU has now been seen; when true, parts is
// the ordered, complete list of payload fragments.
func (r *Reassembler) Add(pkt Packet) (parts [][]byte, done bool) {
	ctx, _ := r.byTerminal.LoadOrStore(pkt.TalID, &pduContext{
		pduID: pkt.PduID,
		of:    pkt.Of,
		parts: make(map[uint8][]byte),
	})

	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if ctx.pduID != pkt.PduID {
		ctx.pduID = pkt.PduID
		ctx.of = pkt.Of
		ctx.parts = make(map[uint8][]byte)
	}
	ctx.parts[pkt.Seq] = pkt.Payload

	if len(ctx.parts) < int(ctx.of) {
		return nil, false
	}

	ordered := make([][]byte, ctx.of)
	for i := uint8(0); i < ctx.of; i++ {
		ordered[i] = ctx.parts[i]
	}
	ctx.parts = make(map[uint8][]byte)
	return ordered, true
}

// Forget drops a terminal's in-progress PDU, if any.
func (r *Reassembler) Forget(talID uint16) {
	r.byTerminal.Delete(talID)
}
