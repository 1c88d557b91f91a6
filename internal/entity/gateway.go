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

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/opensand-go/opensand-dataplane/internal/aloha"
	"github.com/opensand-go/opensand-dataplane/internal/dvbfifo"
	"github.com/opensand-go/opensand-dataplane/internal/fmtsim"
	"github.com/opensand-go/opensand-dataplane/internal/metrics"
	"github.com/opensand-go/opensand-dataplane/internal/packet"
	"github.com/opensand-go/opensand-dataplane/internal/scheduler/forward"
)

// GatewaySpec describes the static configuration a Gateway is built
// from: its forward-link carriers, the MAC fifos feeding them, and the
// Slotted-Aloha categories its NCC arbitrates on the return link.
type GatewaySpec struct {
	SuperframeMs   int
	Carriers       []forward.Carrier
	Fifos          map[forward.CarrierID]*dvbfifo.PriorityFIFOs
	AllocatedKbits int
	AlohaCategories map[aloha.TerminalCategory]aloha.CategoryConfig
	AlohaOrder      []aloha.TerminalCategory
	CategoryOf      func(talID uint16) (aloha.TerminalCategory, bool)
}

// Gateway runs the forward scheduler toward terminals and the Slotted-
// Aloha NCC that arbitrates their return-link bursts, the two halves of
// BlockDvbNcc in the original's gateway stack.
type Gateway struct {
	spec     GatewaySpec
	modcods  forward.ModcodTable
	table    *fmtsim.Table
	handler  packet.PacketHandler
	ncc      *aloha.NCC
	metrics  *metrics.Metrics
	log      *slog.Logger

	// SendForward is called with every BBFrame the scheduler builds,
	// standing in for handing it to the satellite-carrier transport.
	SendForward func(packet.BBFrame) error
	// DeliverReturn is called with every completed return-link PDU,
	// standing in for handing it up to lan adaptation / decapsulation.
	DeliverReturn func(talID uint16, parts [][]byte) error
}

// NewGateway builds a Gateway over spec, using table for the forward
// MODCOD assignment and modcods for per-MODCOD frame efficiency.
func NewGateway(spec GatewaySpec, modcods forward.ModcodTable, table *fmtsim.Table, handler packet.PacketHandler, m *metrics.Metrics, log *slog.Logger) *Gateway {
	return &Gateway{
		spec:    spec,
		modcods: modcods,
		table:   table,
		handler: handler,
		ncc:     aloha.NewNCC(spec.AlohaCategories, spec.CategoryOf),
		metrics: m,
		log:     log,
	}
}

// Start runs the forward-scheduling clock and the Slotted-Aloha
// schedule clock concurrently until ctx is cancelled, fanning both
// goroutines in at shutdown.
func (g *Gateway) Start(ctx context.Context) error {
	forwardClock := NewSuperframeClock(g.spec.SuperframeMs, g.log, g.tickForward)
	alohaClock := NewSuperframeClock(g.spec.SuperframeMs, g.log, g.tickAloha)
	return runGroup(ctx, forwardClock.Run, alohaClock.Run)
}

// OnRcvReturnPacket feeds one received Slotted-Aloha slot's packet into
// the NCC ahead of the next schedule tick.
func (g *Gateway) OnRcvReturnPacket(carrier uint8, slot int, pkt aloha.Packet) error {
	return g.ncc.OnRcvFrame(carrier, slot, pkt)
}

func (g *Gateway) tickForward(ctx context.Context, superframe uint32) error {
	remaining := g.spec.AllocatedKbits
	frames, err := forward.Schedule(ctx, superframe, g.spec.Carriers, g.spec.Fifos, g.modcods, g.modcodOf, g.handler, &remaining)
	if err != nil {
		return fmt.Errorf("gateway: forward tick: %w", err)
	}
	for _, frame := range frames {
		g.metrics.IncrementBBFrames(strconv.Itoa(int(frame.ModcodID)))
		if g.SendForward != nil {
			if err := g.SendForward(frame); err != nil {
				return fmt.Errorf("gateway: send forward frame: %w", err)
			}
		}
	}
	g.metrics.SetSchedulerAllocation("forward", float64(g.spec.AllocatedKbits-remaining))
	return nil
}

func (g *Gateway) tickAloha(_ context.Context, _ uint32) error {
	start := time.Now()
	results := g.ncc.Schedule(g.spec.AlohaOrder)

	var slots, collisions, recovered int
	for _, r := range results {
		slots += r.Outcome.TotalSlots
		collisions += r.Outcome.CollisionsAfter
		recovered += len(r.Outcome.Accepted)
		for _, pdu := range r.CompletedPDUs {
			if g.DeliverReturn != nil {
				if err := g.DeliverReturn(pdu.TalID, pdu.Parts); err != nil {
					g.log.Error("deliver return pdu failed", "terminal", pdu.TalID, "error", err)
				}
			}
		}
	}
	g.metrics.RecordAlohaFrame(slots, collisions, recovered, time.Since(start).Seconds())
	return nil
}

func (g *Gateway) modcodOf(t forward.TalID) uint8 {
	return g.table.ModcodOf(uint16(t))
}
