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

	"github.com/opensand-go/opensand-dataplane/internal/dvbconst"
	"github.com/opensand-go/opensand-dataplane/internal/kv"
	"github.com/opensand-go/opensand-dataplane/internal/metrics"
	"github.com/opensand-go/opensand-dataplane/internal/packet"
	"github.com/opensand-go/opensand-dataplane/internal/relay"
)

// Satellite is a transparent relay: it holds no scheduler of its own,
// it only routes each frame or burst it sees toward whichever physical
// satellite owns the destination side, possibly over an ISL.
type Satellite struct {
	router  *relay.Router
	metrics *metrics.Metrics
	log     *slog.Logger
	l2      *l2Counters
	// queue buffers bursts that need to cross the ISL while it is down
	// or unconfigured. Nil disables buffering (the message is dropped,
	// as before SetISLQueue existed).
	queue kv.KV

	// ForwardLocal is called when a message should be delivered on this
	// satellite's own downlink instead of crossing an ISL.
	ForwardLocal func(any) error
	// ForwardISL is called when a message must cross the inter-satellite
	// link to reach the satellite that actually owns the destination.
	ForwardISL func(any) error
}

// NewSatellite builds a Satellite over a route table built from
// topology, for the satellite identified by entityID.
func NewSatellite(topology []relay.SpotTopology, entityID uint16, islEnabled bool, m *metrics.Metrics, log *slog.Logger) (*Satellite, error) {
	table, err := relay.BuildRouteTable(topology, entityID, islEnabled)
	if err != nil {
		return nil, err
	}
	return &Satellite{
		router:  relay.NewRouter(entityID, table, islEnabled),
		metrics: m,
		log:     log,
		l2:      newL2Counters(),
	}, nil
}

// SetISLQueue attaches the KV store a satellite buffers outbound ISL
// bursts in whenever ForwardISL is unset or fails, so a later call to
// ReplayISLQueue can hand the satellite that now owns the destination
// its backlog instead of the bursts having been dropped.
func (s *Satellite) SetISLQueue(store kv.KV) {
	s.queue = store
}

// GetL2FromSt returns spotID's accumulated byte total received from
// its terminal population since the last call, and resets it to zero.
func (s *Satellite) GetL2FromSt(spotID uint16) int64 {
	return s.l2.GetFromSt(spotID)
}

// GetL2FromGw returns spotID's accumulated byte total received from
// its gateway since the last call, and resets it to zero.
func (s *Satellite) GetL2FromGw(spotID uint16) int64 {
	return s.l2.GetFromGw(spotID)
}

// RelayUpwardFrame routes a received DvbFrame, identified by the spot
// and carrier it arrived on, toward its owning satellite.
func (s *Satellite) RelayUpwardFrame(spotID uint16, carrierID uint8, msg any) error {
	decision, err := s.router.RouteUpwardFrame(spotID, carrierID)
	if err != nil {
		s.metrics.IncrementRelayDropped(carrierIDLabel(carrierID))
		return err
	}
	s.recordL2(spotID, carrierID, msg)
	return s.dispatch(decision, carrierID, msg)
}

// RelayDownwardFrame routes a received DvbFrame on the downward
// channel, re-emitting it on the paired output carrier when delivered
// locally.
func (s *Satellite) RelayDownwardFrame(spotID uint16, carrierID uint8, msg any) error {
	decision, err := s.router.RouteDownwardFrame(spotID, carrierID)
	if err != nil {
		s.metrics.IncrementRelayDropped(carrierIDLabel(carrierID))
		return err
	}
	s.recordL2(spotID, carrierID, msg)
	return s.dispatch(decision, decision.OutputCarrierID, msg)
}

// RelayBurst routes a decapsulated packet burst from srcID to dstID.
func (s *Satellite) RelayBurst(srcID, dstID uint16, roleOf relay.EntityRoleLookup, msg any) error {
	decision, err := s.router.RouteBurst(srcID, dstID, roleOf)
	if err != nil {
		s.metrics.IncrementRelayDropped("burst")
		return err
	}
	if spotID, ok := s.router.SpotOf(srcID); ok {
		s.recordL2ByRole(spotID, roleOf(srcID), msg)
	}
	return s.dispatchBurst(decision, srcID, dstID, msg)
}

// dispatchBurst is RelayBurst's half of dispatch: unlike a raw frame, a
// burst carries the src/dst pair a QueuedEnvelope needs, so a burst
// that can't cross the ISL right now is buffered instead of dropped.
func (s *Satellite) dispatchBurst(decision relay.Decision, srcID, dstID uint16, msg any) error {
	switch decision.Action {
	case relay.ActionDeliverLocal:
		s.metrics.IncrementRelayForwarded("burst")
		if s.ForwardLocal != nil {
			return s.ForwardLocal(msg)
		}
		return nil
	case relay.ActionForwardISL:
		s.metrics.IncrementRelayForwarded("burst")
		if s.ForwardISL != nil {
			if err := s.ForwardISL(msg); err == nil {
				return nil
			}
		}
		return s.enqueueForISL(srcID, dstID, msg)
	default:
		return dvbconst.ErrProtocolError
	}
}

// enqueueForISL buffers a burst that could not cross the ISL so a
// later ReplayISLQueue call can still deliver it. A nil queue keeps
// the historical drop-on-the-floor behavior.
func (s *Satellite) enqueueForISL(srcID, dstID uint16, msg any) error {
	if s.queue == nil {
		return nil
	}
	env := packet.QueuedEnvelope{Src: srcID, Dst: dstID, Data: messageBytes(msg)}
	encoded, err := env.MarshalMsg(nil)
	if err != nil {
		return fmt.Errorf("marshal queued envelope: %w", err)
	}
	if _, err := s.queue.RPush(context.Background(), islQueueKey(dstID), encoded); err != nil {
		return fmt.Errorf("buffer burst for isl replay: %w", err)
	}
	return nil
}

// ReplayISLQueue drains every burst buffered for dstID, in the order it
// was queued, handing each one's source, destination and raw payload
// to send. It is a no-op if no queue was attached.
func (s *Satellite) ReplayISLQueue(ctx context.Context, dstID uint16, send func(src, dst uint16, data []byte) error) error {
	if s.queue == nil {
		return nil
	}
	entries, err := s.queue.LDrain(ctx, islQueueKey(dstID))
	if err != nil {
		return fmt.Errorf("drain isl queue: %w", err)
	}
	for _, raw := range entries {
		var env packet.QueuedEnvelope
		if _, err := env.UnmarshalMsg(raw); err != nil {
			return fmt.Errorf("decode queued envelope: %w", err)
		}
		if err := send(env.Src, env.Dst, env.Data); err != nil {
			return err
		}
	}
	return nil
}

func islQueueKey(dstID uint16) string {
	return "isl:queue:" + strconv.Itoa(int(dstID))
}

// recordL2 attributes msg's byte length to spotID's from-ST or
// from-GW counter based on which side carrierID belongs to.
func (s *Satellite) recordL2(spotID uint16, carrierID uint8, msg any) {
	role := dvbconst.RoleGateway
	if dvbconst.IsInGateway(carrierID) {
		role = dvbconst.RoleTerminal
	}
	s.recordL2ByRole(spotID, role, msg)
}

func (s *Satellite) recordL2ByRole(spotID uint16, role dvbconst.EntityRole, msg any) {
	n := messageLen(msg)
	spotLabel := strconv.Itoa(int(spotID))
	switch role {
	case dvbconst.RoleTerminal:
		s.l2.AddFromSt(spotID, n)
		s.metrics.AddL2FromSt(spotLabel, n)
	case dvbconst.RoleGateway:
		s.l2.AddFromGw(spotID, n)
		s.metrics.AddL2FromGw(spotLabel, n)
	}
}

func (s *Satellite) dispatch(decision relay.Decision, carrierID uint8, msg any) error {
	switch decision.Action {
	case relay.ActionDeliverLocal:
		s.metrics.IncrementRelayForwarded(carrierIDLabel(carrierID))
		if s.ForwardLocal != nil {
			return s.ForwardLocal(msg)
		}
		return nil
	case relay.ActionForwardISL:
		s.metrics.IncrementRelayForwarded(carrierIDLabel(carrierID))
		if s.ForwardISL != nil {
			return s.ForwardISL(msg)
		}
		return nil
	default:
		return dvbconst.ErrProtocolError
	}
}

func carrierIDLabel(carrierID uint8) string {
	return strconv.Itoa(int(carrierID))
}
