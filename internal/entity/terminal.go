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

	"github.com/opensand-go/opensand-dataplane/internal/dvbfifo"
	"github.com/opensand-go/opensand-dataplane/internal/metrics"
	"github.com/opensand-go/opensand-dataplane/internal/packet"
	scheduler "github.com/opensand-go/opensand-dataplane/internal/scheduler/return"
)

// TerminalSpec describes the static configuration a Terminal is built
// from: its own MAC fifos and the burst budget it negotiates with the
// NCC for the current superframe.
type TerminalSpec struct {
	SuperframeMs int
	Fifos        []*dvbfifo.DvbFifo
	MaxBurstBits int
}

// Terminal runs the return scheduler that bin-packs this terminal's own
// MAC fifos into DvbRcsFrame bursts within its allocated capacity, the
// counterpart of Gateway's forward scheduler on the uplink side.
type Terminal struct {
	spec    TerminalSpec
	handler packet.PacketHandler
	metrics *metrics.Metrics
	log     *slog.Logger

	// AllocatedKbits is the capacity this terminal was granted for the
	// current superframe, set by the caller; while it is zero or less,
	// tick schedules and sends nothing.
	AllocatedKbits int

	// SendReturn is called with every DvbRcsFrame the scheduler builds,
	// standing in for handing it to the satellite-carrier transport.
	SendReturn func(packet.DvbRcsFrame) error
}

// NewTerminal builds a Terminal over spec.
func NewTerminal(spec TerminalSpec, handler packet.PacketHandler, m *metrics.Metrics, log *slog.Logger) *Terminal {
	return &Terminal{spec: spec, handler: handler, metrics: m, log: log}
}

// Start runs the return-scheduling clock until ctx is cancelled.
func (t *Terminal) Start(ctx context.Context) error {
	clock := NewSuperframeClock(t.spec.SuperframeMs, t.log, t.tick)
	return runGroup(ctx, clock.Run)
}

func (t *Terminal) tick(ctx context.Context, superframe uint32) error {
	if t.AllocatedKbits <= 0 {
		return nil
	}
	remaining := t.AllocatedKbits
	result, err := scheduler.Schedule(ctx, t.spec.Fifos, t.handler, t.spec.MaxBurstBits, remaining)
	if err != nil {
		return fmt.Errorf("terminal: return tick %d: %w", superframe, err)
	}
	for _, frame := range result.Frames {
		if t.SendReturn != nil {
			if err := t.SendReturn(frame); err != nil {
				return fmt.Errorf("terminal: send return frame: %w", err)
			}
		}
	}
	t.metrics.SetSchedulerAllocation("return", float64(t.AllocatedKbits-result.RemainingKb))
	return nil
}
