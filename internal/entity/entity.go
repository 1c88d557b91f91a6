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

// Package entity assembles the FIFOs and scheduling state that make up
// one running process: a gateway (forward scheduler + Slotted-Aloha
// NCC), a satellite (transparent relay), or a terminal (return
// scheduler). Each entity owns a superframe clock that drives its
// scheduler once per tick; entities do not build or connect
// internal/block chains.
package entity

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// SuperframeClock ticks once per superframe and invokes onTick with the
// superframe counter, until ctx is cancelled. It is the Go analogue of
// the original's periodic timer event registered on a block's channel.
type SuperframeClock struct {
	period uint32
	onTick func(ctx context.Context, superframe uint32) error
	log    *slog.Logger
}

// NewSuperframeClock builds a clock firing every periodMs milliseconds.
func NewSuperframeClock(periodMs int, log *slog.Logger, onTick func(ctx context.Context, superframe uint32) error) *SuperframeClock {
	return &SuperframeClock{period: uint32(periodMs), onTick: onTick, log: log}
}

// Run blocks, ticking onTick once per period, until ctx is cancelled.
func (c *SuperframeClock) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(c.period) * time.Millisecond)
	defer ticker.Stop()

	var superframe uint32
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.onTick(ctx, superframe); err != nil {
				c.log.Error("superframe tick failed", "superframe", superframe, "error", err)
			}
			superframe++
		}
	}
}

// runGroup starts every runner concurrently via errgroup, fanning out
// at startup and fanning back in at shutdown: Wait returns once ctx is
// cancelled and every runner has returned, or as soon as one returns a
// non-context error.
func runGroup(ctx context.Context, runners ...func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		r := r
		g.Go(func() error { return r(gctx) })
	}
	return g.Wait()
}
