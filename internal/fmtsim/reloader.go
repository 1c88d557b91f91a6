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

package fmtsim

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/opensand-go/opensand-dataplane/internal/kv"
)

const lockTTL = 10 * time.Second

// Reloader periodically advances a Table's scenario index on a cron
// tick, guarding the actual reload with a KV lock so that only one
// process among a redundant pair of entities performs it. Entities
// that don't acquire the lock on a given tick simply keep running the
// scenario index they already have; they pick up the advance on
// whichever tick they do win the lock.
type Reloader struct {
	scheduler gocron.Scheduler
	table     *Table
	load      Loader
	kv        kv.KV
	lockKey   string
	log       *slog.Logger
	lastFile  []byte
}

// NewReloader wires a Table to a periodic reload job identified by
// lockKey (unique per entity + MODCOD table path, so that redundant
// processes serving the same table contend for the same lock).
func NewReloader(table *Table, load Loader, kvStore kv.KV, lockKey string, log *slog.Logger) (*Reloader, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create fmtsim scheduler: %w", err)
	}
	return &Reloader{
		scheduler: s,
		table:     table,
		load:      load,
		kv:        kvStore,
		lockKey:   lockKey,
		log:       log,
	}, nil
}

// Start registers the reload job at the given cron expression (a
// 6-field expression with a leading seconds column) and starts the
// underlying scheduler.
func (r *Reloader) Start(ctx context.Context, cronExpr string) error {
	_, err := r.scheduler.NewJob(
		gocron.CronJob(cronExpr, true),
		gocron.NewTask(r.tick, ctx),
		gocron.WithName("fmtsim-reload"),
	)
	if err != nil {
		return fmt.Errorf("register fmtsim reload job: %w", err)
	}
	r.scheduler.Start()
	return nil
}

// Stop stops the scheduler's jobs and shuts it down.
func (r *Reloader) Stop() {
	if err := r.scheduler.StopJobs(); err != nil {
		r.log.Error("Failed to stop fmtsim reload job", "error", err)
	}
	if err := r.scheduler.Shutdown(); err != nil {
		r.log.Error("Failed to shut down fmtsim scheduler", "error", err)
	}
}

// tick runs on every cron firing. It tries to acquire the reload lock;
// the loser of the race advances nothing and waits for the next tick.
func (r *Reloader) tick(ctx context.Context) {
	if r.kv == nil {
		r.advance(ctx)
		return
	}

	acquired, err := r.acquireLock(ctx)
	if err != nil {
		r.log.Error("Failed to acquire fmtsim reload lock", "error", err)
		return
	}
	if !acquired {
		return
	}
	r.advance(ctx)
}

// acquireLock is a best-effort compare-and-set built from the plain KV
// interface (Has/Set/Expire), since the store doesn't expose a native
// SETNX. A race between the Has check and the Set is possible in the
// small window between them; when two processes both pass the Has check
// on the same tick, each of them advances its own table once on that
// tick.
func (r *Reloader) acquireLock(ctx context.Context) (bool, error) {
	held, err := r.kv.Has(ctx, r.lockKey)
	if err != nil {
		return false, fmt.Errorf("check fmtsim reload lock: %w", err)
	}
	if held {
		return false, nil
	}
	if err := r.kv.Set(ctx, r.lockKey, []byte("1")); err != nil {
		return false, fmt.Errorf("set fmtsim reload lock: %w", err)
	}
	if err := r.kv.Expire(ctx, r.lockKey, lockTTL); err != nil {
		return false, fmt.Errorf("expire fmtsim reload lock: %w", err)
	}
	return true, nil
}

// advance is the per-tick work once this process holds the reload
// lock: re-read the scenario file, and only reset the table to a
// freshly parsed series if its contents actually changed since the
// last tick. Otherwise this is a plain index advance through the
// series already loaded.
func (r *Reloader) advance(ctx context.Context) {
	data, err := r.load(ctx)
	if err != nil {
		idx := r.table.Advance()
		r.log.Debug("Advanced modcod scenario", "index", idx)
		return
	}

	if r.lastFile != nil && bytes.Equal(data, r.lastFile) {
		idx := r.table.Advance()
		r.log.Debug("Advanced modcod scenario", "index", idx)
		return
	}

	scenarios, err := ParseScenarioFile(data)
	if err != nil {
		r.log.Error("Failed to parse modcod scenario file on reload, keeping previous series", "error", err)
		idx := r.table.Advance()
		r.log.Debug("Advanced modcod scenario", "index", idx)
		return
	}
	if err := r.table.Reload(scenarios); err != nil {
		r.log.Error("Failed to reload modcod scenario series", "error", err)
		return
	}
	r.lastFile = data
	r.log.Debug("Reloaded modcod scenario series from updated file", "entries", len(scenarios))
}
