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

package block

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// Block owns an upward channel and a downward channel that share state
// (a FIFO, MODCOD table, route table, whatever the block needs) but run
// on independent goroutines. Each channel can reach its sibling via
// sendOpposite, the Go analogue of the original's raw opposite-channel
// pointer.
type Block struct {
	Name     string
	Upward   Channel
	Downward Channel

	log     *slog.Logger
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewBlock pairs an upward and downward channel under one name.
func NewBlock(name string, upward, downward Channel, log *slog.Logger) *Block {
	return &Block{Name: name, Upward: upward, Downward: downward, log: log}
}

// Start runs both channels on their own goroutine and registers the
// block in the live registry. It returns immediately; Stop blocks until
// both goroutines have exited.
func (b *Block) Start(ctx context.Context) {
	if !b.running.CompareAndSwap(false, true) {
		return
	}
	registry.Store(b.Name, &runningBlock{block: b})

	b.wg.Add(2)
	go func() {
		defer b.wg.Done()
		if err := b.Upward.Run(ctx); err != nil && ctx.Err() == nil {
			b.log.Error("upward channel exited", "block", b.Name, "error", err)
		}
	}()
	go func() {
		defer b.wg.Done()
		if err := b.Downward.Run(ctx); err != nil && ctx.Err() == nil {
			b.log.Error("downward channel exited", "block", b.Name, "error", err)
		}
	}()
}

// Stop closes both channels and waits for their run loops to return.
func (b *Block) Stop() {
	if !b.running.CompareAndSwap(true, false) {
		return
	}
	b.Upward.Close()
	b.Downward.Close()
	b.wg.Wait()
	registry.Delete(b.Name)
}

// runningBlock is the registry entry for a live Block, kept distinct
// from Block itself so the registry can be extended with bookkeeping
// (e.g. start time) without changing Block's exported surface.
type runningBlock struct {
	block *Block
}

// registry tracks every Block currently running in the process, so
// diagnostics and graceful shutdown can enumerate them without a
// global slice guarded by its own mutex.
var registry = xsync.NewMap[string, *runningBlock]()

// Running returns the names of every currently-started Block.
func Running() []string {
	names := make([]string, 0, registry.Size())
	registry.Range(func(name string, _ *runningBlock) bool {
		names = append(names, name)
		return true
	})
	return names
}

// Connect wires a's downward output to b's downward input and b's upward
// output to a's upward input, the way two adjacent blocks in a chain
// are linked (a above b). Both blocks must expose OneToOne channels for this simple
// topology; richer topologies wire their Mux/Demux/MuxDemux channels
// directly via In/Out instead of going through Connect.
func Connect(a, b *Block) error {
	aDown, ok := a.Downward.(*OneToOne)
	if !ok {
		return fmt.Errorf("block: Connect requires a OneToOne downward channel on %q", a.Name)
	}
	bUp, ok := b.Upward.(*OneToOne)
	if !ok {
		return fmt.Errorf("block: Connect requires a OneToOne upward channel on %q", b.Name)
	}
	bDown, ok := b.Downward.(*OneToOne)
	if !ok {
		return fmt.Errorf("block: Connect requires a OneToOne downward channel on %q", b.Name)
	}
	aUp, ok := a.Upward.(*OneToOne)
	if !ok {
		return fmt.Errorf("block: Connect requires a OneToOne upward channel on %q", a.Name)
	}

	bridge(aDown, bDown)
	bridge(bUp, aUp)
	return nil
}

// bridge forwards every message src emits on its Out FIFO into dst's In
// FIFO, for the lifetime of src's context. It runs on its own goroutine
// since FIFO has no native fan-out primitive.
func bridge(src, dst *OneToOne) {
	go func() {
		ctx := context.Background()
		for {
			m, err := src.Out().Pop(ctx)
			if err != nil {
				return
			}
			if err := dst.In().Push(ctx, m); err != nil {
				return
			}
		}
	}()
}
