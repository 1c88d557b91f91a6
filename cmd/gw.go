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

package cmd

import (
	"context"
	"fmt"

	"github.com/opensand-go/opensand-dataplane/internal/aloha"
	"github.com/opensand-go/opensand-dataplane/internal/config"
	"github.com/opensand-go/opensand-dataplane/internal/dvbfifo"
	"github.com/opensand-go/opensand-dataplane/internal/entity"
	"github.com/opensand-go/opensand-dataplane/internal/kv"
	"github.com/opensand-go/opensand-dataplane/internal/metrics"
	"github.com/opensand-go/opensand-dataplane/internal/packet"
	"github.com/opensand-go/opensand-dataplane/internal/scheduler/forward"
	"github.com/spf13/cobra"
)

// defaultFrameSizeBits is the forward carrier's frame payload budget
// used until a real profile provisions per-carrier symbol rates; see
// spec.md's interface-only profile-parsing Non-goal.
const defaultFrameSizeBits = 188 * 8 * 50

// defaultAllocatedKbits is the per-superframe forward capacity budget
// used until a real DAMA agent negotiates it; see the same Non-goal.
const defaultAllocatedKbits = 10000

func newGatewayCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "gw",
		Short:             "Run the forward scheduler and Slotted-Aloha NCC for one gateway",
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		RunE:              runGateway,
	}
}

func runGateway(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := setupLogger(cfg)

	cleanup, err := setupTracing(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup tracing: %w", err)
	}
	startBackgroundServices(cfg, log)

	kvStore, err := kv.MakeKV(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to key-value store: %w", err)
	}
	defer func() {
		if err := kvStore.Close(); err != nil {
			log.Error("failed to close kv store", "error", err)
		}
	}()

	table, err := buildModcodTable(ctx, cfg, kvStore, log)
	if err != nil {
		return err
	}

	fifo := dvbfifo.New(0, 0, dvbfifo.AccessDama, 0, 1024)
	spec := entity.GatewaySpec{
		SuperframeMs:   cfg.Net.SuperframeDurationMs,
		AllocatedKbits: defaultAllocatedKbits,
		Carriers:       []forward.Carrier{{ID: 0, FrameSizeBits: defaultFrameSizeBits}},
		Fifos:          map[forward.CarrierID]*dvbfifo.PriorityFIFOs{0: dvbfifo.NewPriorityFIFOs(fifo)},
		AlohaCategories: map[aloha.TerminalCategory]aloha.CategoryConfig{
			"default": alohaCategoryFromConfig(cfg),
		},
		AlohaOrder: []aloha.TerminalCategory{"default"},
		CategoryOf: func(uint16) (aloha.TerminalCategory, bool) { return "default", true },
	}

	gw := entity.NewGateway(spec, forward.ModcodTable{1: 0.5, 2: 0.75, 3: 0.9}, table, packet.NewVariableLengthHandler(), metrics.NewMetrics(), log)
	gw.SendForward = func(f packet.BBFrame) error {
		log.Debug("forward frame scheduled", "modcod", f.ModcodID, "bytes", f.Payload.Len())
		return nil
	}
	gw.DeliverReturn = func(talID uint16, parts [][]byte) error {
		log.Debug("return pdu delivered", "terminal", talID, "parts", len(parts))
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	entityErr := make(chan error, 1)
	go func() { entityErr <- gw.Start(runCtx) }()

	runUntilSignal(runCtx, log, cleanup, func(context.Context) { cancel() })

	select {
	case err := <-entityErr:
		if err != nil {
			log.Error("gateway stopped with error", "error", err)
		}
	default:
	}
	return nil
}

// alohaCategoryFromConfig maps the single configured Slotted-Aloha
// tuning block to one NCC category; per-category overrides are not yet
// surfaced by config.
func alohaCategoryFromConfig(cfg *config.Config) aloha.CategoryConfig {
	algo := aloha.AlgoDSA
	if cfg.Aloha.Algorithm == config.AlgorithmCRDSA {
		algo = aloha.AlgoCRDSA
	}
	return aloha.CategoryConfig{
		Algorithm:     algo,
		SlotsPerFrame: cfg.Aloha.SlotsPerFrame,
		Carriers:      1,
	}
}
