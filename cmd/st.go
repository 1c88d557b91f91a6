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

	"github.com/opensand-go/opensand-dataplane/internal/dvbfifo"
	"github.com/opensand-go/opensand-dataplane/internal/entity"
	"github.com/opensand-go/opensand-dataplane/internal/metrics"
	"github.com/opensand-go/opensand-dataplane/internal/packet"
	"github.com/spf13/cobra"
)

// defaultMaxBurstBits caps a single return burst until a real DAMA
// agent negotiates per-terminal capacity; see gw.go's same Non-goal.
const defaultMaxBurstBits = 188 * 8 * 10

func newTerminalCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "st",
		Short:             "Run the return scheduler for one satellite terminal",
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		RunE:              runTerminal,
	}
}

func runTerminal(cmd *cobra.Command, _ []string) error {
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

	fifo := dvbfifo.New(0, 0, dvbfifo.AccessDama, 0, 1024)
	spec := entity.TerminalSpec{
		SuperframeMs: cfg.Net.SuperframeDurationMs,
		Fifos:        []*dvbfifo.DvbFifo{fifo},
		MaxBurstBits: defaultMaxBurstBits,
	}

	term := entity.NewTerminal(spec, packet.NewVariableLengthHandler(), metrics.NewMetrics(), log)
	term.AllocatedKbits = defaultAllocatedKbits
	term.SendReturn = func(f packet.DvbRcsFrame) error {
		log.Debug("return frame scheduled", "bytes", f.Payload.Len())
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	entityErr := make(chan error, 1)
	go func() { entityErr <- term.Start(runCtx) }()

	runUntilSignal(runCtx, log, cleanup, func(context.Context) { cancel() })

	select {
	case err := <-entityErr:
		if err != nil {
			log.Error("terminal stopped with error", "error", err)
		}
	default:
	}
	return nil
}
