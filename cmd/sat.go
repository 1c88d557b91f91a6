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
	"os"

	"github.com/opensand-go/opensand-dataplane/internal/config"
	"github.com/opensand-go/opensand-dataplane/internal/entity"
	"github.com/opensand-go/opensand-dataplane/internal/kv"
	"github.com/opensand-go/opensand-dataplane/internal/metrics"
	"github.com/opensand-go/opensand-dataplane/internal/relay"
	"github.com/spf13/cobra"
)

func newSatelliteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "sat",
		Short:             "Run the transparent relay for one satellite",
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		RunE:              runSatellite,
	}
}

func runSatellite(cmd *cobra.Command, _ []string) error {
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

	id, err := entityID(cfg)
	if err != nil {
		return err
	}

	topology, err := loadTopology(cfg)
	if err != nil {
		return err
	}

	sat, err := entity.NewSatellite(topology, id, cfg.Net.ISLEnabled, metrics.NewMetrics(), log)
	if err != nil {
		return fmt.Errorf("failed to build satellite relay: %w", err)
	}
	sat.ForwardLocal = func(msg any) error {
		log.Debug("relayed locally", "message", msg)
		return nil
	}
	sat.ForwardISL = func(msg any) error {
		log.Debug("relayed over isl", "message", msg)
		return nil
	}
	if cfg.Net.ISLEnabled {
		kvStore, err := kv.MakeKV(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to key-value store: %w", err)
		}
		sat.SetISLQueue(kvStore)
	}

	runCtx, cancel := context.WithCancel(ctx)
	runUntilSignal(runCtx, log, cleanup, func(context.Context) { cancel() })
	return nil
}

// loadTopology reads and parses cfg.Net.RouteTablePath, the satellite
// relay's route table.
func loadTopology(cfg *config.Config) ([]relay.SpotTopology, error) {
	if cfg.Net.RouteTablePath == "" {
		return nil, fmt.Errorf("route_table_path is required for the sat role")
	}
	data, err := os.ReadFile(cfg.Net.RouteTablePath)
	if err != nil {
		return nil, fmt.Errorf("read route table %s: %w", cfg.Net.RouteTablePath, err)
	}
	topology, err := relay.ParseTopologyFile(data)
	if err != nil {
		return nil, fmt.Errorf("parse route table %s: %w", cfg.Net.RouteTablePath, err)
	}
	return topology, nil
}
