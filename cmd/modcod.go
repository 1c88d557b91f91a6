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
	"log/slog"
	"os"

	"github.com/opensand-go/opensand-dataplane/internal/config"
	"github.com/opensand-go/opensand-dataplane/internal/fmtsim"
	"github.com/opensand-go/opensand-dataplane/internal/kv"
)

// defaultReloadCron advances the MODCOD table once a second; a scenario
// entry corresponds to one reload tick, not to wall-clock time.
const defaultReloadCron = "*/1 * * * * *"

func fileLoader(path string) fmtsim.Loader {
	return func(context.Context) ([]byte, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read modcod table %s: %w", path, err)
		}
		return data, nil
	}
}

// buildModcodTable loads cfg.Net.ModcodTablePath's initial scenario
// series and, if a path was configured, starts the reloader that keeps
// advancing it on a shared cron against the KV-backed lock.
func buildModcodTable(ctx context.Context, cfg *config.Config, kvStore kv.KV, log *slog.Logger) (*fmtsim.Table, error) {
	if cfg.Net.ModcodTablePath == "" {
		return fmtsim.NewTable([]fmtsim.Scenario{{TimeMs: 0, Modcods: map[uint16]uint8{}}})
	}

	load := fileLoader(cfg.Net.ModcodTablePath)
	data, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read modcod table: %w", err)
	}
	scenarios, err := fmtsim.ParseScenarioFile(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse modcod table: %w", err)
	}
	table, err := fmtsim.NewTable(scenarios)
	if err != nil {
		return nil, fmt.Errorf("failed to build modcod table: %w", err)
	}

	reloader, err := fmtsim.NewReloader(table, load, kvStore, "modcod:"+cfg.Net.ModcodTablePath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build modcod reloader: %w", err)
	}
	if err := reloader.Start(ctx, defaultReloadCron); err != nil {
		return nil, fmt.Errorf("failed to start modcod reloader: %w", err)
	}
	go func() {
		<-ctx.Done()
		reloader.Stop()
	}()

	return table, nil
}
