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

package fmtsim_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opensand-go/opensand-dataplane/internal/config"
	"github.com/opensand-go/opensand-dataplane/internal/fmtsim"
	"github.com/opensand-go/opensand-dataplane/internal/kv"
)

const sampleScenarioFile = `
scenarios:
  - time_ms: 0
    modcods:
      1: 4
      2: 7
  - time_ms: 1000
    modcods:
      1: 2
      2: 9
`

func testKV(t *testing.T) kv.KV {
	t.Helper()
	store, err := kv.MakeKV(context.Background(), &config.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestParseScenarioFile(t *testing.T) {
	t.Parallel()
	scenarios, err := fmtsim.ParseScenarioFile([]byte(sampleScenarioFile))
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	require.Equal(t, uint8(4), scenarios[0].Modcods[1])
	require.Equal(t, uint8(9), scenarios[1].Modcods[2])
}

func TestParseScenarioFileRejectsEmpty(t *testing.T) {
	t.Parallel()
	_, err := fmtsim.ParseScenarioFile([]byte("scenarios: []"))
	require.Error(t, err)
}

func TestTableModcodOfFallsBackToRobustnessFloor(t *testing.T) {
	t.Parallel()
	scenarios, err := fmtsim.ParseScenarioFile([]byte(sampleScenarioFile))
	require.NoError(t, err)
	table, err := fmtsim.NewTable(scenarios)
	require.NoError(t, err)

	require.Equal(t, uint8(4), table.ModcodOf(1))
	require.Equal(t, uint8(1), table.ModcodOf(99))
}

func TestTableAdvanceWrapsAround(t *testing.T) {
	t.Parallel()
	scenarios, err := fmtsim.ParseScenarioFile([]byte(sampleScenarioFile))
	require.NoError(t, err)
	table, err := fmtsim.NewTable(scenarios)
	require.NoError(t, err)

	require.Equal(t, 0, table.Index())
	require.Equal(t, 1, table.Advance())
	require.Equal(t, uint8(2), table.ModcodOf(1))
	require.Equal(t, 0, table.Advance())
	require.Equal(t, uint8(4), table.ModcodOf(1))
}

func TestReloaderAdvancesOnEachTick(t *testing.T) {
	t.Parallel()
	scenarios, err := fmtsim.ParseScenarioFile([]byte(sampleScenarioFile))
	require.NoError(t, err)
	table, err := fmtsim.NewTable(scenarios)
	require.NoError(t, err)

	load := func(context.Context) ([]byte, error) { return []byte(sampleScenarioFile), nil }
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	reloader, err := fmtsim.NewReloader(table, load, testKV(t), "test:fmtsim:lock", log)
	require.NoError(t, err)

	require.NoError(t, reloader.Start(context.Background(), "*/1 * * * * *"))
	t.Cleanup(reloader.Stop)

	require.Eventually(t, func() bool {
		return table.Index() == 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestReloaderSecondInstanceLosesTheLockRace(t *testing.T) {
	t.Parallel()
	store := testKV(t)

	scenariosA, err := fmtsim.ParseScenarioFile([]byte(sampleScenarioFile))
	require.NoError(t, err)
	tableA, err := fmtsim.NewTable(scenariosA)
	require.NoError(t, err)

	scenariosB, err := fmtsim.ParseScenarioFile([]byte(sampleScenarioFile))
	require.NoError(t, err)
	tableB, err := fmtsim.NewTable(scenariosB)
	require.NoError(t, err)

	load := func(context.Context) ([]byte, error) { return []byte(sampleScenarioFile), nil }
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	const lockKey = "test:fmtsim:lock:shared"
	reloaderA, err := fmtsim.NewReloader(tableA, load, store, lockKey, log)
	require.NoError(t, err)
	reloaderB, err := fmtsim.NewReloader(tableB, load, store, lockKey, log)
	require.NoError(t, err)

	require.NoError(t, reloaderA.Start(context.Background(), "*/1 * * * * *"))
	require.NoError(t, reloaderB.Start(context.Background(), "*/1 * * * * *"))
	t.Cleanup(reloaderA.Stop)
	t.Cleanup(reloaderB.Stop)

	// Exactly one of the two redundant instances should ever advance past
	// index 0 within the lock's TTL, since they share a lock key.
	require.Eventually(t, func() bool {
		return tableA.Index() == 1 || tableB.Index() == 1
	}, 3*time.Second, 50*time.Millisecond)
	require.False(t, tableA.Index() == 1 && tableB.Index() == 1)
}
