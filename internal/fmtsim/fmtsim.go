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

// Package fmtsim holds the per-terminal MODCOD assignment used by the
// forward and return schedulers, periodically advanced through a
// scenario time series the way a live FMT (Fade Mitigation Technique)
// loop would react to changing channel conditions.
package fmtsim

import (
	"context"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/opensand-go/opensand-dataplane/internal/dvbconst"
)

// Scenario is one time-indexed row of a MODCOD scenario file: the
// MODCOD id assigned to each terminal at that point in the series.
type Scenario struct {
	// TimeMs is this entry's offset from the scenario's start, used only
	// to order entries; the table does not replay wall-clock timing, it
	// simply advances one entry per reload tick.
	TimeMs  int64            `yaml:"time_ms"`
	Modcods map[uint16]uint8 `yaml:"modcods"`
}

// scenarioFile is the on-disk shape of a MODCOD scenario file.
type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// ParseScenarioFile decodes a MODCOD scenario time series from YAML.
func ParseScenarioFile(data []byte) ([]Scenario, error) {
	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse modcod scenario file: %w", dvbconst.ErrInitError, err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: modcod scenario file has no entries", dvbconst.ErrInitError)
	}
	return f.Scenarios, nil
}

// Table holds the currently active MODCOD assignment and the full
// scenario series it steps through. Reads of the current assignment
// (ModcodOf) take a read lock, so they run alongside each other and wait
// only while an Advance is in progress.
type Table struct {
	mu        sync.RWMutex
	scenarios []Scenario
	index     int
	current   map[uint16]uint8
}

// NewTable builds a Table positioned at the first scenario entry.
func NewTable(scenarios []Scenario) (*Table, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("%w: at least one scenario entry is required", dvbconst.ErrInitError)
	}
	return &Table{
		scenarios: scenarios,
		current:   scenarios[0].Modcods,
	}, nil
}

// ModcodOf returns the MODCOD currently assigned to talID, or the
// robustness floor (MODCOD 1) if the terminal has no entry in the
// active scenario.
func (t *Table) ModcodOf(talID uint16) uint8 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if m, ok := t.current[talID]; ok {
		return m
	}
	return 1
}

// Advance moves the table to the next scenario entry, wrapping back to
// the start once the series is exhausted. It returns the index now
// active.
func (t *Table) Advance() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.index = (t.index + 1) % len(t.scenarios)
	t.current = t.scenarios[t.index].Modcods
	return t.index
}

// Index reports the scenario entry currently active.
func (t *Table) Index() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.index
}

// Reload swaps in a freshly parsed scenario series, positioning the
// table at its first entry. Used when the underlying file changes on
// disk between reload ticks.
func (t *Table) Reload(scenarios []Scenario) error {
	if len(scenarios) == 0 {
		return fmt.Errorf("%w: at least one scenario entry is required", dvbconst.ErrInitError)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scenarios = scenarios
	t.index = 0
	t.current = scenarios[0].Modcods
	return nil
}

// Loader reads a scenario file's current contents. Abstracted so tests
// can substitute an in-memory source instead of touching disk.
type Loader func(ctx context.Context) ([]byte, error)
