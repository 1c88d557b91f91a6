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
	"testing"

	"github.com/opensand-go/opensand-dataplane/internal/aloha"
	"github.com/opensand-go/opensand-dataplane/internal/config"
)

func TestSetupTracing_EmptyEndpoint_ReturnsNoopCleanup(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Metrics.OTLPEndpoint = ""

	cleanup, err := setupTracing(cfg)
	if err != nil {
		t.Fatalf("expected no error for empty OTLP endpoint, got: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected non-nil no-op cleanup function for empty OTLP endpoint")
	}
	if err := cleanup(t.Context()); err != nil {
		t.Fatalf("expected no-op cleanup to return nil error, got: %v", err)
	}
}

func TestInitTracer_ValidEndpoint_ReturnsCleanup(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Metrics.OTLPEndpoint = "localhost:4317"

	cleanup, err := initTracer(cfg)
	if err != nil {
		t.Fatalf("expected no error for well-formed endpoint, got: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected non-nil cleanup function for well-formed endpoint")
	}
}

func TestEntityID_ParsesNumericID(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Entity.ID = "42"

	id, err := entityID(cfg)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}
}

func TestEntityID_RejectsNonNumeric(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Entity.ID = "gw1"

	if _, err := entityID(cfg); err == nil {
		t.Fatal("expected an error for a non-numeric entity id")
	}
}

func TestAlohaCategoryFromConfig_MapsAlgorithm(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Aloha.Algorithm = config.AlgorithmCRDSA
	cfg.Aloha.SlotsPerFrame = 16

	category := alohaCategoryFromConfig(cfg)
	if category.Algorithm != aloha.AlgoCRDSA {
		t.Fatalf("expected the CRDSA algorithm, got %d", category.Algorithm)
	}
	if category.SlotsPerFrame != 16 {
		t.Fatalf("expected 16 slots per frame, got %d", category.SlotsPerFrame)
	}
	if category.Carriers != 1 {
		t.Fatalf("expected a single carrier, got %d", category.Carriers)
	}
}
