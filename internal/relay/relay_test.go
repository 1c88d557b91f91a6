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

package relay_test

import (
	"errors"
	"testing"

	"github.com/opensand-go/opensand-dataplane/internal/dvbconst"
	"github.com/opensand-go/opensand-dataplane/internal/relay"
)

func starTopology() []relay.SpotTopology {
	return []relay.SpotTopology{
		{SpotID: 1, GwID: 10, StIDs: []uint16{20, 21}, SatIDGw: 100, SatIDSt: 100},
	}
}

func TestBuildRouteTableRejectsMeshWithoutISL(t *testing.T) {
	t.Parallel()
	topology := []relay.SpotTopology{
		{SpotID: 1, GwID: 10, StIDs: []uint16{20}, SatIDGw: 10, SatIDSt: 20},
	}
	_, err := relay.BuildRouteTable(topology, 10, false)
	if err == nil {
		t.Fatal("Expected an error when ISL is required but disabled")
	}
	if !errors.Is(err, dvbconst.ErrInitError) {
		t.Errorf("Expected an ErrInitError, got %v", err)
	}
}

func TestBuildRouteTableAllowsMeshWithISLEnabled(t *testing.T) {
	t.Parallel()
	topology := []relay.SpotTopology{
		{SpotID: 1, GwID: 10, StIDs: []uint16{20}, SatIDGw: 10, SatIDSt: 20},
	}
	table, err := relay.BuildRouteTable(topology, 10, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if id, ok := table.Lookup(1, dvbconst.RoleGateway); !ok || id != 10 {
		t.Errorf("Expected gateway route to satellite 10, got %d, %v", id, ok)
	}
}

func TestRouteTableLookupMissesUnconfiguredSpot(t *testing.T) {
	t.Parallel()
	table, err := relay.BuildRouteTable(starTopology(), 100, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := table.Lookup(99, dvbconst.RoleGateway); ok {
		t.Error("Expected lookup to miss for an unconfigured spot")
	}
}

func TestRouteUpwardFrameDeliversLocalWhenEntityOwnsTheRoute(t *testing.T) {
	t.Parallel()
	table, err := relay.BuildRouteTable(starTopology(), 100, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	r := relay.NewRouter(100, table, false)

	// Carrier id 6: not one of the "in-gateway" ids {4,8} mod 10, so it
	// routes toward the gateway side.
	decision, err := r.RouteUpwardFrame(1, 6)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decision.Action != relay.ActionDeliverLocal {
		t.Errorf("Expected local delivery, got action %v", decision.Action)
	}
}

func TestRouteUpwardFrameForwardsISLWhenAnotherSatelliteOwnsTheRoute(t *testing.T) {
	t.Parallel()
	topology := []relay.SpotTopology{
		{SpotID: 1, GwID: 10, StIDs: []uint16{20}, SatIDGw: 100, SatIDSt: 200},
	}
	table, err := relay.BuildRouteTable(topology, 100, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	r := relay.NewRouter(100, table, true)

	// Carrier id 4 is an in-gateway id, so the destination role is
	// terminal, which this satellite (100) doesn't own (200 does).
	decision, err := r.RouteUpwardFrame(1, 4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decision.Action != relay.ActionForwardISL {
		t.Errorf("Expected an ISL forward, got action %v", decision.Action)
	}
}

func TestRouteDownwardFrameSetsOutputCarrierIDToInputPlusOne(t *testing.T) {
	t.Parallel()
	table, err := relay.BuildRouteTable(starTopology(), 100, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	r := relay.NewRouter(100, table, false)

	decision, err := r.RouteDownwardFrame(1, 6)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decision.Action != relay.ActionDeliverLocal {
		t.Fatalf("Expected local delivery, got action %v", decision.Action)
	}
	if decision.OutputCarrierID != 7 {
		t.Errorf("Expected output carrier id 7, got %d", decision.OutputCarrierID)
	}
}

func TestRouteDownwardFrameRejectsOddInputCarrier(t *testing.T) {
	t.Parallel()
	table, err := relay.BuildRouteTable(starTopology(), 100, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	r := relay.NewRouter(100, table, false)

	if _, err := r.RouteDownwardFrame(1, 7); err == nil {
		t.Fatal("Expected an error for an odd (output) input carrier id")
	}
}

func TestRouteBurstStarModeFlipsGatewayAndTerminal(t *testing.T) {
	t.Parallel()
	table, err := relay.BuildRouteTable(starTopology(), 100, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	r := relay.NewRouter(100, table, false)

	roleOf := func(id uint16) dvbconst.EntityRole {
		if id == 10 {
			return dvbconst.RoleGateway
		}
		return dvbconst.RoleTerminal
	}

	decision, err := r.RouteBurst(10, 20, roleOf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decision.Action != relay.ActionDeliverLocal {
		t.Errorf("Expected local delivery, got action %v", decision.Action)
	}
}

func TestRouteBurstMeshModeBroadcastTargetsTerminal(t *testing.T) {
	t.Parallel()
	topology := []relay.SpotTopology{
		{SpotID: 1, GwID: 10, StIDs: []uint16{20}, SatIDGw: 100, SatIDSt: 100},
	}
	table, err := relay.BuildRouteTable(topology, 100, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	r := relay.NewRouter(100, table, true)

	decision, err := r.RouteBurst(10, dvbconst.BroadcastTalID, func(uint16) dvbconst.EntityRole { return dvbconst.RoleUnknown })
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decision.Action != relay.ActionDeliverLocal {
		t.Errorf("Expected local delivery, got action %v", decision.Action)
	}
}

func TestRouteBurstMeshModeRejectsUnknownDestination(t *testing.T) {
	t.Parallel()
	topology := []relay.SpotTopology{
		{SpotID: 1, GwID: 10, StIDs: []uint16{20}, SatIDGw: 100, SatIDSt: 100},
	}
	table, err := relay.BuildRouteTable(topology, 100, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	r := relay.NewRouter(100, table, true)

	_, err = r.RouteBurst(10, 999, func(uint16) dvbconst.EntityRole { return dvbconst.RoleUnknown })
	if err == nil {
		t.Fatal("Expected an error for an unknown-role destination in mesh mode")
	}
}
