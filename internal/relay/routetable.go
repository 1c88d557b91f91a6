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

// Package relay implements the transparent satellite relay: routing a
// spot's traffic toward the satellite that owns its gateway or
// terminal side, crossing an inter-satellite link (ISL) when that
// satellite isn't this one.
package relay

import (
	"fmt"

	"github.com/opensand-go/opensand-dataplane/internal/dvbconst"
)

// SpotTopology describes one spot's gateway, terminals, and which
// satellite each side is physically connected to.
type SpotTopology struct {
	SpotID  uint16   `yaml:"spot_id"`
	GwID    uint16   `yaml:"gw_id"`
	StIDs   []uint16 `yaml:"st_ids"`
	SatIDGw uint16   `yaml:"sat_id_gw"`
	SatIDSt uint16   `yaml:"sat_id_st"`
}

// routeKey identifies one (spot, role) routing entry.
type routeKey struct {
	Spot uint16
	Role dvbconst.EntityRole
}

// RouteTable maps (spot, role) to the satellite id that owns that side
// of the spot, built once at init from the configured topology.
type RouteTable struct {
	routes       map[routeKey]uint16
	spotByEntity map[uint16]uint16
}

// BuildRouteTable builds a RouteTable from topology, validating that
// every spot whose gateway and terminal sides sit on different
// satellites has ISL enabled on entityID if entityID serves either
// side; such a spot cannot be routed through a satellite with ISL
// disabled.
func BuildRouteTable(topology []SpotTopology, entityID uint16, islEnabled bool) (*RouteTable, error) {
	t := &RouteTable{
		routes:       make(map[routeKey]uint16, len(topology)*2),
		spotByEntity: make(map[uint16]uint16),
	}

	for _, spot := range topology {
		t.spotByEntity[spot.GwID] = spot.SpotID
		for _, st := range spot.StIDs {
			t.spotByEntity[st] = spot.SpotID
		}

		t.routes[routeKey{Spot: spot.SpotID, Role: dvbconst.RoleGateway}] = spot.SatIDGw
		t.routes[routeKey{Spot: spot.SpotID, Role: dvbconst.RoleTerminal}] = spot.SatIDSt

		if spot.SatIDGw != spot.SatIDSt &&
			(spot.SatIDGw == entityID || spot.SatIDSt == entityID) &&
			!islEnabled {
			return nil, fmt.Errorf(
				"%w: ISL required: spot %d's gateway is on satellite %d and its terminals are on satellite %d, but satellite %d has no ISL configured",
				dvbconst.ErrInitError, spot.SpotID, spot.SatIDGw, spot.SatIDSt, entityID)
		}
	}

	return t, nil
}

// Lookup returns the satellite id owning (spot, role), if configured.
func (t *RouteTable) Lookup(spot uint16, role dvbconst.EntityRole) (uint16, bool) {
	id, ok := t.routes[routeKey{Spot: spot, Role: role}]
	return id, ok
}

// SpotOf returns the spot a given entity (gateway or terminal) belongs
// to, if known.
func (t *RouteTable) SpotOf(entityID uint16) (uint16, bool) {
	spot, ok := t.spotByEntity[entityID]
	return spot, ok
}
