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

package relay

import (
	"fmt"

	"github.com/opensand-go/opensand-dataplane/internal/dvbconst"
)

// Action tells a caller what to do with a message once the relay has
// resolved its destination. What "forward via ISL" concretely means
// differs by channel and is left to the caller's block wiring: on the
// upward channel it means continuing further up (toward the ISL
// carrier out of this satellite); on the downward channel it means
// crossing back to the opposite (upward) channel to reach the ISL the
// other way.
type Action uint8

const (
	ActionDeliverLocal Action = iota
	ActionForwardISL
)

// Decision is the relay's routing outcome for one message.
type Decision struct {
	Action Action
	// OutputCarrierID is only meaningful for a downward DvbFrame
	// delivered locally: the carrier id to emit on, per the "input
	// carriers are even, output is input+1" convention.
	OutputCarrierID uint8
}

// EntityRoleLookup resolves an entity id's role, used for mesh-mode
// destination resolution.
type EntityRoleLookup func(entityID uint16) dvbconst.EntityRole

// Router resolves routing decisions for one entity using a built
// RouteTable.
type Router struct {
	entityID uint16
	table    *RouteTable
	mesh     bool
}

// NewRouter binds a RouteTable to the entity running it.
func NewRouter(entityID uint16, table *RouteTable, meshMode bool) *Router {
	return &Router{entityID: entityID, table: table, mesh: meshMode}
}

// RouteUpwardFrame resolves where a DvbFrame received on carrierID in
// spotID should go, on the upward (receive) channel.
func (r *Router) RouteUpwardFrame(spotID uint16, carrierID uint8) (Decision, error) {
	destSat, err := r.lookupByCarrier(spotID, carrierID)
	if err != nil {
		return Decision{}, err
	}
	if destSat == r.entityID {
		return Decision{Action: ActionDeliverLocal}, nil
	}
	return Decision{Action: ActionForwardISL}, nil
}

// RouteDownwardFrame resolves where a DvbFrame received on carrierID
// in spotID should go, on the downward (transmit) channel. A locally
// delivered frame is re-emitted on carrierID+1, the corresponding
// output carrier; carrierID itself must be even (an input carrier),
// per the relay's carrier-id convention.
func (r *Router) RouteDownwardFrame(spotID uint16, carrierID uint8) (Decision, error) {
	destSat, err := r.lookupByCarrier(spotID, carrierID)
	if err != nil {
		return Decision{}, err
	}
	if destSat == r.entityID {
		if carrierID%2 != 0 {
			return Decision{}, fmt.Errorf("%w: received a message on an output carrier id (%d)", dvbconst.ErrProtocolError, carrierID)
		}
		return Decision{Action: ActionDeliverLocal, OutputCarrierID: dvbconst.DownwardCarrier(carrierID)}, nil
	}
	return Decision{Action: ActionForwardISL}, nil
}

func (r *Router) lookupByCarrier(spotID uint16, carrierID uint8) (uint16, error) {
	role := dvbconst.RoleGateway
	if dvbconst.IsInGateway(carrierID) {
		role = dvbconst.RoleTerminal
	}
	destSat, ok := r.table.Lookup(spotID, role)
	if !ok {
		return 0, fmt.Errorf("%w: no route found for %s in spot %d", dvbconst.ErrProtocolError, roleName(role), spotID)
	}
	return destSat, nil
}

// SpotOf reports which spot entityID belongs to, per the bound route
// table.
func (r *Router) SpotOf(entityID uint16) (uint16, bool) {
	return r.table.SpotOf(entityID)
}

// RouteBurst resolves where a decapsulated packet burst from srcID to
// dstID should go, applying the star/mesh destination-role rule.
func (r *Router) RouteBurst(srcID, dstID uint16, roleOf EntityRoleLookup) (Decision, error) {
	spotID, ok := r.table.SpotOf(srcID)
	if !ok {
		return Decision{}, fmt.Errorf("%w: no spot known for source entity %d", dvbconst.ErrProtocolError, srcID)
	}

	dest, err := destinationRole(r.mesh, srcID, dstID, roleOf)
	if err != nil {
		return Decision{}, err
	}

	destSat, ok := r.table.Lookup(spotID, dest)
	if !ok {
		return Decision{}, fmt.Errorf("%w: no route found for %s in spot %d", dvbconst.ErrProtocolError, roleName(dest), spotID)
	}
	if destSat == r.entityID {
		return Decision{Action: ActionDeliverLocal}, nil
	}
	return Decision{Action: ActionForwardISL}, nil
}

// destinationRole resolves the role a burst should be delivered to,
// given the topology mode.
//
// Star mode: a gateway source always targets a terminal and vice
// versa; any other source role is rejected.
// Mesh mode: a broadcast destination always targets a terminal;
// otherwise the destination's own role is looked up, rejecting
// unknown or satellite destinations.
func destinationRole(meshMode bool, srcID, dstID uint16, roleOf EntityRoleLookup) (dvbconst.EntityRole, error) {
	if meshMode {
		if dstID == dvbconst.BroadcastTalID {
			return dvbconst.RoleTerminal, nil
		}
		role := roleOf(dstID)
		if role == dvbconst.RoleUnknown || role == dvbconst.RoleSatellite {
			return dvbconst.RoleUnknown, fmt.Errorf("%w: destination entity %d has role %s", dvbconst.ErrProtocolError, dstID, roleName(role))
		}
		return role, nil
	}

	switch roleOf(srcID) {
	case dvbconst.RoleGateway:
		return dvbconst.RoleTerminal, nil
	case dvbconst.RoleTerminal:
		return dvbconst.RoleGateway, nil
	default:
		return dvbconst.RoleUnknown, fmt.Errorf("%w: source entity %d has role %s", dvbconst.ErrProtocolError, srcID, roleName(roleOf(srcID)))
	}
}

func roleName(role dvbconst.EntityRole) string {
	switch role {
	case dvbconst.RoleGateway:
		return "gateway"
	case dvbconst.RoleSatellite:
		return "satellite"
	case dvbconst.RoleTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}
