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

// Package dvbconst holds the wire-level enums and carrier-id conventions
// shared by every dataplane package: message kinds exchanged between
// blocks, DvbFrame message types, and the satellite carrier-id layout.
package dvbconst

import "fmt"

// MessageType identifies the payload carried by a message exchanged
// between two channels.
type MessageType uint8

const (
	MsgUnknown MessageType = iota
	MsgSig
	MsgEncapData
	MsgDecapData
	MsgLinkUp
)

func (t MessageType) String() string {
	switch t {
	case MsgSig:
		return "sig"
	case MsgEncapData:
		return "encap_data"
	case MsgDecapData:
		return "decap_data"
	case MsgLinkUp:
		return "link_up"
	default:
		return "unknown"
	}
}

// FrameMsgType is the on-wire DvbFrame message kind, distinct from the
// inter-block MessageType above: it travels in the DvbFrame header and
// must stay bit-exact across entities of the same version.
type FrameMsgType uint8

const (
	FrameMsgSignaling FrameMsgType = iota
	FrameMsgEncapData
	FrameMsgControl
)

// EntityRole classifies a terminal or gateway for relay routing
// purposes.
type EntityRole uint8

const (
	RoleUnknown EntityRole = iota
	RoleGateway
	RoleSatellite
	RoleTerminal
)

// BroadcastTalID is the sentinel terminal id meaning "every terminal".
// Synthetic terminal ids used for simulated Slotted-Aloha traffic are
// allocated above it, mirroring how test/parrot endpoints are given an
// id range disjoint from real ones.
const BroadcastTalID uint16 = 0

// CtrlInGwID is the carrier id reserved for in-gateway control traffic;
// it and CtrlInGwID+4 mark a carrier whose destination role is the
// terminal population of the spot rather than the gateway.
const CtrlInGwID uint8 = 4

// CarrierCategory is the low-order carrier id convention: ids 0-5 mark
// signaling, 6-9 mark encapsulated data.
type CarrierCategory uint8

const (
	CarrierSignaling CarrierCategory = iota
	CarrierEncapData
)

// Category returns the carrier's signaling/data category from its id.
func Category(carrierID uint8) CarrierCategory {
	if carrierID%10 >= 6 {
		return CarrierEncapData
	}
	return CarrierSignaling
}

// IsInGateway reports whether carrierID is one of the reserved
// "in-gateway" ids ({4, 8} per the mod-10 convention), which route to
// the terminal population of a spot rather than to the gateway.
func IsInGateway(carrierID uint8) bool {
	mod := carrierID % 10
	return mod == CtrlInGwID || mod == CtrlInGwID+4
}

// DownwardCarrier computes the output carrier id for same-satellite
// downward forwarding: input carriers are even by convention, and the
// paired downward carrier is input+1.
func DownwardCarrier(inputCarrierID uint8) uint8 {
	return inputCarrierID + 1
}

// ErrUnsupportedCapability is returned by collaborators that receive a
// request for an extension they do not implement, in place of the
// assert(0)-style aborts in the original packet handlers.
type ErrUnsupportedCapability struct {
	Capability string
}

func (e *ErrUnsupportedCapability) Error() string {
	return fmt.Sprintf("unsupported capability: %s", e.Capability)
}
