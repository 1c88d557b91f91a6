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

package packet

// QueuedEnvelope wraps one decapsulated burst's source, destination and
// raw payload for storage in the KV layer: a satellite relay buffers a
// burst in one of these when it can't cross the ISL right now (see
// Satellite.SetISLQueue / ReplayISLQueue), so that once the satellite
// owning the destination is reachable again it can replay the backlog
// instead of it having been dropped. Unlike DvbFrame and Aloha packet
// headers, this envelope never travels on the satellite link itself, so
// it does not need a bit-exact fixed layout and is serialized with
// msgp instead of hand-rolled binary encoding.
//
//go:generate go run github.com/tinylib/msgp
type QueuedEnvelope struct {
	EncapTag uint8  `msg:"encapTag"`
	Src      uint16 `msg:"src"`
	Dst      uint16 `msg:"dst"`
	QoS      uint8  `msg:"qos"`
	Data     []byte `msg:"data"`
}
