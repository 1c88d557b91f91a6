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

// NetPacket is an encapsulated packet built by a PacketHandler from raw
// bytes: the unit schedulers fragment and the collision engine
// classifies. Ownership is single — the holder either forwards it or
// discards it, never both.
type NetPacket struct {
	Data Buffer
	Src  uint16
	Dst  uint16
	QoS  uint8
	// EncapTag identifies which PacketHandler produced this packet, so a
	// mixed-encapsulation FIFO can dispatch get_chunk to the right one.
	EncapTag uint8
}

// Len returns the packet's encapsulated length in bytes.
func (p NetPacket) Len() int {
	return p.Data.Len()
}
