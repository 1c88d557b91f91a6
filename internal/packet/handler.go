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

import (
	"fmt"

	"github.com/opensand-go/opensand-dataplane/internal/dvbconst"
)

// PacketHandler is the encapsulation capability a scheduler fragments
// against without knowing which protocol (RLE, GSE, ...) is in use.
type PacketHandler interface {
	// GetLength returns the encapsulated length of the packet starting
	// at the front of raw.
	GetLength(raw []byte) (int, error)
	// GetSrc returns the source terminal id encoded in raw.
	GetSrc(raw []byte) (uint16, error)
	// GetQoS returns the QoS tag encoded in raw.
	GetQoS(raw []byte) (uint8, error)
	// Build constructs a NetPacket from data with the given metadata.
	Build(data []byte, qos uint8, src, dst uint16) (NetPacket, error)
	// GetChunk extracts up to maxLen bytes from pkt. See the fragment doc
	// below for the full three-way contract every implementation must
	// honor.
	GetChunk(pkt NetPacket, maxLen int) (chunk *NetPacket, tail *NetPacket, err error)
	// FixedLength returns the handler's fixed packet size and true, or
	// (0, false) if packets are variable length and can only be
	// discovered via GetLength.
	FixedLength() (int, bool)
}

// fragment splits pkt's buffer at maxLen, honoring the shared GetChunk
// contract:
//   - the packet fits entirely → (chunk==pkt, tail==nil)
//   - the packet doesn't fit and fragmentation isn't allowed → (nil, pkt unchanged)
//   - the packet is split → (chunk, tail)
//
// it never returns (nil, nil): a zero-length result without a tail is a
// contract violation the caller should treat as an invariant error.
func fragment(pkt NetPacket, maxLen int, fragmentable bool) (*NetPacket, *NetPacket) {
	if maxLen <= 0 {
		return nil, &pkt
	}
	if pkt.Len() <= maxLen {
		chunk := pkt
		return &chunk, nil
	}
	if !fragmentable {
		return nil, &pkt
	}
	head := pkt
	head.Data = pkt.Data.Slice(0, maxLen)
	tail := pkt
	tail.Data = pkt.Data.Slice(maxLen, pkt.Data.Len())
	return &head, &tail
}

// passthroughHandler treats the whole buffer as a single packet with no
// header to parse: a minimal test double standing in for a
// degenerate encapsulation.
type passthroughHandler struct{}

// NewPassthroughHandler returns a PacketHandler with no header framing
// and no fragmentation support, useful for exercising code paths that
// only need the GetChunk "doesn't fit, can't fragment" branch.
func NewPassthroughHandler() PacketHandler { return passthroughHandler{} }

func (passthroughHandler) GetLength(raw []byte) (int, error) { return len(raw), nil }
func (passthroughHandler) GetSrc([]byte) (uint16, error)     { return 0, nil }
func (passthroughHandler) GetQoS([]byte) (uint8, error)      { return 0, nil }
func (passthroughHandler) Build(data []byte, qos uint8, src, dst uint16) (NetPacket, error) {
	return NetPacket{Data: NewBuffer(data), QoS: qos, Src: src, Dst: dst}, nil
}
func (passthroughHandler) GetChunk(pkt NetPacket, maxLen int) (*NetPacket, *NetPacket, error) {
	chunk, tail := fragment(pkt, maxLen, false)
	if chunk == nil && tail == nil {
		return nil, nil, fmt.Errorf("%w: passthrough handler produced neither chunk nor tail", dvbconst.ErrInvariant)
	}
	return chunk, tail, nil
}
func (passthroughHandler) FixedLength() (int, bool) { return 0, false }

// fixedLengthHandler models an encapsulation such as RLE where every
// packet has the same declared size and fragmentation is not supported.
type fixedLengthHandler struct {
	size int
}

// NewFixedLengthHandler returns a PacketHandler for a fixed-size,
// non-fragmentable encapsulation.
func NewFixedLengthHandler(size int) PacketHandler {
	return fixedLengthHandler{size: size}
}

func (h fixedLengthHandler) GetLength([]byte) (int, error) { return h.size, nil }
func (fixedLengthHandler) GetSrc(raw []byte) (uint16, error) {
	if len(raw) < 2 {
		return 0, fmt.Errorf("%w: short header for src field", dvbconst.ErrProtocolError)
	}
	return uint16(raw[0])<<8 | uint16(raw[1]), nil
}
func (fixedLengthHandler) GetQoS(raw []byte) (uint8, error) {
	if len(raw) < 3 {
		return 0, fmt.Errorf("%w: short header for qos field", dvbconst.ErrProtocolError)
	}
	return raw[2], nil
}
func (fixedLengthHandler) Build(data []byte, qos uint8, src, dst uint16) (NetPacket, error) {
	return NetPacket{Data: NewBuffer(data), QoS: qos, Src: src, Dst: dst}, nil
}
func (h fixedLengthHandler) GetChunk(pkt NetPacket, maxLen int) (*NetPacket, *NetPacket, error) {
	chunk, tail := fragment(pkt, maxLen, false)
	if chunk == nil && tail == nil {
		return nil, nil, fmt.Errorf("%w: fixed-length handler produced neither chunk nor tail", dvbconst.ErrInvariant)
	}
	return chunk, tail, nil
}
func (h fixedLengthHandler) FixedLength() (int, bool) { return h.size, true }

// variableLengthHandler models an encapsulation such as GSE where
// packets are variable length and may be fragmented across frames.
type variableLengthHandler struct{}

// NewVariableLengthHandler returns a PacketHandler for a variable-size,
// fragmentable encapsulation.
func NewVariableLengthHandler() PacketHandler { return variableLengthHandler{} }

func (variableLengthHandler) GetLength(raw []byte) (int, error) {
	if len(raw) < 2 {
		return 0, fmt.Errorf("%w: short header for length field", dvbconst.ErrProtocolError)
	}
	return int(raw[0])<<8 | int(raw[1]), nil
}
func (variableLengthHandler) GetSrc(raw []byte) (uint16, error) {
	if len(raw) < 4 {
		return 0, fmt.Errorf("%w: short header for src field", dvbconst.ErrProtocolError)
	}
	return uint16(raw[2])<<8 | uint16(raw[3]), nil
}
func (variableLengthHandler) GetQoS(raw []byte) (uint8, error) {
	if len(raw) < 5 {
		return 0, fmt.Errorf("%w: short header for qos field", dvbconst.ErrProtocolError)
	}
	return raw[4], nil
}
func (variableLengthHandler) Build(data []byte, qos uint8, src, dst uint16) (NetPacket, error) {
	return NetPacket{Data: NewBuffer(data), QoS: qos, Src: src, Dst: dst}, nil
}
func (variableLengthHandler) GetChunk(pkt NetPacket, maxLen int) (*NetPacket, *NetPacket, error) {
	chunk, tail := fragment(pkt, maxLen, true)
	if chunk == nil && tail == nil {
		return nil, nil, fmt.Errorf("%w: variable-length handler produced neither chunk nor tail", dvbconst.ErrInvariant)
	}
	return chunk, tail, nil
}
func (variableLengthHandler) FixedLength() (int, bool) { return 0, false }
