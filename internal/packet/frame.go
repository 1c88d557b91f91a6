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
	"encoding/binary"
	"fmt"

	"github.com/opensand-go/opensand-dataplane/internal/dvbconst"
)

// FrameHeaderLen is the fixed on-wire size of a DvbFrame header in
// bytes: msg_type(1) + spot_id(2) + carrier_id(1) + length(2) +
// modcod_id(1).
const FrameHeaderLen = 7

// FrameHeader is the bit-exact header every DvbFrame carries on the
// wire. It is marshaled by hand rather than through a generic codec so
// its layout never drifts from what a peer entity of the same protocol
// version expects.
type FrameHeader struct {
	MsgType   dvbconst.FrameMsgType
	SpotID    uint16
	CarrierID uint8
	Length    uint16
	ModcodID  uint8
}

// MarshalTo writes the header into dst, which must be at least
// FrameHeaderLen bytes.
func (h FrameHeader) MarshalTo(dst []byte) error {
	if len(dst) < FrameHeaderLen {
		return fmt.Errorf("%w: frame header needs %d bytes, got %d", dvbconst.ErrInvariant, FrameHeaderLen, len(dst))
	}
	dst[0] = uint8(h.MsgType)
	binary.BigEndian.PutUint16(dst[1:3], h.SpotID)
	dst[3] = h.CarrierID
	binary.BigEndian.PutUint16(dst[4:6], h.Length)
	dst[6] = h.ModcodID
	return nil
}

// UnmarshalFrameHeader reads a FrameHeader from the front of src.
func UnmarshalFrameHeader(src []byte) (FrameHeader, error) {
	if len(src) < FrameHeaderLen {
		return FrameHeader{}, fmt.Errorf("%w: frame header needs %d bytes, got %d", dvbconst.ErrProtocolError, FrameHeaderLen, len(src))
	}
	return FrameHeader{
		MsgType:   dvbconst.FrameMsgType(src[0]),
		SpotID:    binary.BigEndian.Uint16(src[1:3]),
		CarrierID: src[3],
		Length:    binary.BigEndian.Uint16(src[4:6]),
		ModcodID:  src[6],
	}, nil
}

// DvbFrame is a buffer with a typed header and a payload region holding
// zero or more encapsulated packets.
type DvbFrame struct {
	Header  FrameHeader
	Payload Buffer
}

// Bytes serializes the frame to its wire form: header followed by
// payload.
func (f DvbFrame) Bytes() []byte {
	out := make([]byte, FrameHeaderLen+f.Payload.Len())
	_ = f.Header.MarshalTo(out[:FrameHeaderLen])
	copy(out[FrameHeaderLen:], f.Payload.Bytes())
	return out
}

// DvbRcsFrame is a return-link burst carrying variable-size
// encapsulated packets up to a declared maximum size.
type DvbRcsFrame struct {
	DvbFrame
	MaxSizeBytes int
}

// BBFrame is a forward-link DVB-S2 frame: exactly one MODCOD applies to
// the whole frame.
type BBFrame struct {
	DvbFrame
	ModcodID uint8
}

// FreeSpace returns how many payload bytes remain before the frame
// reaches maxBytes.
func (f DvbFrame) FreeSpace(maxBytes int) int {
	free := maxBytes - f.Payload.Len()
	if free < 0 {
		return 0
	}
	return free
}
