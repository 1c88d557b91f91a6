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

// Package packet implements the buffer, packet, and frame types that
// flow through the dataplane, plus the packet-handler capability
// schedulers use to inspect and fragment them without knowing the
// encapsulation protocol in use.
package packet

// Buffer is an owned byte slice with O(1) length and sub-range views.
// A Buffer is move-only by convention: once handed to a NetPacket or
// DvbFrame, the caller must not keep using the original slice, mirroring
// the single-ownership discipline of the original's raw-pointer
// buffers without resorting to unsafe pointer arithmetic.
type Buffer struct {
	data []byte
}

// NewBuffer takes ownership of data.
func NewBuffer(data []byte) Buffer {
	return Buffer{data: data}
}

// Len reports the buffer's length in bytes.
func (b Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the buffer's backing slice. Callers must not retain it
// past the Buffer's own lifetime if they intend to mutate it elsewhere.
func (b Buffer) Bytes() []byte {
	return b.data
}

// Slice returns the sub-range [lo, hi) as its own Buffer, sharing the
// original's backing array (no copy), the same sub-range-view contract
// the original buffer type offers.
func (b Buffer) Slice(lo, hi int) Buffer {
	return Buffer{data: b.data[lo:hi]}
}

// Clone returns a Buffer over a fresh copy of the data, for callers that
// need an independently-owned copy rather than a shared view.
func (b Buffer) Clone() Buffer {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return Buffer{data: out}
}
