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

package dvbconst

import "errors"

// Error taxonomy classes shared across every dataplane package. Wrap one
// of these with fmt.Errorf("...: %w", ErrX) at the point of failure so
// callers can classify an error with errors.Is regardless of which
// package raised it.
var (
	// ErrInitError marks a fatal error discovered before the dataplane
	// starts running (bad config, missing MODCOD table, ISL required
	// but absent).
	ErrInitError = errors.New("init error")
	// ErrProtocolError marks a malformed or unexpected message; the
	// caller logs and drops it, and processing continues.
	ErrProtocolError = errors.New("protocol error")
	// ErrResourceError marks an allocation or capacity failure (a full
	// FIFO already backpressures via blocking push, so this is reserved
	// for allocation failure, which is fatal).
	ErrResourceError = errors.New("resource error")
	// ErrInvariant marks a design invariant violation (empty finalized
	// frame, get_chunk returning no data and no tail, a scheduler state
	// machine reaching an error state). The current tick fails; the
	// caller decides whether to continue on the next tick.
	ErrInvariant = errors.New("invariant violation")
)
