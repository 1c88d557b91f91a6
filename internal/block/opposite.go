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

package block

import "github.com/opensand-go/opensand-dataplane/internal/fifo"

// SendOpposite delivers msg to a block's sibling channel: the upward
// handler's SendOpposite reaches the downward channel and vice versa.
// It replaces a raw pointer to the opposite channel with a narrow
// closure injected at wiring time, so a channel's handler never needs a
// direct reference to its sibling's internals.
type SendOpposite func(msg fifo.Message) error

// OppositeOf returns a SendOpposite that enqueues directly onto c.
func OppositeOf(c Channel) SendOpposite {
	return func(msg fifo.Message) error {
		return c.Enqueue(msg)
	}
}
