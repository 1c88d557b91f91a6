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

package dvbfifo

import "sort"

// PriorityFIFOs groups every DvbFifo feeding one carrier, ordered by
// Priority ascending (lowest value drained first) the way a scheduler
// walks them each allocation pass.
type PriorityFIFOs struct {
	fifos []*DvbFifo
}

// NewPriorityFIFOs builds a PriorityFIFOs over fifos, sorted by
// Priority.
func NewPriorityFIFOs(fifos ...*DvbFifo) *PriorityFIFOs {
	sorted := make([]*DvbFifo, len(fifos))
	copy(sorted, fifos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return &PriorityFIFOs{fifos: sorted}
}

// All returns the FIFOs in priority order.
func (p *PriorityFIFOs) All() []*DvbFifo {
	return p.fifos
}

// DamaOnly returns the FIFOs in priority order, excluding any tagged
// AccessSaloha: the subset a capacity-based scheduler is allowed to
// drain.
func (p *PriorityFIFOs) DamaOnly() []*DvbFifo {
	out := make([]*DvbFifo, 0, len(p.fifos))
	for _, f := range p.fifos {
		if f.AccessType != AccessSaloha {
			out = append(out, f)
		}
	}
	return out
}
