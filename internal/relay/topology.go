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
	"gopkg.in/yaml.v3"
)

// topologyFile is the on-disk shape of a route table file: a flat list
// of spots, same layout as SpotTopology.
type topologyFile struct {
	Spots []SpotTopology `yaml:"spots"`
}

// ParseTopologyFile parses a route table file's bytes into the spot
// list BuildRouteTable consumes.
func ParseTopologyFile(data []byte) ([]SpotTopology, error) {
	var file topologyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parse route table file: %w", dvbconst.ErrInitError, err)
	}
	if len(file.Spots) == 0 {
		return nil, fmt.Errorf("%w: route table file has no spots", dvbconst.ErrInitError)
	}
	return file.Spots, nil
}
