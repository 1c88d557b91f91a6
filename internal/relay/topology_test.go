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

package relay_test

import (
	"errors"
	"testing"

	"github.com/opensand-go/opensand-dataplane/internal/dvbconst"
	"github.com/opensand-go/opensand-dataplane/internal/relay"
)

const sampleTopologyFile = `
spots:
  - spot_id: 1
    gw_id: 10
    st_ids: [20, 21]
    sat_id_gw: 100
    sat_id_st: 100
`

func TestParseTopologyFile(t *testing.T) {
	t.Parallel()
	spots, err := relay.ParseTopologyFile([]byte(sampleTopologyFile))
	if err != nil {
		t.Fatalf("Unexpected error on ParseTopologyFile: %v", err)
	}
	if len(spots) != 1 {
		t.Fatalf("Expected 1 spot, got %d", len(spots))
	}
	if spots[0].SpotID != 1 || spots[0].GwID != 10 || len(spots[0].StIDs) != 2 {
		t.Errorf("Unexpected spot contents: %+v", spots[0])
	}
}

func TestParseTopologyFileRejectsEmpty(t *testing.T) {
	t.Parallel()
	_, err := relay.ParseTopologyFile([]byte("spots: []"))
	if !errors.Is(err, dvbconst.ErrInitError) {
		t.Errorf("Expected ErrInitError for an empty topology file, got %v", err)
	}
}
