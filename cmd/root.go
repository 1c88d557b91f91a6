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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCommand builds the root opensand-dataplane command: one
// subcommand per entity role (gw, sat, st), each a standalone process
// entrypoint.
func NewCommand(version, commit string) *cobra.Command {
	root := &cobra.Command{
		Use:     "opensand-dataplane",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	root.AddCommand(newGatewayCommand())
	root.AddCommand(newSatelliteCommand())
	root.AddCommand(newTerminalCommand())
	return root
}
