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

package config

// LogLevel represents the logging level for the application.
type LogLevel string

const (
	// LogLevelDebug is the debug logging level, providing detailed information.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the informational logging level, providing general information.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is the warning logging level, indicating potential issues.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError is the error logging level, indicating serious issues.
	LogLevelError LogLevel = "error"
)

// EntityRole represents the role a running process plays in the network.
type EntityRole string

const (
	// RoleGateway terminates the forward link and feeds the terrestrial network.
	RoleGateway EntityRole = "gw"
	// RoleSatellite relays frames transparently between spots and beams.
	RoleSatellite EntityRole = "sat"
	// RoleTerminal is a satellite terminal on the return link.
	RoleTerminal EntityRole = "st"
)

// Topology represents the satellite network's routing topology.
type Topology string

const (
	// TopologyStar routes every terminal through a single gateway.
	TopologyStar Topology = "star"
	// TopologyMesh allows direct terminal-to-terminal routing over ISLs.
	TopologyMesh Topology = "mesh"
)

// AlohaAlgorithm represents the Slotted-Aloha collision-resolution scheme.
type AlohaAlgorithm string

const (
	// AlgorithmDSA is plain Diversity Slotted Aloha, one replica per slot.
	AlgorithmDSA AlohaAlgorithm = "dsa"
	// AlgorithmCRDSA is Contention Resolution Diversity Slotted Aloha,
	// using successive interference cancellation across replicas.
	AlgorithmCRDSA AlohaAlgorithm = "crdsa"
)
