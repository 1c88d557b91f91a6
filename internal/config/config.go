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

// Package config defines the entity process configuration, loaded by
// configulator from environment variables and flags.
package config

// Config stores the configuration for a single running entity process
// (gateway, satellite, or terminal).
type Config struct {
	LogLevel LogLevel `mapstructure:"log_level" default:"info"`

	Entity Entity `mapstructure:"entity"`
	Net    Net    `mapstructure:"net"`
	Aloha  Aloha  `mapstructure:"aloha"`
	Redis  Redis  `mapstructure:"redis"`

	Metrics Metrics `mapstructure:"metrics"`
	PProf   PProf   `mapstructure:"pprof"`
}

// Entity identifies which role this process plays and under what id.
type Entity struct {
	// Role is one of RoleGateway, RoleSatellite, RoleTerminal.
	Role EntityRole `mapstructure:"role" default:"st"`
	// ID is the entity's unique identifier, used in carrier-id and route
	// table lookups.
	ID string `mapstructure:"id"`
	// SpotID groups entities sharing a spot in multi-spot deployments.
	SpotID uint `mapstructure:"spot_id" default:"1"`
}

// Net holds the dataplane transport and scheduling configuration shared
// by every entity role.
type Net struct {
	Bind string `mapstructure:"bind" default:"0.0.0.0"`
	Port int    `mapstructure:"port" default:"4433"`

	// SuperframeDurationMs is the duration of one DVB-S2/RCS2 superframe.
	SuperframeDurationMs int `mapstructure:"superframe_duration_ms" default:"135"`

	// ModcodTablePath points to the MODCOD scenario file reloaded by
	// internal/fmtsim.
	ModcodTablePath string `mapstructure:"modcod_table_path"`
	// RouteTablePath points to the satellite route table used by
	// internal/relay.
	RouteTablePath string `mapstructure:"route_table_path"`

	// ISLEnabled indicates this satellite has an inter-satellite link to
	// its peers. Required when Topology is mesh.
	ISLEnabled bool `mapstructure:"isl_enabled"`
	// Topology is either "star" or "mesh".
	Topology Topology `mapstructure:"topology" default:"star"`
}

// Aloha holds Slotted-Aloha NCC tuning parameters.
type Aloha struct {
	Enabled         bool           `mapstructure:"enabled"`
	Algorithm       AlohaAlgorithm `mapstructure:"algorithm" default:"crdsa"`
	SlotsPerFrame   int            `mapstructure:"slots_per_frame" default:"60"`
	ReplicasCRDSA   int            `mapstructure:"replicas_crdsa" default:"3"`
	MaxDecodeRounds int            `mapstructure:"max_decode_rounds" default:"10"`
}

// Redis configures the optional cross-instance key-value store used by
// internal/kv (the MODCOD reload lock and the satellite's ISL replay
// queue).
type Redis struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"6379"`
	Password string `mapstructure:"password"`
}

// Metrics configures the Prometheus exporter and OTLP tracing.
type Metrics struct {
	Enabled      bool   `mapstructure:"enabled" default:"true"`
	Bind         string `mapstructure:"bind" default:"0.0.0.0"`
	Port         int    `mapstructure:"port" default:"9100"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// PProf configures the diagnostic pprof server.
type PProf struct {
	Enabled bool   `mapstructure:"enabled"`
	Bind    string `mapstructure:"bind" default:"127.0.0.1"`
	Port    int    `mapstructure:"port" default:"6060"`
}
