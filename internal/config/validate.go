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

import "errors"

var (
	// ErrInvalidLogLevel indicates that the provided log level is not valid.
	ErrInvalidLogLevel = errors.New("invalid log level provided")

	// ErrInvalidEntityRole indicates that the provided entity role is not valid.
	ErrInvalidEntityRole = errors.New("invalid entity role provided, must be one of gw, sat, or st")
	// ErrEntityIDRequired indicates that the entity id is required.
	ErrEntityIDRequired = errors.New("entity id is required")

	// ErrInvalidNetBind indicates that the provided listen bind address is not valid.
	ErrInvalidNetBind = errors.New("invalid net bind address provided")
	// ErrInvalidNetPort indicates that the provided listen port is not valid.
	ErrInvalidNetPort = errors.New("invalid net port provided")
	// ErrInvalidSuperframeDuration indicates that the superframe duration is not positive.
	ErrInvalidSuperframeDuration = errors.New("superframe duration must be greater than zero milliseconds")
	// ErrInvalidTopology indicates that the provided topology is not valid.
	ErrInvalidTopology = errors.New("invalid topology provided, must be one of star or mesh")
	// ErrISLRequiredForMesh indicates that a mesh topology was configured without an ISL.
	ErrISLRequiredForMesh = errors.New("mesh topology requires an inter-satellite link to be enabled")

	// ErrInvalidAlohaAlgorithm indicates that the provided Aloha algorithm is not valid.
	ErrInvalidAlohaAlgorithm = errors.New("invalid aloha algorithm provided, must be one of dsa or crdsa")
	// ErrInvalidAlohaSlotsPerFrame indicates that the slots-per-frame count is not positive.
	ErrInvalidAlohaSlotsPerFrame = errors.New("aloha slots per frame must be greater than zero")
	// ErrInvalidAlohaReplicasCRDSA indicates that the CRDSA replica count is out of range.
	ErrInvalidAlohaReplicasCRDSA = errors.New("aloha crdsa replicas must be at least 2")
	// ErrInvalidAlohaMaxDecodeRounds indicates that the max decode round count is not positive.
	ErrInvalidAlohaMaxDecodeRounds = errors.New("aloha max decode rounds must be greater than zero")

	// ErrInvalidRedisHost indicates that the provided Redis host is not valid.
	ErrInvalidRedisHost = errors.New("invalid Redis host provided")
	// ErrInvalidRedisPort indicates that the provided Redis port is not valid.
	ErrInvalidRedisPort = errors.New("invalid Redis port provided")

	// ErrInvalidMetricsBindAddress indicates that the provided metrics server bind address is not valid.
	ErrInvalidMetricsBindAddress = errors.New("invalid metrics server bind address provided")
	// ErrInvalidMetricsPort indicates that the provided metrics server port is not valid.
	ErrInvalidMetricsPort = errors.New("invalid metrics server port provided")

	// ErrInvalidPProfBindAddress indicates that the provided PProf server bind address is not valid.
	ErrInvalidPProfBindAddress = errors.New("invalid PProf server bind address provided")
	// ErrInvalidPProfPort indicates that the provided PProf server port is not valid.
	ErrInvalidPProfPort = errors.New("invalid PProf server port provided")
)

// Validate validates the Entity configuration, returning the first error found.
func (e Entity) Validate() error {
	errs := e.ValidateWithFields()
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ValidateWithFields validates the Entity configuration, collecting every error found.
func (e Entity) ValidateWithFields() []error {
	var errs []error
	if e.Role != RoleGateway && e.Role != RoleSatellite && e.Role != RoleTerminal {
		errs = append(errs, ErrInvalidEntityRole)
	}
	if e.ID == "" {
		errs = append(errs, ErrEntityIDRequired)
	}
	return errs
}

// Validate validates the Net configuration, returning the first error found.
func (n Net) Validate() error {
	errs := n.ValidateWithFields()
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ValidateWithFields validates the Net configuration, collecting every error found.
func (n Net) ValidateWithFields() []error {
	var errs []error
	if n.Bind == "" {
		errs = append(errs, ErrInvalidNetBind)
	}
	if n.Port <= 0 || n.Port > 65535 {
		errs = append(errs, ErrInvalidNetPort)
	}
	if n.SuperframeDurationMs <= 0 {
		errs = append(errs, ErrInvalidSuperframeDuration)
	}
	if n.Topology != TopologyStar && n.Topology != TopologyMesh {
		errs = append(errs, ErrInvalidTopology)
	}
	if n.Topology == TopologyMesh && !n.ISLEnabled {
		errs = append(errs, ErrISLRequiredForMesh)
	}
	return errs
}

// Validate validates the Aloha configuration, returning the first error found.
func (a Aloha) Validate() error {
	errs := a.ValidateWithFields()
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ValidateWithFields validates the Aloha configuration, collecting every error found.
func (a Aloha) ValidateWithFields() []error {
	if !a.Enabled {
		return nil
	}

	var errs []error
	if a.Algorithm != AlgorithmDSA && a.Algorithm != AlgorithmCRDSA {
		errs = append(errs, ErrInvalidAlohaAlgorithm)
	}
	if a.SlotsPerFrame <= 0 {
		errs = append(errs, ErrInvalidAlohaSlotsPerFrame)
	}
	if a.Algorithm == AlgorithmCRDSA && a.ReplicasCRDSA < 2 {
		errs = append(errs, ErrInvalidAlohaReplicasCRDSA)
	}
	if a.MaxDecodeRounds <= 0 {
		errs = append(errs, ErrInvalidAlohaMaxDecodeRounds)
	}
	return errs
}

// Validate validates the Redis configuration, returning the first error found.
func (r Redis) Validate() error {
	errs := r.ValidateWithFields()
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ValidateWithFields validates the Redis configuration, collecting every error found.
func (r Redis) ValidateWithFields() []error {
	if !r.Enabled {
		return nil
	}

	var errs []error
	if r.Host == "" {
		errs = append(errs, ErrInvalidRedisHost)
	}
	if r.Port <= 0 || r.Port > 65535 {
		errs = append(errs, ErrInvalidRedisPort)
	}
	return errs
}

// Validate validates the Metrics configuration, returning the first error found.
func (m Metrics) Validate() error {
	errs := m.ValidateWithFields()
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ValidateWithFields validates the Metrics configuration, collecting every error found.
func (m Metrics) ValidateWithFields() []error {
	if !m.Enabled {
		return nil
	}

	var errs []error
	if m.Bind == "" {
		errs = append(errs, ErrInvalidMetricsBindAddress)
	}
	if m.Port <= 0 || m.Port > 65535 {
		errs = append(errs, ErrInvalidMetricsPort)
	}
	return errs
}

// Validate validates the PProf configuration, returning the first error found.
func (p PProf) Validate() error {
	errs := p.ValidateWithFields()
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ValidateWithFields validates the PProf configuration, collecting every error found.
func (p PProf) ValidateWithFields() []error {
	if !p.Enabled {
		return nil
	}

	var errs []error
	if p.Bind == "" {
		errs = append(errs, ErrInvalidPProfBindAddress)
	}
	if p.Port <= 0 || p.Port > 65535 {
		errs = append(errs, ErrInvalidPProfPort)
	}
	return errs
}

// Validate validates the full configuration, returning the first error found.
func (c Config) Validate() error {
	errs := c.ValidateWithFields()
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ValidateWithFields validates the full configuration, collecting every error
// found across every sub-group instead of stopping at the first one.
func (c Config) ValidateWithFields() []error {
	var errs []error

	if c.LogLevel != LogLevelDebug &&
		c.LogLevel != LogLevelInfo &&
		c.LogLevel != LogLevelWarn &&
		c.LogLevel != LogLevelError {
		errs = append(errs, ErrInvalidLogLevel)
	}

	errs = append(errs, c.Entity.ValidateWithFields()...)
	errs = append(errs, c.Net.ValidateWithFields()...)
	errs = append(errs, c.Aloha.ValidateWithFields()...)
	errs = append(errs, c.Redis.ValidateWithFields()...)
	errs = append(errs, c.Metrics.ValidateWithFields()...)
	errs = append(errs, c.PProf.ValidateWithFields()...)

	return errs
}
