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

package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Prometheus collector exported by a running entity
// process: FIFO occupancy, scheduler allocation, Slotted-Aloha collision
// outcomes, and relay forwarding counters.
type Metrics struct {
	FifoPacketsTotal  *prometheus.GaugeVec
	FifoBytesTotal    *prometheus.GaugeVec
	FifoDroppedTotal  *prometheus.CounterVec

	SchedulerAllocatedKbits *prometheus.GaugeVec
	SchedulerBBFramesTotal  *prometheus.CounterVec

	AlohaSlotsTotal       prometheus.Counter
	AlohaCollisionsTotal  prometheus.Counter
	AlohaRecoveredTotal   prometheus.Counter
	AlohaDecodeDuration   prometheus.Histogram

	RelayForwardedTotal *prometheus.CounterVec
	RelayDroppedTotal   *prometheus.CounterVec

	L2FromStBytesTotal *prometheus.CounterVec
	L2FromGwBytesTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	metrics := &Metrics{
		FifoPacketsTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dvb_fifo_packets",
			Help: "Current number of packets queued in a MAC fifo",
		}, []string{"carrier_id", "priority"}),
		FifoBytesTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dvb_fifo_bytes",
			Help: "Current number of bytes queued in a MAC fifo",
		}, []string{"carrier_id", "priority"}),
		FifoDroppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dvb_fifo_dropped_total",
			Help: "Total number of packets dropped because a MAC fifo was full",
		}, []string{"carrier_id", "priority"}),
		SchedulerAllocatedKbits: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dvb_scheduler_allocated_kbits",
			Help: "Kbits allocated to a carrier in the last scheduled frame",
		}, []string{"carrier_id"}),
		SchedulerBBFramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dvb_scheduler_bbframes_total",
			Help: "Total number of BBFrames emitted by the forward scheduler",
		}, []string{"modcod"}),
		AlohaSlotsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dvb_aloha_slots_total",
			Help: "Total number of Slotted-Aloha slots processed by the NCC",
		}),
		AlohaCollisionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dvb_aloha_collisions_total",
			Help: "Total number of Slotted-Aloha collisions still unresolved after the decode pass",
		}),
		AlohaRecoveredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dvb_aloha_recovered_total",
			Help: "Total number of Slotted-Aloha packets accepted by the decode pass",
		}),
		AlohaDecodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dvb_aloha_decode_duration_seconds",
			Help:    "Duration of a single Slotted-Aloha frame decode pass",
			Buckets: prometheus.DefBuckets,
		}),
		RelayForwardedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dvb_relay_forwarded_total",
			Help: "Total number of frames forwarded by the transparent relay",
		}, []string{"carrier_id"}),
		RelayDroppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dvb_relay_dropped_total",
			Help: "Total number of frames dropped by the relay for lack of a route",
		}, []string{"carrier_id"}),
		L2FromStBytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dvb_l2_from_st_bytes_total",
			Help: "Total L2 bytes relayed from a spot's terminal population",
		}, []string{"spot_id"}),
		L2FromGwBytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dvb_l2_from_gw_bytes_total",
			Help: "Total L2 bytes relayed from a spot's gateway",
		}, []string{"spot_id"}),
	}
	metrics.register()
	return metrics
}

// register adds every collector to the default registry. A later
// NewMetrics in the same process finds the names already registered and
// keeps the first registration; any other registration error panics.
func (m *Metrics) register() {
	for _, c := range []prometheus.Collector{
		m.FifoPacketsTotal,
		m.FifoBytesTotal,
		m.FifoDroppedTotal,
		m.SchedulerAllocatedKbits,
		m.SchedulerBBFramesTotal,
		m.AlohaSlotsTotal,
		m.AlohaCollisionsTotal,
		m.AlohaRecoveredTotal,
		m.AlohaDecodeDuration,
		m.RelayForwardedTotal,
		m.RelayDroppedTotal,
		m.L2FromStBytesTotal,
		m.L2FromGwBytesTotal,
	} {
		if err := prometheus.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				panic(err)
			}
		}
	}
}

// SetFifoOccupancy records a fifo's current packet and byte counts.
func (m *Metrics) SetFifoOccupancy(carrierID, priority string, packets, bytes int) {
	m.FifoPacketsTotal.WithLabelValues(carrierID, priority).Set(float64(packets))
	m.FifoBytesTotal.WithLabelValues(carrierID, priority).Set(float64(bytes))
}

// IncrementFifoDropped records a packet dropped due to a full fifo.
func (m *Metrics) IncrementFifoDropped(carrierID, priority string) {
	m.FifoDroppedTotal.WithLabelValues(carrierID, priority).Inc()
}

// SetSchedulerAllocation records the kbits allocated to a carrier this frame.
func (m *Metrics) SetSchedulerAllocation(carrierID string, kbits float64) {
	m.SchedulerAllocatedKbits.WithLabelValues(carrierID).Set(kbits)
}

// IncrementBBFrames records a BBFrame emitted for the given MODCOD.
func (m *Metrics) IncrementBBFrames(modcod string) {
	m.SchedulerBBFramesTotal.WithLabelValues(modcod).Inc()
}

// RecordAlohaFrame records the outcome of one Slotted-Aloha decode pass.
func (m *Metrics) RecordAlohaFrame(slots, collisions, recovered int, duration float64) {
	m.AlohaSlotsTotal.Add(float64(slots))
	m.AlohaCollisionsTotal.Add(float64(collisions))
	m.AlohaRecoveredTotal.Add(float64(recovered))
	m.AlohaDecodeDuration.Observe(duration)
}

// IncrementRelayForwarded records a frame forwarded by the relay.
func (m *Metrics) IncrementRelayForwarded(carrierID string) {
	m.RelayForwardedTotal.WithLabelValues(carrierID).Inc()
}

// IncrementRelayDropped records a frame dropped by the relay.
func (m *Metrics) IncrementRelayDropped(carrierID string) {
	m.RelayDroppedTotal.WithLabelValues(carrierID).Inc()
}

// AddL2FromSt records n additional L2 bytes relayed from spotID's
// terminal population.
func (m *Metrics) AddL2FromSt(spotID string, n int) {
	m.L2FromStBytesTotal.WithLabelValues(spotID).Add(float64(n))
}

// AddL2FromGw records n additional L2 bytes relayed from spotID's
// gateway.
func (m *Metrics) AddL2FromGw(spotID string, n int) {
	m.L2FromGwBytesTotal.WithLabelValues(spotID).Add(float64(n))
}
