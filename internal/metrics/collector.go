// Package dsmetrics exposes Prometheus metrics for the driver-station
// daemon's UDP and TCP engines.
package dsmetrics

import "github.com/prometheus/client_golang/prometheus"

// -------------------------------------------------------------------------
// Prometheus Metric Constants
// -------------------------------------------------------------------------

const (
	namespace = "gods"
	subsystem = "ds"
)

// -------------------------------------------------------------------------
// Collector — Prometheus driver-station metrics
// -------------------------------------------------------------------------

// Collector holds all driver-station Prometheus metrics.
//
//   - Packet counters track control/status/TCP volumes.
//   - DecodeErrors flags malformed inbound datagrams for alerting.
//   - Battery/CodeStarted gauges mirror the last observed recv-state.
//   - TCPReconnects counts successful event-channel reconnections.
type Collector struct {
	// ControlPacketsSent counts outbound UDP control datagrams.
	ControlPacketsSent prometheus.Counter

	// StatusPacketsReceived counts inbound UDP status datagrams
	// successfully decoded.
	StatusPacketsReceived prometheus.Counter

	// StatusDecodeErrors counts inbound UDP status datagrams that failed
	// to decode before need_date (a hard parse error, not the tag-block
	// best-effort stop).
	StatusDecodeErrors prometheus.Counter

	// TCPFramesReceived counts inbound TCP frames dispatched to the
	// consumer callback.
	TCPFramesReceived prometheus.Counter

	// TCPReconnects counts successful TCP event-channel reconnections,
	// excluding the engine's first connection and failed dial attempts.
	TCPReconnects prometheus.Counter

	// BatteryVoltage mirrors the last decoded status packet's battery
	// reading.
	BatteryVoltage prometheus.Gauge

	// CodeStarted is 1 if the last status packet's ROBOT_CODE trace bit
	// was set, 0 otherwise.
	CodeStarted prometheus.Gauge
}

// NewCollector creates a Collector with all driver-station metrics
// registered against the provided prometheus.Registerer. If reg is nil,
// prometheus.DefaultRegisterer is used.
//
// All metrics are created with the "gods_ds_" prefix (namespace_subsystem)
// to avoid collisions with other exporters.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := newMetrics()

	reg.MustRegister(
		c.ControlPacketsSent,
		c.StatusPacketsReceived,
		c.StatusDecodeErrors,
		c.TCPFramesReceived,
		c.TCPReconnects,
		c.BatteryVoltage,
		c.CodeStarted,
	)

	return c
}

// newMetrics creates all Prometheus metrics without registering them.
func newMetrics() *Collector {
	return &Collector{
		ControlPacketsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "control_packets_sent_total",
			Help:      "Total UDP control datagrams transmitted to the robot.",
		}),
		StatusPacketsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "status_packets_received_total",
			Help:      "Total UDP status datagrams successfully decoded.",
		}),
		StatusDecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "status_decode_errors_total",
			Help:      "Total UDP status datagrams that failed to decode.",
		}),
		TCPFramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tcp_frames_received_total",
			Help:      "Total inbound TCP event-channel frames dispatched to the consumer.",
		}),
		TCPReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tcp_reconnects_total",
			Help:      "Total successful TCP event-channel reconnections, excluding the first connect.",
		}),
		BatteryVoltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "battery_voltage",
			Help:      "Last reported robot battery voltage.",
		}),
		CodeStarted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "code_started",
			Help:      "1 if the robot last reported user code running, 0 otherwise.",
		}),
	}
}

// -------------------------------------------------------------------------
// Recorders
// -------------------------------------------------------------------------

// IncControlPacketsSent increments the transmitted control packet counter.
func (c *Collector) IncControlPacketsSent() { c.ControlPacketsSent.Inc() }

// IncStatusPacketsReceived increments the decoded status packet counter.
func (c *Collector) IncStatusPacketsReceived() { c.StatusPacketsReceived.Inc() }

// IncStatusDecodeErrors increments the status decode failure counter.
func (c *Collector) IncStatusDecodeErrors() { c.StatusDecodeErrors.Inc() }

// IncTCPFramesReceived increments the inbound TCP frame counter.
func (c *Collector) IncTCPFramesReceived() { c.TCPFramesReceived.Inc() }

// IncTCPReconnects increments the TCP reconnect counter.
func (c *Collector) IncTCPReconnects() { c.TCPReconnects.Inc() }

// RecordBatteryVoltage sets the battery voltage gauge to v.
func (c *Collector) RecordBatteryVoltage(v float32) { c.BatteryVoltage.Set(float64(v)) }

// RecordCodeStarted sets the code-started gauge.
func (c *Collector) RecordCodeStarted(started bool) {
	if started {
		c.CodeStarted.Set(1)
	} else {
		c.CodeStarted.Set(0)
	}
}
