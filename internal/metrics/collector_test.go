package dsmetrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	dsmetrics "github.com/frcnet/godriverstation/internal/metrics"
)

func TestNewCollector(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := dsmetrics.NewCollector(reg)

	if c.ControlPacketsSent == nil {
		t.Error("ControlPacketsSent is nil")
	}
	if c.StatusPacketsReceived == nil {
		t.Error("StatusPacketsReceived is nil")
	}
	if c.StatusDecodeErrors == nil {
		t.Error("StatusDecodeErrors is nil")
	}
	if c.TCPFramesReceived == nil {
		t.Error("TCPFramesReceived is nil")
	}
	if c.TCPReconnects == nil {
		t.Error("TCPReconnects is nil")
	}
	if c.BatteryVoltage == nil {
		t.Error("BatteryVoltage is nil")
	}
	if c.CodeStarted == nil {
		t.Error("CodeStarted is nil")
	}

	if _, err := reg.Gather(); err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
}

func TestPacketCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := dsmetrics.NewCollector(reg)

	c.IncControlPacketsSent()
	c.IncControlPacketsSent()
	c.IncControlPacketsSent()

	if got := counterValue(t, c.ControlPacketsSent); got != 3 {
		t.Errorf("ControlPacketsSent = %v, want 3", got)
	}

	c.IncStatusPacketsReceived()
	c.IncStatusPacketsReceived()

	if got := counterValue(t, c.StatusPacketsReceived); got != 2 {
		t.Errorf("StatusPacketsReceived = %v, want 2", got)
	}

	c.IncStatusDecodeErrors()

	if got := counterValue(t, c.StatusDecodeErrors); got != 1 {
		t.Errorf("StatusDecodeErrors = %v, want 1", got)
	}
}

func TestTCPCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := dsmetrics.NewCollector(reg)

	c.IncTCPFramesReceived()
	c.IncTCPFramesReceived()
	c.IncTCPReconnects()

	if got := counterValue(t, c.TCPFramesReceived); got != 2 {
		t.Errorf("TCPFramesReceived = %v, want 2", got)
	}
	if got := counterValue(t, c.TCPReconnects); got != 1 {
		t.Errorf("TCPReconnects = %v, want 1", got)
	}
}

func TestGauges(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := dsmetrics.NewCollector(reg)

	c.RecordBatteryVoltage(11.8)
	// The reading arrives as float32, so the gauge holds float32(11.8)
	// widened to float64, not the float64 literal 11.8.
	if got, want := gaugeValue(t, c.BatteryVoltage), float64(float32(11.8)); got != want {
		t.Errorf("BatteryVoltage = %v, want %v", got, want)
	}

	c.RecordCodeStarted(true)
	if got := gaugeValue(t, c.CodeStarted); got != 1 {
		t.Errorf("CodeStarted = %v, want 1", got)
	}

	c.RecordCodeStarted(false)
	if got := gaugeValue(t, c.CodeStarted); got != 0 {
		t.Errorf("CodeStarted = %v, want 0", got)
	}
}

// -------------------------------------------------------------------------
// Helpers
// -------------------------------------------------------------------------

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		t.Fatalf("Write metric: %v", err)
	}

	return m.GetGauge().GetValue()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Write metric: %v", err)
	}

	return m.GetCounter().GetValue()
}
