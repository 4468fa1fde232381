package ds_test

import (
	"testing"

	"github.com/frcnet/godriverstation/internal/ds"
)

func TestRecvStateModeFallsBackBeforeFirstStatus(t *testing.T) {
	t.Parallel()

	r := ds.NewRecvState()
	if r.HaveStatus() {
		t.Fatal("HaveStatus() = true before any Update()")
	}

	if got := r.Mode(ds.ModeAutonomous); got != ds.ModeAutonomous {
		t.Errorf("Mode(fallback) = %s, want %s", got, ds.ModeAutonomous)
	}
}

func TestRecvStateModeDerivedFromTraceAfterUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		trace uint8
		want  ds.Mode
	}{
		{"test mode bit wins", ds.TraceTestMode | ds.TraceAutonomous, ds.ModeTestMode},
		{"autonomous bit", ds.TraceAutonomous, ds.ModeAutonomous},
		{"neither bit means teleop", 0, ds.ModeTeleoperated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := ds.NewRecvState()
			r.Update(ds.StatusPacket{Trace: tt.trace})

			if got := r.Mode(ds.ModeTeleoperated); got != tt.want {
				t.Errorf("Mode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRecvStateUpdateStoresFields(t *testing.T) {
	t.Parallel()

	r := ds.NewRecvState()
	r.Update(ds.StatusPacket{
		Seqnum:   42,
		Status:   ds.StatusBrownedOut,
		Trace:    ds.TraceRobotCode,
		Battery:  12.1,
		NeedDate: true,
	})

	if !r.HaveStatus() {
		t.Fatal("HaveStatus() = false after Update()")
	}
	if r.LastSeqnum() != 42 {
		t.Errorf("LastSeqnum() = %d, want 42", r.LastSeqnum())
	}
	if r.Status() != ds.StatusBrownedOut {
		t.Errorf("Status() = 0x%02x, want 0x%02x", r.Status(), ds.StatusBrownedOut)
	}
	if r.Trace() != ds.TraceRobotCode {
		t.Errorf("Trace() = 0x%02x, want 0x%02x", r.Trace(), ds.TraceRobotCode)
	}
	if r.BatteryVoltage() != 12.1 {
		t.Errorf("BatteryVoltage() = %v, want 12.1", r.BatteryVoltage())
	}
	if !r.NeedDate() {
		t.Error("NeedDate() = false, want true")
	}
}

func TestRecvStateUpdateOverwritesPreviousValues(t *testing.T) {
	t.Parallel()

	r := ds.NewRecvState()
	r.Update(ds.StatusPacket{Seqnum: 1, NeedDate: true})
	r.Update(ds.StatusPacket{Seqnum: 2, NeedDate: false})

	if r.LastSeqnum() != 2 {
		t.Errorf("LastSeqnum() = %d, want 2", r.LastSeqnum())
	}
	if r.NeedDate() {
		t.Error("NeedDate() = true, want false after second Update() cleared it")
	}
}
