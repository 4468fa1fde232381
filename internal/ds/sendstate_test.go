package ds_test

import (
	"testing"

	"github.com/frcnet/godriverstation/internal/ds"
)

// TestSendStateControlByteComposition pins the exact control byte for
// an enabled, non-estopped autonomous station with no FMS attached:
// mode bits 0b10 | ENABLED (0x04) = 0x06. FMS_ATTACHED stays unset
// because the DsMode is the default DsModeNormal, and SendState never
// sets DS_ATTACHED.
func TestSendStateControlByteComposition(t *testing.T) {
	t.Parallel()

	s := ds.NewSendState(ds.NewRedAlliance(1))
	s.SetMode(ds.ModeAutonomous)
	s.Enable()

	pkt := s.Control(nil)
	if pkt.Control != 0x06 {
		t.Errorf("Control = 0x%02x, want 0x06", pkt.Control)
	}
	if pkt.Control&ds.ControlEstop != 0 {
		t.Error("expected ControlEstop unset")
	}
}

// TestSendStateEstopClearsEnabled verifies the invariant that estopped
// implies !enabled in the composed control byte, even if Enable() is
// called again afterward — Estop is a one-way latch.
func TestSendStateEstopClearsEnabled(t *testing.T) {
	t.Parallel()

	s := ds.NewSendState(ds.NewRedAlliance(1))
	s.Enable()
	s.Estop()

	pkt := s.Control(nil)
	if pkt.Control&ds.ControlEnabled != 0 {
		t.Error("expected ControlEnabled cleared after Estop()")
	}
	if pkt.Control&ds.ControlEstop == 0 {
		t.Error("expected ControlEstop set after Estop()")
	}
	if !s.Estopped() {
		t.Error("Estopped() = false, want true")
	}

	s.Enable()
	pkt = s.Control(nil)
	if pkt.Control&ds.ControlEnabled != 0 {
		t.Error("Enable() after Estop() must not clear the estop latch")
	}
}

func TestSendStateRequestClearedAfterControl(t *testing.T) {
	t.Parallel()

	s := ds.NewSendState(ds.NewRedAlliance(1))
	s.Request(ds.RequestCodeRestart)

	pkt := s.Control(nil)
	if pkt.Request != uint8(ds.RequestCodeRestart) {
		t.Errorf("Request = 0x%02x, want 0x%02x", pkt.Request, ds.RequestCodeRestart)
	}

	pkt = s.Control(nil)
	if pkt.Request != uint8(ds.RequestNone) {
		t.Errorf("Request on second Control() = 0x%02x, want RequestNone (one-shot)", pkt.Request)
	}
}

func TestSendStateSeqnum(t *testing.T) {
	t.Parallel()

	s := ds.NewSendState(ds.NewRedAlliance(1))
	if s.Seqnum() != 0 {
		t.Fatalf("initial Seqnum = %d, want 0", s.Seqnum())
	}

	for i := 0; i < 5; i++ {
		s.IncrementSeqnum()
	}
	if s.Seqnum() != 5 {
		t.Errorf("Seqnum after 5 increments = %d, want 5", s.Seqnum())
	}

	s.ResetSeqnum()
	if s.Seqnum() != 0 {
		t.Errorf("Seqnum after ResetSeqnum = %d, want 0", s.Seqnum())
	}
}

func TestSendStateSeqnumWraps(t *testing.T) {
	t.Parallel()

	s := ds.NewSendState(ds.NewRedAlliance(1))
	for i := 0; i < 65536; i++ {
		s.IncrementSeqnum()
	}
	if s.Seqnum() != 0 {
		t.Errorf("Seqnum after 65536 increments = %d, want 0 (uint16 wraps)", s.Seqnum())
	}
}

func TestSendStatePendingUDPDrainedByControl(t *testing.T) {
	t.Parallel()

	s := ds.NewSendState(ds.NewRedAlliance(1))
	s.QueueUDP(ds.CountdownTag{Seconds: 30})
	s.QueueUDP(ds.TimezoneTag{Name: "UTC"})

	pkt := s.Control(nil)
	if len(pkt.Tags) != 2 {
		t.Fatalf("Tags = %d, want 2", len(pkt.Tags))
	}

	pkt = s.Control(nil)
	if len(pkt.Tags) != 0 {
		t.Errorf("Tags on second Control() = %d, want 0 (queue drained)", len(pkt.Tags))
	}
}

func TestSendStateQueueTCPDrainedByDrainTCP(t *testing.T) {
	t.Parallel()

	s := ds.NewSendState(ds.NewRedAlliance(1))
	s.QueueTCP(ds.GameDataTag{GSM: "LRL"})
	s.QueueTCP(ds.MatchInfoTag{Competition: "CMP"})

	tags := s.DrainTCP()
	if len(tags) != 2 {
		t.Fatalf("DrainTCP = %d tags, want 2", len(tags))
	}

	if more := s.DrainTCP(); len(more) != 0 {
		t.Errorf("second DrainTCP = %d tags, want 0", len(more))
	}
}

// TestSendStateJoystickTagsFeedIntoControl exercises the two-step
// sequence the UDP engine follows: JoystickTags invokes the supplier
// (lock-free, outside the facade's state lock), and its result is fed
// into Control (which never invokes the supplier itself).
func TestSendStateJoystickTagsFeedIntoControl(t *testing.T) {
	t.Parallel()

	s := ds.NewSendState(ds.NewRedAlliance(1))
	calls := 0
	s.SetJoystickSupplier(func() [][]ds.JoystickValue {
		calls++
		return [][]ds.JoystickValue{{ds.Axis(0, 1.0)}, {ds.Button(1, true)}}
	})

	joystickTags := s.JoystickTags()
	if calls != 1 {
		t.Fatalf("supplier invoked %d times, want 1", calls)
	}
	if len(joystickTags) != 2 {
		t.Fatalf("JoystickTags() = %d tags, want 2 (one per joystick)", len(joystickTags))
	}

	pkt := s.Control(joystickTags)
	if calls != 1 {
		t.Fatalf("Control must not itself invoke the supplier; calls = %d, want 1", calls)
	}
	if len(pkt.Tags) != 2 {
		t.Fatalf("Tags = %d, want 2 (one per joystick)", len(pkt.Tags))
	}
}

func TestSendStateControlWithoutJoystickTags(t *testing.T) {
	t.Parallel()

	s := ds.NewSendState(ds.NewRedAlliance(1))
	if tags := s.JoystickTags(); tags != nil {
		t.Fatalf("JoystickTags() with no supplier = %v, want nil", tags)
	}

	pkt := s.Control(nil)
	if len(pkt.Tags) != 0 {
		t.Errorf("Tags = %d, want 0", len(pkt.Tags))
	}
}

func TestSendStateModeAndAllianceSetters(t *testing.T) {
	t.Parallel()

	s := ds.NewSendState(ds.NewRedAlliance(1))
	if s.Mode() != ds.ModeTeleoperated {
		t.Fatalf("default Mode = %s, want Teleoperated", s.Mode())
	}

	s.SetMode(ds.ModeAutonomous)
	if s.Mode() != ds.ModeAutonomous {
		t.Errorf("Mode after SetMode = %s, want Autonomous", s.Mode())
	}

	s.SetAlliance(ds.NewBlueAlliance(3))
	if s.Alliance().Side() != ds.SideBlue || s.Alliance().Position() != 3 {
		t.Errorf("Alliance after SetAlliance = %v/%d, want Blue/3", s.Alliance().Side(), s.Alliance().Position())
	}
}
