package ds_test

import (
	"testing"

	"github.com/frcnet/godriverstation/internal/ds"
)

// TestAxisEncodingViaJoysticksTag exercises the axis saturation rules
// (documented in joystick.go's encodeAxis) indirectly through
// JoysticksTag.Encode, since encodeAxis itself is unexported.
func TestAxisEncodingViaJoysticksTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value float32
		want  byte
	}{
		{"full forward saturates to 127", 1.0, 127},
		{"full reverse saturates to -128", -1.0, byte(int8(-128))},
		{"small positive truncates toward zero", 0.1, byte(int8(12))},
		{"zero", 0.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tag := ds.JoysticksTag{Axes: [6]int8{}}
			tag.Axes[0] = axisByte(tt.value)

			payload := tag.Encode()
			if payload[0] != tt.want {
				t.Errorf("axis[0] = 0x%02x, want 0x%02x", payload[0], tt.want)
			}
		})
	}
}

// axisByte round-trips a raw axis value through the public joystick
// sample API (Axis + normalizeJoystick's tag output) to observe the
// encoded wire byte without reaching into the unexported encodeAxis.
func axisByte(value float32) int8 {
	station := joysticksTagFrom(ds.Axis(0, value))
	return station.Axes[0]
}

func joysticksTagFrom(values ...ds.JoystickValue) ds.JoysticksTag {
	send := ds.NewSendState(ds.NewRedAlliance(1))
	send.SetJoystickSupplier(func() [][]ds.JoystickValue {
		return [][]ds.JoystickValue{values}
	})

	pkt := send.Control(send.JoystickTags())
	for _, tag := range pkt.Tags {
		if jt, ok := tag.(ds.JoysticksTag); ok {
			return jt
		}
	}
	return ds.JoysticksTag{}
}

func TestNormalizeJoystickDefaults(t *testing.T) {
	t.Parallel()

	tag := joysticksTagFrom()

	for i, a := range tag.Axes {
		if a != 0 {
			t.Errorf("Axes[%d]: got %d, want 0", i, a)
		}
	}
	for i, b := range tag.Buttons {
		if b {
			t.Errorf("Buttons[%d]: got true, want false", i)
		}
	}
	if tag.Povs[0] != -1 {
		t.Errorf("Povs[0]: got %d, want -1 (unpressed)", tag.Povs[0])
	}
}

func TestNormalizeJoystickButtonsAndPOV(t *testing.T) {
	t.Parallel()

	tag := joysticksTagFrom(
		ds.Button(1, true),
		ds.Button(10, true),
		ds.POV(0, 90),
	)

	if !tag.Buttons[0] {
		t.Error("Buttons[0] (button id 1): got false, want true")
	}
	if !tag.Buttons[9] {
		t.Error("Buttons[9] (button id 10): got false, want true")
	}
	for i := 1; i < 9; i++ {
		if tag.Buttons[i] {
			t.Errorf("Buttons[%d]: got true, want false", i)
		}
	}
	if tag.Povs[0] != 90 {
		t.Errorf("Povs[0]: got %d, want 90", tag.Povs[0])
	}
}

func TestNormalizeJoystickOutOfRangeIgnored(t *testing.T) {
	t.Parallel()

	tag := joysticksTagFrom(
		ds.Axis(99, 1.0),
		ds.Button(0, true),
		ds.Button(200, true),
		ds.POV(5, 45),
	)

	for i, a := range tag.Axes {
		if a != 0 {
			t.Errorf("Axes[%d]: got %d, want 0 (out-of-range samples ignored)", i, a)
		}
	}
	for i, b := range tag.Buttons {
		if b {
			t.Errorf("Buttons[%d]: got true, want false (out-of-range samples ignored)", i)
		}
	}
	if tag.Povs[0] != -1 {
		t.Errorf("Povs[0]: got %d, want -1 (out-of-range POV id ignored)", tag.Povs[0])
	}
}
