package ds_test

import (
	"errors"
	"testing"

	"github.com/frcnet/godriverstation/internal/ds"
)

func TestTeamToIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		team uint32
		want string
	}{
		{1, "10.0.1.2"},
		{42, "10.0.42.2"},
		{118, "10.1.18.2"},
		{254, "10.2.54.2"},
		{1690, "10.16.90.2"},
		{8089, "10.80.89.2"},
		{9999, "10.99.99.2"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			addr, err := ds.TeamToIP(tt.team)
			if err != nil {
				t.Fatalf("TeamToIP(%d): %v", tt.team, err)
			}
			if got := addr.String(); got != tt.want {
				t.Errorf("TeamToIP(%d) = %s, want %s", tt.team, got, tt.want)
			}
		})
	}
}

func TestTeamToIPInvalid(t *testing.T) {
	t.Parallel()

	for _, team := range []uint32{0, 10000, 99999} {
		_, err := ds.TeamToIP(team)
		if !errors.Is(err, ds.ErrInvalidTeamNumber) {
			t.Errorf("TeamToIP(%d): expected ErrInvalidTeamNumber, got %v", team, err)
		}
	}
}
