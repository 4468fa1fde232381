package ds

import (
	"fmt"
	"net/netip"
)

// TeamToIP resolves team to the RIO's default static address on the
// team's assigned subnet: 1-2 digit teams map to 10.0.T.2, 3-digit to
// 10.D.DD.2, 4-digit to 10.DD.DD.2, where D/DD are the high and low
// decimal pairs of the team number.
func TeamToIP(team uint32) (netip.Addr, error) {
	if team == 0 || team > 9999 {
		return netip.Addr{}, fmt.Errorf("team %d: %w", team, ErrInvalidTeamNumber)
	}

	high := team / 100
	low := team % 100

	return netip.AddrFrom4([4]byte{10, byte(high), byte(low), 2}), nil
}
