package netio

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"
)

// DialControlTCP opens the long-lived TCP channel to the robot's fixed
// control port (typically robot:1740). A dial timeout bounds how long a
// single reconnect attempt blocks the TCP engine.
func DialControlTCP(ctx context.Context, addr netip.AddrPort, timeout time.Duration) (net.Conn, error) {
	dialer := net.Dialer{Timeout: timeout}

	conn, err := dialer.DialContext(ctx, "tcp4", addr.String())
	if err != nil {
		return nil, fmt.Errorf("dial TCP %s: %w", addr, err)
	}
	return conn, nil
}
