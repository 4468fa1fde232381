// Package netio provides the low-level UDP socket plumbing for the two
// fixed-port datagram channels the driver station uses: the outbound
// control socket (robot:1110) and the inbound status socket (local
// :1150). Unlike a routing-protocol liveness check, this protocol has no
// GTSM/TTL security requirement and no ephemeral source-port negotiation
// — both endpoints are fixed, well-known ports on a trusted LAN.
package netio

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// ErrSocketClosed indicates an operation on a socket that has already
// been closed.
var ErrSocketClosed = errors.New("socket closed")

// immediatePast is used as a read deadline in the past to implement a
// non-blocking read on a net.UDPConn, which has no native non-blocking
// mode. It only needs to be before "now" at the time of each call, and
// any fixed point far enough in the past works for that purpose.
var immediatePast = time.Unix(0, 0)

// ControlSender sends UDP control datagrams to the robot's fixed control
// port. One sender is created per DriverStation instance and reused for
// every 20ms tick.
type ControlSender struct {
	conn   *net.UDPConn
	dst    netip.AddrPort
	mu     sync.Mutex
	closed bool
}

// NewControlSender creates a UDP socket for transmitting control packets
// to dst. The socket is unconnected so the destination can be changed by
// a later SetAlliance-style address override without recreating it.
func NewControlSender(dst netip.AddrPort) (*ControlSender, error) {
	conn, err := dialControlSocket()
	if err != nil {
		return nil, fmt.Errorf("create control sender: %w", err)
	}

	return &ControlSender{conn: conn, dst: dst}, nil
}

// dialControlSocket opens a UDP socket on an ephemeral local port with
// SO_REUSEADDR, matching the convention the rest of the pack uses for
// sockets that may be rebound across process restarts in quick
// succession (e.g. during development iteration).
func dialControlSocket() (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return fmt.Errorf("raw conn control: %w", err)
			}
			return sockErr
		},
	}

	pc, err := lc.ListenPacket(context.Background(), "udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("listen ephemeral UDP: %w", err)
	}

	conn, ok := pc.(*net.UDPConn)
	if !ok {
		pc.Close()
		return nil, fmt.Errorf("unexpected conn type from ListenPacket: %T", pc)
	}

	return conn, nil
}

// Send transmits buf to the sender's configured destination.
func (s *ControlSender) Send(buf []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("send to %s: %w", s.dst, ErrSocketClosed)
	}
	dst := s.dst
	s.mu.Unlock()

	udpAddr := net.UDPAddrFromAddrPort(dst)
	if _, err := s.conn.WriteToUDP(buf, udpAddr); err != nil {
		return fmt.Errorf("send control packet to %s: %w", dst, err)
	}
	return nil
}

// SetDest updates the destination address, used when the facade is
// reconfigured with an address override after construction.
func (s *ControlSender) SetDest(dst netip.AddrPort) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dst = dst
}

// Close releases the underlying socket.
func (s *ControlSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("close control sender: %w", err)
	}
	return nil
}

// StatusListener receives UDP status datagrams on the local status port.
type StatusListener struct {
	conn *net.UDPConn
}

// NewStatusListener binds a UDP socket on laddr (typically ":1150") with
// SO_REUSEADDR so repeated restarts don't fail with "address in use"
// while the kernel still holds the previous socket in TIME_WAIT.
func NewStatusListener(laddr netip.AddrPort) (*StatusListener, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return fmt.Errorf("raw conn control: %w", err)
			}
			return sockErr
		},
	}

	pc, err := lc.ListenPacket(context.Background(), "udp4", laddr.String())
	if err != nil {
		return nil, fmt.Errorf("listen status UDP %s: %w", laddr, err)
	}

	conn, ok := pc.(*net.UDPConn)
	if !ok {
		pc.Close()
		return nil, fmt.Errorf("unexpected conn type from ListenPacket: %T", pc)
	}

	return &StatusListener{conn: conn}, nil
}

// RecvNonBlocking drains at most one pending datagram without blocking.
// Returns (0, false, nil) if nothing is currently available.
func (l *StatusListener) RecvNonBlocking(buf []byte) (int, bool, error) {
	// SetReadDeadline in the past makes the next Read return immediately
	// with a timeout error if nothing is queued — the standard
	// non-blocking-read idiom for net.UDPConn, which has no native
	// non-blocking mode.
	if err := l.conn.SetReadDeadline(immediatePast); err != nil {
		return 0, false, fmt.Errorf("set read deadline: %w", err)
	}

	n, _, err := l.conn.ReadFromUDP(buf)
	if err != nil {
		if isTimeout(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read status datagram: %w", err)
	}
	return n, true, nil
}

// Close releases the underlying socket.
func (l *StatusListener) Close() error {
	if err := l.conn.Close(); err != nil {
		return fmt.Errorf("close status listener: %w", err)
	}
	return nil
}

func isTimeout(err error) bool {
	var ne net.Error
	if ok := asNetError(err, &ne); ok {
		return ne.Timeout()
	}
	return false
}

func asNetError(err error, target *net.Error) bool {
	ne, ok := err.(net.Error)
	if !ok {
		return false
	}
	*target = ne
	return true
}
