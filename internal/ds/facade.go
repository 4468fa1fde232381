package ds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"sync"

	"github.com/frcnet/godriverstation/internal/netio"
)

const (
	controlPort = 1110
	statusPort  = 1150
	tcpPort     = 1740
)

// DriverStation is the public handle: it owns send-state, recv-state,
// and the two long-lived engines behind a single mutex, and exposes
// the mutating and observing operations a caller drives a match with.
type DriverStation struct {
	mu sync.Mutex

	sendState *SendState
	recvState *RecvState

	udp *udpEngine
	tcp *tcpEngine

	cancel context.CancelFunc
	logger *slog.Logger
}

// Option customizes DriverStation construction.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics Metrics
}

// WithLogger overrides the default discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics installs a metrics collector the engines report to.
// Without this option, metrics calls are discarded.
func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func resolveOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler), metrics: noopMetrics{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewTeam constructs a DriverStation for team, resolving the robot's
// control/status/TCP addresses via the team-to-IP rule, and
// immediately begins transmitting at 50 Hz.
func NewTeam(team uint32, alliance Alliance, opts ...Option) (*DriverStation, error) {
	robotIP, err := TeamToIP(team)
	if err != nil {
		return nil, fmt.Errorf("new driver station: %w", err)
	}
	return newDriverStation(robotIP, alliance, opts...)
}

// New constructs a DriverStation against an explicit robot address
// override, bypassing the team-to-IP rule — useful for testing
// against a simulator or a non-standard network layout.
func New(robotIP netip.Addr, alliance Alliance, opts ...Option) (*DriverStation, error) {
	return newDriverStation(robotIP, alliance, opts...)
}

func newDriverStation(robotIP netip.Addr, alliance Alliance, opts ...Option) (*DriverStation, error) {
	o := resolveOptions(opts)

	sender, err := newControlSender(robotIP)
	if err != nil {
		return nil, fmt.Errorf("new driver station: %w", err)
	}

	listener, err := newStatusListener()
	if err != nil {
		return nil, fmt.Errorf("new driver station: %w", err)
	}

	ds := &DriverStation{
		sendState: NewSendState(alliance),
		recvState: NewRecvState(),
		logger:    o.logger,
	}

	ds.udp = newUDPEngine(sender, listener, &ds.mu, ds.sendState, ds.recvState, o.logger, o.metrics)
	ds.tcp = newTCPEngine(netip.AddrPortFrom(robotIP, tcpPort), &ds.mu, ds.sendState, o.logger, o.metrics)

	ctx, cancel := context.WithCancel(context.Background())
	ds.cancel = cancel

	ds.udp.start(ctx)
	ds.tcp.start(ctx)

	return ds, nil
}

func newControlSender(robotIP netip.Addr) (*netio.ControlSender, error) {
	return netio.NewControlSender(netip.AddrPortFrom(robotIP, controlPort))
}

func newStatusListener() (*netio.StatusListener, error) {
	return netio.NewStatusListener(netip.AddrPortFrom(netip.IPv4Unspecified(), statusPort))
}

// --- mutators, delegating to send-state under the facade lock ---

func (d *DriverStation) Enable() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sendState.Enable()
}

func (d *DriverStation) Disable() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sendState.Disable()
}

func (d *DriverStation) Estop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sendState.Estop()
}

func (d *DriverStation) SetMode(m Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sendState.SetMode(m)
}

func (d *DriverStation) SetAlliance(a Alliance) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sendState.SetAlliance(a)
}

func (d *DriverStation) SetDsMode(m DsMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sendState.SetDsMode(m)
}

// RestartCode requests the robot controller restart user code on the
// next control packet.
func (d *DriverStation) RestartCode() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sendState.Request(RequestCodeRestart)
}

// RebootRIO requests the robot controller reboot on the next control
// packet.
func (d *DriverStation) RebootRIO() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sendState.Request(RequestReboot)
}

// SetJoystickSupplier installs the callback invoked once per tick to
// obtain joystick samples. Passing nil suppresses all Joysticks tags.
func (d *DriverStation) SetJoystickSupplier(f JoystickSupplier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sendState.SetJoystickSupplier(f)
}

// SetTCPConsumer installs the callback invoked for each decoded
// inbound TCP event.
func (d *DriverStation) SetTCPConsumer(f TCPConsumer) {
	d.tcp.setConsumer(f)
}

// QueueUDP enqueues tag for the next outbound control packet.
func (d *DriverStation) QueueUDP(tag OutboundTag) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sendState.QueueUDP(tag)
}

// QueueTCP enqueues tag for delivery over the TCP event channel.
func (d *DriverStation) QueueTCP(tag OutboundTCPTag) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sendState.QueueTCP(tag)
}

// --- observers, delegating to recv-state under the facade lock ---

func (d *DriverStation) BatteryVoltage() float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recvState.BatteryVoltage()
}

func (d *DriverStation) Trace() uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recvState.Trace()
}

func (d *DriverStation) Status() uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recvState.Status()
}

// Mode returns the last mode observed from the robot, falling back to
// the commanded mode if no status has arrived yet.
func (d *DriverStation) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recvState.Mode(d.sendState.Mode())
}

func (d *DriverStation) NeedDate() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recvState.NeedDate()
}

// HaveStatus reports whether at least one status packet has been
// decoded since construction.
func (d *DriverStation) HaveStatus() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recvState.HaveStatus()
}

// Close signals both engines to stop, joins them, and releases the
// underlying sockets.
func (d *DriverStation) Close() error {
	d.cancel()
	d.udp.stop()
	d.tcp.stop()
	return errors.Join(d.udp.sender.Close(), d.udp.listener.Close())
}
