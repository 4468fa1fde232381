package ds

// SendState holds everything the UDP engine needs to compose one
// outbound control datagram. It is not safe for concurrent use on its
// own — the facade guards every access with its state lock.
type SendState struct {
	mode     Mode
	enabled  bool
	estopped bool
	dsMode   DsMode
	alliance Alliance
	request  Request

	seqnum     uint16
	pendingUDP []OutboundTag
	pendingTCP []OutboundTCPTag

	joystickSupplier callbackSlot[JoystickSupplier]
}

// NewSendState constructs a send-state for the given starting alliance
// station. Mode defaults to Teleoperated, enabled/estopped default to
// false.
func NewSendState(alliance Alliance) *SendState {
	return &SendState{
		mode:     ModeTeleoperated,
		alliance: alliance,
	}
}

func (s *SendState) SetMode(m Mode) { s.mode = m }
func (s *SendState) Mode() Mode     { return s.mode }

func (s *SendState) Enable()       { s.enabled = true }
func (s *SendState) Disable()      { s.enabled = false }
func (s *SendState) Enabled() bool { return s.enabled }

// Estop atomically disables and latches the estop flag. Estop can only
// be cleared by a fresh SendState (there is no unstop operation in
// this protocol — matching the real field's failsafe design).
func (s *SendState) Estop() {
	s.enabled = false
	s.estopped = true
}

func (s *SendState) Estopped() bool { return s.estopped }

func (s *SendState) SetAlliance(a Alliance) { s.alliance = a }
func (s *SendState) Alliance() Alliance     { return s.alliance }

func (s *SendState) SetDsMode(m DsMode) { s.dsMode = m }
func (s *SendState) DsMode() DsMode     { return s.dsMode }

// QueueUDP appends tag to the pending outbound tag list, sent on the
// next Control() call and then cleared.
func (s *SendState) QueueUDP(tag OutboundTag) {
	s.pendingUDP = append(s.pendingUDP, tag)
}

// QueueTCP appends tag to the pending outbound TCP tag list, sent in
// FIFO order by the TCP engine the next time it polls the queue.
func (s *SendState) QueueTCP(tag OutboundTCPTag) {
	s.pendingTCP = append(s.pendingTCP, tag)
}

// DrainTCP returns and clears the pending TCP tag queue. Called only
// by the TCP engine.
func (s *SendState) DrainTCP() []OutboundTCPTag {
	tags := s.pendingTCP
	s.pendingTCP = nil
	return tags
}

// SetJoystickSupplier installs (or replaces) the joystick supplier.
// Lock-free: safe to call while the UDP engine is mid-tick.
func (s *SendState) SetJoystickSupplier(f JoystickSupplier) {
	s.joystickSupplier.set(f)
}

// JoystickTags snapshots the installed joystick supplier and invokes
// it, normalizing each joystick's samples into a Joysticks tag. It
// touches only the lock-free supplier slot, never pendingUDP/request/
// seqnum, so callers must invoke it without holding the facade's state
// lock: a supplier is arbitrary caller code and may itself call back
// into a facade mutator (SetMode, Enable, ...), which would deadlock
// against that same lock if held here.
func (s *SendState) JoystickTags() []OutboundTag {
	supplier, ok := s.joystickSupplier.get()
	if !ok || supplier == nil {
		return nil
	}

	var tags []OutboundTag
	for _, values := range supplier() {
		tags = append(tags, normalizeJoystick(values))
	}
	return tags
}

// Request sets the pending one-shot request byte, overwriting any
// request that hasn't been drained by a Control() call yet.
func (s *SendState) Request(r Request) { s.request = r }

func (s *SendState) IncrementSeqnum() { s.seqnum++ }
func (s *SendState) ResetSeqnum()     { s.seqnum = 0 }
func (s *SendState) Seqnum() uint16   { return s.seqnum }

// controlByte composes the outbound control byte from mode and flags.
// estopped forces both ENABLED off and ESTOP on, regardless of the
// enabled flag's own value — the invariant estopped ⇒ !enabled holds
// by construction, not by validation.
func (s *SendState) controlByte() uint8 {
	b := uint8(s.mode)
	if s.enabled && !s.estopped {
		b |= ControlEnabled
	}
	if s.estopped {
		b |= ControlEstop
	}
	if s.dsMode == DsModeFMS {
		b |= ControlFMSAttached
	}
	return b
}

// Control drains the send-state into a ControlPacket: prepends
// joystickTags, composes the control byte, takes the pending request
// (resetting it to RequestNone), and drains the pending UDP tag queue.
// The returned packet carries the current seqnum; Control itself never
// increments it — the caller does that only after a successful send.
//
// joystickTags must come from a prior call to JoystickTags, made
// without holding the facade's state lock — Control itself assumes the
// lock is already held for the pendingUDP/request/seqnum access below,
// and never invokes the joystick supplier itself.
func (s *SendState) Control(joystickTags []OutboundTag) ControlPacket {
	tags := append(append([]OutboundTag(nil), joystickTags...), s.pendingUDP...)
	s.pendingUDP = nil

	req := s.request
	s.request = RequestNone

	return ControlPacket{
		Seqnum:   s.seqnum,
		Control:  s.controlByte(),
		Request:  uint8(req),
		Alliance: s.alliance.Byte(),
		Tags:     tags,
	}
}
