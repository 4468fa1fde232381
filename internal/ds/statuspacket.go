package ds

import (
	"encoding/binary"
	"fmt"
)

// Status bits (inbound, robot-reported health). Bit positions mirror the
// informal FRC driver-station wire protocol.
const (
	StatusEmergencyStop         uint8 = 0x01
	StatusBrownedOut            uint8 = 0x02
	StatusDisabledNeedComms     uint8 = 0x04
	StatusDisabledAvgRTTTooHigh uint8 = 0x08
)

// Trace bits (inbound, robot-code execution state).
const (
	TraceTestMode   uint8 = 0x01
	TraceAutonomous uint8 = 0x02
	TraceTeleop     uint8 = 0x04
	TraceDisabled   uint8 = 0x08
	TraceIsRoboRIO  uint8 = 0x10
	TraceRobotCode  uint8 = 0x20
)

// statusHeaderSize is the mandatory prefix before the optional tag
// block: seqnum(2) + comm_version(1) + status(1) + trace(1) +
// battery high(1) + battery low(1) + need_date(1).
const statusHeaderSize = 8

// StatusPacket is a fully decoded inbound UDP status datagram.
type StatusPacket struct {
	Seqnum   uint16
	Status   uint8
	Trace    uint8
	Battery  float32
	NeedDate bool
}

// IsEmergencyStop reports whether the robot has latched an estop.
func (p StatusPacket) IsEmergencyStop() bool { return p.Status&StatusEmergencyStop != 0 }

// IsBrownedOut reports whether the robot controller reported a brownout.
func (p StatusPacket) IsBrownedOut() bool { return p.Status&StatusBrownedOut != 0 }

// IsCodeStarted reports whether user code is running on the robot,
// derived from the ROBOT_CODE trace bit.
func (p StatusPacket) IsCodeStarted() bool { return p.Trace&TraceRobotCode != 0 }

// Mode derives the operating mode the robot last reported via its trace
// bits. Falls back to Teleoperated if neither test nor autonomous bits
// are set.
func (p StatusPacket) Mode() Mode {
	switch {
	case p.Trace&TraceTestMode != 0:
		return ModeTestMode
	case p.Trace&TraceAutonomous != 0:
		return ModeAutonomous
	default:
		return ModeTeleoperated
	}
}

// DecodeStatusPacket decodes a status datagram from buf.
//
// A decode failure before need_date is a hard error (ErrPacketTooShort);
// the fixed header's on-the-wire contract is mandatory. Past need_date,
// decoding is best-effort: an optional one-byte tag-block length is
// read (its value only gates whether a tag block follows; it is not
// used as a byte-count bound), then tag records (id:u8, fixed-size
// payload) are consumed until a short read or an unrecognized id is
// seen, at which point the tag loop stops without producing an error —
// the already-decoded header fields are still returned successfully.
// The decoder never validates seqnum monotonicity; that's left to the
// engine.
func DecodeStatusPacket(buf []byte) (StatusPacket, error) {
	var p StatusPacket
	if len(buf) < statusHeaderSize {
		return p, fmt.Errorf("decode status packet: got %d bytes, need %d: %w",
			len(buf), statusHeaderSize, ErrPacketTooShort)
	}

	p.Seqnum = binary.BigEndian.Uint16(buf[0:2])
	// buf[2] is the comm version byte; not surfaced.
	p.Status = buf[3]
	p.Trace = buf[4]

	high, low := buf[5], buf[6]
	p.Battery = float32(high) + float32(low)/256.0

	p.NeedDate = buf[7] == 1

	consumeStatusTagBlock(buf[statusHeaderSize:])

	return p, nil
}

// consumeStatusTagBlock walks the optional inbound tag block. It never
// returns an error: unknown ids or short reads simply stop the loop, as
// spec'd for this protocol (the legacy decoder's strict seqnum/length
// enforcement is intentionally not replicated).
func consumeStatusTagBlock(buf []byte) {
	if len(buf) == 0 {
		return
	}
	// One-byte tag-block length prefix; its value is a presence gate
	// only, not relied upon for bounds-checking below.
	buf = buf[1:]

	for len(buf) > 0 {
		id := buf[0]
		buf = buf[1:]

		size, known := inboundTagSize(id)
		if !known || len(buf) < size {
			return
		}
		buf = buf[size:]
	}
}
