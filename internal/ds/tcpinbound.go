package ds

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Inbound TCP tag ids.
const tagTCPStdout byte = 0x01

// InboundTCPEvent is the decoded form of one inbound TCP frame, handed
// to the caller's TCP consumer callback. Unrecognized tag ids still
// produce an InboundTCPEvent (Known=false, Payload set) rather than
// being dropped before reaching the callback, so a caller can at least
// log or count them; only the typed Stdout field is populated for
// recognized ids.
type InboundTCPEvent struct {
	ID      byte
	Known   bool
	Stdout  *StdoutEvent
	Payload []byte
}

// StdoutEvent is the decoded Stdout tag: a single line of console
// output the robot program emitted, annotated with the timestamp and
// sequence number the legacy client attaches.
//
// Layout (timestamp:f32 BE, message:len-prefixed string, seqnum:u16 BE)
// is pinned only by the protocol's own doc comment, not a worked test
// vector; the message length prefix follows the same u8-length
// convention MatchInfo uses outbound, since no other convention is
// given. Validate against a live capture before relying on this in
// production.
type StdoutEvent struct {
	Timestamp float32
	Message   string
	Seqnum    uint16
}

// decodeInboundTCPTag dispatches on id, producing a best-effort
// InboundTCPEvent. A malformed Stdout payload still yields a Known
// event with an empty Stdout field rather than an error — inbound TCP
// framing errors are the caller's concern (DecodeTCPFrame already
// guarantees a complete frame), not the tag decoder's.
func decodeInboundTCPTag(id byte, payload []byte) InboundTCPEvent {
	switch id {
	case tagTCPStdout:
		ev, err := decodeStdoutTag(payload)
		if err != nil {
			return InboundTCPEvent{ID: id, Known: true, Payload: payload}
		}
		return InboundTCPEvent{ID: id, Known: true, Stdout: &ev, Payload: payload}
	default:
		return InboundTCPEvent{ID: id, Known: false, Payload: payload}
	}
}

func decodeStdoutTag(payload []byte) (StdoutEvent, error) {
	var ev StdoutEvent
	if len(payload) < 4+1 {
		return ev, fmt.Errorf("stdout tag: %w", ErrPacketTooShort)
	}

	ev.Timestamp = math.Float32frombits(binary.BigEndian.Uint32(payload[0:4]))

	msgLen := int(payload[4])
	off := 5
	if off+msgLen+2 > len(payload) {
		return ev, fmt.Errorf("stdout tag: %w", ErrPacketTooShort)
	}
	ev.Message = string(payload[off : off+msgLen])
	off += msgLen

	ev.Seqnum = binary.BigEndian.Uint16(payload[off : off+2])

	return ev, nil
}
