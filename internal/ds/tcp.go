package ds

import (
	"encoding/binary"
	"fmt"
)

// TCP outbound tag ids.
const (
	tagTCPJoystickDesc byte = 0x02
	tagTCPMatchInfo    byte = 0x07
	tagTCPGameData     byte = 0x0e
)

// tcpFrameHeaderSize is the u16 length prefix before every TCP frame.
const tcpFrameHeaderSize = 2

// OutboundTCPTag is a tag queued on the TCP outbound channel. Unlike
// OutboundTag (UDP), a TCP tag's frame length covers the id byte plus
// payload, written as a u16 rather than a u8 — TCP messages carry
// variable-length strings that can exceed a byte's range.
type OutboundTCPTag interface {
	ID() byte
	Encode() []byte
}

// EncodeTCPFrame produces the on-the-wire frame for tag:
// total_len:u16 BE, id:u8, payload. total_len counts the id byte and
// the payload, not itself.
func EncodeTCPFrame(tag OutboundTCPTag) []byte {
	payload := tag.Encode()
	frame := make([]byte, 0, tcpFrameHeaderSize+1+len(payload))
	frame = binary.BigEndian.AppendUint16(frame, uint16(1+len(payload)))
	frame = append(frame, tag.ID())
	frame = append(frame, payload...)
	return frame
}

// MatchType enumerates the match phases a MatchInfo tag can describe.
type MatchType uint8

const (
	MatchTypeNone           MatchType = 0
	MatchTypePractice       MatchType = 1
	MatchTypeQualifications MatchType = 2
	MatchTypeEliminations   MatchType = 3
)

// MatchInfoTag announces the competition name and match phase.
type MatchInfoTag struct {
	Competition string
	MatchType   MatchType
}

func (t MatchInfoTag) ID() byte { return tagTCPMatchInfo }

func (t MatchInfoTag) Encode() []byte {
	buf := make([]byte, 0, 1+len(t.Competition)+1)
	buf = append(buf, byte(len(t.Competition)))
	buf = append(buf, t.Competition...)
	buf = append(buf, byte(t.MatchType))
	return buf
}

// GameDataTag carries the game-specific message string (GSM) for the
// current match.
type GameDataTag struct {
	GSM string
}

func (t GameDataTag) ID() byte       { return tagTCPGameData }
func (t GameDataTag) Encode() []byte { return []byte(t.GSM) }

// JoystickDescTag describes one joystick's axis/button/POV layout to
// the robot. Real descriptors vary per attached controller; when
// Descriptor is empty, Encode falls back to a known-good fixed
// descriptor for a standard gamepad, matching the legacy client's own
// fallback behavior.
type JoystickDescTag struct {
	Descriptor []byte
}

// DefaultJoystickDescriptor is the known-good fallback descriptor for
// a standard six-axis, ten-button, one-POV gamepad (PS4-style).
var DefaultJoystickDescriptor = []byte{0, 0, 21, 3, 'P', 'S', '4', 6, 0, 1, 2, 3, 4, 5, 10, 1}

func (t JoystickDescTag) ID() byte { return tagTCPJoystickDesc }

func (t JoystickDescTag) Encode() []byte {
	if len(t.Descriptor) == 0 {
		return DefaultJoystickDescriptor
	}
	return t.Descriptor
}

// DecodeTCPFrame attempts to read one complete frame from buf. It
// returns the tag id, its payload, and the number of bytes consumed.
// If buf does not yet hold a complete frame, ok is false and consumed
// is 0 — the caller should wait for more bytes to arrive and retry.
func DecodeTCPFrame(buf []byte) (id byte, payload []byte, consumed int, ok bool, err error) {
	if len(buf) < tcpFrameHeaderSize {
		return 0, nil, 0, false, nil
	}

	totalLen := binary.BigEndian.Uint16(buf[0:tcpFrameHeaderSize])
	if totalLen == 0 {
		return 0, nil, 0, false, fmt.Errorf("tcp frame: zero-length frame")
	}

	frameEnd := tcpFrameHeaderSize + int(totalLen)
	if len(buf) < frameEnd {
		return 0, nil, 0, false, nil
	}

	id = buf[tcpFrameHeaderSize]
	payload = buf[tcpFrameHeaderSize+1 : frameEnd]
	return id, payload, frameEnd, true, nil
}
