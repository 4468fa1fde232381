package ds

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Outbound UDP control tag ids.
const (
	tagJoysticks byte = 0x0c
	tagCountdown byte = 0x07
	tagDateTime  byte = 0x0f
	tagTimezone  byte = 0x10
)

// outboundAxisCount, outboundButtonCount and outboundPovCount are the
// fixed sizes send-state normalizes every joystick into before queuing a
// Joysticks tag (spec §4.2): axes default to 0, buttons default to
// false, POV defaults to -1 (unpressed). Only one POV slot exists
// because POV id 0 is the only valid POV index.
const (
	outboundAxisCount   = 6
	outboundButtonCount = 10
	outboundPovCount    = 1
)

// OutboundTag is the tagged-variant interface every outbound UDP control
// tag implements. The codec dispatches on ID(); adding a new tag kind is
// a single new type plus a case in decodeOutboundTag.
type OutboundTag interface {
	// ID returns the wire tag id.
	ID() byte
	// Encode returns the tag's payload bytes (excluding the len/id
	// header, which MarshalControlPacket writes).
	Encode() []byte
}

// -------------------------------------------------------------------------
// JoysticksTag
// -------------------------------------------------------------------------

// JoysticksTag carries one joystick's normalized axis/button/POV state.
//
// Wire payload: 6 signed axis bytes, button count (u8), packed button
// bits (LSB-first on the wire; see packButtons), POV count (u8), then
// that many big-endian i16 POV angles (-1 for unpressed).
type JoysticksTag struct {
	Axes    [outboundAxisCount]int8
	Buttons [outboundButtonCount]bool
	Povs    [outboundPovCount]int16
}

// ID implements OutboundTag.
func (t JoysticksTag) ID() byte { return tagJoysticks }

// Encode implements OutboundTag.
func (t JoysticksTag) Encode() []byte {
	packed := packButtons(t.Buttons[:])

	buf := make([]byte, 0, outboundAxisCount+1+len(packed)+1+2*outboundPovCount)
	for _, a := range t.Axes {
		buf = append(buf, byte(a))
	}
	buf = append(buf, byte(len(t.Buttons)))
	buf = append(buf, packed...)
	buf = append(buf, byte(len(t.Povs)))
	for _, p := range t.Povs {
		buf = binary.BigEndian.AppendUint16(buf, uint16(p))
	}
	return buf
}

func decodeJoysticksTag(payload []byte) (JoysticksTag, error) {
	var t JoysticksTag
	if len(payload) < outboundAxisCount+1 {
		return t, fmt.Errorf("joysticks tag: %w", ErrPacketTooShort)
	}
	for i := range t.Axes {
		t.Axes[i] = int8(payload[i])
	}
	off := outboundAxisCount
	buttonCount := int(payload[off])
	off++
	packedLen := (buttonCount + 7) / 8
	if off+packedLen > len(payload) {
		return t, fmt.Errorf("joysticks tag: button bits: %w", ErrPacketTooShort)
	}
	bits := unpackButtons(payload[off:off+packedLen], buttonCount)
	copy(t.Buttons[:], bits)
	off += packedLen

	if off >= len(payload) {
		return t, fmt.Errorf("joysticks tag: pov count: %w", ErrPacketTooShort)
	}
	povCount := int(payload[off])
	off++
	for i := 0; i < povCount && i < len(t.Povs); i++ {
		if off+2 > len(payload) {
			return t, fmt.Errorf("joysticks tag: pov angle: %w", ErrPacketTooShort)
		}
		t.Povs[i] = int16(binary.BigEndian.Uint16(payload[off : off+2]))
		off += 2
	}

	return t, nil
}

// packButtons implements the legacy button-bit-packing algorithm
// verbatim: build each 8-bit chunk MSB-first, reverse the bits of each
// resulting byte, then reverse the order of the byte sequence as a
// whole. The result is an LSB-first-on-the-wire bit layout, but arrived
// at through this specific two-reversal construction rather than a
// direct LSB-first packer, because the wire contract is pinned down by
// test vectors built against this exact algorithm.
func packButtons(buttons []bool) []byte {
	n := len(buttons)
	nBytes := (n + 7) / 8
	out := make([]byte, 0, nBytes)

	// Each chunk's inner loop always runs 8 times, padding any index
	// past n with false, so a short final chunk still builds its real
	// bits into the high part of the pre-reversal byte — matching the
	// original's fixed-width inner loop rather than shrinking it to
	// the chunk's actual button count.
	for i := 0; i < n; i += 8 {
		var num byte
		for j := 0; j < 8; j++ {
			num <<= 1
			if idx := i + j; idx < n && buttons[idx] {
				num |= 1
			}
		}
		out = append(out, reverseByteBits(num))
	}

	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// unpackButtons inverts packButtons, returning count bools. Because
// packButtons' inner loop always pads to 8 bits before its per-byte
// reversal, every transmitted byte (full or short final chunk) ends up
// with its real button bits in the low part, ordered LSB-first — so
// decoding never needs its own reverseByteBits call, just a direct bit
// read in ascending position order.
func unpackButtons(packed []byte, count int) []bool {
	// Undo the whole-sequence reverse.
	chunks := make([]byte, len(packed))
	for i, b := range packed {
		chunks[len(packed)-1-i] = b
	}

	bits := make([]bool, 0, count)
	remaining := count
	for _, raw := range chunks {
		k := remaining
		if k > 8 {
			k = 8
		}
		for j := 0; j < k; j++ {
			bits = append(bits, (raw>>uint(j))&1 == 1)
		}
		remaining -= k
	}
	return bits
}

func reverseByteBits(b byte) byte {
	var r byte
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

// -------------------------------------------------------------------------
// DateTimeTag
// -------------------------------------------------------------------------

// DateTimeTag carries the driver station's wall-clock time, queued
// automatically when the robot requests it via the status packet's
// need_date flag.
type DateTimeTag struct {
	Micros  uint32
	Seconds uint8
	Minutes uint8
	Hours   uint8
	Day     uint8
	Month   uint8
	Year    uint8 // years since 1900
}

// ID implements OutboundTag.
func (t DateTimeTag) ID() byte { return tagDateTime }

// Encode implements OutboundTag.
func (t DateTimeTag) Encode() []byte {
	buf := make([]byte, 0, 10)
	buf = binary.BigEndian.AppendUint32(buf, t.Micros)
	buf = append(buf, t.Seconds, t.Minutes, t.Hours, t.Day, t.Month, t.Year)
	return buf
}

func decodeDateTimeTag(payload []byte) (DateTimeTag, error) {
	var t DateTimeTag
	if len(payload) < 10 {
		return t, fmt.Errorf("datetime tag: %w", ErrPacketTooShort)
	}
	t.Micros = binary.BigEndian.Uint32(payload[0:4])
	t.Seconds = payload[4]
	t.Minutes = payload[5]
	t.Hours = payload[6]
	t.Day = payload[7]
	t.Month = payload[8]
	t.Year = payload[9]
	return t, nil
}

// -------------------------------------------------------------------------
// TimezoneTag
// -------------------------------------------------------------------------

// TimezoneTag carries the driver station's local timezone name, queued
// alongside DateTimeTag.
type TimezoneTag struct {
	Name string
}

// ID implements OutboundTag.
func (t TimezoneTag) ID() byte { return tagTimezone }

// Encode implements OutboundTag.
func (t TimezoneTag) Encode() []byte {
	return []byte(t.Name)
}

func decodeTimezoneTag(payload []byte) (TimezoneTag, error) {
	return TimezoneTag{Name: string(payload)}, nil
}

// -------------------------------------------------------------------------
// CountdownTag
// -------------------------------------------------------------------------

// CountdownTag carries the match countdown, in seconds.
type CountdownTag struct {
	Seconds float32
}

// ID implements OutboundTag.
func (t CountdownTag) ID() byte { return tagCountdown }

// Encode implements OutboundTag.
func (t CountdownTag) Encode() []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, math.Float32bits(t.Seconds))
	return buf
}

func decodeCountdownTag(payload []byte) (CountdownTag, error) {
	if len(payload) < 4 {
		return CountdownTag{}, fmt.Errorf("countdown tag: %w", ErrPacketTooShort)
	}
	return CountdownTag{Seconds: math.Float32frombits(binary.BigEndian.Uint32(payload[0:4]))}, nil
}

// decodeOutboundTag dispatches on id to decode a tag payload, supporting
// the round-trip property tests. Unrecognized ids are an error; the
// caller (UnmarshalControlPacket) simply skips tags it can't decode.
func decodeOutboundTag(id byte, payload []byte) (OutboundTag, error) {
	switch id {
	case tagJoysticks:
		return decodeJoysticksTag(payload)
	case tagDateTime:
		return decodeDateTimeTag(payload)
	case tagTimezone:
		return decodeTimezoneTag(payload)
	case tagCountdown:
		return decodeCountdownTag(payload)
	default:
		return nil, fmt.Errorf("outbound tag id 0x%02x: unrecognized", id)
	}
}
