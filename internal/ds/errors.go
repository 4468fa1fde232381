package ds

import "errors"

// Sentinel errors for codec and construction failures. Nothing in the
// steady-state engine path is fatal; these are surfaced either at
// construction time (invalid team number, cannot bind status socket) or
// returned from the pure codec functions for the caller (the engines) to
// log and discard.
var (
	// ErrPacketTooShort indicates a control or status datagram was
	// shorter than the mandatory fixed header.
	ErrPacketTooShort = errors.New("packet too short")

	// ErrBufTooSmall indicates the caller-provided buffer cannot hold
	// the packet being marshaled.
	ErrBufTooSmall = errors.New("buffer too small")

	// ErrInvalidTeamNumber indicates a team number outside the 1-9999
	// range the team-to-IP rule can encode.
	ErrInvalidTeamNumber = errors.New("invalid team number")
)
