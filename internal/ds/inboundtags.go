package ds

// Inbound UDP status tag ids and their fixed payload sizes. These
// tags are drained (their bytes consumed) but not decoded into
// structured fields — the protocol's own position is that "UDP tags
// should be eaten to ensure the pipe doesn't get clogged" without a
// richer consumer for most of them; only the fixed sizes matter for
// framing.
//
// CPUInfo's id (0x02) is pinned by the driver-station protocol's own
// test vector rather than the legacy reference decoder's id (0x05) —
// see DESIGN.md for the resolution.
const (
	tagInboundJoystickOutput byte = 0x01
	tagInboundCPUInfo        byte = 0x02
	tagInboundDiskInfo       byte = 0x04
	tagInboundRAMInfo        byte = 0x06
	tagInboundPDPLog         byte = 0x08
	tagInboundUnknown        byte = 0x09
	tagInboundCANMetrics     byte = 0x0e
)

// Fixed payload sizes for each recognized inbound tag id.
const (
	sizeJoystickOutput = 8
	sizeDiskInfo       = 8
	sizeCPUInfo        = 1 + 4*4*2 // 33
	sizeRAMInfo        = 8
	sizePDPLog         = 25
	sizeUnknownTag     = 9
	sizeCANMetrics     = 14
)

// inboundTagSize returns the fixed payload length for a recognized
// inbound tag id. known is false for any id outside this table, which
// tells the tag-block walker to stop without error.
func inboundTagSize(id byte) (size int, known bool) {
	switch id {
	case tagInboundJoystickOutput:
		return sizeJoystickOutput, true
	case tagInboundDiskInfo:
		return sizeDiskInfo, true
	case tagInboundCPUInfo:
		return sizeCPUInfo, true
	case tagInboundRAMInfo:
		return sizeRAMInfo, true
	case tagInboundPDPLog:
		return sizePDPLog, true
	case tagInboundUnknown:
		return sizeUnknownTag, true
	case tagInboundCANMetrics:
		return sizeCANMetrics, true
	default:
		return 0, false
	}
}
