// Package ds implements the driver-station half of the FRC robot control
// protocol: the bit-exact codecs for the UDP control, UDP status, and
// TCP tag-framed wire formats; the send-state and recv-state blocks that
// the two long-lived engines read and write; the fixed-cadence UDP
// engine and the reconnecting TCP engine; and the DriverStation facade
// that owns all of the above behind a single mutex.
package ds
