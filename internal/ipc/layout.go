// Package ipc defines the fixed byte layout shared by the Sim (writer) and
// the Core (reader) across the Bridge shared-memory region, and the wire
// structs used by StationLink. Every struct here has a constant, known-at-
// compile-time size and is encoded/decoded field-by-field with
// encoding/binary little-endian — never gob, never reflection — so the
// layout stays byte-compatible with a non-Go peer process.
package ipc

const (
	// Magic is the sentinel value written at region offset 0 and verified
	// by every Attach call.
	Magic uint64 = 0xA6E15_C0DE_1000

	// MaxRadarPoints bounds the radar buffer section of the region.
	MaxRadarPoints = 1024

	// HeaderSize is the fixed size in bytes of BridgeHeader: 32 bytes of
	// fields followed by 32 bytes of pad, so the radar section starts at
	// offset 64.
	HeaderSize = 64

	// RadarPointSize is the on-wire size of one SimRadarPoint (5 float32s).
	RadarPointSize = 20

	// RadarSectionSize is the fixed size of the whole radar buffer section.
	RadarSectionSize = MaxRadarPoints * RadarPointSize

	// CommandSize is the fixed size of ControlCommand, including its
	// 12-byte pad, matching spec §6's 32-byte layout.
	CommandSize = 32

	// HeaderOffset, RadarOffset, CommandOffset, VideoOffset are the fixed
	// byte offsets of each region section, per spec §6.
	HeaderOffset  = 0
	RadarOffset   = HeaderOffset + HeaderSize
	CommandOffset = RadarOffset + RadarSectionSize
	VideoOffset   = CommandOffset + CommandSize

	// Field offsets within BridgeHeader. Every field after magic, up to the
	// pad, is accessed through sync/atomic (magic is written once at Create
	// and checked at attach) so the state_flag handshake gives the
	// reader a full memory barrier before it touches frame_id/sim_time/
	// num_radar_points, and so the race detector never flags the
	// producer/consumer's concurrent access to the same page.
	HeaderMagicOff     = 0
	HeaderFrameIDOff   = 8
	HeaderSimTimeOff   = 16
	HeaderNumRadarOff  = 24
	HeaderStateFlagOff = 28
)

// StateFlag is the Bridge's atomic handshake flag.
type StateFlag uint32

const (
	StateIdle    StateFlag = 0
	StateReady   StateFlag = 1
	StateReading StateFlag = 2
)

// SimRadarPoint is the producer-side wire format of one radar return,
// matching spec §3's RadarPoint and §6's 20-byte SimRadarPoint.
type SimRadarPoint struct {
	X, Y, Z  float32
	Velocity float32
	SNRdB    float32
}

// ControlCommand is the reverse (Core → Sim / Core → Bridge) command
// channel payload, matching spec §3 and §6.
type ControlCommand struct {
	TimestampMs uint64
	PanVel      float32
	TiltVel     float32
	FireTrigger uint32
	// Pad is the 12-byte reserved tail that keeps the struct's on-wire
	// size at the spec-mandated 32 bytes.
	Pad [12]byte
}

// VideoRegionSize returns the size in bytes of the trailing RGB8 video
// section for a region sized for width x height pixels.
func VideoRegionSize(width, height int) int {
	return width * height * 3
}

// RegionSize returns the total byte size of a Bridge region sized for
// width x height pixels, per spec §6's offset table.
func RegionSize(width, height int) int {
	return VideoOffset + VideoRegionSize(width, height)
}
