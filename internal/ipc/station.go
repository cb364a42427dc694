package ipc

// DefaultStationPort is StationLink's default TCP listen port (spec §6).
const DefaultStationPort = 9090

// CommandPacketSize and TelemetryPacketSize are the fixed wire sizes of the
// StationLink frames, per spec §6.
const (
	CommandPacketSize   = 12
	TelemetryPacketSize = 20
)

// CommandPacket is the C→S frame: operator pan/tilt/arm/fire.
type CommandPacket struct {
	PanVelocity  float32
	TiltVelocity float32
	ArmSystem    uint8
	FireTrigger  uint8
	Pad          [2]byte
}

// TelemetryPacket is the S→C frame broadcast by StationLink, and also the
// shape of what CloudLink uploads (spec §6).
type TelemetryPacket struct {
	Timestamp   float64
	Pan         float32
	Tilt        float32
	TargetCount int32
}
