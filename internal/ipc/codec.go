package ipc

import (
	"encoding/binary"
	"math"
)

// EncodeCommandPacket writes cp into a fixed CommandPacketSize buffer.
func EncodeCommandPacket(cp CommandPacket) [CommandPacketSize]byte {
	var buf [CommandPacketSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(cp.PanVelocity))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(cp.TiltVelocity))
	buf[8] = cp.ArmSystem
	buf[9] = cp.FireTrigger
	return buf
}

// DecodeCommandPacket parses a fixed CommandPacketSize buffer.
func DecodeCommandPacket(buf [CommandPacketSize]byte) CommandPacket {
	return CommandPacket{
		PanVelocity:  math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])),
		TiltVelocity: math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])),
		ArmSystem:    buf[8],
		FireTrigger:  buf[9],
	}
}

// EncodeTelemetryPacket writes tp into a fixed TelemetryPacketSize buffer.
func EncodeTelemetryPacket(tp TelemetryPacket) [TelemetryPacketSize]byte {
	var buf [TelemetryPacketSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(tp.Timestamp))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(tp.Pan))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(tp.Tilt))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(tp.TargetCount))
	return buf
}

// DecodeTelemetryPacket parses a fixed TelemetryPacketSize buffer.
func DecodeTelemetryPacket(buf [TelemetryPacketSize]byte) TelemetryPacket {
	return TelemetryPacket{
		Timestamp:   math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8])),
		Pan:         math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])),
		Tilt:        math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])),
		TargetCount: int32(binary.LittleEndian.Uint32(buf[16:20])),
	}
}

// EncodeControlCommand writes cc into a fixed CommandSize buffer for the
// Bridge's reverse command channel.
func EncodeControlCommand(cc ControlCommand) [CommandSize]byte {
	var buf [CommandSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], cc.TimestampMs)
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(cc.PanVel))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(cc.TiltVel))
	binary.LittleEndian.PutUint32(buf[16:20], cc.FireTrigger)
	return buf
}

// DecodeControlCommand parses a fixed CommandSize buffer.
func DecodeControlCommand(buf [CommandSize]byte) ControlCommand {
	return ControlCommand{
		TimestampMs: binary.LittleEndian.Uint64(buf[0:8]),
		PanVel:      math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])),
		TiltVel:     math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])),
		FireTrigger: binary.LittleEndian.Uint32(buf[16:20]),
	}
}

// EncodeSimRadarPoint writes p into a fixed RadarPointSize buffer.
func EncodeSimRadarPoint(p SimRadarPoint) [RadarPointSize]byte {
	var buf [RadarPointSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(p.X))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(p.Y))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(p.Z))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(p.Velocity))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(p.SNRdB))
	return buf
}

// DecodeSimRadarPoint parses a fixed RadarPointSize buffer.
func DecodeSimRadarPoint(buf [RadarPointSize]byte) SimRadarPoint {
	return SimRadarPoint{
		X:        math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])),
		Y:        math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])),
		Z:        math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])),
		Velocity: math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])),
		SNRdB:    math.Float32frombits(binary.LittleEndian.Uint32(buf[16:20])),
	}
}
