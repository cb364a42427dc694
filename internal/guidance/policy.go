package guidance

import (
	"math"
	"time"

	"github.com/aryorithm/aegis-sky/internal/cloud"
	"github.com/aryorithm/aegis-sky/internal/ipc"
	"github.com/aryorithm/aegis-sky/internal/types"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// liftDetections converts each threat-class detection into a 3-D
// measurement by unprojecting the depth map sample at its bounding-box
// centre through the camera intrinsics, falling back to a configured
// range when the sample is unobserved (spec §4.F step 3, Open Question
// Decision #1).
func liftDetections(dets []types.Detection, fused types.FusedFrame, cal types.CalibrationData, fallbackM float32) []types.Measurement {
	out := make([]types.Measurement, 0, len(dets))
	for _, d := range dets {
		if d.ClassID != types.ThreatClassID {
			continue
		}

		cx := int((d.XMin + d.XMax) / 2)
		cy := int((d.YMin + d.YMax) / 2)
		if cx < 0 || cx >= fused.Width || cy < 0 || cy >= fused.Height {
			continue
		}

		depth := fused.Depth[cy*fused.Width+cx]
		if math.IsInf(float64(depth), 1) {
			depth = fallbackM
		}

		x, y, z := unproject(cal, float32(cx), float32(cy), depth)
		out = append(out, types.Measurement{
			X:          x,
			Y:          y,
			Z:          z,
			SNRdB:      d.Confidence * 100,
			Confidence: d.Confidence,
		})
	}
	return out
}

// unproject maps a pixel plus a depth sample back into camera-frame
// coordinates through the pinhole intrinsics in cal.K (spec §4.C's
// projection run in reverse).
func unproject(cal types.CalibrationData, px, py, depth float32) (x, y, z float32) {
	fx, fy := cal.K[0], cal.K[4]
	cx, cy := cal.K[2], cal.K[5]
	z = depth
	x = (px - cx) * z / fx
	y = (py - cy) * z / fy
	return x, y, z
}

// resolveAim implements spec §4.F step 4's cascade: a sufficiently recent
// non-zero operator command wins; otherwise auto-aim at the primary track;
// otherwise zero.
func (l *Loop) resolveAim(cmd ipc.CommandPacket, receivedAt time.Time, primary types.Track, hasPrimary bool) (panVel, tiltVel float32) {
	hold := time.Duration(l.cfg.OperatorHoldMs) * time.Millisecond
	operatorActive := !receivedAt.IsZero() && time.Since(receivedAt) <= hold && (cmd.PanVelocity != 0 || cmd.TiltVelocity != 0)

	if operatorActive {
		return cmd.PanVelocity, cmd.TiltVelocity
	}

	if hasPrimary {
		return autoAim(primary, l.cfg.AimGainAzimuth, l.cfg.AimGainElevation)
	}

	return 0, 0
}

// autoAim computes a proportional pan/tilt command that drives the
// azimuth/elevation of a camera-frame track position toward zero.
func autoAim(t types.Track, gainAz, gainEl float64) (panVel, tiltVel float32) {
	x, y, z := t.Position()
	if z <= 0 {
		return 0, 0
	}
	azimuth := math.Atan2(float64(x), float64(z))
	elevation := math.Atan2(float64(y), float64(z))
	return float32(-gainAz * azimuth), float32(-gainEl * elevation)
}

func ipcTelemetry(timestamp float64, pan, tilt float32, targetCount int) ipc.TelemetryPacket {
	return ipc.TelemetryPacket{
		Timestamp:   timestamp,
		Pan:         pan,
		Tilt:        tilt,
		TargetCount: int32(targetCount),
	}
}

func cloudTelemetry(instanceID string, pan, tilt float32, targetCount int, primaryTrackID uint32) cloud.TelemetryMessage {
	return cloud.TelemetryMessage{
		InstanceID:     instanceID,
		Timestamp:      timestamppb.Now(),
		Pan:            pan,
		Tilt:           tilt,
		TargetCount:    int32(targetCount),
		PrimaryTrackID: primaryTrackID,
	}
}
