// Package types holds the data model shared across Aegis Core's subsystems:
// sensor frames, the fused tensor, detections, tracks, and control commands.
// It carries no logic of its own beyond small, obviously-correct helpers.
package types

import "github.com/google/uuid"

// RadarPoint is one radar return in sensor frame (Z forward, Y up, X right).
type RadarPoint struct {
	X, Y, Z  float32
	Velocity float32 // radial m/s, positive = receding
	SNRdB    float32
	TrackID  uint32 // 0 = unknown
}

// PointCloud is an ordered (insertion-order, not semantically ordered) batch
// of radar returns from a single scan.
type PointCloud struct {
	Timestamp float64 // seconds
	Points    []RadarPoint
}

// ImageFrame is one camera frame. Data == nil means an invalid frame; the
// guidance loop skips it only when the source is live hardware. The ImageSource retains ownership of
// Data until the next GetFrame call; consumers must not retain a reference
// past that point.
type ImageFrame struct {
	Timestamp float64
	Width     int
	Height    int
	Stride    int
	Data      []byte // nil means invalid
	TraceID   uuid.UUID
}

// Valid reports whether the frame carries usable pixel data.
func (f ImageFrame) Valid() bool { return f.Data != nil }

// CalibrationData is the camera/radar extrinsic+intrinsic pair, immutable
// for a session.
type CalibrationData struct {
	K             [9]float32 // 3x3 intrinsic, row-major
	R             [9]float32 // 3x3 extrinsic rotation, row-major
	T             [3]float32 // extrinsic translation
	Width, Height int
}

// PerfectAlignment builds a CalibrationData with an identity extrinsic and a
// simple pinhole intrinsic centered on the given resolution. It exists for
// tests and for the Sim's default single-camera rig.
func PerfectAlignment(width, height int, focal float32) CalibrationData {
	return CalibrationData{
		K: [9]float32{
			focal, 0, float32(width) / 2,
			0, focal, float32(height) / 2,
			0, 0, 1,
		},
		R:      [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1},
		T:      [3]float32{0, 0, 0},
		Width:  width,
		Height: height,
	}
}

// FusedFrame is the aligned depth/velocity/rgb bundle produced by
// FusionEngine.Process. It is valid until the next Process call on the same
// engine; callers must not retain Depth/Velocity slices past that point.
type FusedFrame struct {
	Width, Height int
	RGB           []byte    // W*H*3, read-only, owned by the ImageSource
	Depth         []float32 // W*H, meters, +Inf where unobserved
	Velocity      []float32 // W*H, radial m/s
}

// Detection is one decoded detector output.
type Detection struct {
	XMin, YMin, XMax, YMax float32
	Confidence             float32
	ClassID                int32
	TrackID                uint32 // 0 if unassigned
}

// ThreatClassID is the detector class id treated as a fire-control target.
const ThreatClassID int32 = 0

// KalmanState is a constant-velocity filter over position, with diagonal
// process/measurement noise and no cross-axis covariance terms (spec §4.E,
// §9's documented simplification).
type KalmanState struct {
	X          [6]float32 // px,py,pz,vx,vy,vz
	P          [6]float32 // diagonal covariance, position then velocity
	LastTime   float64
	ProcessQ   float32
	MeasureR   float32
}

// Track is one maintained target.
type Track struct {
	ID            uint32
	Filter        KalmanState
	MissedFrames  int
	Hits          int
	Confirmed     bool
	Confidence    float32
}

// Position returns the filter's current position estimate.
func (t Track) Position() (x, y, z float32) {
	return t.Filter.X[0], t.Filter.X[1], t.Filter.X[2]
}

// Velocity returns the filter's current velocity estimate.
func (t Track) Velocity() (vx, vy, vz float32) {
	return t.Filter.X[3], t.Filter.X[4], t.Filter.X[5]
}

// Measurement is one 3-D observation fed into TrackManager.ProcessScan. The
// guidance loop builds them only from detections lifted by sampling the
// depth map at their bounding-box centre (spec §4.E, §4.F step 3); radar
// points are not fed to the tracker.
type Measurement struct {
	X, Y, Z    float32
	SNRdB      float32
	Confidence float32
}

// ControlCommand is the actuator command emitted once per guidance tick.
type ControlCommand struct {
	TimestampMs uint64
	PanVel      float32
	TiltVel     float32
	FireTrigger bool
}
