// Package fusion projects a 3-D radar point cloud into camera pixel space
// to form dense depth and radial-velocity maps aligned with the RGB frame
// (spec §4.C).
package fusion

import (
	"log/slog"
	"math"

	"github.com/aryorithm/aegis-sky/internal/types"
)

// DefaultCapacity is the maximum number of radar points one Process call
// projects; points beyond it are dropped with a warning.
const DefaultCapacity = 2048

// DefaultNearPlane rejects points at or behind the camera's near plane.
const DefaultNearPlane = 0.05 // meters

// Engine holds the buffers allocated once at construction and the Stream
// every kernel is serialized on.
type Engine struct {
	cal      types.CalibrationData
	capacity int
	nearZ    float32

	depth    []float32
	velocity []float32

	stream *Stream
}

// New allocates an Engine's depth/velocity maps once for the given
// calibration. Radar points are not staged in a preallocated buffer:
// Process copies each cloud into a newly allocated slice.
func New(cal types.CalibrationData, capacity int, stream *Stream) *Engine {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	size := cal.Width * cal.Height
	return &Engine{
		cal:      cal,
		capacity: capacity,
		nearZ:    DefaultNearPlane,
		depth:    make([]float32, size),
		velocity: make([]float32, size),
		stream:   stream,
	}
}

// Process runs one fusion tick: it enqueues the projection kernel on the
// engine's Stream and returns a FusedFrame immediately, without
// synchronizing — ordering to the detector is via the shared Stream (spec
// §4.C step 5). Callers must consume the returned FusedFrame before the
// next Process call on the same Engine; the buffers are reused in place.
func (e *Engine) Process(img types.ImageFrame, cloud types.PointCloud) types.FusedFrame {
	points := cloud.Points
	if len(points) > e.capacity {
		slog.Warn("radar point cloud exceeds fusion capacity, dropping tail",
			"component", "fusion", "count", len(points), "capacity", e.capacity)
		points = points[:e.capacity]
	}

	// Snapshot the slice header so a caller mutating cloud.Points after
	// Process returns cannot race with the kernel goroutine.
	snapshot := make([]types.RadarPoint, len(points))
	copy(snapshot, points)

	e.stream.Submit(func() {
		e.projectionKernel(snapshot)
	})

	return types.FusedFrame{
		Width:    e.cal.Width,
		Height:   e.cal.Height,
		RGB:      img.Data,
		Depth:    e.depth,
		Velocity: e.velocity,
	}
}

// projectionKernel implements spec §4.C's per-point projection, run on the
// Stream's single worker goroutine so it never races the next Process
// call's snapshot or a concurrent Sync from the Detector.
func (e *Engine) projectionKernel(points []types.RadarPoint) {
	w, h := e.cal.Width, e.cal.Height
	inf := float32(math.Inf(1))
	for i := range e.depth {
		e.depth[i] = inf
		e.velocity[i] = 0
	}

	K, R, T := e.cal.K, e.cal.R, e.cal.T

	for _, p := range points {
		camX := R[0]*p.X + R[1]*p.Y + R[2]*p.Z + T[0]
		camY := R[3]*p.X + R[4]*p.Y + R[5]*p.Z + T[1]
		camZ := R[6]*p.X + R[7]*p.Y + R[8]*p.Z + T[2]
		if camZ <= e.nearZ {
			continue
		}

		u := (K[0]*camX + K[1]*camY + K[2]*camZ) / camZ
		v := (K[3]*camX + K[4]*camY + K[5]*camZ) / camZ
		ui, vi := int(u), int(v)
		if ui < 0 || ui >= w || vi < 0 || vi >= h {
			continue
		}

		idx := vi*w + ui
		// <= rather than < makes an exact depth tie favor the later
		// writer, per spec §4.C step 4.
		if camZ <= e.depth[idx] {
			e.depth[idx] = camZ
			e.velocity[idx] = p.Velocity
		}
	}
}
