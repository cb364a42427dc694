package fusion

import (
	"math"
	"testing"

	"github.com/aryorithm/aegis-sky/internal/types"
)

func TestProjectSinglePoint(t *testing.T) {
	cal := types.PerfectAlignment(8, 8, 4.0)
	stream := NewStream()
	defer stream.Close()
	e := New(cal, DefaultCapacity, stream)

	cloud := types.PointCloud{
		Timestamp: 1,
		Points: []types.RadarPoint{
			{X: 0, Y: 0, Z: 2, Velocity: -5, SNRdB: 30},
		},
	}
	img := types.ImageFrame{Width: 8, Height: 8, Data: make([]byte, 8*8*3)}

	fused := e.Process(img, cloud)
	stream.Sync()

	cx := int(cal.K[2])
	cy := int(cal.K[5])
	idx := cy*8 + cx
	if fused.Depth[idx] != 2 {
		t.Errorf("depth at principal point = %v, want 2", fused.Depth[idx])
	}
	if fused.Velocity[idx] != -5 {
		t.Errorf("velocity at principal point = %v, want -5", fused.Velocity[idx])
	}

	for i, d := range fused.Depth {
		if i == idx {
			continue
		}
		if !math.IsInf(float64(d), 1) {
			t.Errorf("depth[%d] = %v, want +Inf", i, d)
		}
	}
}

func TestProjectionTieBreakFavorsLaterWriter(t *testing.T) {
	cal := types.PerfectAlignment(8, 8, 4.0)
	stream := NewStream()
	defer stream.Close()
	e := New(cal, DefaultCapacity, stream)

	cloud := types.PointCloud{
		Points: []types.RadarPoint{
			{X: 0, Y: 0, Z: 3, Velocity: 1},
			{X: 0, Y: 0, Z: 3, Velocity: 2},
		},
	}
	img := types.ImageFrame{Width: 8, Height: 8, Data: make([]byte, 8*8*3)}

	fused := e.Process(img, cloud)
	stream.Sync()

	idx := int(cal.K[5])*8 + int(cal.K[2])
	if fused.Velocity[idx] != 2 {
		t.Errorf("velocity = %v, want 2 (later writer wins the tie)", fused.Velocity[idx])
	}
}

func TestProjectionRejectsPointsBehindNearPlane(t *testing.T) {
	cal := types.PerfectAlignment(8, 8, 4.0)
	stream := NewStream()
	defer stream.Close()
	e := New(cal, DefaultCapacity, stream)

	cloud := types.PointCloud{
		Points: []types.RadarPoint{{X: 0, Y: 0, Z: 0, Velocity: 9}},
	}
	img := types.ImageFrame{Width: 8, Height: 8, Data: make([]byte, 8*8*3)}

	fused := e.Process(img, cloud)
	stream.Sync()

	for i, d := range fused.Depth {
		if !math.IsInf(float64(d), 1) {
			t.Fatalf("depth[%d] = %v, want +Inf (point behind near plane must be rejected)", i, d)
		}
	}
}

func TestOverflowDropsTailWithoutPanicking(t *testing.T) {
	cal := types.PerfectAlignment(8, 8, 4.0)
	stream := NewStream()
	defer stream.Close()
	e := New(cal, 2, stream)

	cloud := types.PointCloud{
		Points: []types.RadarPoint{
			{X: 0, Y: 0, Z: 2},
			{X: 0, Y: 0, Z: 2},
			{X: 0, Y: 0, Z: 2},
		},
	}
	img := types.ImageFrame{Width: 8, Height: 8, Data: make([]byte, 8*8*3)}

	e.Process(img, cloud)
	stream.Sync()
}
