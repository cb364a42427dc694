package guidance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aryorithm/aegis-sky/internal/cloud"
	"github.com/aryorithm/aegis-sky/internal/detector"
	"github.com/aryorithm/aegis-sky/internal/fusion"
	"github.com/aryorithm/aegis-sky/internal/hal"
	"github.com/aryorithm/aegis-sky/internal/station"
	"github.com/aryorithm/aegis-sky/internal/tracking"
	"github.com/aryorithm/aegis-sky/internal/types"
)

// fakeBridge records every actuator command sent to it.
type fakeBridge struct {
	mu   sync.Mutex
	sent []types.ControlCommand
}

func (f *fakeBridge) SendCommand(cmd types.ControlCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, cmd)
	return nil
}
func (f *fakeBridge) Close() error { return nil }

func (f *fakeBridge) last() (types.ControlCommand, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return types.ControlCommand{}, false
	}
	return f.sent[len(f.sent)-1], true
}

// fakeInferenceEngine returns a fixed set of detections on every call.
type fakeInferenceEngine struct {
	dets []types.Detection
}

func (e *fakeInferenceEngine) Infer(input []float32, width, height int) ([]types.Detection, error) {
	return e.dets, nil
}

const testW, testH = 8, 8

func newTestLoop(t *testing.T, bridge BridgeLink, radar hal.RadarSource, image hal.ImageSource, dets []types.Detection, cfg Config) *Loop {
	t.Helper()
	cal := types.PerfectAlignment(testW, testH, 4.0)
	stream := fusion.NewStream()
	t.Cleanup(stream.Close)
	fe := fusion.New(cal, fusion.DefaultCapacity, stream)

	det, err := detector.New(&fakeInferenceEngine{dets: dets}, testW, testH, stream)
	if err != nil {
		t.Fatalf("detector.New: %v", err)
	}

	tracker := tracking.NewManager()

	st, err := station.New(0, nil)
	if err != nil {
		t.Fatalf("station.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return New(cfg, bridge, radar, image, fe, det, tracker, st, nil, cal, nil)
}

func TestTickSkipsOnInvalidLiveImage(t *testing.T) {
	bridge := &fakeBridge{}
	radar := hal.NewSyntheticRadarSource([]types.PointCloud{{Timestamp: 1}})
	image := hal.NewFileImageSource([]types.ImageFrame{{}}) // zero value: Data == nil, invalid

	cfg := Config{TargetHz: 60, OperatorHoldMs: 500, DepthFallbackM: 50, Live: true}
	l := newTestLoop(t, bridge, radar, image, nil, cfg)

	l.tick(context.Background())

	if _, ok := bridge.last(); ok {
		t.Fatal("tick sent a command despite invalid image from a live source")
	}
}

func TestTickProcessesInvalidImageWhenNotLive(t *testing.T) {
	bridge := &fakeBridge{}
	radar := hal.NewSyntheticRadarSource([]types.PointCloud{{Timestamp: 1}})
	image := hal.NewFileImageSource([]types.ImageFrame{{}})

	cfg := Config{TargetHz: 60, OperatorHoldMs: 500, DepthFallbackM: 50, Live: false}
	l := newTestLoop(t, bridge, radar, image, nil, cfg)

	l.tick(context.Background())

	if _, ok := bridge.last(); !ok {
		t.Fatal("tick did not send a command for a non-live invalid frame, want it processed anyway")
	}
}

func TestTickFireGatingRequiresArmAndTrigger(t *testing.T) {
	bridge := &fakeBridge{}
	radar := hal.NewSyntheticRadarSource([]types.PointCloud{{Timestamp: 1}})
	frame := types.ImageFrame{Width: testW, Height: testH, Data: make([]byte, testW*testH*3)}
	image := hal.NewFileImageSource([]types.ImageFrame{frame, frame, frame})

	cfg := Config{TargetHz: 60, OperatorHoldMs: 500, DepthFallbackM: 50}
	l := newTestLoop(t, bridge, radar, image, nil, cfg)

	// Neither armed nor fired: no fire.
	l.tick(context.Background())
	cmd, ok := bridge.last()
	if !ok || cmd.FireTrigger {
		t.Fatalf("expected no fire with no operator command, got %+v (ok=%v)", cmd, ok)
	}
}

func TestCloudDecimationOnlyEnqueuesOnDecimatedTicks(t *testing.T) {
	bridge := &fakeBridge{}
	frame := types.ImageFrame{Width: testW, Height: testH, Data: make([]byte, testW*testH*3)}
	scan := types.PointCloud{Timestamp: 1}

	cal := types.PerfectAlignment(testW, testH, 4.0)
	stream := fusion.NewStream()
	defer stream.Close()
	fe := fusion.New(cal, fusion.DefaultCapacity, stream)
	det, err := detector.New(&fakeInferenceEngine{}, testW, testH, stream)
	if err != nil {
		t.Fatalf("detector.New: %v", err)
	}
	tracker := tracking.NewManager()
	st, err := station.New(0, nil)
	if err != nil {
		t.Fatalf("station.New: %v", err)
	}
	defer st.Close()

	cl := cloud.New("", 1, 0, nil) // capacity 1: a second undrained enqueue drops the first

	cfg := Config{TargetHz: 60, OperatorHoldMs: 500, DepthFallbackM: 50, CloudDecimation: 3, InstanceID: "pod-test"}
	l := New(cfg, bridge, hal.NewSyntheticRadarSource([]types.PointCloud{scan}), hal.NewFileImageSource([]types.ImageFrame{frame}), fe, det, tracker, st, cl, cal, nil)

	// Ticks 1-2: below the first decimation boundary, nothing enqueued yet.
	l.tick(context.Background())
	l.tick(context.Background())
	if d := cl.Dropped(); d != 0 {
		t.Fatalf("Dropped() = %d after 2 ticks with decimation 3, want 0 (no boundary crossed yet)", d)
	}

	// Tick 3, 6, 9: three decimation boundaries, queue never drained, capacity
	// 1 -> first two enqueues get dropped, the third survives.
	for i := 0; i < 7; i++ {
		l.tick(context.Background())
	}
	if d := cl.Dropped(); d != 2 {
		t.Fatalf("Dropped() = %d after 9 ticks with decimation 3 and capacity 1, want 2", d)
	}
}

func TestRunPacesWithoutCatchUp(t *testing.T) {
	bridge := &fakeBridge{}
	frame := types.ImageFrame{Width: testW, Height: testH, Data: make([]byte, testW*testH*3)}
	scans := make([]types.PointCloud, 0)
	frames := make([]types.ImageFrame, 0)
	for i := 0; i < 200; i++ {
		scans = append(scans, types.PointCloud{Timestamp: float64(i)})
		frames = append(frames, frame)
	}
	radar := hal.NewSyntheticRadarSource(scans)
	image := hal.NewFileImageSource(frames)

	cfg := Config{TargetHz: 1000, OperatorHoldMs: 500, DepthFallbackM: 50}
	l := newTestLoop(t, bridge, radar, image, nil, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	l.Run(ctx)

	if l.State() != StateShutdown {
		t.Fatalf("State() = %v after Run returns, want StateShutdown", l.State())
	}
}
