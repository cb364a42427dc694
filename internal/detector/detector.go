// Package detector adapts an opaque pre-compiled inference plan into the
// 5-channel (R,G,B,depth,velocity) detector described in spec §4.D: it owns
// the input/output buffers, runs preprocessing, invokes the engine, and
// filters/sorts the decoded detections. It never throws from the hot path —
// load failures surface only at construction.
package detector

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/aryorithm/aegis-sky/internal/aerr"
	"github.com/aryorithm/aegis-sky/internal/fusion"
	"github.com/aryorithm/aegis-sky/internal/types"
)

// MaxDetections bounds the engine's top-K output (spec §4.D).
const MaxDetections = 100

// ConfidenceThreshold is the minimum confidence a detection must clear to
// survive into the tracker (spec §4.D, §8).
const ConfidenceThreshold = 0.5

// Engine is the black-box inference collaborator named in spec §1: it
// accepts a channel-major 5*W*H float32 tensor and returns up to
// MaxDetections raw (unfiltered, unsorted) detections.
type Engine interface {
	Infer(input []float32, width, height int) ([]types.Detection, error)
}

// Detector owns the buffers for one (width, height) and the Stream it
// shares with the upstream FusionEngine, so the single device
// synchronization per tick (Sync) observes both the projection and the
// preprocessing kernel's writes.
type Detector struct {
	engine Engine
	width  int
	height int
	stream *fusion.Stream

	mu     sync.Mutex
	input  []float32 // 5*W*H, channel-major: R,G,B,depth,velocity
	output []types.Detection
	err    error
}

// New constructs a Detector. A nil engine is rejected here with
// ErrDetectorLoad, so load failures surface at construction; New does not
// check width and height against the loaded plan.
func New(engine Engine, width, height int, stream *fusion.Stream) (*Detector, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: nil engine", aerr.ErrDetectorLoad)
	}
	return &Detector{
		engine: engine,
		width:  width,
		height: height,
		stream: stream,
		input:  make([]float32, 5*width*height),
	}, nil
}

// Detect runs one detection tick: preprocess, invoke, decode, filter,
// sort. It submits its kernel to the shared Stream (after FusionEngine's
// projection kernel, by submission order) and issues the tick's single
// stream synchronization before reading results back (spec §4.D, §5).
func (d *Detector) Detect(fused types.FusedFrame) ([]types.Detection, error) {
	if fused.Width != d.width || fused.Height != d.height {
		return nil, fmt.Errorf("%w: fused frame %dx%d does not match detector %dx%d",
			aerr.ErrKernelLaunch, fused.Width, fused.Height, d.width, d.height)
	}

	d.stream.Submit(func() {
		d.preprocessKernel(fused)
		dets, err := d.engine.Infer(d.input, d.width, d.height)
		d.mu.Lock()
		d.output, d.err = dets, err
		d.mu.Unlock()
	})
	d.stream.Sync()

	d.mu.Lock()
	dets, err := d.output, d.err
	d.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", aerr.ErrKernelLaunch, err)
	}

	return filterAndSort(dets), nil
}

// preprocessKernel normalizes RGB to [0,1] and stacks (R,G,B,depth,vel)
// into channel-major form, parallelized across row bands the way the
// Tutortoise reference parallelizes postprocessing across chunks. Pixels
// with no RGB data (a nil or short frame) get zero colour channels.
func (d *Detector) preprocessKernel(fused types.FusedFrame) {
	w, h := d.width, d.height
	plane := w * h

	numWorkers := runtime.NumCPU()
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > h {
		numWorkers = h
	}
	rowsPer := h / numWorkers

	var wg sync.WaitGroup
	for wrk := 0; wrk < numWorkers; wrk++ {
		start := wrk * rowsPer
		end := start + rowsPer
		if wrk == numWorkers-1 {
			end = h
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for y := start; y < end; y++ {
				for x := 0; x < w; x++ {
					idx := y*w + x
					rgbOff := idx * 3
					var r, g, b byte
					if rgbOff+2 < len(fused.RGB) {
						r, g, b = fused.RGB[rgbOff], fused.RGB[rgbOff+1], fused.RGB[rgbOff+2]
					}
					d.input[idx] = float32(r) / 255.0
					d.input[plane+idx] = float32(g) / 255.0
					d.input[2*plane+idx] = float32(b) / 255.0
					d.input[3*plane+idx] = normalizeDepth(fused.Depth[idx])
					d.input[4*plane+idx] = normalizeVelocity(fused.Velocity[idx])
				}
			}
		}(start, end)
	}
	wg.Wait()
}

// maxDepthNormM is the depth value (meters) that maps to 1.0 in the
// normalized depth channel; +Inf (no radar return) maps to 0.
const maxDepthNormM = 200.0

// maxVelocityNormMS is the |velocity| (m/s) that maps to +-1.0 in the
// normalized velocity channel.
const maxVelocityNormMS = 60.0

func normalizeDepth(d float32) float32 {
	if math.IsInf(float64(d), 1) {
		return 0
	}
	v := d / maxDepthNormM
	if v > 1 {
		v = 1
	}
	return v
}

func normalizeVelocity(v float32) float32 {
	n := v / maxVelocityNormMS
	if n > 1 {
		n = 1
	}
	if n < -1 {
		n = -1
	}
	return n
}

// filterAndSort keeps confidence >= ConfidenceThreshold and orders the
// survivors by descending confidence (spec §4.D, §8).
func filterAndSort(dets []types.Detection) []types.Detection {
	out := make([]types.Detection, 0, len(dets))
	for _, d := range dets {
		if d.Confidence >= ConfidenceThreshold {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
