package detector

import (
	"fmt"
	"runtime"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/aryorithm/aegis-sky/internal/aerr"
	"github.com/aryorithm/aegis-sky/internal/types"
)

// OutputStride is the number of float32 values the plan emits per
// candidate: x_min,y_min,x_max,y_max,confidence,class_id (spec §4.D).
const OutputStride = 6

// ONNXEngine wraps an onnxruntime_go session bound to a fixed 5*W*H input
// tensor and a MaxDetections*OutputStride output tensor, matching the
// ModelSession binding pattern used for ONNX inference in this pack.
type ONNXEngine struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	width   int
	height  int
}

// LoadONNXEngine loads the plan at path and binds its input/output
// tensors. Any failure here is a DetectorLoadFailure (spec §4.D, §7) and
// must only ever happen at construction — never mid-run.
func LoadONNXEngine(path string, width, height int) (*ONNXEngine, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: session options: %v", aerr.ErrDetectorLoad, err)
	}
	defer options.Destroy()

	options.SetIntraOpNumThreads(runtime.NumCPU())
	options.SetInterOpNumThreads(runtime.NumCPU())

	inputShape := ort.NewShape(1, 5, int64(height), int64(width))
	outputShape := ort.NewShape(1, MaxDetections, OutputStride)

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("%w: input tensor: %v", aerr.ErrDetectorLoad, err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("%w: output tensor: %v", aerr.ErrDetectorLoad, err)
	}

	session, err := ort.NewAdvancedSession(
		path,
		[]string{"fused_input"},
		[]string{"detections"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("%w: session: %v", aerr.ErrDetectorLoad, err)
	}

	return &ONNXEngine{session: session, input: inputTensor, output: outputTensor, width: width, height: height}, nil
}

// Close releases the session and its tensors.
func (e *ONNXEngine) Close() {
	if e.session != nil {
		e.session.Destroy()
	}
	if e.input != nil {
		e.input.Destroy()
	}
	if e.output != nil {
		e.output.Destroy()
	}
}

// Infer copies input into the bound input tensor, runs the session, and
// decodes the output tensor into Detection values.
func (e *ONNXEngine) Infer(input []float32, width, height int) ([]types.Detection, error) {
	copy(e.input.GetData(), input)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("onnxruntime inference: %w", err)
	}

	raw := e.output.GetData()
	dets := make([]types.Detection, 0, MaxDetections)
	for i := 0; i < MaxDetections; i++ {
		off := i * OutputStride
		if off+OutputStride > len(raw) {
			break
		}
		dets = append(dets, types.Detection{
			XMin:       raw[off],
			YMin:       raw[off+1],
			XMax:       raw[off+2],
			YMax:       raw[off+3],
			Confidence: raw[off+4],
			ClassID:    int32(raw[off+5]),
		})
	}
	return dets, nil
}
