package bridge

import (
	"github.com/aryorithm/aegis-sky/internal/ipc"
	"github.com/aryorithm/aegis-sky/internal/types"
)

// Writer is the producer side of the Bridge: the Sim stepper. Exactly one
// Writer exists per region.
type Writer struct {
	region *Region
}

// NewWriter creates a fresh region at path and returns its producer handle.
func NewWriter(path string, width, height int) (*Writer, error) {
	r, err := Create(path, width, height)
	if err != nil {
		return nil, err
	}
	return &Writer{region: r}, nil
}

// Close releases the region.
func (w *Writer) Close() error { return w.region.Close() }

// Publish copies radar points into the region, writes the header fields,
// then stores state_flag=ready with release semantics (spec §4.A). The
// tail of points beyond ipc.MaxRadarPoints is silently dropped by the
// caller's responsibility; Publish itself truncates defensively.
func (w *Writer) Publish(frameID uint64, simTime float64, points []types.RadarPoint) {
	n := len(points)
	if n > ipc.MaxRadarPoints {
		n = ipc.MaxRadarPoints
	}

	for i := 0; i < n; i++ {
		p := points[i]
		buf := ipc.EncodeSimRadarPoint(ipc.SimRadarPoint{
			X: p.X, Y: p.Y, Z: p.Z, Velocity: p.Velocity, SNRdB: p.SNRdB,
		})
		copy(w.region.radarSlot(i), buf[:])
	}

	storeNumRadarPoints(w.region.data, uint32(n))
	storeSimTime(w.region.data, simTime)
	storeFrameID(w.region.data, frameID)
	storeStateFlag(w.region.data, ipc.StateReady)
}

// PublishVideo writes the RGB8 frame into the trailing video section. It is
// the caller's responsibility to size rgb exactly width*height*3 and to
// call this before Publish so state_flag=ready covers the whole payload.
func (w *Writer) PublishVideo(rgb []byte) {
	copy(w.region.videoBuf(), rgb)
}

// LatestCommand reads the current ControlCommand without any handshake —
// the Sim polls this every tick; staleness is tolerated by design (spec
// §4.I: "Bridge input" is read once per physics tick).
func (w *Writer) LatestCommand() types.ControlCommand {
	var buf [ipc.CommandSize]byte
	copy(buf[:], w.region.commandBuf())
	cc := ipc.DecodeControlCommand(buf)
	return types.ControlCommand{
		TimestampMs: cc.TimestampMs,
		PanVel:      cc.PanVel,
		TiltVel:     cc.TiltVel,
		FireTrigger: cc.FireTrigger != 0,
	}
}
