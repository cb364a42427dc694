package bridge

import (
	"fmt"
	"log/slog"

	"github.com/aryorithm/aegis-sky/internal/aerr"
	"github.com/aryorithm/aegis-sky/internal/ipc"
	"github.com/aryorithm/aegis-sky/internal/types"
)

// Reader is the consumer side of the Bridge: the Core. Attach is idempotent
// (spec §8 law): calling Attach again after success is a no-op returning
// nil.
type Reader struct {
	path   string
	width  int
	height int
	region *Region

	lastSeen     uint64
	regressions  int // consecutive frame_id regressions observed
	attached     bool
}

// NewReader constructs an unattached Reader for the given region path.
func NewReader(path string, width, height int) *Reader {
	return &Reader{path: path, width: width, height: height}
}

// Attach maps the region and verifies its magic. Idempotent once attached.
func (r *Reader) Attach() error {
	if r.attached {
		return nil
	}
	region, err := Open(r.path, r.width, r.height)
	if err != nil {
		return err
	}
	r.region = region
	r.attached = true
	r.lastSeen = 0
	r.regressions = 0
	return nil
}

// Close unmaps the region.
func (r *Reader) Close() error {
	if !r.attached {
		return nil
	}
	r.attached = false
	return r.region.Close()
}

// Poll is non-blocking: it returns (frameID, true) iff state_flag==ready and
// frame_id > last_seen observed by this reader (spec §4.A).
func (r *Reader) Poll() (uint64, bool) {
	if !r.attached {
		return 0, false
	}
	if loadStateFlag(r.region.data) != ipc.StateReady {
		return 0, false
	}
	id := loadFrameID(r.region.data)
	if id <= r.lastSeen {
		return 0, false
	}
	return id, true
}

// Read copies the radar array (exact num_radar_points entries), returns the
// video section as a view over the mapped bytes (not a copy), and records
// last_seen=frame_id. It re-attaches the region
// automatically once a frame_id regression has been observed twice in a
// row, per spec §4.A's failure semantics.
func (r *Reader) Read() (simTime float64, points []types.RadarPoint, video []byte, err error) {
	if !r.attached {
		return 0, nil, nil, aerr.ErrBridgeUnavailable
	}

	id := loadFrameID(r.region.data)
	if id <= r.lastSeen && r.lastSeen != 0 {
		r.regressions++
		if r.regressions >= 2 {
			slog.Warn("bridge frame_id regressed twice consecutively, re-attaching",
				"component", "bridge", "last_seen", r.lastSeen, "observed", id)
			if cerr := r.Close(); cerr != nil {
				return 0, nil, nil, fmt.Errorf("%w: re-attach close: %v", aerr.ErrBridgeProtocol, cerr)
			}
			if aerr2 := r.Attach(); aerr2 != nil {
				return 0, nil, nil, fmt.Errorf("%w: re-attach: %v", aerr.ErrBridgeProtocol, aerr2)
			}
		}
		return 0, nil, nil, aerr.ErrNoData
	}
	r.regressions = 0

	n := int(loadNumRadarPoints(r.region.data))
	if n > ipc.MaxRadarPoints {
		n = ipc.MaxRadarPoints
	}

	out := make([]types.RadarPoint, n)
	for i := 0; i < n; i++ {
		var buf [ipc.RadarPointSize]byte
		copy(buf[:], r.region.radarSlot(i))
		p := ipc.DecodeSimRadarPoint(buf)
		out[i] = types.RadarPoint{X: p.X, Y: p.Y, Z: p.Z, Velocity: p.Velocity, SNRdB: p.SNRdB}
	}

	simTime = loadSimTime(r.region.data)
	r.lastSeen = id

	return simTime, out, r.region.videoBuf(), nil
}

// SendCommand writes the 32-byte command struct atomically with respect to
// the peer's reader: the whole struct is encoded off-region first and then
// copied in a single operation (spec §4.A).
func (r *Reader) SendCommand(cmd types.ControlCommand) error {
	if !r.attached {
		return aerr.ErrBridgeUnavailable
	}
	fire := uint32(0)
	if cmd.FireTrigger {
		fire = 1
	}
	buf := ipc.EncodeControlCommand(ipc.ControlCommand{
		TimestampMs: cmd.TimestampMs,
		PanVel:      cmd.PanVel,
		TiltVel:     cmd.TiltVel,
		FireTrigger: fire,
	})
	copy(r.region.commandBuf(), buf[:])
	return nil
}
