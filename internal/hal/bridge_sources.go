package hal

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/aryorithm/aegis-sky/internal/bridge"
	"github.com/aryorithm/aegis-sky/internal/types"
)

// BridgeConsumer owns the single Bridge reader handle and fans out decoded
// radar scans and image frames to its two sources, per spec §9's design
// note: "Prefer exclusive ownership by a BridgeConsumer... This removes the
// need for shared-ownership semantics on the bridge."
type BridgeConsumer struct {
	reader        *bridge.Reader
	width, height int

	mu        sync.Mutex
	lastCloud types.PointCloud
	lastImage types.ImageFrame
	lastErr   error
}

// NewBridgeConsumer attaches a reader at path and returns the shared
// consumer. Attach failures are returned to the caller; cmd/aegis-core's
// connectBridge retries ErrFailedOpen at 1 Hz.
func NewBridgeConsumer(path string, width, height int) (*BridgeConsumer, error) {
	r := bridge.NewReader(path, width, height)
	if err := r.Attach(); err != nil {
		return nil, err
	}
	return &BridgeConsumer{reader: r, width: width, height: height}, nil
}

// Close releases the underlying region.
func (c *BridgeConsumer) Close() error { return c.reader.Close() }

// SendCommand forwards an actuator command to the Bridge's reverse
// command channel (spec §4.A).
func (c *BridgeConsumer) SendCommand(cmd types.ControlCommand) error {
	return c.reader.SendCommand(cmd)
}

// Poll drains the Bridge once and caches the decoded scan/frame so both the
// ImageSource and RadarSource views observe the same tick's data.
func (c *BridgeConsumer) Poll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.reader.Poll(); !ok {
		return
	}

	simTime, points, video, err := c.reader.Read()
	if err != nil {
		c.lastErr = err
		return
	}

	c.lastCloud = types.PointCloud{Timestamp: simTime, Points: points}
	c.lastImage = types.ImageFrame{
		Timestamp: simTime,
		Width:     c.width,
		Height:    c.height,
		Stride:    c.width * 3,
		Data:      video,
		TraceID:   uuid.New(),
	}
	c.lastErr = nil
}

// BridgeRadarSource is the RadarSource view over a shared BridgeConsumer.
type BridgeRadarSource struct{ consumer *BridgeConsumer }

// NewBridgeRadarSource wraps consumer as a RadarSource.
func NewBridgeRadarSource(consumer *BridgeConsumer) *BridgeRadarSource {
	return &BridgeRadarSource{consumer: consumer}
}

// GetScan polls the bridge and returns the most recently decoded cloud.
func (s *BridgeRadarSource) GetScan(ctx context.Context) (types.PointCloud, error) {
	s.consumer.Poll()
	s.consumer.mu.Lock()
	defer s.consumer.mu.Unlock()
	if s.consumer.lastErr != nil {
		slog.Debug("radar source: no new bridge data", "component", "hal", "error", s.consumer.lastErr)
	}
	return s.consumer.lastCloud, nil
}

// BridgeImageSource is the ImageSource view over a shared BridgeConsumer.
type BridgeImageSource struct{ consumer *BridgeConsumer }

// NewBridgeImageSource wraps consumer as an ImageSource.
func NewBridgeImageSource(consumer *BridgeConsumer) *BridgeImageSource {
	return &BridgeImageSource{consumer: consumer}
}

// GetFrame returns the most recently decoded frame. Unlike live hardware,
// simulated mode trusts the bridge's frame even if it has not advanced
// (spec §4.F step 1): an unchanged frame is still "valid", just stale.
func (s *BridgeImageSource) GetFrame(ctx context.Context) types.ImageFrame {
	s.consumer.mu.Lock()
	defer s.consumer.mu.Unlock()
	return s.consumer.lastImage
}
