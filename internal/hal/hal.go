package hal

import (
	"context"
	"time"

	"github.com/aryorithm/aegis-sky/internal/types"
)

// ImageSource returns timestamped camera frames. GetFrame may block up to a
// short timeout waiting on the producer; on timeout it returns an invalid
// frame (types.ImageFrame.Valid() == false), never an error, per spec §5.
type ImageSource interface {
	GetFrame(ctx context.Context) types.ImageFrame
}

// RadarSource returns timestamped radar scans, with the same timeout
// contract as ImageSource.
type RadarSource interface {
	GetScan(ctx context.Context) (types.PointCloud, error)
}

// SensorTimeout is the maximum time GetFrame/GetScan may block before
// returning an invalid/empty result (spec §5).
const SensorTimeout = 100 * time.Millisecond
