package hal

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/aryorithm/aegis-sky/internal/types"
)

// FileImageSource replays a fixed set of ImageFrame values in order,
// repeating the last one once exhausted. It exists only for tests and for
// offline replay of a recorded run, matching the teacher's MockStream.
type FileImageSource struct {
	mu     sync.Mutex
	frames []types.ImageFrame
	idx    int
}

// NewFileImageSource returns a source that replays frames in order.
func NewFileImageSource(frames []types.ImageFrame) *FileImageSource {
	return &FileImageSource{frames: frames}
}

// GetFrame returns the next queued frame, or an invalid frame if none were
// configured.
func (s *FileImageSource) GetFrame(ctx context.Context) types.ImageFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return types.ImageFrame{}
	}
	f := s.frames[s.idx]
	if s.idx < len(s.frames)-1 {
		s.idx++
	}
	if f.TraceID == uuid.Nil {
		f.TraceID = uuid.New()
	}
	return f
}

// SyntheticRadarSource replays a fixed set of PointCloud values in order,
// repeating the last one once exhausted.
type SyntheticRadarSource struct {
	mu     sync.Mutex
	scans  []types.PointCloud
	idx    int
}

// NewSyntheticRadarSource returns a source that replays scans in order.
func NewSyntheticRadarSource(scans []types.PointCloud) *SyntheticRadarSource {
	return &SyntheticRadarSource{scans: scans}
}

// GetScan returns the next queued scan.
func (s *SyntheticRadarSource) GetScan(ctx context.Context) (types.PointCloud, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.scans) == 0 {
		return types.PointCloud{}, nil
	}
	c := s.scans[s.idx]
	if s.idx < len(s.scans)-1 {
		s.idx++
	}
	return c, nil
}
