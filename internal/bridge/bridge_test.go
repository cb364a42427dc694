package bridge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aryorithm/aegis-sky/internal/aerr"
	"github.com/aryorithm/aegis-sky/internal/ipc"
	"github.com/aryorithm/aegis-sky/internal/types"
)

func tempRegionPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "aegis_bridge_test")
}

// TestHandshakeRoundTrip verifies spec §8 scenario 4: a writer publishes
// frame_id=1 with three points, a reader observes ready and reads them back
// byte-identical, and a subsequent Poll returns false until frame_id=2.
func TestHandshakeRoundTrip(t *testing.T) {
	path := tempRegionPath(t)

	w, err := NewWriter(path, 4, 4)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	r := NewReader(path, 4, 4)
	if err := r.Attach(); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer r.Close()

	if _, ok := r.Poll(); ok {
		t.Fatal("Poll should be false before any publish")
	}

	points := []types.RadarPoint{
		{X: 1, Y: 2, Z: 3, Velocity: -1, SNRdB: 30},
		{X: 4, Y: 5, Z: 6, Velocity: -2, SNRdB: 31},
		{X: 7, Y: 8, Z: 9, Velocity: -3, SNRdB: 32},
	}
	w.Publish(1, 0.5, points)

	id, ok := r.Poll()
	if !ok || id != 1 {
		t.Fatalf("Poll = (%d, %v), want (1, true)", id, ok)
	}

	simTime, got, _, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if simTime != 0.5 {
		t.Errorf("simTime = %v, want 0.5", simTime)
	}
	if len(got) != len(points) {
		t.Fatalf("got %d points, want %d", len(got), len(points))
	}
	for i := range points {
		if got[i].X != points[i].X || got[i].Y != points[i].Y || got[i].Z != points[i].Z ||
			got[i].Velocity != points[i].Velocity || got[i].SNRdB != points[i].SNRdB {
			t.Errorf("point[%d] = %+v, want %+v", i, got[i], points[i])
		}
	}

	if _, ok := r.Poll(); ok {
		t.Fatal("Poll should be false again until frame_id=2 is published")
	}

	w.Publish(2, 0.52, points[:1])
	if id, ok := r.Poll(); !ok || id != 2 {
		t.Fatalf("Poll = (%d, %v), want (2, true)", id, ok)
	}
}

// TestIdempotentAttach verifies spec §8's attach law.
func TestIdempotentAttach(t *testing.T) {
	path := tempRegionPath(t)

	w, err := NewWriter(path, 4, 4)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	r := NewReader(path, 4, 4)
	if err := r.Attach(); err != nil {
		t.Fatalf("first Attach: %v", err)
	}
	defer r.Close()

	if err := r.Attach(); err != nil {
		t.Fatalf("second Attach should be a no-op returning nil, got %v", err)
	}
}

// TestBadMagicRejected verifies attach fails against a region that was
// never initialized by a Writer.
func TestBadMagicRejected(t *testing.T) {
	path := tempRegionPath(t)

	// Create a zero-filled file of the right size but never write the
	// magic sentinel.
	if err := os.WriteFile(path, make([]byte, ipc.RegionSize(4, 4)), 0o660); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	r := NewReader(path, 4, 4)
	if err := r.Attach(); !errors.Is(err, aerr.ErrBadMagic) {
		t.Fatalf("Attach error = %v, want ErrBadMagic for a region without the magic sentinel", err)
	}
}

// TestSendCommandRoundTrip verifies the reverse command channel: the Core
// writes a command, the Sim observes it via LatestCommand.
func TestSendCommandRoundTrip(t *testing.T) {
	path := tempRegionPath(t)

	w, err := NewWriter(path, 4, 4)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	r := NewReader(path, 4, 4)
	if err := r.Attach(); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer r.Close()

	cmd := types.ControlCommand{TimestampMs: 42, PanVel: 0.3, TiltVel: -0.1, FireTrigger: true}
	if err := r.SendCommand(cmd); err != nil {
		t.Fatalf("SendCommand: %v", err)
	}

	got := w.LatestCommand()
	if got != cmd {
		t.Errorf("LatestCommand = %+v, want %+v", got, cmd)
	}
}
