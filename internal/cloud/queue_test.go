package cloud

import (
	"context"
	"testing"
	"time"
)

func TestQueueDropsOldestOnOverflow(t *testing.T) {
	q := newDropOldestQueue(2)
	q.Push(TelemetryMessage{TargetCount: 1})
	q.Push(TelemetryMessage{TargetCount: 2})
	q.Push(TelemetryMessage{TargetCount: 3})

	if d := q.Dropped(); d != 1 {
		t.Fatalf("Dropped() = %d, want 1", d)
	}

	ctx := context.Background()
	first, ok := q.Pop(ctx)
	if !ok || first.TargetCount != 2 {
		t.Fatalf("first pop = %+v, ok=%v, want TargetCount=2", first, ok)
	}
	second, ok := q.Pop(ctx)
	if !ok || second.TargetCount != 3 {
		t.Fatalf("second pop = %+v, ok=%v, want TargetCount=3", second, ok)
	}
}

func TestQueuePopUnblocksOnClose(t *testing.T) {
	q := newDropOldestQueue(4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, ok := q.Pop(context.Background()); ok {
			t.Error("expected Pop to return ok=false after Close")
		}
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after Close")
	}
}

func TestQueuePopUnblocksOnContextCancel(t *testing.T) {
	q := newDropOldestQueue(4)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, ok := q.Pop(ctx); ok {
			t.Error("expected Pop to return ok=false after context cancel")
		}
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after context cancel")
	}
}

func TestJSONCodecRoundTrip(t *testing.T) {
	c := jsonCodec{}
	msg := TelemetryMessage{InstanceID: "pod-01", Pan: 1.5, Tilt: -0.5, TargetCount: 3}

	data, err := c.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded TelemetryMessage
	if err := c.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != msg {
		t.Errorf("decoded = %+v, want %+v", decoded, msg)
	}
}
