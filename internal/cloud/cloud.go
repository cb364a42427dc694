// Package cloud implements CloudLink, the bidirectional-streaming RPC
// channel to the cloud ingestor (spec §4.H): a bounded drop-oldest
// outbound queue, a writer loop with exponential backoff on stream
// failure, and a reader loop that recognizes ACK/REBOOT server commands.
// Grounded on original_source/core/src/services/comms/CloudLink.cpp for
// the writer/reader/backoff shape, re-expressed against
// google.golang.org/grpc's generic streaming client with a hand-registered
// JSON codec instead of protoc-generated bindings (see DESIGN.md).
package cloud

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// DefaultQueueCapacity and DefaultBackoffMax match spec §4.H's stated
// defaults (capacity 1024, backoff capped at 30s).
const (
	DefaultQueueCapacity = 1024
	DefaultBackoffMax    = 30 * time.Second
	initialBackoff       = 1 * time.Second
)

// serviceMethod is the fully-qualified gRPC method path CloudLink opens
// its bidirectional stream against. There is no .proto file behind it —
// the "service" exists only as this string and the JSON codec below — but
// the shape (one ClientStreams+ServerStreams RPC) matches a real
// streaming telemetry ingestor contract.
const serviceMethod = "/aegis.cloud.v1.Ingestor/StreamTelemetry"

// TelemetryMessage is one outbound telemetry record. It is marshaled with
// encoding/json via jsonCodec rather than protobuf wire encoding.
type TelemetryMessage struct {
	InstanceID     string                 `json:"instance_id"`
	Timestamp      *timestamppb.Timestamp `json:"timestamp"`
	Pan            float32                `json:"pan"`
	Tilt           float32                `json:"tilt"`
	TargetCount    int32                  `json:"target_count"`
	PrimaryTrackID uint32                 `json:"primary_track_id,omitempty"`
}

// ServerCommand is one inbound command from the ingestor (spec §4.H: ACK
// is a no-op, REBOOT is logged but never executed).
type ServerCommand struct {
	Kind string `json:"kind"`
}

const (
	CommandACK    = "ACK"
	CommandReboot = "REBOOT"
)

// Link owns the outbound queue and drives the connect/stream/reconnect
// loop. The guidance loop only ever calls Enqueue; Run owns the network
// lifecycle on its own goroutine.
type Link struct {
	endpoint   string
	backoffMax time.Duration
	logger     *slog.Logger
	queue      *dropOldestQueue
}

// New constructs a Link. queueCapacity and backoffMax fall back to the
// spec defaults when <= 0.
func New(endpoint string, queueCapacity int, backoffMax time.Duration, logger *slog.Logger) *Link {
	if queueCapacity <= 0 {
		queueCapacity = DefaultQueueCapacity
	}
	if backoffMax <= 0 {
		backoffMax = DefaultBackoffMax
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Link{
		endpoint:   endpoint,
		backoffMax: backoffMax,
		logger:     logger,
		queue:      newDropOldestQueue(queueCapacity),
	}
}

// Enqueue adds msg to the outbound queue, dropping the oldest entry on
// overflow (spec §4.H).
func (l *Link) Enqueue(msg TelemetryMessage) {
	l.queue.Push(msg)
}

// Dropped returns the lifetime count of telemetry messages dropped for
// queue overflow.
func (l *Link) Dropped() uint64 {
	return l.queue.Dropped()
}

// Close stops accepting new telemetry and wakes the writer loop.
func (l *Link) Close() {
	l.queue.Close()
}

// Run connects, streams, and reconnects with exponential backoff until
// ctx is cancelled (spec §4.H: "on write failure, the stream is torn
// down... and re-establishes").
func (l *Link) Run(ctx context.Context) {
	backoff := initialBackoff
	for ctx.Err() == nil {
		if err := l.runStream(ctx); err != nil {
			l.logger.Warn("cloudlink stream ended, backing off", "error", err, "backoff", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > l.backoffMax {
				backoff = l.backoffMax
			}
			continue
		}
		backoff = initialBackoff
	}
}

func (l *Link) runStream(ctx context.Context) error {
	conn, err := grpc.NewClient(l.endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := conn.NewStream(streamCtx, &grpc.StreamDesc{
		StreamName:    "StreamTelemetry",
		ClientStreams: true,
		ServerStreams: true,
	}, serviceMethod, grpc.CallContentSubtype(jsonCodecName))
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}

	errCh := make(chan error, 2)
	go l.writeLoop(streamCtx, stream, errCh)
	go l.readLoop(streamCtx, stream, errCh)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		cancel()
		return err
	}
}

func (l *Link) writeLoop(ctx context.Context, stream grpc.ClientStream, errCh chan<- error) {
	for {
		msg, ok := l.queue.Pop(ctx)
		if !ok {
			return
		}
		if err := stream.SendMsg(&msg); err != nil {
			errCh <- fmt.Errorf("send: %w", err)
			return
		}
	}
}

func (l *Link) readLoop(ctx context.Context, stream grpc.ClientStream, errCh chan<- error) {
	for {
		var cmd ServerCommand
		if err := stream.RecvMsg(&cmd); err != nil {
			if ctx.Err() != nil {
				return
			}
			errCh <- fmt.Errorf("recv: %w", err)
			return
		}

		switch cmd.Kind {
		case CommandACK:
			// no-op
		case CommandReboot:
			l.logger.Warn("cloudlink received REBOOT command (not executed)")
		default:
			l.logger.Warn("cloudlink received unrecognized server command", "kind", cmd.Kind)
		}
	}
}
