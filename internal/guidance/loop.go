// Package guidance implements the fixed-rate GuidanceLoop (spec §4.F): the
// real-time thread that composes the Bridge, HAL, FusionEngine, Detector
// and TrackManager into one actuator command per tick, and fans telemetry
// out to StationLink and CloudLink. The Booting/Connecting/Running/
// Shutdown state machine and the single owning goroutine follow
// References/orion-prototipe/internal/core/orion.go's Run/Shutdown shape.
package guidance

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryorithm/aegis-sky/internal/cloud"
	"github.com/aryorithm/aegis-sky/internal/detector"
	"github.com/aryorithm/aegis-sky/internal/fusion"
	"github.com/aryorithm/aegis-sky/internal/hal"
	"github.com/aryorithm/aegis-sky/internal/station"
	"github.com/aryorithm/aegis-sky/internal/tracking"
	"github.com/aryorithm/aegis-sky/internal/types"
)

// State is one of the loop's four lifecycle states (spec §4.F).
type State int

const (
	StateBooting State = iota
	StateConnecting
	StateRunning
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateBooting:
		return "booting"
	case StateConnecting:
		return "connecting"
	case StateRunning:
		return "running"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// BridgeLink is the subset of hal.BridgeConsumer the loop needs directly:
// attach and polling happen through the RadarSource/ImageSource views, so
// only the reverse command channel is exercised here.
type BridgeLink interface {
	SendCommand(cmd types.ControlCommand) error
	Close() error
}

// Config tunes one Loop instance (spec §4.F, with defaults resolved by
// internal/config before this point).
type Config struct {
	InstanceID       string
	TargetHz         float64
	OperatorHoldMs   int
	DepthFallbackM   float64
	CloudDecimation  int
	AimGainAzimuth   float64
	AimGainElevation float64
	Live             bool // true when the ImageSource is live hardware, not the Sim bridge
}

// Loop drives one tick at the configured period. It is not safe for
// concurrent use; Run owns it for its entire lifetime.
type Loop struct {
	cfg Config

	bridge   BridgeLink
	radar    hal.RadarSource
	image    hal.ImageSource
	fusion   *fusion.Engine
	detector *detector.Detector
	tracker  *tracking.Manager
	station  *station.Link
	cloud    *cloud.Link
	cal      types.CalibrationData

	logger *slog.Logger

	state     State
	tickCount uint64
}

// New assembles a Loop from its already-connected collaborators. Bridge
// attach/retry (the Connecting phase) happens in cmd/aegis-core before
// this constructor is called; a new Loop starts in StateRunning, and Run
// moves it to StateShutdown when ctx is cancelled.
func New(cfg Config, bridge BridgeLink, radar hal.RadarSource, image hal.ImageSource, fe *fusion.Engine, det *detector.Detector, tracker *tracking.Manager, st *station.Link, cl *cloud.Link, cal types.CalibrationData, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		cfg:      cfg,
		bridge:   bridge,
		radar:    radar,
		image:    image,
		fusion:   fe,
		detector: det,
		tracker:  tracker,
		station:  st,
		cloud:    cl,
		cal:      cal,
		logger:   logger,
		state:    StateRunning,
	}
}

// State returns the loop's current lifecycle state.
func (l *Loop) State() State { return l.state }

// Run drives ticks at the configured period until ctx is cancelled (spec
// §4.F step 7: "pace: sleep for max(0, period - elapsed)... a tick that
// exceeds the period is logged but not dropped; the next tick starts
// immediately"). Pacing is deliberately not catch-up: an overrun tick
// never causes a burst of back-to-back ticks to compensate.
func (l *Loop) Run(ctx context.Context) {
	period := time.Duration(float64(time.Second) / l.cfg.TargetHz)
	l.logger.Info("guidance loop running", "target_hz", l.cfg.TargetHz, "period", period)

	for {
		if ctx.Err() != nil {
			l.state = StateShutdown
			l.logger.Info("guidance loop shutting down")
			return
		}

		start := time.Now()
		l.tick(ctx)
		elapsed := time.Since(start)

		if elapsed > period {
			l.logger.Warn("guidance tick exceeded target period", "elapsed", elapsed, "period", period)
			continue
		}

		select {
		case <-ctx.Done():
			l.state = StateShutdown
			return
		case <-time.After(period - elapsed):
		}
	}
}

// tick runs one full guidance cycle (spec §4.F steps 1-6).
func (l *Loop) tick(ctx context.Context) {
	l.tickCount++

	scan, err := l.radar.GetScan(ctx)
	if err != nil {
		l.logger.Warn("radar scan failed", "error", err)
		return
	}
	img := l.image.GetFrame(ctx)

	if !img.Valid() && l.cfg.Live {
		l.logger.Debug("skipping tick: invalid image from live hardware source")
		return
	}

	fused := l.fusion.Process(img, scan)
	dets, err := l.detector.Detect(fused)
	if err != nil {
		l.logger.Warn("detector failed", "error", err)
		return
	}

	measurements := liftDetections(dets, fused, l.cal, float32(l.cfg.DepthFallbackM))
	tracks := l.tracker.ProcessScan(scan.Timestamp, measurements)

	primary, hasPrimary := l.tracker.PrimaryTrack()

	cmd, _ := l.station.LatestCommand()
	receivedAt := l.station.LatestCommandAt()

	panVel, tiltVel := l.resolveAim(cmd, receivedAt, primary, hasPrimary)
	fire := cmd.ArmSystem != 0 && cmd.FireTrigger != 0

	actuator := types.ControlCommand{
		TimestampMs: uint64(time.Now().UnixMilli()),
		PanVel:      panVel,
		TiltVel:     tiltVel,
		FireTrigger: fire,
	}

	if err := l.bridge.SendCommand(actuator); err != nil {
		l.logger.Warn("failed to send actuator command", "error", err)
	}

	telemetry := ipcTelemetry(scan.Timestamp, panVel, tiltVel, len(tracks))
	if err := l.station.Broadcast(telemetry); err != nil {
		l.logger.Debug("station broadcast failed", "error", err)
	}

	if l.cloud != nil && l.cfg.CloudDecimation > 0 && l.tickCount%uint64(l.cfg.CloudDecimation) == 0 {
		var primaryID uint32
		if hasPrimary {
			primaryID = primary.ID
		}
		l.cloud.Enqueue(cloudTelemetry(l.cfg.InstanceID, panVel, tiltVel, len(tracks), primaryID))
	}
}
