// Command aegis-core is the on-board flight/command process (spec §1):
// it attaches to the Bridge, wires the FusionEngine, Detector, and
// TrackManager into a GuidanceLoop, and serves StationLink and CloudLink
// alongside it. Structured logging, signal handling, and the graceful
// shutdown sequence follow
// References/orion-prototipe/cmd/oriond/main.go.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aryorithm/aegis-sky/internal/aerr"
	"github.com/aryorithm/aegis-sky/internal/cloud"
	"github.com/aryorithm/aegis-sky/internal/config"
	"github.com/aryorithm/aegis-sky/internal/detector"
	"github.com/aryorithm/aegis-sky/internal/fusion"
	"github.com/aryorithm/aegis-sky/internal/guidance"
	"github.com/aryorithm/aegis-sky/internal/hal"
	"github.com/aryorithm/aegis-sky/internal/station"
	"github.com/aryorithm/aegis-sky/internal/tracking"
)

const defaultConfigPath = "config/aegis-core.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	live := flag.Bool("live", false, "Treat the ImageSource as live hardware (invalid frames are skipped, not tolerated)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*configPath, *live, logger); err != nil {
		logger.Error("aegis-core exiting", "error", err)
		os.Exit(-1)
	}
	logger.Info("aegis-core stopped normally")
}

func run(configPath string, live bool, logger *slog.Logger) error {
	cfg, err := config.LoadCore(configPath)
	if err != nil {
		return err
	}
	logger.Info("configuration loaded", "instance_id", cfg.InstanceID)

	cal, err := config.LoadCalibration(cfg.Camera.CalibrationPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	consumer, err := connectBridge(ctx, cfg.Bridge.Path, cfg.Bridge.Width, cfg.Bridge.Height, logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	engine, err := detector.LoadONNXEngine(cfg.Detector.PlanPath, cfg.Bridge.Width, cfg.Bridge.Height)
	if err != nil {
		return err
	}
	defer engine.Close()

	stream := fusion.NewStream()
	defer stream.Close()

	fe := fusion.New(cal, fusion.DefaultCapacity, stream)
	det, err := detector.New(engine, cfg.Bridge.Width, cfg.Bridge.Height, stream)
	if err != nil {
		return err
	}
	tracker := tracking.NewManager()

	st, err := station.New(cfg.Station.Port, logger.With("component", "station"))
	if err != nil {
		return err
	}
	defer st.Close()
	go st.Serve(ctx)

	cl := cloud.New(cfg.Cloud.Endpoint, cfg.Cloud.QueueDepth, time.Duration(cfg.Cloud.BackoffMaxS)*time.Second, logger.With("component", "cloud"))
	defer cl.Close()
	go cl.Run(ctx)

	loop := guidance.New(guidance.Config{
		InstanceID:       cfg.InstanceID,
		TargetHz:         cfg.Guidance.TargetHz,
		OperatorHoldMs:   cfg.Guidance.OperatorHoldMs,
		DepthFallbackM:   cfg.Guidance.DepthFallbackM,
		CloudDecimation:  cfg.Guidance.CloudDecimation,
		AimGainAzimuth:   cfg.Guidance.AimGainAzimuth,
		AimGainElevation: cfg.Guidance.AimGainElevation,
		Live:             live,
	}, consumer, hal.NewBridgeRadarSource(consumer), hal.NewBridgeImageSource(consumer), fe, det, tracker, st, cl, cal, logger.With("component", "guidance"))

	doneCh := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(doneCh)
	}()

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	case <-doneCh:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutS)*time.Second)
	defer shutdownCancel()

	select {
	case <-doneCh:
	case <-shutdownCtx.Done():
		logger.Warn("guidance loop did not stop within shutdown timeout")
	}

	return nil
}

// connectBridge retries attaching to the Bridge region at 1Hz until it
// succeeds or ctx is cancelled (spec §4.A's Connecting state).
func connectBridge(ctx context.Context, path string, width, height int, logger *slog.Logger) (*hal.BridgeConsumer, error) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		consumer, err := hal.NewBridgeConsumer(path, width, height)
		if err == nil {
			return consumer, nil
		}
		if !errors.Is(err, aerr.ErrFailedOpen) {
			return nil, err
		}
		logger.Warn("bridge not yet available, retrying", "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
