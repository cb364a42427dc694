// Command aegis-sim is the deterministic training simulator (spec §1): it
// creates the Bridge region, loads a scenario, and steps physics at a
// fixed rate, publishing radar returns to any attached aegis-core process.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aryorithm/aegis-sky/internal/bridge"
	"github.com/aryorithm/aegis-sky/internal/config"
	"github.com/aryorithm/aegis-sky/internal/sim"
)

const defaultConfigPath = "config/aegis-sim.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("aegis-sim exiting", "error", err)
		os.Exit(1)
	}
	logger.Info("aegis-sim stopped normally")
}

func run(configPath string, logger *slog.Logger) error {
	cfg, err := config.LoadSim(configPath)
	if err != nil {
		return err
	}
	logger.Info("configuration loaded", "instance_id", cfg.InstanceID, "seed", cfg.Scenario.Seed)

	entities, err := sim.LoadScenario(cfg.Scenario.Path)
	if err != nil {
		return err
	}

	writer, err := bridge.NewWriter(cfg.Bridge.Path, cfg.Bridge.Width, cfg.Bridge.Height)
	if err != nil {
		return err
	}
	defer writer.Close()

	weatherLog := make([]sim.WeatherEvent, len(cfg.Weather.Schedule))
	for i, ev := range cfg.Weather.Schedule {
		weatherLog[i] = sim.WeatherEvent{
			AtSeconds: ev.AtSeconds,
			State: sim.WeatherState{
				RainIntensityMMH: ev.RainIntensityMMH,
				FogDensity:       ev.FogDensity,
				WindSpeedMS:      ev.WindSpeedMS,
			},
		}
	}

	buildings := make([]sim.Building, len(cfg.Environment.Buildings))
	for i, b := range cfg.Environment.Buildings {
		buildings[i] = sim.Building{Center: b.Center, HalfExtents: b.HalfExtents}
	}

	engine := sim.New(sim.Config{
		TickHz: cfg.TickHz,
		Width:  cfg.Bridge.Width,
		Height: cfg.Bridge.Height,
		Seed:   cfg.Scenario.Seed,
		Radar: sim.RadarConfig{
			TargetRCS:       cfg.Radar.TargetRCS,
			TxPower:         cfg.Radar.TxPower,
			RangeSigmaM:     cfg.Radar.RangeSigmaM,
			AngleSigmaRad:   cfg.Radar.AngleSigmaRad,
			VelocitySigmaMS: cfg.Radar.VelocitySigmaMS,
			ClutterRateHz:   cfg.Radar.ClutterRateHz,
		},
		Weather: sim.WeatherState{
			RainIntensityMMH: cfg.Weather.Initial.RainIntensityMMH,
			FogDensity:       cfg.Weather.Initial.FogDensity,
			WindSpeedMS:      cfg.Weather.Initial.WindSpeedMS,
		},
		WeatherLog:  weatherLog,
		Wind:        [3]float64{cfg.Wind.X, cfg.Wind.Y, cfg.Wind.Z},
		Environment: buildings,
	}, writer, entities, logger.With("component", "sim"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	engine.Run(ctx)
	return nil
}
