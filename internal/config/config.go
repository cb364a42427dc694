// Package config loads and validates the YAML configuration for both the
// Core and Sim processes, in the style of
// References/orion-prototipe/internal/config: a plain struct tree tagged
// for gopkg.in/yaml.v3, a Load that reads+unmarshals+validates, and a
// separate Validate that also fills in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CoreConfig is the complete configuration for the aegis-core process.
type CoreConfig struct {
	InstanceID       string         `yaml:"instance_id"`
	ShutdownTimeoutS int            `yaml:"shutdown_timeout_s"`
	Bridge           BridgeConfig   `yaml:"bridge"`
	Camera           CameraConfig   `yaml:"camera"`
	Detector         DetectorConfig `yaml:"detector"`
	Guidance         GuidanceConfig `yaml:"guidance"`
	Station          StationConfig  `yaml:"station"`
	Cloud            CloudConfig    `yaml:"cloud"`
}

// BridgeConfig locates and sizes the shared-memory region.
type BridgeConfig struct {
	Path   string `yaml:"path"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// CameraConfig carries the intrinsic/extrinsic calibration used by the
// FusionEngine.
type CameraConfig struct {
	CalibrationPath string `yaml:"calibration_path"`
}

// DetectorConfig locates the inference plan on disk.
type DetectorConfig struct {
	PlanPath string `yaml:"plan_path"`
}

// GuidanceConfig tunes the fixed-rate guidance loop.
type GuidanceConfig struct {
	TargetHz         float64 `yaml:"target_hz"`
	OperatorHoldMs   int     `yaml:"operator_hold_ms"`
	DepthFallbackM   float64 `yaml:"depth_fallback_m"`
	CloudDecimation  int     `yaml:"cloud_decimation"`
	AimGainAzimuth   float64 `yaml:"aim_gain_azimuth"`
	AimGainElevation float64 `yaml:"aim_gain_elevation"`
}

// StationConfig configures the local operator TCP link.
type StationConfig struct {
	Port int `yaml:"port"`
}

// CloudConfig configures the cloud ingestor gRPC link.
type CloudConfig struct {
	Endpoint       string `yaml:"endpoint"`
	QueueDepth     int    `yaml:"queue_depth"`
	BackoffMaxS    int    `yaml:"backoff_max_s"`
}

// SimConfig is the complete configuration for the aegis-sim process.
type SimConfig struct {
	InstanceID  string            `yaml:"instance_id"`
	TickHz      float64           `yaml:"tick_hz"`
	Bridge      BridgeConfig      `yaml:"bridge"`
	Scenario    ScenarioRefConfig `yaml:"scenario"`
	Radar       RadarPhysicsConfig `yaml:"radar"`
	Weather     WeatherConfig     `yaml:"weather"`
	Wind        WindConfig        `yaml:"wind"`
	Environment EnvironmentConfig `yaml:"environment"`
}

// ScenarioRefConfig points at a scenario file on disk.
type ScenarioRefConfig struct {
	Path string `yaml:"path"`
	Seed int64  `yaml:"seed"`
}

// RadarPhysicsConfig tunes the simulated radar's noise and clutter model.
type RadarPhysicsConfig struct {
	RangeSigmaM     float64 `yaml:"range_sigma_m"`
	AngleSigmaRad   float64 `yaml:"angle_sigma_rad"`
	VelocitySigmaMS float64 `yaml:"velocity_sigma_ms"`
	ClutterRateHz   float64 `yaml:"clutter_rate_hz"`
	TargetRCS       float64 `yaml:"target_rcs"`
	TxPower         float64 `yaml:"tx_power"`
}

// WeatherConfig carries the initial atmospheric condition plus a schedule
// of later changes, the data-driven equivalent of SimEngine.cpp's inline
// "if now > 10.0 weather_.set_condition(...)" storm trigger.
type WeatherConfig struct {
	Initial  WeatherStateConfig   `yaml:"initial"`
	Schedule []WeatherEventConfig `yaml:"schedule"`
}

// WeatherStateConfig is one atmospheric condition.
type WeatherStateConfig struct {
	RainIntensityMMH float64 `yaml:"rain_intensity_mm_h"`
	FogDensity       float64 `yaml:"fog_density"`
	WindSpeedMS      float64 `yaml:"wind_speed_ms"`
}

// WeatherEventConfig schedules WeatherStateConfig to take effect at a
// fixed simulated time.
type WeatherEventConfig struct {
	AtSeconds float64 `yaml:"at_seconds"`
	WeatherStateConfig `yaml:",inline"`
}

// WindConfig is the steady background wind added to every entity's
// velocity each tick, before the per-tick Gaussian gust (SimEngine.cpp's
// global_wind_).
type WindConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// EnvironmentConfig lists the static occluding geometry for the radar and
// (out of scope) renderer line-of-sight tests.
type EnvironmentConfig struct {
	Buildings []BuildingConfig `yaml:"buildings"`
}

// BuildingConfig is one axis-aligned box obstacle.
type BuildingConfig struct {
	Center      [3]float64 `yaml:"center"`
	HalfExtents [3]float64 `yaml:"half_extents"`
}

// LoadCore reads and validates a Core YAML configuration file.
func LoadCore(path string) (*CoreConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg CoreConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ValidateCore(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadSim reads and validates a Sim YAML configuration file.
func LoadSim(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg SimConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ValidateSim(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
