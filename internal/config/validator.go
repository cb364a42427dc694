package config

import (
	"fmt"
	"regexp"

	"github.com/aryorithm/aegis-sky/internal/bridge"
	"github.com/aryorithm/aegis-sky/internal/ipc"
)

var instanceIDPattern = regexp.MustCompile(`^[a-z0-9\-]+$`)

// Defaults for fields the spec calls out with an explicit default value.
const (
	DefaultShutdownTimeoutS = 5
	DefaultTargetHz         = 60.0
	DefaultOperatorHoldMs   = 500
	DefaultDepthFallbackM   = 50.0
	DefaultCloudDecimation  = 30
	DefaultAimGain          = 0.02
	DefaultCloudQueueDepth  = 1024
	DefaultBackoffMaxS      = 30
	DefaultSimTickHz        = 60.0
	DefaultRadarRangeSigmaM     = 0.5
	DefaultRadarAngleSigmaRad   = 0.01
	DefaultRadarVelocitySigmaMS = 0.2
	DefaultTargetRCS            = 0.01
	DefaultTxPower              = 1000.0
)

// ValidateCore checks required fields and fills in defaults for a
// CoreConfig, in place, the way orion-prototipe's Validate does for its
// own Config.
func ValidateCore(cfg *CoreConfig) error {
	if cfg.InstanceID == "" {
		return fmt.Errorf("instance_id is required")
	}
	if !instanceIDPattern.MatchString(cfg.InstanceID) {
		return fmt.Errorf("instance_id must match pattern [a-z0-9-]+")
	}
	if cfg.ShutdownTimeoutS <= 0 {
		cfg.ShutdownTimeoutS = DefaultShutdownTimeoutS
	}

	if cfg.Bridge.Path == "" {
		cfg.Bridge.Path = bridge.DefaultRegionPath
	}
	if cfg.Bridge.Width <= 0 || cfg.Bridge.Height <= 0 {
		return fmt.Errorf("bridge.width and bridge.height must be > 0")
	}

	if cfg.Camera.CalibrationPath == "" {
		return fmt.Errorf("camera.calibration_path is required")
	}

	if cfg.Detector.PlanPath == "" {
		return fmt.Errorf("detector.plan_path is required")
	}

	if cfg.Guidance.TargetHz <= 0 {
		cfg.Guidance.TargetHz = DefaultTargetHz
	}
	if cfg.Guidance.OperatorHoldMs <= 0 {
		cfg.Guidance.OperatorHoldMs = DefaultOperatorHoldMs
	}
	if cfg.Guidance.DepthFallbackM <= 0 {
		cfg.Guidance.DepthFallbackM = DefaultDepthFallbackM
	}
	if cfg.Guidance.CloudDecimation <= 0 {
		cfg.Guidance.CloudDecimation = DefaultCloudDecimation
	}
	if cfg.Guidance.AimGainAzimuth == 0 {
		cfg.Guidance.AimGainAzimuth = DefaultAimGain
	}
	if cfg.Guidance.AimGainElevation == 0 {
		cfg.Guidance.AimGainElevation = DefaultAimGain
	}

	if cfg.Station.Port <= 0 {
		cfg.Station.Port = ipc.DefaultStationPort
	}

	if cfg.Cloud.Endpoint == "" {
		return fmt.Errorf("cloud.endpoint is required")
	}
	if cfg.Cloud.QueueDepth <= 0 {
		cfg.Cloud.QueueDepth = DefaultCloudQueueDepth
	}
	if cfg.Cloud.BackoffMaxS <= 0 {
		cfg.Cloud.BackoffMaxS = DefaultBackoffMaxS
	}

	return nil
}

// ValidateSim checks required fields and fills in defaults for a
// SimConfig, in place.
func ValidateSim(cfg *SimConfig) error {
	if cfg.InstanceID == "" {
		return fmt.Errorf("instance_id is required")
	}
	if !instanceIDPattern.MatchString(cfg.InstanceID) {
		return fmt.Errorf("instance_id must match pattern [a-z0-9-]+")
	}

	if cfg.Bridge.Path == "" {
		cfg.Bridge.Path = bridge.DefaultRegionPath
	}
	if cfg.Bridge.Width <= 0 || cfg.Bridge.Height <= 0 {
		return fmt.Errorf("bridge.width and bridge.height must be > 0")
	}

	if cfg.Scenario.Path == "" {
		return fmt.Errorf("scenario.path is required")
	}

	if cfg.TickHz <= 0 {
		cfg.TickHz = DefaultSimTickHz
	}

	if cfg.Radar.RangeSigmaM <= 0 {
		cfg.Radar.RangeSigmaM = DefaultRadarRangeSigmaM
	}
	if cfg.Radar.AngleSigmaRad <= 0 {
		cfg.Radar.AngleSigmaRad = DefaultRadarAngleSigmaRad
	}
	if cfg.Radar.VelocitySigmaMS <= 0 {
		cfg.Radar.VelocitySigmaMS = DefaultRadarVelocitySigmaMS
	}
	if cfg.Radar.TargetRCS <= 0 {
		cfg.Radar.TargetRCS = DefaultTargetRCS
	}
	if cfg.Radar.TxPower <= 0 {
		cfg.Radar.TxPower = DefaultTxPower
	}

	for _, ev := range cfg.Weather.Schedule {
		if ev.RainIntensityMMH < 0 || ev.FogDensity < 0 {
			return fmt.Errorf("weather.schedule entries must have non-negative rain/fog values")
		}
	}

	return nil
}
