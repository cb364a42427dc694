package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadCoreFillsDefaults(t *testing.T) {
	path := writeTempConfig(t, `
instance_id: pod-01
bridge:
  width: 640
  height: 480
camera:
  calibration_path: /etc/aegis/calib.yaml
detector:
  plan_path: /etc/aegis/plan.onnx
cloud:
  endpoint: cloud.example.internal:443
`)

	cfg, err := LoadCore(path)
	if err != nil {
		t.Fatalf("LoadCore: %v", err)
	}

	if cfg.Guidance.TargetHz != DefaultTargetHz {
		t.Errorf("TargetHz = %v, want default %v", cfg.Guidance.TargetHz, DefaultTargetHz)
	}
	if cfg.Guidance.CloudDecimation != DefaultCloudDecimation {
		t.Errorf("CloudDecimation = %v, want default %v", cfg.Guidance.CloudDecimation, DefaultCloudDecimation)
	}
	if cfg.Station.Port != 9090 {
		t.Errorf("Station.Port = %v, want default 9090", cfg.Station.Port)
	}
	if cfg.Bridge.Path == "" {
		t.Errorf("Bridge.Path left empty, want default region path")
	}
}

func TestLoadCoreRejectsMissingInstanceID(t *testing.T) {
	path := writeTempConfig(t, `
bridge:
  width: 640
  height: 480
camera:
  calibration_path: /etc/aegis/calib.yaml
detector:
  plan_path: /etc/aegis/plan.onnx
cloud:
  endpoint: cloud.example.internal:443
`)
	if _, err := LoadCore(path); err == nil {
		t.Fatal("expected an error for a missing instance_id")
	}
}

func TestLoadSimFillsRadarDefaults(t *testing.T) {
	path := writeTempConfig(t, `
instance_id: sim-01
bridge:
  width: 640
  height: 480
scenario:
  path: /etc/aegis/scenarios/demo.yaml
`)

	cfg, err := LoadSim(path)
	if err != nil {
		t.Fatalf("LoadSim: %v", err)
	}
	if cfg.Radar.RangeSigmaM != 0.5 {
		t.Errorf("Radar.RangeSigmaM = %v, want 0.5", cfg.Radar.RangeSigmaM)
	}
}
