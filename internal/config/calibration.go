package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aryorithm/aegis-sky/internal/types"
)

// calibrationFile is the on-disk YAML shape for one camera/radar rig
// calibration, matching types.CalibrationData's fields.
type calibrationFile struct {
	K      [9]float32 `yaml:"k"`
	R      [9]float32 `yaml:"r"`
	T      [3]float32 `yaml:"t"`
	Width  int        `yaml:"width"`
	Height int        `yaml:"height"`
}

// LoadCalibration reads a camera/radar CalibrationData from path.
func LoadCalibration(path string) (types.CalibrationData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.CalibrationData{}, fmt.Errorf("failed to read calibration file: %w", err)
	}

	var cf calibrationFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return types.CalibrationData{}, fmt.Errorf("failed to parse calibration: %w", err)
	}

	if cf.Width <= 0 || cf.Height <= 0 {
		return types.CalibrationData{}, fmt.Errorf("calibration: width and height must be > 0")
	}

	return types.CalibrationData{
		K:      cf.K,
		R:      cf.R,
		T:      cf.T,
		Width:  cf.Width,
		Height: cf.Height,
	}, nil
}
