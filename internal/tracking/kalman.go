// Package tracking implements the multi-target tracker: a gated
// nearest-neighbour data-association engine over constant-velocity Kalman
// filters with track birth, confirmation, coasting, and pruning (spec
// §4.E). It is translated directly from original_source's
// KalmanFilter.cpp/TrackManager.h into Go idiom.
package tracking

import "github.com/aryorithm/aegis-sky/internal/types"

// DefaultProcessNoise and DefaultMeasurementNoise match the simplified
// diagonal covariance model documented in spec §9: P and Q are flat
// 6-vectors, axes are treated independently, and cross-axis correlation is
// knowingly lost.
const (
	DefaultProcessNoise     = 1.0
	DefaultMeasurementNoise = 2.0
)

// NewKalmanState initializes a filter at the given position with zero
// velocity, high initial velocity uncertainty and low position uncertainty
// (spec §4.E / original_source KalmanFilter.cpp).
func NewKalmanState(x, y, z float32, timestamp float64) types.KalmanState {
	return types.KalmanState{
		X:        [6]float32{x, y, z, 0, 0, 0},
		P:        [6]float32{1, 1, 1, 100, 100, 100},
		LastTime: timestamp,
		ProcessQ: DefaultProcessNoise,
		MeasureR: DefaultMeasurementNoise,
	}
}

// Predict advances the filter to currentTime with a constant-velocity
// state transition; covariance diagonals grow by Q*dt. dt is clamped to
// non-negative (spec §5: "the tracker rejects non-monotonic updates by
// clamping dt = max(0, t - last_t)").
func Predict(k types.KalmanState, currentTime float64) types.KalmanState {
	dt := float32(currentTime - k.LastTime)
	if dt <= 0 {
		k.LastTime = currentTime
		return k
	}

	k.X[0] += k.X[3] * dt
	k.X[1] += k.X[4] * dt
	k.X[2] += k.X[5] * dt

	for i := range k.P {
		k.P[i] += k.ProcessQ * dt
	}

	k.LastTime = currentTime
	return k
}

// Update folds a position measurement into the filter, updating both
// position and (via the documented simplification) velocity per axis, per
// spec §4.E's innovation equations.
func Update(k types.KalmanState, mx, my, mz float32) types.KalmanState {
	meas := [3]float32{mx, my, mz}

	for i := 0; i < 3; i++ {
		y := meas[i] - k.X[i]
		s := k.P[i] + k.MeasureR

		kp := k.P[i] / s
		kv := k.P[i+3] / s

		k.X[i] += kp * y
		k.X[i+3] += kv * y

		k.P[i] *= 1 - kp
		k.P[i+3] *= 1 - kv
	}

	return k
}
