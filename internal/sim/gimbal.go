package sim

import "math"

// Gimbal slew limits match the referenced pan/tilt unit's physical specs
// (GimbalPhysics.h's FLIR PTU-D48 constants).
const (
	gimbalMaxVelRadS = 2.0
	gimbalMinTiltRad = -0.5
	gimbalMaxTiltRad = 1.5
)

// gimbal tracks the sensor's pan/tilt orientation, integrated each tick
// from the commanded velocities (spec §4.I's expansion: GimbalPhysics.h/.cpp).
type gimbal struct {
	pan  float64 // radians, 0 = north, continuous (wraps at +-pi)
	tilt float64 // radians, 0 = horizon, clamped to [gimbalMinTiltRad, gimbalMaxTiltRad]
}

// update clamps the commanded velocities to the motor's slew limit,
// integrates pan/tilt, then applies the tilt hard stop and pan wraparound
// (GimbalPhysics::update).
func (g *gimbal) update(dt, panVel, tiltVel float64) {
	panVel = clamp(panVel, -gimbalMaxVelRadS, gimbalMaxVelRadS)
	tiltVel = clamp(tiltVel, -gimbalMaxVelRadS, gimbalMaxVelRadS)

	g.pan += panVel * dt
	g.tilt += tiltVel * dt

	g.tilt = clamp(g.tilt, gimbalMinTiltRad, gimbalMaxTiltRad)

	if g.pan > math.Pi {
		g.pan -= 2 * math.Pi
	} else if g.pan < -math.Pi {
		g.pan += 2 * math.Pi
	}
}

// forward returns the unit vector the sensor currently faces
// (GimbalPhysics::get_forward_vector).
func (g *gimbal) forward() vec3 {
	x := math.Sin(g.pan) * math.Cos(g.tilt)
	y := math.Sin(g.tilt)
	z := math.Cos(g.pan) * math.Cos(g.tilt)
	return vec3{X: x, Y: y, Z: z}.normalize()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
