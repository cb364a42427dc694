package sim

import (
	"math"
	"math/rand"
)

// RadarConfig tunes the simulated radar's noise, clutter, and power-budget
// model (spec §4.I; RadarPhysics.cpp's constants lifted into configuration
// rather than hardcoded, plus the multipath/sideband/clutter extensions
// the distilled spec.md names but RadarPhysics.cpp alone did not fully
// implement).
type RadarConfig struct {
	TargetRCS       float64 // m^2, used when an entity doesn't override it
	TxPower         float64
	RangeSigmaM     float64
	AngleSigmaRad   float64
	VelocitySigmaMS float64
	ClutterRateHz   float64
}

// radarReturn is one simulated detection in spherical coordinates before
// conversion to the cartesian RadarPoint the bridge carries.
type radarReturn struct {
	rangeM    float64
	azimuth   float64 // radians, atan2(x, z)
	elevation float64 // radians, asin(y / range)
	velocity  float64 // radial m/s, positive = receding
	snrDB     float64
}

const targetHitboxRadiusM = 0.3 // 30cm drone, RadarPhysics.cpp's target_radius

// scanEntity casts a direct ray at e from sensorPos and, on a hit,
// produces the direct return plus a multipath ghost and any micro-Doppler
// sidebands, each with independent Gaussian measurement noise applied
// (spec §4.I). It returns nil when the entity lies within
// targetHitboxRadiusM of the sensor.
func scanEntity(rng *rand.Rand, sensorPos vec3, e *entity, simTime float64, cfg RadarConfig, atten *weatherSystem) []radarReturn {
	toTarget := e.position.sub(sensorPos)
	rangeM := toTarget.length()
	if rangeM == 0 {
		return nil
	}
	dir := toTarget.scale(1 / rangeM)

	// Ray-sphere intersection against the entity's hitbox (cast_ray's
	// geometry, simplified to a ray that already points at the target's
	// center: always a hit unless the sensor is inside the hitbox).
	if rangeM < targetHitboxRadiusM {
		return nil
	}

	azimuth := math.Atan2(dir.X, dir.Z)
	elevation := math.Asin(clamp(dir.Y, -1, 1))
	velocity := e.velocity.dot(dir)

	rcs := e.rcs
	if rcs <= 0 {
		rcs = cfg.TargetRCS
	}
	snr := radarEquationSNRdB(rangeM, rcs, cfg.TxPower, atten.radarAttenuationDBPerKm())

	direct := radarReturn{rangeM: rangeM, azimuth: azimuth, elevation: elevation, velocity: velocity, snrDB: snr}
	returns := []radarReturn{applyNoise(rng, direct, cfg)}

	// Multipath ghost: a ground-bounce copy, elevation mirrored below the
	// horizon and range lengthened, much weaker.
	ghost := direct
	ghost.elevation = -elevation - smallGroundBounceRad
	ghost.rangeM = rangeM * multipathRangeFactor
	ghost.snrDB = snr - multipathSNRLossDB
	returns = append(returns, applyNoise(rng, ghost, cfg))

	// Micro-Doppler sidebands: same range/angle, shifted velocity, weaker
	// than the direct return (SimEntity::get_instant_doppler_mod).
	if mod := e.doppler.doppler(simTime); mod != 0 {
		side := direct
		side.velocity = velocity + mod
		side.snrDB = snr - sidebandSNRLossDB
		returns = append(returns, applyNoise(rng, side, cfg))
	}

	return returns
}

const (
	smallGroundBounceRad = 0.02
	multipathRangeFactor = 1.05
	multipathSNRLossDB   = 10.0
	sidebandSNRLossDB    = 6.0
)

// radarEquationSNRdB applies the simplified 1/r^4 power law from
// RadarPhysics::cast_ray, then subtracts the weather path-loss
// over the one-way range.
func radarEquationSNRdB(rangeM, rcs, txPower, attenDBPerKm float64) float64 {
	r4 := rangeM * rangeM * rangeM * rangeM
	powerReceived := (txPower * rcs) / (r4 + 1e-6)
	snr := 10.0 * math.Log10(powerReceived)
	return snr - attenDBPerKm*(rangeM/1000.0)
}

// applyNoise adds independent Gaussian noise to range, angle, and velocity
// (spec §4.I's sigma_r/sigma_a/sigma_v), drawn from the engine's single
// seeded generator so a run is bit-reproducible given a seed.
func applyNoise(rng *rand.Rand, r radarReturn, cfg RadarConfig) radarReturn {
	r.rangeM += rng.NormFloat64() * cfg.RangeSigmaM
	r.azimuth += rng.NormFloat64() * cfg.AngleSigmaRad
	r.elevation += rng.NormFloat64() * cfg.AngleSigmaRad
	r.velocity += rng.NormFloat64() * cfg.VelocitySigmaMS
	return r
}

// clutterRangeM is the maximum range at which a clutter return can appear.
const clutterRangeM = 500.0

// maybeClutterReturn draws a Bernoulli trial scaled to cfg.ClutterRateHz
// and dt, and on success synthesizes one low-confidence return at a
// uniformly random range/azimuth/elevation (spec §4.I: "clutter returns
// at a configured rate").
func maybeClutterReturn(rng *rand.Rand, dt float64, cfg RadarConfig) (radarReturn, bool) {
	if rng.Float64() >= cfg.ClutterRateHz*dt {
		return radarReturn{}, false
	}
	return radarReturn{
		rangeM:    rng.Float64() * clutterRangeM,
		azimuth:   (rng.Float64()*2 - 1) * math.Pi,
		elevation: (rng.Float64()*2 - 1) * (math.Pi / 4),
		velocity:  rng.NormFloat64() * cfg.VelocitySigmaMS,
		snrDB:     clutterSNRdB,
	}, true
}

const clutterSNRdB = 15.0

// toCartesian converts one spherical return into the sensor-frame
// cartesian point the bridge carries (spec §4.I: "r*sin(az)*cos(el),
// r*sin(el), r*cos(az)*cos(el)").
func (r radarReturn) toCartesian() vec3 {
	return vec3{
		X: r.rangeM * math.Sin(r.azimuth) * math.Cos(r.elevation),
		Y: r.rangeM * math.Sin(r.elevation),
		Z: r.rangeM * math.Cos(r.azimuth) * math.Cos(r.elevation),
	}
}
