package sim

import "math"

// EntityType classifies an entity for its micro-Doppler signature and
// rendering (rendering itself is out of scope).
type EntityType int

const (
	EntityUnknown EntityType = iota
	EntityQuadcopter
	EntityFixedWing
	EntityBird
)

func parseEntityType(s string) EntityType {
	switch s {
	case "QUADCOPTER":
		return EntityQuadcopter
	case "FIXED_WING":
		return EntityFixedWing
	case "BIRD":
		return EntityBird
	default:
		return EntityUnknown
	}
}

// microDoppler is the per-entity rotor/wing signature sampled each tick to
// produce sideband returns (spec §4.I).
type microDoppler struct {
	bladeSpeedMPS float64 // rotor tip speed
	bladeRateHz   float64
	flapping      bool // true for biological (bird) motion instead of rotor blades
}

// doppler returns the instantaneous radial velocity contribution of the
// entity's blades/wings at simulated time t, grounded on
// SimEntity::get_instant_doppler_mod.
func (m microDoppler) doppler(t float64) float64 {
	if m.bladeSpeedMPS <= 0 {
		return 0
	}
	phase := t * m.bladeRateHz * 2 * math.Pi
	if m.flapping {
		return math.Sin(phase) * 2.0
	}
	return math.Sin(phase) * m.bladeSpeedMPS * 0.15
}

// entity is one moving target in the scenario: a waypoint-following body
// with an RCS, a micro-Doppler profile, and a maximum speed.
type entity struct {
	name     string
	kind     EntityType
	position vec3
	velocity vec3

	rcs      float64 // radar cross-section, m^2
	maxSpeed float64 // m/s
	doppler  microDoppler

	waypoints []vec3
	destroyed bool
}

// waypointArriveRadius is how close an entity must get to its current
// waypoint before advancing to the next one (SimEntity::update).
const waypointArriveRadius = 2.0

// step integrates one tick of kinematics: steer toward the current
// waypoint at maxSpeed, then Euler-integrate position (SimEntity::update).
// A destroyed entity free-falls instead and clamps to the ground.
func (e *entity) step(dt float64) {
	if e.destroyed {
		e.velocity.Y += gravityMPS2 * dt
		e.position = e.position.add(e.velocity.scale(dt))
		if e.position.Y < 0 {
			e.position.Y = 0
		}
		return
	}

	if len(e.waypoints) > 0 {
		target := e.waypoints[0]
		toTarget := target.sub(e.position)
		if toTarget.length() < waypointArriveRadius {
			e.waypoints = e.waypoints[1:]
		} else {
			e.velocity = toTarget.normalize().scale(e.maxSpeed)
		}
	}

	e.position = e.position.add(e.velocity.scale(dt))
}

// destroy marks the entity as no longer a flight threat: it begins
// free-falling under gravity (spec §4.I scope note on projectile hit
// tests; the original teleports dead entities away, a free-fall reads
// more naturally against a deterministic physics model).
func (e *entity) destroy() {
	e.destroyed = true
	e.velocity = vec3{Y: gravityMPS2}
}
