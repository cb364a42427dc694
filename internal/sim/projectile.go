package sim

// Kinetic interceptor constants match Projectile.h (30mm cannon muzzle
// velocity, standard gravity) and SimEngine.cpp's fire-control block
// (10Hz rate limit, 4s flight timeout, 1m hit radius).
const (
	muzzleVelocityMS  = 800.0
	fireRateLimitS    = 0.1
	projectileMaxAgeS = 4.0
	hitRadiusM        = 1.0
)

// projectile is a single fired round; gravity-only ballistics, despawned
// on ground impact, timeout, or a confirmed hit.
type projectile struct {
	position vec3
	velocity vec3
	age      float64
	active   bool
}

// fireControl tracks the rate limiter across ticks; it is not reset by
// scenario reload within a run.
type fireControl struct {
	lastShotAt float64
	hasShot    bool
}

// tryFire spawns a new projectile along dir from pos if fireTrigger is set
// and the rate limit has elapsed (SimEngine.cpp's "Rate limiter 10Hz"
// block).
func (f *fireControl) tryFire(now float64, fireTrigger bool, pos, dir vec3) (projectile, bool) {
	if !fireTrigger {
		return projectile{}, false
	}
	if f.hasShot && now-f.lastShotAt <= fireRateLimitS {
		return projectile{}, false
	}
	f.lastShotAt = now
	f.hasShot = true
	return projectile{position: pos, velocity: dir.scale(muzzleVelocityMS), active: true}, true
}

// step integrates gravity and position, then despawns on ground contact or
// timeout (SimEngine.cpp's projectile physics block).
func (p *projectile) step(dt float64) {
	if !p.active {
		return
	}
	p.velocity.Y += gravityMPS2 * dt
	p.position = p.position.add(p.velocity.scale(dt))
	p.age += dt

	if p.position.Y < 0 || p.age > projectileMaxAgeS {
		p.active = false
	}
}

// checkHits deactivates the projectile and destroys the first entity
// within hitRadiusM of it (SimEngine.cpp's "Drone Hit" loop).
func checkHits(p *projectile, entities []*entity) (hitName string, hit bool) {
	if !p.active {
		return "", false
	}
	for _, e := range entities {
		if e.destroyed {
			continue
		}
		if distance(p.position, e.position) < hitRadiusM {
			e.destroy()
			p.active = false
			return e.name, true
		}
	}
	return "", false
}
