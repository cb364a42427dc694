package sim

import "testing"

func TestFireControlRateLimitsShots(t *testing.T) {
	f := &fireControl{}
	dir := vec3{Z: 1}

	if _, fired := f.tryFire(0, true, vec3{}, dir); !fired {
		t.Fatal("first shot with trigger held should fire")
	}
	if _, fired := f.tryFire(0.05, true, vec3{}, dir); fired {
		t.Fatal("second shot within the rate limit window should not fire")
	}
	if _, fired := f.tryFire(0.2, true, vec3{}, dir); !fired {
		t.Fatal("shot after the rate limit window has elapsed should fire")
	}
}

func TestFireControlRequiresTrigger(t *testing.T) {
	f := &fireControl{}
	if _, fired := f.tryFire(0, false, vec3{}, vec3{Z: 1}); fired {
		t.Fatal("tryFire without a trigger should not fire")
	}
}

func TestProjectileStepDespawnsOnGroundContact(t *testing.T) {
	p := &projectile{position: vec3{Y: 0.5}, velocity: vec3{Y: -100}, active: true}
	p.step(0.1)

	if p.active {
		t.Fatal("projectile should despawn after crossing the ground plane")
	}
}

func TestProjectileStepDespawnsOnTimeout(t *testing.T) {
	p := &projectile{position: vec3{Y: 1000}, velocity: vec3{}, active: true, age: projectileMaxAgeS}
	p.step(0.01)

	if p.active {
		t.Fatal("projectile should despawn once its age exceeds the flight timeout")
	}
}

func TestCheckHitsDestroysEntityWithinHitRadius(t *testing.T) {
	p := &projectile{position: vec3{}, active: true}
	entities := []*entity{
		{name: "far", position: vec3{X: 100}},
		{name: "near", position: vec3{X: 0.5}},
	}

	name, hit := checkHits(p, entities)
	if !hit || name != "near" {
		t.Fatalf("checkHits = (%q, %v), want (\"near\", true)", name, hit)
	}
	if !entities[1].destroyed {
		t.Error("hit entity should be marked destroyed")
	}
	if p.active {
		t.Error("projectile should be deactivated on a confirmed hit")
	}
}

func TestCheckHitsSkipsAlreadyDestroyedEntity(t *testing.T) {
	p := &projectile{position: vec3{}, active: true}
	entities := []*entity{{name: "dead", position: vec3{X: 0.1}, destroyed: true}}

	if _, hit := checkHits(p, entities); hit {
		t.Fatal("checkHits should never re-hit an already destroyed entity")
	}
}
