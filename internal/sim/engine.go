// Package sim implements the Sim stepper (spec §4.I): a deterministic,
// seeded physics loop that drives entities through a scripted scenario,
// casts a simulated radar against them, and publishes the resulting point
// cloud (and a mock-rendered video frame from internal/sim/render) through the Bridge to
// the Core under test. It is grounded on
// original_source/sim/src/engine/SimEngine.cpp's per-tick run() sequence,
// re-expressed as a single-goroutine Step loop in the idiom of
// References/orion-prototipe/internal/core/orion.go's owning-goroutine
// Run/Shutdown shape.
package sim

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/aryorithm/aegis-sky/internal/bridge"
	"github.com/aryorithm/aegis-sky/internal/sim/render"
	"github.com/aryorithm/aegis-sky/internal/types"
)

// Config tunes one Engine run (defaults resolved by internal/config
// before construction).
type Config struct {
	TickHz      float64
	Width       int
	Height      int
	Seed        int64
	Radar       RadarConfig
	Weather     WeatherState
	WeatherLog  []WeatherEvent
	Wind        [3]float64
	Environment []Building
}

// Engine is the Sim process's single physics loop. It is not safe for
// concurrent use.
type Engine struct {
	cfg Config

	writer *bridge.Writer
	logger *slog.Logger

	rng       *rand.Rand
	weather   *weatherSystem
	env       environment
	gimbal    gimbal
	fire      fireControl
	wind      vec3
	renderCfg render.Config

	entities    []*entity
	projectiles []*projectile
	sensorPos   vec3
	frameID     uint64
	simTime     float64
}

// New constructs an Engine over an already-created Bridge Writer and a
// loaded entity list (see LoadScenario).
func New(cfg Config, writer *bridge.Writer, entities []*entity, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	buildings := make([]building, len(cfg.Environment))
	for i, b := range cfg.Environment {
		buildings[i] = b.toInternal()
	}
	return &Engine{
		cfg:       cfg,
		writer:    writer,
		logger:    logger,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		weather:   newWeatherSystem(cfg.Weather, cfg.WeatherLog),
		env:       environment{buildings: buildings},
		wind:      vec3{X: cfg.Wind[0], Y: cfg.Wind[1], Z: cfg.Wind[2]},
		entities:  entities,
		renderCfg: render.DefaultConfig(cfg.Width, cfg.Height),
	}
}

// LoadScenario reads a scenario file into the entity list Engine needs.
func LoadScenario(path string) ([]*entity, error) { return loadScenario(path) }

// Run steps the engine at cfg.TickHz until ctx is cancelled, matching
// SimEngine::run's loop body translated into Step below.
func (e *Engine) Run(ctx context.Context) {
	period := time.Duration(float64(time.Second) / e.cfg.TickHz)
	e.logger.Info("sim engine running", "tick_hz", e.cfg.TickHz, "entities", len(e.entities))

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	dt := period.Seconds()
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("sim engine shutting down")
			return
		case <-ticker.C:
			e.Step(dt)
		}
	}
}

// Step runs exactly one physics tick and publishes its result, in the
// same order as SimEngine::run: weather, bridge input, fire control,
// gimbal, entity kinematics, radar scan, bridge output.
func (e *Engine) Step(dt float64) {
	e.simTime += dt
	e.frameID++

	e.weather.advance(e.simTime)

	cmd := e.writer.LatestCommand()

	e.stepFireControl(dt, cmd)
	e.gimbal.update(dt, float64(cmd.PanVel), float64(cmd.TiltVel))

	for _, ent := range e.entities {
		e.stepEntity(ent, dt)
	}

	points := e.scanRadar(dt)
	e.writer.PublishVideo(render.Composite(e.renderCfg, e.renderTargets()))
	e.writer.Publish(e.frameID, e.simTime, points)
}

// renderTargets projects every unoccluded, undestroyed entity into the
// gimbal's camera frame for the mock rasterizer.
func (e *Engine) renderTargets() []render.Target {
	targets := make([]render.Target, 0, len(e.entities))
	for _, ent := range e.entities {
		if ent.destroyed || e.env.occludes(e.sensorPos, ent.position) {
			continue
		}
		x, y, z := cameraFrame(ent.position.sub(e.sensorPos), e.gimbal.pan, e.gimbal.tilt)
		targets = append(targets, render.Target{X: x, Y: y, Z: z, Sprite: spriteKindFor(ent.kind)})
	}
	return targets
}

// cameraFrame rotates a world-frame vector into the gimbal's local frame
// (yaw then pitch), the approximate inverse of gimbal.forward's spherical
// construction. Exact pixel correspondence is not a goal of the mock
// rasterizer.
func cameraFrame(v vec3, pan, tilt float64) (x, y, z float64) {
	cx := v.X*math.Cos(pan) - v.Z*math.Sin(pan)
	cz0 := v.X*math.Sin(pan) + v.Z*math.Cos(pan)
	cy := v.Y*math.Cos(tilt) - cz0*math.Sin(tilt)
	cz := v.Y*math.Sin(tilt) + cz0*math.Cos(tilt)
	return cx, cy, cz
}

func spriteKindFor(k EntityType) render.SpriteKind {
	switch k {
	case EntityQuadcopter:
		return render.SpriteQuadcopter
	case EntityFixedWing:
		return render.SpriteFixedWing
	case EntityBird:
		return render.SpriteBird
	default:
		return render.SpriteUnknown
	}
}

// stepFireControl spawns a projectile on a fresh fire trigger, then
// advances every in-flight projectile and checks it against every entity
// (SimEngine.cpp's fire-control and collision blocks).
func (e *Engine) stepFireControl(dt float64, cmd types.ControlCommand) {
	if p, fired := e.fire.tryFire(e.simTime, cmd.FireTrigger, e.sensorPos, e.gimbal.forward()); fired {
		e.projectiles = append(e.projectiles, &p)
		e.logger.Info("shot fired", "sim_time", e.simTime)
	}

	live := e.projectiles[:0]
	for _, p := range e.projectiles {
		p.step(dt)
		if name, hit := checkHits(p, e.entities); hit {
			e.logger.Warn("kill confirmed", "entity", name, "sim_time", e.simTime)
		}
		if p.active {
			live = append(live, p)
		}
	}
	e.projectiles = live
}

// stepEntity applies waypoint-following kinematics plus the steady global
// wind and a per-axis Gaussian gust (SimEngine.cpp's drone-physics block).
func (e *Engine) stepEntity(ent *entity, dt float64) {
	gust := vec3{
		X: e.rng.NormFloat64() * gustSigmaX,
		Y: e.rng.NormFloat64() * gustSigmaY,
		Z: e.rng.NormFloat64() * gustSigmaZ,
	}
	ent.velocity = ent.velocity.add(e.wind.scale(windCouplingFactor).add(gust).scale(dt))
	ent.step(dt)
}

const (
	gustSigmaX         = 0.5
	gustSigmaY         = 0.2
	gustSigmaZ         = 0.5
	windCouplingFactor = 0.1
)

// scanRadar casts the radar against every unoccluded entity, appends any
// clutter return for the tick, and converts every return to the
// sensor-frame cartesian RadarPoint the bridge carries.
func (e *Engine) scanRadar(dt float64) []types.RadarPoint {
	var points []types.RadarPoint

	for _, ent := range e.entities {
		if ent.destroyed || e.env.occludes(e.sensorPos, ent.position) {
			continue
		}
		for _, ret := range scanEntity(e.rng, e.sensorPos, ent, e.simTime, e.cfg.Radar, e.weather) {
			points = append(points, cartesianPoint(ret))
		}
	}

	if ret, ok := maybeClutterReturn(e.rng, dt, e.cfg.Radar); ok {
		points = append(points, cartesianPoint(ret))
	}

	return points
}

func cartesianPoint(r radarReturn) types.RadarPoint {
	c := r.toCartesian()
	return types.RadarPoint{
		X:        float32(c.X),
		Y:        float32(c.Y),
		Z:        float32(c.Z),
		Velocity: float32(r.velocity),
		SNRdB:    float32(r.snrDB),
	}
}
