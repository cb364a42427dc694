package sim

// WeatherState is the atmospheric condition affecting radar attenuation,
// sampled once per tick (spec §4.I's expansion: WeatherSystem.h).
type WeatherState struct {
	RainIntensityMMH float64 // 0 = clear, 50 = monsoon
	FogDensity       float64 // 0..1, visibility reduction (renderer-only, out of scope)
	WindSpeedMS      float64
}

// WeatherEvent schedules a condition change at a fixed simulated time, the
// Go equivalent of SimEngine::run's "if now > 10.0 weather_.set_condition(...)"
// inline storm trigger, made data-driven instead of hardcoded.
type WeatherEvent struct {
	AtSeconds float64
	State     WeatherState
}

// weatherSystem holds the current condition and an ordered schedule of
// future changes.
type weatherSystem struct {
	current WeatherState
	events  []WeatherEvent
	nextIdx int
}

func newWeatherSystem(initial WeatherState, schedule []WeatherEvent) *weatherSystem {
	return &weatherSystem{current: initial, events: schedule}
}

// advance applies any scheduled event whose time has arrived. Events fire
// in schedule order and never retroactively; a gap in the tick rate can
// never skip one, since each tick checks the next pending event in turn.
func (w *weatherSystem) advance(simTime float64) {
	for w.nextIdx < len(w.events) && simTime >= w.events[w.nextIdx].AtSeconds {
		w.current = w.events[w.nextIdx].State
		w.nextIdx++
	}
}

// radarAttenuationDBPerKm approximates ITU-R P.838 X-band rain attenuation
// with the same simplified linear model as WeatherSystem::get_radar_attenuation_db.
func (w *weatherSystem) radarAttenuationDBPerKm() float64 {
	if w.current.RainIntensityMMH <= 0 {
		return 0
	}
	return 0.02 * w.current.RainIntensityMMH
}
