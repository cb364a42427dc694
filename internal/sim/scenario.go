package sim

import (
	"encoding/json"
	"fmt"
	"os"
)

// scenarioFile is the on-disk JSON shape consumed by loadScenario. The
// authoring format itself is out of scope (spec §1); this struct only
// decodes what SimEngine needs to step deterministically, grounded on
// ScenarioLoader.cpp's field names translated to snake_case JSON tags.
type scenarioFile struct {
	MissionName string           `json:"mission_name"`
	Entities    []scenarioEntity `json:"entities"`
}

type scenarioEntity struct {
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	StartPos    [3]float64    `json:"start_pos"`
	RCS         float64       `json:"rcs"`
	Speed       float64       `json:"speed"`
	Waypoints   [][3]float64  `json:"waypoints"`
	MicroDopplerCfg *microDopplerSpec `json:"micro_doppler,omitempty"`
}

type microDopplerSpec struct {
	BladeSpeedMPS float64 `json:"blade_speed_mps"`
	BladeRateHz   float64 `json:"blade_rate_hz"`
	Flapping      bool    `json:"flapping"`
}

// loadScenario reads and decodes a scenario file into the entity list the
// stepper owns for the rest of the run (ScenarioLoader::load_mission).
func loadScenario(path string) ([]*entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}

	var sf scenarioFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("scenario: invalid JSON: %w", err)
	}
	if len(sf.Entities) == 0 {
		return nil, fmt.Errorf("scenario: %q has no entities", sf.MissionName)
	}

	entities := make([]*entity, 0, len(sf.Entities))
	for _, se := range sf.Entities {
		e := &entity{
			name:     se.Name,
			kind:     parseEntityType(se.Type),
			position: vec3{X: se.StartPos[0], Y: se.StartPos[1], Z: se.StartPos[2]},
			rcs:      se.RCS,
			maxSpeed: se.Speed,
		}
		if e.maxSpeed == 0 {
			e.maxSpeed = defaultEntitySpeedMS
		}
		for _, wp := range se.Waypoints {
			e.waypoints = append(e.waypoints, vec3{X: wp[0], Y: wp[1], Z: wp[2]})
		}
		if se.MicroDopplerCfg != nil {
			e.doppler = microDoppler{
				bladeSpeedMPS: se.MicroDopplerCfg.BladeSpeedMPS,
				bladeRateHz:   se.MicroDopplerCfg.BladeRateHz,
				flapping:      se.MicroDopplerCfg.Flapping,
			}
		}
		entities = append(entities, e)
	}

	return entities, nil
}

const defaultEntitySpeedMS = 10.0
