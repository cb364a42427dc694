package sim

import (
	"os"
	"path/filepath"
	"testing"
)

const testScenarioJSON = `{
  "mission_name": "test-incursion",
  "entities": [
    {
      "name": "drone-1",
      "type": "QUADCOPTER",
      "start_pos": [0, 50, 200],
      "rcs": 0.02,
      "speed": 15,
      "waypoints": [[0, 50, 100], [50, 50, 50]],
      "micro_doppler": {"blade_speed_mps": 60, "blade_rate_hz": 25}
    },
    {
      "name": "bird-1",
      "type": "BIRD",
      "start_pos": [10, 20, 30]
    }
  ]
}`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing test scenario: %v", err)
	}
	return path
}

func TestLoadScenarioParsesEntities(t *testing.T) {
	entities, err := loadScenario(writeScenario(t, testScenarioJSON))
	if err != nil {
		t.Fatalf("loadScenario() error = %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("loadScenario() returned %d entities, want 2", len(entities))
	}

	drone := entities[0]
	if drone.name != "drone-1" || drone.kind != EntityQuadcopter {
		t.Errorf("entity[0] = %+v, want name drone-1 kind EntityQuadcopter", drone)
	}
	if drone.position != (vec3{X: 0, Y: 50, Z: 200}) {
		t.Errorf("entity[0].position = %+v, want (0,50,200)", drone.position)
	}
	if len(drone.waypoints) != 2 {
		t.Errorf("entity[0] has %d waypoints, want 2", len(drone.waypoints))
	}
	if drone.doppler.bladeSpeedMPS != 60 {
		t.Errorf("entity[0].doppler.bladeSpeedMPS = %v, want 60", drone.doppler.bladeSpeedMPS)
	}

	bird := entities[1]
	if bird.kind != EntityBird {
		t.Errorf("entity[1].kind = %v, want EntityBird", bird.kind)
	}
	if bird.maxSpeed != defaultEntitySpeedMS {
		t.Errorf("entity[1].maxSpeed = %v, want default %v", bird.maxSpeed, defaultEntitySpeedMS)
	}
}

func TestLoadScenarioRejectsEmptyEntityList(t *testing.T) {
	_, err := loadScenario(writeScenario(t, `{"mission_name": "empty", "entities": []}`))
	if err == nil {
		t.Fatal("loadScenario() error = nil, want error for a mission with no entities")
	}
}

func TestLoadScenarioRejectsInvalidJSON(t *testing.T) {
	_, err := loadScenario(writeScenario(t, `not json`))
	if err == nil {
		t.Fatal("loadScenario() error = nil, want error for malformed JSON")
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := loadScenario(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("loadScenario() error = nil, want error for a missing file")
	}
}
