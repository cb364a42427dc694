package sim

import "testing"

func TestOccludesDetectsBuildingBetweenObserverAndTarget(t *testing.T) {
	env := environment{buildings: []building{
		{center: vec3{X: 0, Y: 0, Z: 50}, halfExtents: vec3{X: 5, Y: 5, Z: 5}},
	}}

	if !env.occludes(vec3{Z: 0}, vec3{Z: 100}) {
		t.Fatal("occludes = false, want true for a building directly on the line of sight")
	}
}

func TestOccludesIgnoresBuildingOffToOneSide(t *testing.T) {
	env := environment{buildings: []building{
		{center: vec3{X: 50, Y: 0, Z: 50}, halfExtents: vec3{X: 5, Y: 5, Z: 5}},
	}}

	if env.occludes(vec3{Z: 0}, vec3{Z: 100}) {
		t.Fatal("occludes = true, want false for a building off the line of sight")
	}
}

func TestOccludesIgnoresBuildingBeyondTarget(t *testing.T) {
	env := environment{buildings: []building{
		{center: vec3{X: 0, Y: 0, Z: 500}, halfExtents: vec3{X: 5, Y: 5, Z: 5}},
	}}

	if env.occludes(vec3{Z: 0}, vec3{Z: 100}) {
		t.Fatal("occludes = true, want false for a building past the target")
	}
}

func TestBuildingToInternalConvertsArrays(t *testing.T) {
	b := Building{Center: [3]float64{1, 2, 3}, HalfExtents: [3]float64{4, 5, 6}}
	got := b.toInternal()

	want := building{center: vec3{X: 1, Y: 2, Z: 3}, halfExtents: vec3{X: 4, Y: 5, Z: 6}}
	if got != want {
		t.Errorf("toInternal() = %+v, want %+v", got, want)
	}
}
