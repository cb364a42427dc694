package render

import "testing"

func TestCompositeReturnsCorrectlySizedBuffer(t *testing.T) {
	cfg := DefaultConfig(64, 48)
	got := Composite(cfg, nil)

	want := 64 * 48 * 3
	if len(got) != want {
		t.Fatalf("Composite() returned %d bytes, want %d (width*height*3)", len(got), want)
	}
}

func TestCompositeSkipsTargetsBehindCamera(t *testing.T) {
	cfg := DefaultConfig(64, 48)
	behind := Composite(cfg, []Target{{X: 0, Y: 0, Z: -10, Sprite: SpriteQuadcopter}})
	empty := Composite(cfg, nil)

	if !bytesEqual(behind, empty) {
		t.Error("a target behind the camera should not change the composited frame")
	}
}

func TestCompositePaintsAVisibleTarget(t *testing.T) {
	cfg := DefaultConfig(64, 48)
	visible := Composite(cfg, []Target{{X: 0, Y: 0, Z: 20, Sprite: SpriteQuadcopter}})
	empty := Composite(cfg, nil)

	if bytesEqual(visible, empty) {
		t.Error("a target centered in frame should change the composited frame")
	}
}

func TestSpriteSizeShrinksWithRange(t *testing.T) {
	near := spriteSizePx(24, 25)
	far := spriteSizePx(24, 500)
	if far >= near {
		t.Errorf("spriteSizePx(far=%d) should be smaller than spriteSizePx(near=%d)", far, near)
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
