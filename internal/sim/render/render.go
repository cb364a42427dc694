// Package render is the Sim's mock rasterizer: it composites a flat sky
// background with a small sprite per visible target, projected through a
// pinhole camera model, and hands back a raw RGB8 buffer the size the
// Bridge's video section expects. It is a stand-in for a real renderer
// (spec §4.I scope note: rendering fidelity is out of scope) that still
// gives aegis-core's ImageSource something non-empty to read.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Target is one entity in sensor-frame coordinates (Z forward, Y up, X
// east), along with the sprite used to draw it.
type Target struct {
	X, Y, Z float64
	Sprite  SpriteKind
}

// SpriteKind selects the placeholder sprite color; it stands in for the
// entity classification a real renderer would texture-map.
type SpriteKind int

const (
	SpriteUnknown SpriteKind = iota
	SpriteQuadcopter
	SpriteFixedWing
	SpriteBird
)

// Config tunes the mock camera's field of view and frame size; it is
// deliberately separate from the real camera calibration aegis-core loads,
// since this renderer never claims pixel-accurate correspondence.
type Config struct {
	Width, Height int
	FOVRad        float64
	BaseSpritePx  int
}

// DefaultConfig matches a generic 60-degree horizontal FOV lens, close
// enough for a mock rasterizer that exists to exercise the video path
// rather than to train a detector.
func DefaultConfig(width, height int) Config {
	return Config{Width: width, Height: height, FOVRad: 1.047, BaseSpritePx: 24}
}

var spriteColors = map[SpriteKind]color.NRGBA{
	SpriteUnknown:    {R: 180, G: 180, B: 180, A: 255},
	SpriteQuadcopter: {R: 220, G: 60, B: 60, A: 255},
	SpriteFixedWing:  {R: 60, G: 140, B: 220, A: 255},
	SpriteBird:       {R: 230, G: 200, B: 60, A: 255},
}

const skyColor = 0x14141eff // dark blue-gray, packed 0xRRGGBBAA

// Composite renders targets onto a fresh background and returns the
// resulting RGB8 buffer, width*height*3 bytes, row-major, no padding
// (bridge.Writer.PublishVideo's expected layout).
func Composite(cfg Config, targets []Target) []byte {
	bg := imaging.New(cfg.Width, cfg.Height, color.NRGBA{
		R: byte(skyColor >> 24 & 0xff), G: byte(skyColor >> 16 & 0xff), B: byte(skyColor >> 8 & 0xff), A: 0xff,
	})

	focal := (float64(cfg.Width) / 2) / math.Tan(cfg.FOVRad/2)
	cx, cy := float64(cfg.Width)/2, float64(cfg.Height)/2

	frame := image.Image(bg)
	for _, tgt := range targets {
		if tgt.Z <= 0.1 {
			continue // behind or at the camera; nothing to project
		}
		px := cx + (tgt.X/tgt.Z)*focal
		py := cy - (tgt.Y/tgt.Z)*focal

		size := spriteSizePx(cfg.BaseSpritePx, tgt.Z)
		if size < 1 {
			continue
		}
		if px < -float64(size) || px > float64(cfg.Width+size) || py < -float64(size) || py > float64(cfg.Height+size) {
			continue // well outside the frame, skip the paste
		}

		sprite := imaging.New(size, size, colorFor(tgt.Sprite))
		pos := image.Pt(int(px)-size/2, int(py)-size/2)
		frame = imaging.Paste(frame, sprite, pos)
	}

	return toRGB8(frame)
}

func colorFor(k SpriteKind) color.NRGBA {
	if c, ok := spriteColors[k]; ok {
		return c
	}
	return spriteColors[SpriteUnknown]
}

// spriteSizePx shrinks the sprite with distance so closer targets read as
// visibly larger, clamped so a target never vanishes entirely or balloons
// past a few screen-diameters.
func spriteSizePx(base int, rangeM float64) int {
	const referenceRangeM = 50.0
	scaled := float64(base) * referenceRangeM / rangeM
	if scaled < 2 {
		return 2
	}
	if scaled > float64(base)*8 {
		return base * 8
	}
	return int(scaled)
}

// toRGB8 drops the alpha channel imaging's NRGBA frames carry, since the
// Bridge's video section is packed RGB8.
func toRGB8(img image.Image) []byte {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := make([]byte, w*h*3)

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			out[i] = byte(r >> 8)
			out[i+1] = byte(g >> 8)
			out[i+2] = byte(b >> 8)
			i += 3
		}
	}
	return out
}
