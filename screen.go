package main

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/kmarberry/chip-8/chip8"
)

/// Scale is the window size of a single CHIP-8 pixel.
///
const Scale = 10

/// Refresh blits the CHIP-8 display, one scaled rectangle per lit
/// pixel.
///
func Refresh() {
	Renderer.SetDrawColor(17, 29, 43, 255)
	Renderer.Clear()

	// the pixel color
	Renderer.SetDrawColor(143, 145, 133, 255)

	for i, lit := range VM.Pixels() {
		if !lit {
			continue
		}

		x := int32(i % chip8.ScreenWidth)
		y := int32(i / chip8.ScreenWidth)

		Renderer.FillRect(&sdl.Rect{
			X: x * Scale,
			Y: y * Scale,
			W: Scale,
			H: Scale,
		})
	}

	// show the new frame
	Renderer.Present()
}
