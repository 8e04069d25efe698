package render

import (
	"image/color"
	"time"
)

type Renderer interface {
	Init() error
	Deinit() error
	AddDecoration(row, col int, content string, frames int)
	RenderLoop(startTime time.Time, framePeriod time.Duration, render func(now time.Time, duration time.Duration) bool)
	Fill(row, col int, message string)
	FillColor(row, col int, c color.RGBA, message string)
}
