package theme

import (
	"fmt"

	"github.com/fennelk/keyfall/internal/game"
)

type DefaultTheme struct{}

const (
	noteSym = "⬤"
	barSym  = "-"
	missSym = "⨯"
)

type rgb struct{ R, G, B uint8 }

// One color per pitch class, accidentals dimmer than naturals.
var pitchColors = [12]rgb{
	{236, 30, 0},    // C
	{118, 15, 0},    // C#
	{0, 118, 236},   // D
	{0, 59, 118},    // D#
	{236, 195, 0},   // E
	{0, 236, 128},   // F
	{0, 118, 64},    // F#
	{106, 0, 236},   // G
	{53, 0, 118},    // G#
	{236, 0, 106},   // A
	{118, 0, 53},    // A#
	{173, 236, 236}, // B
}

var gradeColors = map[game.Grade]rgb{
	game.Perfect: {173, 236, 236},
	game.Great:   {0, 236, 236},
	game.Good:    {0, 236, 0},
	game.Miss:    {236, 30, 0},
}

func (t *DefaultTheme) RenderNote(pitch uint8) string {
	c := pitchColors[pitch%12]
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, noteSym)
}

func (t *DefaultTheme) RenderHitField() string {
	return barSym
}

func (t *DefaultTheme) RenderMissMarker() string {
	c := gradeColors[game.Miss]
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, missSym)
}

func (t *DefaultTheme) GradeName(g game.Grade) string {
	c := gradeColors[g]
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%7v\033[0m", c.R, c.G, c.B, g.String())
}

func (t *DefaultTheme) GradeColor(g game.Grade) (uint8, uint8, uint8) {
	c := gradeColors[g]
	return c.R, c.G, c.B
}
