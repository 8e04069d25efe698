package theme

import "github.com/fennelk/keyfall/internal/game"

type Theme interface {
	RenderNote(pitch uint8) string
	RenderHitField() string
	RenderMissMarker() string
	GradeName(g game.Grade) string
	GradeColor(g game.Grade) (r, gr, b uint8)
}
