package parser

import "github.com/fennelk/keyfall/internal/game"

type Parser interface {
	Parse(file string) (*game.Chart, error)
}
