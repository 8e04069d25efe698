package game

import (
	"time"
)

// HitResult describes the outcome of one matched input.
type HitResult struct {
	Grade        Grade
	Target       Note          // The target note that was consumed
	UserPitch    uint8         // The pitch actually played
	Error        time.Duration // Signed timing error, negative = early
	PitchCorrect bool
}
