package game

import (
	"time"
)

// Input is one live note-on, stamped with the time since session start.
type Input struct {
	Pitch   uint8
	HitTime time.Duration
}
