package game

import (
	"fmt"
	"time"
)

// Windows are the concentric timing tolerance bands around a note. An
// absolute error within Perfect grades Perfect, within Great grades
// Great, within Good grades Good. Beyond Good the input does not match
// the note at all.
type Windows struct {
	Perfect time.Duration
	Great   time.Duration
	Good    time.Duration
}

func DefaultWindows() Windows {
	return Windows{
		Perfect: 30 * time.Millisecond,
		Great:   80 * time.Millisecond,
		Good:    150 * time.Millisecond,
	}
}

// Validate rejects windows that are not positive and ascending.
func (w Windows) Validate() error {
	if w.Perfect <= 0 {
		return fmt.Errorf("perfect window must be positive, got %v", w.Perfect)
	}
	if w.Great < w.Perfect || w.Good < w.Great {
		return fmt.Errorf("windows must ascend: perfect %v, great %v, good %v", w.Perfect, w.Great, w.Good)
	}
	return nil
}

// Classify grades an absolute timing error already known to be within
// the good window.
func (w Windows) Classify(err time.Duration) Grade {
	switch {
	case err <= w.Perfect:
		return Perfect
	case err <= w.Great:
		return Great
	}
	return Good
}
