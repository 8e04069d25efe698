package game

import (
	"time"
)

// Note is a scheduled note the player is expected to hit.
type Note struct {
	Time     time.Duration // The time the note should be hit
	Duration time.Duration // How long the note is held, carried for display
	Pitch    uint8         // MIDI pitch 0-127
}

// BeatNote positions a note in beats rather than wall-clock time.
type BeatNote struct {
	Beat     float64
	Duration float64
	Pitch    uint8
}

// DefaultTempo is assumed when a chart carries no tempo of its own.
const DefaultTempo = 120.0

// FromBeats converts beat-indexed notes to wall-clock notes at the given
// tempo. Order is preserved; the scorer sorts its own copy.
func FromBeats(notes []BeatNote, tempo float64) []Note {
	if tempo <= 0 {
		tempo = DefaultTempo
	}
	secondsPerBeat := 60.0 / tempo
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, Note{
			Time:     time.Duration(n.Beat * secondsPerBeat * float64(time.Second)),
			Duration: time.Duration(n.Duration * secondsPerBeat * float64(time.Second)),
			Pitch:    n.Pitch,
		})
	}
	return out
}
