package game

// Chart is a parsed song: its beat-indexed notes plus the tempo they
// were written against.
type Chart struct {
	Name      string
	Tempo     float64 // Beats per minute
	BeatNotes []BeatNote
}

// Notes converts the chart to wall-clock target notes at its own tempo.
func (c *Chart) Notes() []Note {
	return FromBeats(c.BeatNotes, c.Tempo)
}

// PitchRange returns the lowest and highest pitch in the chart, used to
// lay out the playing field columns. Returns (0, 0) for an empty chart.
func (c *Chart) PitchRange() (lo, hi uint8) {
	if len(c.BeatNotes) == 0 {
		return 0, 0
	}
	lo, hi = c.BeatNotes[0].Pitch, c.BeatNotes[0].Pitch
	for _, n := range c.BeatNotes[1:] {
		if n.Pitch < lo {
			lo = n.Pitch
		}
		if n.Pitch > hi {
			hi = n.Pitch
		}
	}
	return lo, hi
}
