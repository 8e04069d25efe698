package score

import (
	"fmt"
	"sort"
	"time"

	"github.com/fennelk/keyfall/internal/game"
)

// Stats aggregates one practice session.
type Stats struct {
	TotalNotes int
	Perfect    int
	Great      int
	Good       int
	Missed     int
	WrongPitch int

	CurrentCombo int
	MaxCombo     int
	TotalScore   int
}

// HitCount is the number of target notes matched at any grade.
func (s Stats) HitCount() int {
	return s.Perfect + s.Great + s.Good
}

// Accuracy is the matched fraction of all target notes, 0 for an empty
// chart.
func (s Stats) Accuracy() float64 {
	if s.TotalNotes == 0 {
		return 0
	}
	return float64(s.HitCount()) / float64(s.TotalNotes)
}

// How far around the cursor each input searches: one note behind, the
// cursor itself, and two ahead. Tolerates near-simultaneous or slightly
// out-of-order play without scanning the whole chart.
const (
	lookBehind = 1
	lookAhead  = 2
)

// PracticeScorer matches a stream of live note-ons against a fixed
// target sequence and keeps the running session statistics.
//
// It holds no locks. The caller serializes access; in this program the
// render loop is the single writer.
type PracticeScorer struct {
	notes   []game.Note // Sorted by Time, never mutated after construction
	windows game.Windows

	stats   Stats
	next    int    // Earliest target index not yet matched or expired
	matched []bool // Per target index
	started bool
}

// NewPracticeScorer copies and sorts the target notes. The windows are
// validated once here so bad configuration never reaches evaluation.
func NewPracticeScorer(notes []game.Note, windows game.Windows) (*PracticeScorer, error) {
	if err := windows.Validate(); err != nil {
		return nil, fmt.Errorf("timing windows: %w", err)
	}
	sorted := make([]game.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})
	s := &PracticeScorer{
		notes:   sorted,
		windows: windows,
		matched: make([]bool, len(sorted)),
	}
	s.stats.TotalNotes = len(sorted)
	return s, nil
}

// Start begins a fresh session over the same chart, discarding any
// previous progress. Safe to call again at any time.
func (s *PracticeScorer) Start() {
	s.stats = Stats{TotalNotes: len(s.notes)}
	s.next = 0
	for i := range s.matched {
		s.matched[i] = false
	}
	s.started = true
}

// Stats returns a snapshot of the running session statistics.
func (s *PracticeScorer) Stats() Stats {
	return s.stats
}

// TargetNotes returns the sorted target sequence backing this session.
// Callers must not mutate it.
func (s *PracticeScorer) TargetNotes() []game.Note {
	return s.notes
}

// Matched reports whether the target note at index i has been consumed.
func (s *PracticeScorer) Matched(i int) bool {
	return i >= 0 && i < len(s.matched) && s.matched[i]
}

// NextIndex is the cursor: the earliest target index not yet matched or
// expired. It never moves backwards within a session.
func (s *PracticeScorer) NextIndex() int {
	return s.next
}

// IsComplete reports whether the cursor has passed the last target note.
func (s *PracticeScorer) IsComplete() bool {
	return s.next >= len(s.notes)
}

// Progress is the consumed fraction of the chart, 1 for an empty chart.
func (s *PracticeScorer) Progress() float64 {
	if len(s.notes) == 0 {
		return 1
	}
	p := float64(s.next) / float64(len(s.notes))
	if p > 1 {
		p = 1
	}
	return p
}

// OnUserNote evaluates one live note-on at the current playback time.
//
// It returns nil when nothing is in range: before Start, after the last
// note, or for a stray press outside every window. A nil result is not
// a miss; misses are only charged when a note expires unmatched.
func (s *PracticeScorer) OnUserNote(pitch uint8, now time.Duration) *game.HitResult {
	if !s.started || len(s.notes) == 0 {
		return nil
	}

	s.expire(now)
	if s.next >= len(s.notes) {
		return nil
	}

	lo := s.next - lookBehind
	if lo < 0 {
		lo = 0
	}
	hi := s.next + 1 + lookAhead
	if hi > len(s.notes) {
		hi = len(s.notes)
	}

	// Closest unmatched note in range wins; on an exact distance tie the
	// earlier note is kept.
	best := -1
	var bestErr, bestAbs time.Duration
	for i := lo; i < hi; i++ {
		if s.matched[i] {
			continue
		}
		err := now - s.notes[i].Time
		abs := err
		if abs < 0 {
			abs = -abs
		}
		if abs > s.windows.Good {
			continue
		}
		if best == -1 || abs < bestAbs {
			best, bestErr, bestAbs = i, err, abs
		}
	}
	if best == -1 {
		return nil
	}

	target := s.notes[best]
	grade := s.windows.Classify(bestAbs)
	pitchCorrect := pitch == target.Pitch
	if !pitchCorrect && grade > game.Good {
		// Wrong pitch never scores above Good, however tight the timing.
		grade = game.Good
	}

	s.commit(best, grade, pitchCorrect)

	return &game.HitResult{
		Grade:        grade,
		Target:       target,
		UserPitch:    pitch,
		Error:        bestErr,
		PitchCorrect: pitchCorrect,
	}
}

// expire lazily charges notes the playback time has moved beyond the
// good window of. Notes are only charged here, not on a clock tick, so
// the cursor catches up on the next input.
func (s *PracticeScorer) expire(now time.Duration) {
	for s.next < len(s.notes) && now-s.notes[s.next].Time > s.windows.Good {
		if !s.matched[s.next] {
			s.stats.Missed++
			s.stats.CurrentCombo = 0
		}
		s.next++
	}
}

func (s *PracticeScorer) commit(idx int, grade game.Grade, pitchCorrect bool) {
	s.matched[idx] = true
	if idx == s.next {
		for s.next < len(s.notes) && s.matched[s.next] {
			s.next++
		}
	}

	switch grade {
	case game.Perfect:
		s.stats.Perfect++
	case game.Great:
		s.stats.Great++
	case game.Good:
		s.stats.Good++
	}
	s.stats.TotalScore += grade.Score()
	if !pitchCorrect {
		s.stats.WrongPitch++
	}
	// Any committed grade keeps the combo alive; only expiries break it.
	s.stats.CurrentCombo++
	if s.stats.CurrentCombo > s.stats.MaxCombo {
		s.stats.MaxCombo = s.stats.CurrentCombo
	}
}

// Finalize charges every remaining unmatched note as missed and ends the
// session. MaxCombo is left as achieved.
func (s *PracticeScorer) Finalize() Stats {
	for i := s.next; i < len(s.notes); i++ {
		if !s.matched[i] {
			s.stats.Missed++
		}
	}
	s.next = len(s.notes)
	s.stats.CurrentCombo = 0
	return s.stats
}
