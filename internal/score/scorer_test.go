package score

import (
	"testing"
	"time"

	"github.com/fennelk/keyfall/internal/game"
)

func at(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func note(ms int64, pitch uint8) game.Note {
	return game.Note{Time: at(ms), Pitch: pitch}
}

func newScorer(t *testing.T, notes ...game.Note) *PracticeScorer {
	t.Helper()
	s, err := NewPracticeScorer(notes, game.DefaultWindows())
	if nil != err {
		t.Fatal("unable to construct scorer:", err)
	}
	s.Start()
	return s
}

func TestInvalidWindows(t *testing.T) {
	bad := []game.Windows{
		{},
		{Perfect: -at(10), Great: at(80), Good: at(150)},
		{Perfect: at(80), Great: at(30), Good: at(150)},
		{Perfect: at(30), Great: at(150), Good: at(80)},
	}
	for _, w := range bad {
		if _, err := NewPracticeScorer(nil, w); nil == err {
			t.Log("expected error for windows", w)
			t.Fail()
		}
	}
	if _, err := NewPracticeScorer(nil, game.DefaultWindows()); nil != err {
		t.Log("default windows rejected:", err)
		t.Fail()
	}
}

func TestPerfectHit(t *testing.T) {
	s := newScorer(t, note(1000, 60))
	res := s.OnUserNote(60, at(1000))
	if res == nil {
		t.Fatal("expected a hit result")
	}
	if res.Grade != game.Perfect || res.Error != 0 || !res.PitchCorrect {
		t.Log("result", res)
		t.Fail()
	}
	stats := s.Stats()
	if stats.TotalScore != 300 || stats.Perfect != 1 {
		t.Log("stats", stats)
		t.Fail()
	}
	if !s.IsComplete() {
		t.Fail()
	}
}

func TestGreatLate(t *testing.T) {
	s := newScorer(t, note(1000, 60))
	res := s.OnUserNote(60, at(1050))
	if res == nil {
		t.Fatal("expected a hit result")
	}
	if res.Grade != game.Great || res.Error != at(50) {
		t.Log("result", res)
		t.Fail()
	}
}

func TestWrongPitchCapsGrade(t *testing.T) {
	s := newScorer(t, note(1000, 60))
	res := s.OnUserNote(62, at(1000))
	if res == nil {
		t.Fatal("expected a hit result")
	}
	if res.Grade != game.Good || res.PitchCorrect {
		t.Log("result", res)
		t.Fail()
	}
	stats := s.Stats()
	if stats.WrongPitch != 1 || stats.Good != 1 || stats.TotalScore != 100 {
		t.Log("stats", stats)
		t.Fail()
	}
	// A wrong-pitch hit still keeps the combo alive
	if stats.CurrentCombo != 1 {
		t.Log("combo", stats.CurrentCombo)
		t.Fail()
	}
}

func TestBeyondGoodWindow(t *testing.T) {
	s := newScorer(t, note(1000, 60))
	if res := s.OnUserNote(60, at(1200)); res != nil {
		t.Log("expected no result, got", res)
		t.Fail()
	}
	stats := s.Finalize()
	if stats.Missed != 1 || stats.HitCount() != 0 {
		t.Log("stats", stats)
		t.Fail()
	}
}

func TestSkipFirstHitSecond(t *testing.T) {
	s := newScorer(t, note(1000, 60), note(2000, 62))
	res := s.OnUserNote(62, at(2000))
	if res == nil {
		t.Fatal("expected a hit result")
	}
	if res.Target.Pitch != 62 || res.Grade != game.Perfect {
		t.Log("result", res)
		t.Fail()
	}
	stats := s.Stats()
	if stats.Missed != 1 {
		t.Log("first note should have expired, stats", stats)
		t.Fail()
	}
}

func TestFullCombo(t *testing.T) {
	s := newScorer(t, note(1000, 60), note(2000, 62), note(3000, 64))
	for _, n := range s.TargetNotes() {
		if res := s.OnUserNote(n.Pitch, n.Time); res == nil || res.Grade != game.Perfect {
			t.Fatal("expected perfect hit for", n)
		}
	}
	stats := s.Stats()
	if stats.Perfect != 3 || stats.MaxCombo != 3 || stats.TotalScore != 900 {
		t.Log("stats", stats)
		t.Fail()
	}
	if !s.IsComplete() || s.Progress() != 1 {
		t.Log("next", s.NextIndex(), "progress", s.Progress())
		t.Fail()
	}
}

func TestNotStarted(t *testing.T) {
	s, err := NewPracticeScorer([]game.Note{note(1000, 60)}, game.DefaultWindows())
	if nil != err {
		t.Fatal(err)
	}
	if res := s.OnUserNote(60, at(1000)); res != nil {
		t.Log("scorer accepted input before Start:", res)
		t.Fail()
	}
}

func TestEmptyTarget(t *testing.T) {
	s := newScorer(t)
	if s.Progress() != 1 || !s.IsComplete() {
		t.Fail()
	}
	if res := s.OnUserNote(60, at(0)); res != nil {
		t.Fail()
	}
	stats := s.Finalize()
	if stats.Accuracy() != 0 || stats.TotalNotes != 0 {
		t.Log("stats", stats)
		t.Fail()
	}
}

func TestNoDoubleCount(t *testing.T) {
	s := newScorer(t, note(1000, 60))
	if res := s.OnUserNote(60, at(1010)); res == nil {
		t.Fatal("expected first input to match")
	}
	if res := s.OnUserNote(60, at(1020)); res != nil {
		t.Log("note matched twice:", res)
		t.Fail()
	}
	stats := s.Stats()
	if stats.HitCount() != 1 {
		t.Log("stats", stats)
		t.Fail()
	}
}

var boundaryTests = map[time.Duration]game.Grade{
	at(1000) - at(30):  game.Perfect, // exactly the perfect window, early
	at(1000) + at(30):  game.Perfect,
	at(1000) + at(31):  game.Great,
	at(1000) + at(80):  game.Great,
	at(1000) - at(81):  game.Good,
	at(1000) + at(150): game.Good, // exactly the good window still matches
}

func TestGradeBoundaries(t *testing.T) {
	for when, expected := range boundaryTests {
		s := newScorer(t, note(1000, 60))
		res := s.OnUserNote(60, when)
		if res == nil {
			t.Log("no result at", when)
			t.Fail()
			continue
		}
		if res.Grade != expected {
			t.Log("at", when, "got", res.Grade, "expected", expected)
			t.Fail()
		}
	}

	// Just past the good window there is no match at all
	s := newScorer(t, note(1000, 60))
	if res := s.OnUserNote(60, at(1151)); res != nil {
		t.Log("expected no result past the good window, got", res)
		t.Fail()
	}
}

func TestComboResetOnExpiry(t *testing.T) {
	s := newScorer(t, note(1000, 60), note(2000, 62), note(3000, 64))
	if res := s.OnUserNote(60, at(1000)); res == nil {
		t.Fatal("expected hit")
	}
	if s.Stats().CurrentCombo != 1 {
		t.Fail()
	}
	// Let the second note expire, then hit the third
	if res := s.OnUserNote(64, at(3000)); res == nil {
		t.Fatal("expected hit")
	}
	stats := s.Stats()
	if stats.Missed != 1 || stats.CurrentCombo != 1 || stats.MaxCombo != 1 {
		t.Log("stats", stats)
		t.Fail()
	}
}

func TestOutOfOrderWithinWindow(t *testing.T) {
	s := newScorer(t, note(1000, 60), note(1050, 62))
	first := s.OnUserNote(62, at(1060))
	if first == nil || first.Target.Pitch != 62 {
		t.Fatal("expected the later note to match first, got", first)
	}
	second := s.OnUserNote(60, at(1080))
	if second == nil || second.Target.Pitch != 60 {
		t.Fatal("expected the earlier note to still match, got", second)
	}
	if !s.IsComplete() {
		t.Log("cursor should have advanced past both, next", s.NextIndex())
		t.Fail()
	}
}

func TestTieBreakLowerIndex(t *testing.T) {
	// Equidistant between two notes; the earlier one wins
	s := newScorer(t, note(1000, 60), note(1100, 62))
	res := s.OnUserNote(60, at(1050))
	if res == nil {
		t.Fatal("expected a hit result")
	}
	if res.Target.Pitch != 60 || !res.PitchCorrect {
		t.Log("result", res)
		t.Fail()
	}
}

func TestMonotonicCursorAndProgress(t *testing.T) {
	s := newScorer(t, note(1000, 60), note(1500, 62), note(2000, 64), note(2500, 66))
	inputs := []game.Input{
		{Pitch: 60, HitTime: at(1010)},
		{Pitch: 40, HitTime: at(1200)}, // stray
		{Pitch: 64, HitTime: at(2020)},
		{Pitch: 66, HitTime: at(2480)},
	}
	last, lastProgress := 0, 0.0
	for _, in := range inputs {
		s.OnUserNote(in.Pitch, in.HitTime)
		if s.NextIndex() < last {
			t.Log("cursor moved backwards:", s.NextIndex(), "<", last)
			t.Fail()
		}
		p := s.Progress()
		if p < lastProgress || p < 0 || p > 1 {
			t.Log("progress not monotonic in [0,1]:", p)
			t.Fail()
		}
		last, lastProgress = s.NextIndex(), p
	}
}

func TestStartResets(t *testing.T) {
	s := newScorer(t, note(1000, 60), note(2000, 62))
	s.OnUserNote(60, at(1000))
	s.Finalize()

	s.Start()
	stats := s.Stats()
	if stats.HitCount() != 0 || stats.Missed != 0 || stats.TotalNotes != 2 {
		t.Log("stats not reset:", stats)
		t.Fail()
	}
	if s.NextIndex() != 0 || s.Progress() != 0 {
		t.Fail()
	}
	if res := s.OnUserNote(60, at(1000)); res == nil || res.Grade != game.Perfect {
		t.Log("note not matchable after reset:", res)
		t.Fail()
	}
}

func TestFinalizeAccounting(t *testing.T) {
	s := newScorer(t, note(1000, 60), note(2000, 62), note(3000, 64), note(4000, 66))
	s.OnUserNote(60, at(1020))
	s.OnUserNote(64, at(3100))
	stats := s.Finalize()
	if stats.Missed+stats.HitCount() != stats.TotalNotes {
		t.Log("accounting broken:", stats)
		t.Fail()
	}
	if stats.CurrentCombo != 0 {
		t.Fail()
	}
	// Finalizing again changes nothing
	again := s.Finalize()
	if again != stats {
		t.Log("finalize not stable:", again, stats)
		t.Fail()
	}
}

func TestUnsortedInputSorted(t *testing.T) {
	s := newScorer(t, note(3000, 64), note(1000, 60), note(2000, 62))
	notes := s.TargetNotes()
	for i := 1; i < len(notes); i++ {
		if notes[i].Time < notes[i-1].Time {
			t.Log("target notes not sorted:", notes)
			t.Fail()
		}
	}
	if res := s.OnUserNote(60, at(1000)); res == nil || res.Target.Pitch != 60 {
		t.Log("earliest note not matched first:", res)
		t.Fail()
	}
}
