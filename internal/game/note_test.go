package game

import (
	"testing"
	"time"
)

func TestFromBeats(t *testing.T) {
	beats := []BeatNote{
		{Beat: 0, Duration: 1, Pitch: 60},
		{Beat: 2, Duration: 0.5, Pitch: 64},
		{Beat: 1, Duration: 2, Pitch: 62}, // out of order stays out of order
	}

	notes := FromBeats(beats, 120)
	expected := []Note{
		{Time: 0, Duration: 500 * time.Millisecond, Pitch: 60},
		{Time: time.Second, Duration: 250 * time.Millisecond, Pitch: 64},
		{Time: 500 * time.Millisecond, Duration: time.Second, Pitch: 62},
	}
	if len(notes) != len(expected) {
		t.Fatal("length mismatch:", notes)
	}
	for i := range notes {
		if notes[i] != expected[i] {
			t.Log("note    ", notes[i])
			t.Log("expected", expected[i])
			t.Fail()
		}
	}
}

func TestFromBeatsTempoScaling(t *testing.T) {
	beats := []BeatNote{{Beat: 1, Pitch: 60}}
	if n := FromBeats(beats, 60); n[0].Time != time.Second {
		t.Log("at 60 bpm one beat should be 1s, got", n[0].Time)
		t.Fail()
	}
	if n := FromBeats(beats, 240); n[0].Time != 250*time.Millisecond {
		t.Log("at 240 bpm one beat should be 250ms, got", n[0].Time)
		t.Fail()
	}
	// Non-positive tempo falls back to the default
	if n := FromBeats(beats, 0); n[0].Time != 500*time.Millisecond {
		t.Log("default tempo not applied, got", n[0].Time)
		t.Fail()
	}
}

func TestPitchRange(t *testing.T) {
	c := Chart{BeatNotes: []BeatNote{{Pitch: 64}, {Pitch: 48}, {Pitch: 72}}}
	lo, hi := c.PitchRange()
	if lo != 48 || hi != 72 {
		t.Log("range", lo, hi)
		t.Fail()
	}

	empty := Chart{}
	lo, hi = empty.PitchRange()
	if lo != 0 || hi != 0 {
		t.Fail()
	}
}
