package game

import (
	"testing"
	"time"
)

func ms(n int64) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func TestWindowsValidate(t *testing.T) {
	valid := []Windows{
		DefaultWindows(),
		{Perfect: ms(10), Great: ms(10), Good: ms(10)}, // equal thresholds are allowed
		{Perfect: ms(1), Great: ms(2), Good: ms(3)},
	}
	for _, w := range valid {
		if err := w.Validate(); nil != err {
			t.Log("valid windows rejected:", w, err)
			t.Fail()
		}
	}

	invalid := []Windows{
		{},
		{Perfect: ms(0), Great: ms(80), Good: ms(150)},
		{Perfect: ms(-30), Great: ms(80), Good: ms(150)},
		{Perfect: ms(80), Great: ms(30), Good: ms(150)},
		{Perfect: ms(30), Great: ms(150), Good: ms(80)},
	}
	for _, w := range invalid {
		if err := w.Validate(); nil == err {
			t.Log("invalid windows accepted:", w)
			t.Fail()
		}
	}
}

var classifyTests = map[time.Duration]Grade{
	0:       Perfect,
	ms(30):  Perfect,
	ms(31):  Great,
	ms(80):  Great,
	ms(81):  Good,
	ms(150): Good,
}

func TestClassify(t *testing.T) {
	w := DefaultWindows()
	for err, expected := range classifyTests {
		if g := w.Classify(err); g != expected {
			t.Log("error", err, "got", g, "expected", expected)
			t.Fail()
		}
	}
}

func TestGradeOrderAndScore(t *testing.T) {
	if !(Miss < Good && Good < Great && Great < Perfect) {
		t.Fail()
	}
	scores := map[Grade]int{Perfect: 300, Great: 200, Good: 100, Miss: 0}
	for g, expected := range scores {
		if g.Score() != expected {
			t.Log(g, "score", g.Score(), "expected", expected)
			t.Fail()
		}
	}
}
