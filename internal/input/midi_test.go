package input

import (
	"testing"
	"time"
)

func TestSelectPortName(t *testing.T) {
	names := []string{"Midi Through Port-0", "Launchkey Mini MK3", "CASIO USB-MIDI"}

	if idx, ok := selectPortName(names, ""); !ok || idx != 1 {
		t.Log("empty match should take the first non-excluded port, got", idx, ok)
		t.Fail()
	}
	if idx, ok := selectPortName(names, "casio"); !ok || idx != 2 {
		t.Log("substring match is case-insensitive, got", idx, ok)
		t.Fail()
	}
	if _, ok := selectPortName(names, "Roland"); ok {
		t.Log("no port should match an absent substring")
		t.Fail()
	}
	if _, ok := selectPortName([]string{"Midi Through Port-0", "Dummy"}, ""); ok {
		t.Log("excluded ports must never be selected")
		t.Fail()
	}
	if _, ok := selectPortName(nil, ""); ok {
		t.Fail()
	}
}

func TestTickThrottled(t *testing.T) {
	// A fresh rescan timestamp keeps Tick away from the driver entirely;
	// with no driver present, a port scan here would crash the test.
	m := &MIDISource{lastRescan: time.Now()}
	m.Tick()
	m.Tick()
	if m.Connected() {
		t.Fail()
	}
}
