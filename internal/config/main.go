package config

import (
	"github.com/fennelk/keyfall/internal/game"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	Directory   = kingpin.Arg("directory", "Song directory with a .mid chart").Required().ExistingDir()
	Rate        = kingpin.Flag("rate", "Playback speed").Default("1.0").Short('r').Float64()
	Offset      = kingpin.Flag("offset", "Global input offset").Default("0ms").Short('o').Duration()
	Delay       = kingpin.Flag("delay", "Start delay").Default("1.5s").Short('d').Duration()
	Tempo       = kingpin.Flag("tempo", "Override chart tempo in BPM, 0 keeps the file's").Default("0").Float64()
	FramePeriod = kingpin.Flag("frame-period", "Render frame period").Default("16ms").Short('p').Duration()
	LeadTime    = kingpin.Flag("lead-time", "Time a note takes to fall across the field").Default("3s").Duration()
	BarRow      = kingpin.Flag("bar-row", "Rows between hit bar and bottom edge").Default("4").Uint()

	PerfectWindow = kingpin.Flag("perfect", "Perfect timing window").Default("30ms").Duration()
	GreatWindow   = kingpin.Flag("great", "Great timing window").Default("80ms").Duration()
	GoodWindow    = kingpin.Flag("good", "Good timing window").Default("150ms").Duration()

	Port      = kingpin.Flag("port", "MIDI input port name substring, empty takes the first").Default("").String()
	Keys      = kingpin.Flag("keys", "Keyboard naturals row, a C major scale from the base pitch").Default("asdfghjkl").Short('k').String()
	Sharps    = kingpin.Flag("sharps", "Keyboard sharps row").Default("wetyuo").String()
	BasePitch = kingpin.Flag("base-pitch", "Pitch of the first keyboard key").Default("60").Uint()

	Database = kingpin.Flag("db", "Session history database").Default("./history.db").String()
)

// Windows assembles the configured timing windows. Validation happens in
// the scorer constructor.
func Windows() game.Windows {
	return game.Windows{
		Perfect: *PerfectWindow,
		Great:   *GreatWindow,
		Good:    *GoodWindow,
	}
}
