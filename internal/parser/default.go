package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/fennelk/keyfall/internal/game"
)

// DefaultParser loads charts from Standard MIDI Files.
type DefaultParser struct{}

// Assumed when the file carries no metric time format.
const defaultResolution = 480

func (p *DefaultParser) Parse(file string) (*game.Chart, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, fmt.Errorf("unable to open chart: %w", err)
	}
	defer f.Close()

	chart, err := p.Read(f)
	if nil != err {
		return nil, fmt.Errorf("unable to parse %v: %w", file, err)
	}
	chart.Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return chart, nil
}

// Read parses SMF data into a chart. Note-ons are paired with the next
// off for the same pitch; a velocity-zero note-on counts as an off. The
// first tempo meta event wins, later tempo changes are ignored.
func (p *DefaultParser) Read(r io.Reader) (*game.Chart, error) {
	s, err := smf.ReadFrom(r)
	if nil != err {
		return nil, err
	}

	resolution := uint16(defaultResolution)
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		resolution = mt.Resolution()
	}

	chart := &game.Chart{Tempo: game.DefaultTempo}
	tempoSet := false

	for _, track := range s.Tracks {
		var tick int64
		onAt := map[uint8]int64{}
		for _, ev := range track {
			tick += int64(ev.Delta)
			msg := ev.Message

			var bpm float64
			if msg.GetMetaTempo(&bpm) {
				if !tempoSet && bpm > 0 {
					chart.Tempo = bpm
					tempoSet = true
				}
				continue
			}

			var ch, key, vel uint8
			isOn := msg.GetNoteOn(&ch, &key, &vel) && vel > 0
			isOff := msg.GetNoteOff(&ch, &key, &vel) ||
				(msg.GetNoteOn(&ch, &key, &vel) && vel == 0)
			if isOn {
				onAt[key] = tick
				continue
			}
			if isOff {
				on, ok := onAt[key]
				if !ok {
					continue
				}
				delete(onAt, key)
				chart.BeatNotes = append(chart.BeatNotes, game.BeatNote{
					Beat:     float64(on) / float64(resolution),
					Duration: float64(tick-on) / float64(resolution),
					Pitch:    key,
				})
			}
		}
		// A note-on with no matching off still counts, with no length.
		for key, on := range onAt {
			chart.BeatNotes = append(chart.BeatNotes, game.BeatNote{
				Beat:  float64(on) / float64(resolution),
				Pitch: key,
			})
		}
	}

	if len(chart.BeatNotes) == 0 {
		return nil, errors.New("midi file contains no notes")
	}

	sort.SliceStable(chart.BeatNotes, func(i, j int) bool {
		a, b := chart.BeatNotes[i], chart.BeatNotes[j]
		if a.Beat != b.Beat {
			return a.Beat < b.Beat
		}
		return a.Pitch < b.Pitch
	})

	return chart, nil
}
