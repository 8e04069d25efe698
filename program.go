package main

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"golang.org/x/term"

	"github.com/fennelk/keyfall/internal/config"
	"github.com/fennelk/keyfall/internal/game"
	"github.com/fennelk/keyfall/internal/input"
	"github.com/fennelk/keyfall/internal/parser"
	"github.com/fennelk/keyfall/internal/render"
	"github.com/fennelk/keyfall/internal/score"
	"github.com/fennelk/keyfall/internal/theme"
)

// Program owns one practice session from chart load to report.
type Program struct {
	Parser   parser.Parser
	Renderer render.Renderer
	Theme    theme.Theme

	chart   *game.Chart
	sum     string
	scorer  *score.PracticeScorer
	history *score.HistoryStore

	chartFile, audioFile string
	streamer             beep.StreamSeekCloser
	audioReady           bool

	rows, cols int
	hitRow     int
	fieldLeft  int
	spacing    int
	pitchLo    uint8

	startTime time.Time
	events    chan game.Input
	done      chan struct{}

	midi *input.MIDISource
	keys *input.KeyboardSource

	// Render-side state, parallel to the scorer's sorted target notes
	lastRow   []int
	missShown []bool

	inputs     []game.Input
	lastResult *game.HitResult
	final      score.Stats
	finished   bool
}

func (p *Program) Init() error {
	p.Parser = &parser.DefaultParser{}
	p.Renderer = &render.DefaultRenderer{}
	p.Theme = &theme.DefaultTheme{}

	if err := filepath.Walk(*config.Directory, func(fp string, info os.FileInfo, err error) error {
		if nil != err {
			return err
		}
		switch path.Ext(info.Name()) {
		case ".mid", ".midi":
			p.chartFile = fp
		case ".mp3", ".ogg":
			p.audioFile = fp
		}
		return nil
	}); nil != err {
		return fmt.Errorf("unable to walk song directory: %w", err)
	}
	if p.chartFile == "" {
		return errors.New("unable to find a .mid file in given directory")
	}

	chart, err := p.Parser.Parse(p.chartFile)
	if nil != err {
		return err
	}
	p.chart = chart
	p.sum = score.ChartSum(chart)

	tempo := chart.Tempo
	if *config.Tempo > 0 {
		tempo = *config.Tempo
	}
	notes := game.FromBeats(chart.BeatNotes, tempo**config.Rate)

	p.scorer, err = score.NewPracticeScorer(notes, config.Windows())
	if nil != err {
		return err
	}
	p.lastRow = make([]int, len(notes))
	for i := range p.lastRow {
		p.lastRow[i] = -1
	}
	p.missShown = make([]bool, len(notes))

	p.history = &score.HistoryStore{}
	if err := p.history.Init(*config.Database); nil != err {
		return fmt.Errorf("unable to open history database: %w", err)
	}

	p.cols, p.rows, err = term.GetSize(int(os.Stdout.Fd()))
	if nil != err {
		return fmt.Errorf("unable to get terminal size: %w", err)
	}
	p.layout()

	if p.audioFile != "" {
		if err := p.openAudio(); nil != err {
			return err
		}
	}

	p.events = make(chan game.Input, 128)
	p.done = make(chan struct{})
	return nil
}

func (p *Program) layout() {
	p.hitRow = p.rows - int(*config.BarRow)
	p.fieldLeft = 36
	lo, hi := p.chart.PitchRange()
	p.pitchLo = lo
	span := int(hi-lo) + 1
	width := p.cols - p.fieldLeft - 2
	if width < span {
		width = span
	}
	p.spacing = width / span
	if p.spacing < 1 {
		p.spacing = 1
	}
	if p.spacing > 4 {
		p.spacing = 4
	}
}

func (p *Program) column(pitch uint8) int {
	if pitch < p.pitchLo {
		// Stray press below the chart range lands on the left edge
		// instead of wrapping the uint8 offset
		return p.fieldLeft
	}
	col := p.fieldLeft + int(pitch-p.pitchLo)*p.spacing
	if col > p.cols-1 {
		col = p.cols - 1
	}
	return col
}

func (p *Program) openAudio() error {
	f, err := os.Open(p.audioFile)
	if nil != err {
		return err
	}
	var format beep.Format
	if path.Ext(p.audioFile) == ".ogg" {
		p.streamer, format, err = vorbis.Decode(f)
	} else {
		p.streamer, format, err = mp3.Decode(f)
	}
	if nil != err {
		return fmt.Errorf("unable to decode %v: %w", p.audioFile, err)
	}
	// Resample by lying about the sample rate, cheap rate adjustment
	sr := beep.SampleRate(math.Round(float64(format.SampleRate) * *config.Rate))
	if err := speaker.Init(sr, format.SampleRate.N(time.Second/60)); nil != err {
		return fmt.Errorf("unable to init speaker: %w", err)
	}
	p.audioReady = true
	return nil
}

// now is the session clock shared by both input sources and the scorer.
func (p *Program) now() time.Duration {
	return time.Since(p.startTime)
}

func (p *Program) Run() error {
	p.startTime = time.Now().Add(*config.Delay)

	midi, err := input.NewMIDISource(*config.Port, p.events, p.now)
	if nil != err {
		log.Println("midi unavailable:", err)
	} else {
		if err := midi.Open(); nil != err {
			if errors.Is(err, input.ErrNoPort) {
				log.Println("no midi input connected, watching for one")
			} else {
				log.Println("unable to open midi input:", err)
			}
		}
		// Kept even when unconnected; Tick picks up a later hot-plug
		p.midi = midi
	}

	keyMap := input.KeyMap(*config.Keys, *config.Sharps, uint8(*config.BasePitch))
	p.keys = input.NewKeyboardSource(keyMap, p.events, p.now)
	if err := p.keys.Listen(p.done); nil != err {
		return err
	}

	if p.audioReady {
		go func() {
			time.Sleep(time.Until(p.startTime))
			speaker.Play(p.streamer)
		}()
	}

	if err := p.Renderer.Init(); nil != err {
		return err
	}
	defer func() {
		if err := p.Renderer.Deinit(); nil != err {
			log.Println("unable to restore terminal:", err)
		}
	}()

	p.scorer.Start()

	notes := p.scorer.TargetNotes()
	endAt := 2 * time.Second
	if len(notes) > 0 {
		endAt += notes[len(notes)-1].Time + *config.GoodWindow
	}

	p.Renderer.RenderLoop(p.startTime, *config.FramePeriod, func(now time.Time, duration time.Duration) bool {
		select {
		case <-p.done:
			return false
		default:
		}
		if duration > endAt {
			return false
		}

		if p.midi != nil {
			p.midi.Tick()
		}
		p.drainInputs()
		p.renderField(duration)
		p.renderStats(duration)
		return true
	})

	p.final = p.scorer.Finalize()
	p.finished = true
	p.history.Save(p.sum, p.final, p.inputs, *config.Rate)
	return nil
}

func (p *Program) drainInputs() {
	for {
		select {
		case in := <-p.events:
			p.inputs = append(p.inputs, in)
			res := p.scorer.OnUserNote(in.Pitch, in.HitTime+*config.Offset)
			if res == nil {
				// Stray press, nothing in range
				p.Renderer.AddDecoration(p.hitRow+1, p.column(in.Pitch), "·", 12)
				continue
			}
			p.lastResult = res
			r, g, b := p.Theme.GradeColor(res.Grade)
			splash := fmt.Sprintf("\033[38;2;%v;%v;%vm◉\033[0m", r, g, b)
			p.Renderer.AddDecoration(p.hitRow, p.column(res.Target.Pitch), splash, 18)
		default:
			return
		}
	}
}

func (p *Program) renderField(duration time.Duration) {
	notes := p.scorer.TargetNotes()
	lead := *config.LeadTime
	good := *config.GoodWindow

	for i, note := range notes {
		col := p.column(note.Pitch)

		// Clear wherever this note was drawn last frame
		if p.lastRow[i] > 0 {
			p.Renderer.Fill(p.lastRow[i], col, " ")
			p.lastRow[i] = -1
		}

		d := note.Time - duration
		if p.scorer.Matched(i) {
			continue
		}
		if d < -good {
			if !p.missShown[i] {
				p.missShown[i] = true
				p.Renderer.AddDecoration(p.hitRow, col, p.Theme.RenderMissMarker(), 24)
			}
			continue
		}
		if d > lead {
			continue
		}

		row := p.hitRow - int(float64(d)/float64(lead)*float64(p.hitRow-1))
		if row < 1 || row >= p.hitRow {
			continue
		}
		p.Renderer.Fill(row, col, p.Theme.RenderNote(note.Pitch))
		p.lastRow[i] = row
	}

	// Hit bar
	lo, hi := p.chart.PitchRange()
	for pitch := lo; pitch <= hi; pitch++ {
		p.Renderer.Fill(p.hitRow, p.column(pitch), p.Theme.RenderHitField())
	}
}

func (p *Program) renderStats(duration time.Duration) {
	stats := p.scorer.Stats()
	c := 2
	p.Renderer.Fill(2, c, fmt.Sprintf("%-30v", p.chart.Name))
	p.Renderer.Fill(3, c, fmt.Sprintf("    Time: %7.1fs", duration.Seconds()))
	p.Renderer.Fill(4, c, fmt.Sprintf("Progress: %6.1f%%", 100*p.scorer.Progress()))
	p.Renderer.Fill(6, c, fmt.Sprintf("   Score: %7v", stats.TotalScore))
	p.Renderer.Fill(7, c, fmt.Sprintf("   Combo: %4v (%v)", stats.CurrentCombo, stats.MaxCombo))
	p.Renderer.Fill(8, c, fmt.Sprintf("Accuracy: %6.1f%%", 100*stats.Accuracy()))

	p.Renderer.Fill(10, c, fmt.Sprintf("%v: %5v", p.Theme.GradeName(game.Perfect), stats.Perfect))
	p.Renderer.Fill(11, c, fmt.Sprintf("%v: %5v", p.Theme.GradeName(game.Great), stats.Great))
	p.Renderer.Fill(12, c, fmt.Sprintf("%v: %5v", p.Theme.GradeName(game.Good), stats.Good))
	p.Renderer.Fill(13, c, fmt.Sprintf("%v: %5v", p.Theme.GradeName(game.Miss), stats.Missed))
	p.Renderer.Fill(14, c, fmt.Sprintf("  Wrong pitch: %5v", stats.WrongPitch))

	if p.lastResult != nil {
		ms := float64(p.lastResult.Error) / float64(time.Millisecond)
		side := "late"
		if ms < 0 {
			side = "early"
		}
		p.Renderer.Fill(16, c, fmt.Sprintf("%v %6.1fms %-5v",
			p.Theme.GradeName(p.lastResult.Grade), math.Abs(ms), side))
	}
}

// Report prints the final session summary after the terminal has been
// restored.
func (p *Program) Report() {
	if !p.finished {
		return
	}
	s := p.final
	fmt.Printf("%v\n", p.chart.Name)
	fmt.Printf("   Score: %v\n", s.TotalScore)
	fmt.Printf("Accuracy: %.1f%%  (%v/%v hit, %v missed, %v wrong pitch)\n",
		100*s.Accuracy(), s.HitCount(), s.TotalNotes, s.Missed, s.WrongPitch)
	fmt.Printf("  Combo: %v\n", s.MaxCombo)
	fmt.Printf("Perfect: %v  Great: %v  Good: %v\n", s.Perfect, s.Great, s.Good)
	if best, ok := p.history.Best(p.sum); ok && best > s.TotalScore {
		fmt.Printf("   Best: %v\n", best)
	} else {
		fmt.Println("   Best: new record!")
	}
}

func (p *Program) Deinit() {
	if p.keys != nil {
		p.keys.Close()
	}
	if p.midi != nil {
		p.midi.Close()
	}
	if p.streamer != nil {
		p.streamer.Close()
	}
	if p.history != nil {
		p.history.Deinit()
	}
}
