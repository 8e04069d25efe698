package input

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/fennelk/keyfall/internal/game"
)

// Virtual/system ports that are never auto-connected.
var excludedPortPatterns = []string{"Midi Through", "Through Port", "Dummy"}

// ErrNoPort means no acceptable MIDI input is currently connected.
var ErrNoPort = errors.New("no matching midi input port")

const rescanInterval = time.Second

// MIDISource listens on a MIDI input port and forwards live note-ons as
// game inputs stamped with the session clock. Velocity-zero note-ons
// are note-offs and never reach the channel.
//
// It survives hot-plugging: Tick rescans the ports, reconnecting when a
// device appears and detecting when the active one is unplugged. The
// caller serializes Open, Tick and Close; in this program that is the
// render loop.
type MIDISource struct {
	drv  *rtmididrv.Driver
	port drivers.In
	stop func()

	match  string // Case-insensitive port name substring, empty = first port
	events chan<- game.Input
	now    func() time.Duration

	portName   string
	lastRescan time.Time
}

func NewMIDISource(match string, events chan<- game.Input, now func() time.Duration) (*MIDISource, error) {
	drv, err := rtmididrv.New()
	if nil != err {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	return &MIDISource{drv: drv, match: match, events: events, now: now}, nil
}

// Open scans the available inputs and starts listening on the first
// acceptable port. Returns ErrNoPort when nothing suitable is present;
// Tick keeps looking in that case.
func (m *MIDISource) Open() error {
	return m.connect()
}

// Connected reports whether a port is currently being listened on.
func (m *MIDISource) Connected() bool {
	return m.port != nil
}

// Tick is called on every frame and rescans at most once per rescan
// interval. It reconnects after a device appears and drops the
// connection when the active device disappears.
func (m *MIDISource) Tick() {
	now := time.Now()
	if !m.lastRescan.IsZero() && now.Sub(m.lastRescan) < rescanInterval {
		return
	}
	m.lastRescan = now

	if m.port != nil {
		if m.portPresent(m.portName) {
			return
		}
		log.Printf("midi input %q disappeared", m.portName)
		m.disconnect()
		m.lastRescan = time.Time{} // Look for a replacement on the next tick
		return
	}

	if err := m.connect(); nil != err && !errors.Is(err, ErrNoPort) {
		log.Println("unable to open midi input:", err)
	}
}

func (m *MIDISource) connect() error {
	ins, err := m.drv.Ins()
	if nil != err {
		return fmt.Errorf("unable to list midi inputs: %w", err)
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	idx, ok := selectPortName(names, m.match)
	if !ok {
		return ErrNoPort
	}
	found := ins[idx]

	if err := found.Open(); nil != err {
		return fmt.Errorf("unable to open %q: %w", found.String(), err)
	}

	stop, err := midi.ListenTo(found, func(msg midi.Message, _ int32) {
		var ch, key, vel uint8
		if !msg.GetNoteStart(&ch, &key, &vel) {
			return
		}
		select {
		case m.events <- game.Input{Pitch: key, HitTime: m.now()}:
		default:
			// Never block the driver callback; a dropped input beats a
			// stalled device thread.
		}
	}, midi.HandleError(func(err error) {
		log.Println("midi listener:", err)
	}))
	if nil != err {
		_ = found.Close()
		return fmt.Errorf("unable to listen on %q: %w", found.String(), err)
	}

	m.port = found
	m.stop = stop
	m.portName = found.String()
	log.Printf("listening on midi input %q", m.portName)
	return nil
}

func (m *MIDISource) disconnect() {
	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
	if m.port != nil {
		_ = m.port.Close()
		m.port = nil
	}
	m.portName = ""
}

func (m *MIDISource) portPresent(name string) bool {
	ins, err := m.drv.Ins()
	if nil != err {
		return false
	}
	for _, in := range ins {
		if in.String() == name {
			return true
		}
	}
	return false
}

func (m *MIDISource) Close() {
	m.disconnect()
	m.drv.Close()
}

// selectPortName picks the first port that is not excluded and matches
// the configured substring, an empty match taking any.
func selectPortName(names []string, match string) (int, bool) {
	for i, name := range names {
		if excludedPort(name) {
			continue
		}
		if match != "" && !containsCI(name, match) {
			continue
		}
		return i, true
	}
	return -1, false
}

func excludedPort(name string) bool {
	for _, pat := range excludedPortPatterns {
		if containsCI(name, pat) {
			return true
		}
	}
	return false
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
