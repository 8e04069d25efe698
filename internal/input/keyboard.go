package input

import (
	"fmt"
	"log"
	"time"

	"github.com/eiannone/keyboard"

	"github.com/fennelk/keyfall/internal/game"
)

// Semitone offsets of the C major scale, continued into the next octave
// so a nine-key naturals row reaches the ninth above.
var naturalOffsets = []uint8{0, 2, 4, 5, 7, 9, 11, 12, 14}

// Offsets of the sharps between those naturals.
var sharpOffsets = []uint8{1, 3, 6, 8, 10, 13}

// KeyMap builds a rune-to-pitch map from a naturals row and a sharps
// row, walking up from the base pitch. Extra runes beyond the known
// offsets are ignored.
func KeyMap(naturals, sharps string, base uint8) map[rune]uint8 {
	m := map[rune]uint8{}
	for i, r := range []rune(naturals) {
		if i >= len(naturalOffsets) {
			break
		}
		m[r] = base + naturalOffsets[i]
	}
	for i, r := range []rune(sharps) {
		if i >= len(sharpOffsets) {
			break
		}
		m[r] = base + sharpOffsets[i]
	}
	return m
}

// KeyboardSource maps computer-keyboard presses onto pitches so a chart
// is playable without a MIDI device.
type KeyboardSource struct {
	keys   map[rune]uint8
	events chan<- game.Input
	now    func() time.Duration
}

func NewKeyboardSource(keys map[rune]uint8, events chan<- game.Input, now func() time.Duration) *KeyboardSource {
	return &KeyboardSource{keys: keys, events: events, now: now}
}

// Listen opens the terminal keyboard and forwards mapped presses until
// Esc or Ctrl-C, which closes done. Unmapped runes are ignored.
func (k *KeyboardSource) Listen(done chan<- struct{}) error {
	keyChannel, err := keyboard.GetKeys(128)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	go func() {
		for key := range keyChannel {
			if key.Key == keyboard.KeyEsc || key.Key == keyboard.KeyCtrlC {
				close(done)
				return
			}
			pitch, ok := k.keys[key.Rune]
			if !ok {
				continue
			}
			k.forward(pitch)
		}
	}()
	return nil
}

// forward never blocks; once the render loop stops draining, a dropped
// press beats a parked goroutine holding the terminal.
func (k *KeyboardSource) forward(pitch uint8) {
	select {
	case k.events <- game.Input{Pitch: pitch, HitTime: k.now()}:
	default:
	}
}

func (k *KeyboardSource) Close() {
	if err := keyboard.Close(); nil != err {
		log.Println("unable to close keyboard:", err)
	}
}
