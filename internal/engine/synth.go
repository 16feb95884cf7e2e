// Package engine plays parsed songs through a soundfont synthesizer with
// per-track muting.
package engine

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sinshu/go-meltysynth/meltysynth"
)

// Synth is the part of a MIDI synthesizer the deck drives.
// *meltysynth.Synthesizer satisfies it.
type Synth interface {
	ProcessMidiMessage(channel int32, command int32, data1 int32, data2 int32)
	NoteOffAll(immediate bool)
	Render(left []float32, right []float32)
}

// Player is a started audio output stream pulling from a deck.
type Player interface {
	Play()
	Close() error
}

// Output opens audio streams. A nil Output renders silently on demand.
type Output interface {
	NewPlayer(r io.Reader) Player
}

// LoadSoundFont reads and parses a .sf2 file.
func LoadSoundFont(path string) (*meltysynth.SoundFont, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load soundfont %s: %w", path, err)
	}
	sf, err := meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse soundfont %s: %w", path, err)
	}
	return sf, nil
}

// SoundFontSynths returns a constructor creating one synthesizer per deck
// from a shared soundfont.
func SoundFontSynths(sf *meltysynth.SoundFont, sampleRate int) func() (Synth, error) {
	return func() (Synth, error) {
		settings := meltysynth.NewSynthesizerSettings(int32(sampleRate))
		synth, err := meltysynth.NewSynthesizer(sf, settings)
		if err != nil {
			return nil, fmt.Errorf("failed to create synthesizer: %w", err)
		}
		return synth, nil
	}
}
