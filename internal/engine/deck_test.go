package engine

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/midiguess/internal/logger"
	"github.com/leandrodaf/midiguess/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type message struct{ channel, command, data1, data2 int32 }

type fakeSynth struct {
	mu       sync.Mutex
	messages []message
	offAll   int
}

func (s *fakeSynth) ProcessMidiMessage(channel, command, data1, data2 int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message{channel, command, data1, data2})
}

func (s *fakeSynth) NoteOffAll(bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offAll++
}

func (s *fakeSynth) Render(left, right []float32) {
	for i := range left {
		left[i] = 0.5
		right[i] = -0.5
	}
}

func (s *fakeSynth) take() []message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.messages
	s.messages = nil
	return out
}

type fakePlayer struct{ played, closed bool }

func (p *fakePlayer) Play()        { p.played = true }
func (p *fakePlayer) Close() error { p.closed = true; return nil }

type fakeOutput struct {
	player *fakePlayer
	reader io.Reader
}

func (o *fakeOutput) NewPlayer(r io.Reader) Player {
	o.reader = r
	o.player = &fakePlayer{}
	return o.player
}

// smfBytes holds a conductor track, a percussion track (note at 0-0.5s on
// MIDI channel 9) and a bass track (program change at 0, note at 2-3s).
func smfBytes(t *testing.T) []byte {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var conductor, drums, bass smf.Track
	conductor.Add(0, smf.MetaTempo(120))
	conductor.Close(0)
	drums.Add(0, smf.MetaTrackSequenceName("Percussion"))
	drums.Add(0, midi.NoteOn(9, 36, 100))
	drums.Add(480, midi.NoteOff(9, 36))
	drums.Close(0)
	bass.Add(0, midi.ProgramChange(1, 33))
	bass.Add(1920, midi.NoteOn(1, 40, 90))
	bass.Add(960, midi.NoteOff(1, 40))
	bass.Close(0)
	for _, tr := range []smf.Track{conductor, drums, bass} {
		if err := s.Add(tr); err != nil {
			t.Fatalf("add track: %v", err)
		}
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("write smf: %v", err)
	}
	return buf.Bytes()
}

func readyDeck(t *testing.T, cfg Config) (*Deck, *fakeSynth) {
	t.Helper()
	synth := &fakeSynth{}
	cfg.SampleRate = 1000
	cfg.Logger = logger.NewNopLogger()
	d := NewDeck(context.Background(), "test.mid", smfBytes(t), synth, cfg)
	deadline := time.Now().Add(2 * time.Second)
	for d.Duration() == contracts.UnknownDuration {
		if time.Now().After(deadline) {
			t.Fatalf("deck never became ready: %v", d.LoadErr())
		}
		time.Sleep(time.Millisecond)
	}
	return d, synth
}

func render(d *Deck, frames int) {
	d.Render(make([]float32, frames), make([]float32, frames))
}

func TestDeckMetadata(t *testing.T) {
	d, _ := readyDeck(t, Config{})
	if d.TrackCount() != 3 {
		t.Fatalf("tracks = %d, want 3", d.TrackCount())
	}
	if d.TrackName(1) != "Percussion" || d.TrackName(0) != "" || d.TrackName(7) != "" {
		t.Fatalf("names = %q %q %q", d.TrackName(0), d.TrackName(1), d.TrackName(7))
	}
	if d.Duration() != 3*time.Second {
		t.Fatalf("duration = %v, want 3s", d.Duration())
	}
}

func TestDeckSkipsMutedTracks(t *testing.T) {
	d, synth := readyDeck(t, Config{})
	d.MuteChannel(1, true)
	d.Play()
	render(d, 10)

	msgs := synth.take()
	if len(msgs) != 1 || msgs[0].command != 0xC0 || msgs[0].channel != 1 {
		t.Fatalf("messages = %+v, want only the bass program change", msgs)
	}
	if !d.IsChannelMuted(1) || d.IsChannelMuted(2) {
		t.Fatalf("mute flags wrong")
	}
}

func TestDeckMuteReleasesSoundingNotes(t *testing.T) {
	d, synth := readyDeck(t, Config{})
	d.Play()
	render(d, 10)
	synth.take()

	d.MuteChannel(1, true)
	msgs := synth.take()
	if len(msgs) != 1 || msgs[0] != (message{9, 0x80, 36, 0}) {
		t.Fatalf("mute sent %+v, want a note off for the drum", msgs)
	}

	render(d, 600) // past the drum's own note off
	for _, m := range synth.take() {
		if m.command == 0x80 && m.channel == 9 {
			t.Fatalf("released note turned off twice")
		}
	}
}

func TestDeckSeekReplaysControllers(t *testing.T) {
	d, synth := readyDeck(t, Config{})
	d.SetCurrentTime(2500 * time.Millisecond)

	msgs := synth.take()
	if len(msgs) != 1 || msgs[0].command != 0xC0 {
		t.Fatalf("seek replayed %+v, want the program change", msgs)
	}
	if got := d.CurrentTime(); got != 2500*time.Millisecond {
		t.Fatalf("position = %v", got)
	}
	d.Stop()
	if d.CurrentTime() != 0 || d.Playing() {
		t.Fatalf("stop did not rewind")
	}
}

func TestDeckStopsAtEnd(t *testing.T) {
	d, _ := readyDeck(t, Config{})
	d.Play()
	render(d, 3100)
	if d.Playing() {
		t.Fatalf("deck still playing past the end")
	}
}

func TestDeckReadEncodesFloat32(t *testing.T) {
	out := &fakeOutput{}
	d, _ := readyDeck(t, Config{Output: out, Gain: 2})
	if out.reader != d || !out.player.played {
		t.Fatalf("output stream not started")
	}

	buf := make([]byte, 16)
	if n, err := d.Read(buf); n != 16 || err != nil {
		t.Fatalf("Read = %d, %v", n, err)
	}
	if binary.LittleEndian.Uint32(buf) != 0 {
		t.Fatalf("paused deck rendered sound")
	}

	d.Play()
	if _, err := d.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	l := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:]))
	r := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:]))
	if l != 1 || r != -1 {
		t.Fatalf("frame = (%v, %v), want (1, -1)", l, r)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !out.player.closed {
		t.Fatalf("output stream not closed")
	}
	if _, err := d.Read(buf); err != io.EOF {
		t.Fatalf("Read after close = %v, want EOF", err)
	}
}

func TestDeckReportsParseErrors(t *testing.T) {
	d := NewDeck(context.Background(), "junk.mid", []byte("junk"), &fakeSynth{}, Config{})
	deadline := time.Now().Add(2 * time.Second)
	for d.LoadErr() == nil {
		if time.Now().After(deadline) {
			t.Fatalf("parse error never reported")
		}
		time.Sleep(time.Millisecond)
	}
	if d.Duration() != contracts.UnknownDuration {
		t.Fatalf("failed deck reports a duration")
	}
	d.Play()
	if d.Playing() {
		t.Fatalf("failed deck started playing")
	}
}

func TestDeckFactoryWrapsSynthErrors(t *testing.T) {
	factory := NewDeckFactory(Config{NewSynth: func() (Synth, error) { return nil, io.ErrUnexpectedEOF }})
	if _, err := factory(context.Background(), "x.mid", nil); err == nil || !errors.Is(err, contracts.ErrEngineUnavailable) {
		t.Fatalf("err = %v, want ErrEngineUnavailable", err)
	}
}
