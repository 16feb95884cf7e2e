package engine

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/leandrodaf/midiguess/internal/logger"
	"github.com/leandrodaf/midiguess/internal/song"
	"github.com/leandrodaf/midiguess/sdk/contracts"
	"github.com/viterin/vek/vek32"
)

// blockFrames is the scheduling granularity: events are dispatched before
// each block of this many frames is rendered.
const blockFrames = 64

// Config configures the decks created by NewDeckFactory.
type Config struct {
	SampleRate int
	Gain       float32
	Output     Output
	NewSynth   func() (Synth, error)
	Logger     contracts.Logger
}

type voice struct {
	track   int
	channel byte
	key     byte
}

// Deck plays one song. Engine channel n is SMF track n.
type Deck struct {
	mu       sync.Mutex
	cfg      Config
	name     string
	synth    Synth
	player   Player
	song     *song.Song
	loadErr  error
	cursor   int
	frame    int64
	playing  bool
	closed   bool
	muted    map[int]bool
	sounding map[voice]int
	left     []float32
	right    []float32
	pcm      []float32
}

// NewDeckFactory returns a contracts.DeckFactory creating decks with cfg.
func NewDeckFactory(cfg Config) contracts.DeckFactory {
	return func(ctx context.Context, name string, data []byte) (contracts.Deck, error) {
		synth, err := cfg.NewSynth()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", contracts.ErrEngineUnavailable, err)
		}
		return NewDeck(ctx, name, data, synth, cfg), nil
	}
}

// NewDeck starts parsing data in the background and, when cfg has an
// Output, opens a stream that pulls audio from the deck until Close.
func NewDeck(ctx context.Context, name string, data []byte, synth Synth, cfg Config) *Deck {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	if cfg.Gain == 0 {
		cfg.Gain = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNopLogger()
	}
	d := &Deck{
		cfg:      cfg,
		name:     name,
		synth:    synth,
		muted:    map[int]bool{},
		sounding: map[voice]int{},
	}
	go d.load(ctx, data)
	if cfg.Output != nil {
		d.player = cfg.Output.NewPlayer(d)
		d.player.Play()
	}
	return d
}

func (d *Deck) load(ctx context.Context, data []byte) {
	s, err := song.Parse(d.name, bytes.NewReader(data))
	d.mu.Lock()
	defer d.mu.Unlock()
	if ctx.Err() != nil || d.closed {
		return
	}
	if err != nil {
		d.loadErr = err
		d.cfg.Logger.Error("song parse failed", d.cfg.Logger.Field().String("song", d.name), d.cfg.Logger.Field().Error("error", err))
		return
	}
	d.song = s
	d.cfg.Logger.Debug("song parsed",
		d.cfg.Logger.Field().String("song", d.name),
		d.cfg.Logger.Field().Int("tracks", len(s.Tracks)),
		d.cfg.Logger.Field().Duration("duration", s.Duration))
}

// LoadErr reports a parse failure.
func (d *Deck) LoadErr() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadErr
}

// TrackCount returns the number of SMF tracks, zero until loaded.
func (d *Deck) TrackCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.song == nil {
		return 0
	}
	return len(d.song.Tracks)
}

// TrackName returns the raw name of a track; "" when unnamed or unknown.
func (d *Deck) TrackName(index int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.song == nil || index < 0 || index >= len(d.song.Tracks) {
		return ""
	}
	return d.song.Tracks[index].Name
}

// Duration returns the song length, or contracts.UnknownDuration until loaded.
func (d *Deck) Duration() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.song == nil {
		return contracts.UnknownDuration
	}
	return d.song.Duration
}

// MuteChannel mutes or unmutes a track. Muting releases its sounding notes.
func (d *Deck) MuteChannel(channel int, muted bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.muted[channel] = muted
	if !muted {
		return
	}
	for v := range d.sounding {
		if v.track == channel {
			d.synth.ProcessMidiMessage(int32(v.channel), 0x80, int32(v.key), 0)
			delete(d.sounding, v)
		}
	}
}

// IsChannelMuted reports the deck's own mute flag for a track.
func (d *Deck) IsChannelMuted(channel int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.muted[channel]
}

// Play resumes rendering from the current position.
func (d *Deck) Play() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.song == nil || d.closed {
		return
	}
	d.playing = true
}

// Pause stops rendering and releases sounding notes.
func (d *Deck) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = false
	d.releaseAll(false)
}

// Stop pauses and rewinds to the start.
func (d *Deck) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = false
	d.seek(0)
}

// CurrentTime returns the playback position.
func (d *Deck) CurrentTime() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frameTime(d.frame)
}

// SetCurrentTime moves the playback position, restoring program and
// controller state from everything before it.
func (d *Deck) SetCurrentTime(t time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seek(t)
}

// Playing reports whether the deck is rendering.
func (d *Deck) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing
}

// Render fills left and right with the next frames. Silence is rendered
// while paused.
func (d *Deck) Render(left, right []float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.render(left, right)
}

func (d *Deck) render(left, right []float32) {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	if !d.playing || d.song == nil {
		clear(left[:n])
		clear(right[:n])
		return
	}
	for off := 0; off < n; off += blockFrames {
		end := off + blockFrames
		if end > n {
			end = n
		}
		now := d.frameTime(d.frame)
		for d.cursor < len(d.song.Events) && d.song.Events[d.cursor].At <= now {
			d.dispatch(d.song.Events[d.cursor])
			d.cursor++
		}
		d.synth.Render(left[off:end], right[off:end])
		d.frame += int64(end - off)
	}
	if d.cfg.Gain != 1 {
		vek32.MulNumber_Inplace(left[:n], d.cfg.Gain)
		vek32.MulNumber_Inplace(right[:n], d.cfg.Gain)
	}
	if d.cursor >= len(d.song.Events) && d.frameTime(d.frame) >= d.song.Duration {
		d.playing = false
		d.releaseAll(false)
	}
}

// Read implements io.Reader for the audio output as interleaved stereo
// float32 little endian samples.
func (d *Deck) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, io.EOF
	}
	frames := len(p) / 8
	if cap(d.left) < frames {
		d.left = make([]float32, frames)
		d.right = make([]float32, frames)
		d.pcm = make([]float32, 2*frames)
	}
	left, right, pcm := d.left[:frames], d.right[:frames], d.pcm[:2*frames]
	d.render(left, right)
	for i := range left {
		pcm[2*i] = left[i]
		pcm[2*i+1] = right[i]
	}
	for i, v := range pcm {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
	return frames * 8, nil
}

// Close stops the output stream and silences the synthesizer.
func (d *Deck) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.playing = false
	d.releaseAll(true)
	player := d.player
	d.mu.Unlock()

	if player != nil {
		return player.Close()
	}
	return nil
}

func (d *Deck) dispatch(e song.Event) {
	switch {
	case e.IsNoteOn():
		if d.muted[e.Track] {
			return
		}
		d.sounding[voice{e.Track, e.Channel, e.Data1}]++
	case e.IsNoteOff():
		v := voice{e.Track, e.Channel, e.Data1}
		if d.sounding[v] == 0 {
			return
		}
		if d.sounding[v]--; d.sounding[v] == 0 {
			delete(d.sounding, v)
		}
	}
	d.synth.ProcessMidiMessage(int32(e.Channel), int32(e.Command), int32(e.Data1), int32(e.Data2))
}

func (d *Deck) seek(t time.Duration) {
	if t < 0 {
		t = 0
	}
	d.releaseAll(true)
	d.frame = int64(t.Seconds() * float64(d.cfg.SampleRate))
	if d.song == nil {
		d.cursor = 0
		return
	}
	d.cursor = sort.Search(len(d.song.Events), func(i int) bool { return d.song.Events[i].At >= t })
	for _, e := range d.song.Events[:d.cursor] {
		if !e.IsNoteOn() && !e.IsNoteOff() {
			d.dispatch(e)
		}
	}
}

func (d *Deck) releaseAll(immediate bool) {
	d.synth.NoteOffAll(immediate)
	clear(d.sounding)
}

func (d *Deck) frameTime(frame int64) time.Duration {
	return time.Duration(frame) * time.Second / time.Duration(d.cfg.SampleRate)
}
