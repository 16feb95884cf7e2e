package tracks

import (
	"errors"
	"testing"
	"time"

	"github.com/leandrodaf/midiguess/internal/logger"
	"github.com/leandrodaf/midiguess/sdk/contracts"
)

type fakeEngine struct {
	muted   map[int]bool
	calls   int
	playing bool
	pos     time.Duration
	stops   int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{muted: map[int]bool{}}
}

func (e *fakeEngine) MuteChannel(ch int, muted bool) {
	e.calls++
	e.muted[ch] = muted
}
func (e *fakeEngine) Play()                          { e.playing = true }
func (e *fakeEngine) Pause()                         { e.playing = false }
func (e *fakeEngine) Stop()                          { e.playing = false; e.stops++ }
func (e *fakeEngine) CurrentTime() time.Duration     { return e.pos }
func (e *fakeEngine) SetCurrentTime(t time.Duration) { e.pos = t }
func (e *fakeEngine) Duration() time.Duration        { return time.Minute }

type queryEngine struct{ *fakeEngine }

func (e queryEngine) IsChannelMuted(ch int) bool { return e.muted[ch] }

func song() []contracts.Track {
	return []contracts.Track{
		Classify(0, "Melody"),
		Classify(1, "Lead Synth"),
		Classify(2, "Percussion"),
		Classify(3, "Strings"),
		Classify(4, "Fretless Bass"),
	}
}

func unmutedIDs(tracks []contracts.Track) []int {
	var ids []int
	for _, t := range tracks {
		if !t.Muted {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func TestNewSequencerAppliesInitialState(t *testing.T) {
	eng := newFakeEngine()
	s := NewSequencer(eng, song(), 3, Identity, logger.NewNopLogger())

	if got := unmutedIDs(s.Tracks()); len(got) != 1 || got[0] != 2 {
		t.Fatalf("unmuted = %v, want [2]", got)
	}
	for id := 0; id < 5; id++ {
		if eng.muted[id] != (id != 2) {
			t.Fatalf("engine channel %d muted = %v", id, eng.muted[id])
		}
	}
	if s.State() != contracts.Initialized {
		t.Fatalf("state = %v, want initialized", s.State())
	}
}

func TestRevealNextOrder(t *testing.T) {
	eng := newFakeEngine()
	s := NewSequencer(eng, song(), 10, Identity, logger.NewNopLogger())

	want := []int{4, 3, 1, 0} // bass, other, lead, melody
	for _, id := range want {
		got, err := s.RevealNext()
		if err != nil {
			t.Fatalf("RevealNext: %v", err)
		}
		if got.ID != id {
			t.Fatalf("revealed %d, want %d", got.ID, id)
		}
		if eng.muted[id] {
			t.Fatalf("engine channel %d still muted", id)
		}
	}
	if _, err := s.RevealNext(); !errors.Is(err, contracts.ErrFullyRevealed) {
		t.Fatalf("reveal after all audible: err = %v", err)
	}
	if s.Tokens() != 6 {
		t.Fatalf("tokens = %d, want 6 (only real reveals spend)", s.Tokens())
	}
	if s.State() != contracts.UserModified {
		t.Fatalf("state = %v, want modified", s.State())
	}
}

func TestRevealNextCount(t *testing.T) {
	for n := 0; n <= 7; n++ {
		s := NewSequencer(newFakeEngine(), song(), 5, Identity, logger.NewNopLogger())
		for i := 0; i < n; i++ {
			s.RevealNext()
		}
		want := n
		if want > 4 {
			want = 4
		}
		if got := len(unmutedIDs(s.Tracks())) - 1; got != want {
			t.Fatalf("after %d reveals: %d extra unmuted, want %d", n, got, want)
		}
	}
}

func TestRevealNextWithoutTokens(t *testing.T) {
	eng := newFakeEngine()
	s := NewSequencer(eng, song(), 0, Identity, logger.NewNopLogger())
	before := s.Tracks()
	calls := eng.calls

	_, err := s.RevealNext()
	if !errors.Is(err, contracts.ErrNoTokens) || !errors.Is(err, contracts.ErrDisallowedAction) {
		t.Fatalf("err = %v, want ErrNoTokens", err)
	}
	after := s.Tracks()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("track %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
	if eng.calls != calls {
		t.Fatalf("engine touched on a disallowed reveal")
	}
	if s.State() != contracts.Initialized {
		t.Fatalf("state changed on a disallowed reveal")
	}
}

func TestToggleMute(t *testing.T) {
	eng := newFakeEngine()
	s := NewSequencer(eng, song(), 1, Identity, logger.NewNopLogger())

	tracks, err := s.ToggleMute(0)
	if err != nil {
		t.Fatalf("ToggleMute: %v", err)
	}
	if tracks[0].Muted || eng.muted[0] {
		t.Fatalf("track 0 not unmuted: %+v engine=%v", tracks[0], eng.muted[0])
	}
	tracks, _ = s.ToggleMute(2)
	if !tracks[2].Muted || !eng.muted[2] {
		t.Fatalf("track 2 not muted")
	}
	if _, err := s.ToggleMute(42); !errors.Is(err, contracts.ErrUnknownTrack) {
		t.Fatalf("unknown id err = %v", err)
	}
}

func TestChannelOffsetIsAppliedEverywhere(t *testing.T) {
	eng := queryEngine{newFakeEngine()}
	mapping := ChannelMapping{Offset: 1}
	s := NewSequencer(eng, song(), 2, mapping, logger.NewNopLogger())

	if _, ok := eng.muted[0]; ok {
		t.Fatalf("channel 0 written with offset mapping")
	}
	if eng.muted[3] {
		t.Fatalf("percussion (track 2) should be audible on channel 3")
	}
	s.ToggleMute(0)
	if eng.muted[1] {
		t.Fatalf("toggle of track 0 did not reach channel 1")
	}
	if fixed := s.VerifyConsistency(); fixed != 0 {
		t.Fatalf("VerifyConsistency fixed %d channels on a consistent engine", fixed)
	}
}

func TestResetToInitial(t *testing.T) {
	eng := newFakeEngine()
	s := NewSequencer(eng, song(), 5, Identity, logger.NewNopLogger())
	fresh := s.Tracks()

	s.RevealNext()
	s.RevealNext()
	s.ToggleMute(2)
	s.MuteAll(false)
	eng.pos = 42 * time.Second

	got := s.ResetToInitial()
	for i := range fresh {
		if got[i] != fresh[i] {
			t.Fatalf("track %d = %+v, want %+v", i, got[i], fresh[i])
		}
		if eng.muted[i] != fresh[i].Muted {
			t.Fatalf("engine channel %d = %v, want %v", i, eng.muted[i], fresh[i].Muted)
		}
	}
	if eng.pos != 0 || !eng.playing || eng.stops != 1 {
		t.Fatalf("engine not rewound and resumed: pos=%v playing=%v stops=%d", eng.pos, eng.playing, eng.stops)
	}
	if s.State() != contracts.Initialized {
		t.Fatalf("state = %v, want initialized", s.State())
	}
	if s.Tokens() != 3 {
		t.Fatalf("tokens = %d, want 3", s.Tokens())
	}
}

func TestMuteAll(t *testing.T) {
	eng := newFakeEngine()
	s := NewSequencer(eng, song(), 0, Identity, logger.NewNopLogger())
	for _, tr := range s.MuteAll(true) {
		if !tr.Muted || !eng.muted[tr.ID] {
			t.Fatalf("track %d not muted", tr.ID)
		}
	}
}

func TestVerifyConsistencyHealsDrift(t *testing.T) {
	eng := queryEngine{newFakeEngine()}
	s := NewSequencer(eng, song(), 0, Identity, logger.NewNopLogger())

	eng.muted[2] = true  // engine silenced the audible track
	eng.muted[0] = false // and opened a hidden one

	if fixed := s.VerifyConsistency(); fixed != 2 {
		t.Fatalf("first check fixed %d, want 2", fixed)
	}
	if eng.muted[2] || !eng.muted[0] {
		t.Fatalf("recorded state not re-applied: %v", eng.muted)
	}
	if fixed := s.VerifyConsistency(); fixed != 0 {
		t.Fatalf("second check fixed %d, want 0", fixed)
	}
}

func TestVerifyConsistencyWithoutQuery(t *testing.T) {
	eng := newFakeEngine()
	s := NewSequencer(eng, song(), 0, Identity, logger.NewNopLogger())
	eng.muted[2] = true
	if fixed := s.VerifyConsistency(); fixed != 0 {
		t.Fatalf("engine without mute query corrected %d channels", fixed)
	}
}
