package tracks

import (
	"github.com/leandrodaf/midiguess/sdk/contracts"
)

// Sequencer owns the mute bookkeeping of one loaded song and keeps the audio
// engine in step with it. It is not safe for concurrent use; the owning
// session serialises calls.
type Sequencer struct {
	engine  contracts.AudioEngine
	mapping ChannelMapping
	logger  contracts.Logger
	tracks  []contracts.Track
	tokens  int
	state   contracts.RevealState
}

// NewSequencer seeds a sequencer with the initial single-track state, pushes
// every mute flag to the engine and runs one consistency check.
func NewSequencer(engine contracts.AudioEngine, tracks []contracts.Track, tokens int, mapping ChannelMapping, logger contracts.Logger) *Sequencer {
	if tokens < 0 {
		tokens = 0
	}
	s := &Sequencer{
		engine:  engine,
		mapping: mapping,
		logger:  logger,
		tracks:  Initialize(tracks),
		tokens:  tokens,
		state:   contracts.Initialized,
	}
	s.applyAll()
	s.VerifyConsistency()
	return s
}

// Tracks returns a copy of the current track list.
func (s *Sequencer) Tracks() []contracts.Track {
	out := make([]contracts.Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// Tokens returns the reveal tokens left.
func (s *Sequencer) Tokens() int { return s.tokens }

// State returns the lifecycle state.
func (s *Sequencer) State() contracts.RevealState { return s.state }

// ToggleMute flips the mute flag of one track. The flip is a user override
// that stays in effect until the next reset.
func (s *Sequencer) ToggleMute(trackID int) ([]contracts.Track, error) {
	i := s.indexOf(trackID)
	if i < 0 {
		s.logger.Debug("toggle ignored", s.logger.Field().Int("track", trackID))
		return s.Tracks(), contracts.ErrUnknownTrack
	}
	s.tracks[i].Muted = !s.tracks[i].Muted
	s.apply(s.tracks[i])
	s.state = contracts.UserModified
	return s.Tracks(), nil
}

// RevealNext spends one token to unmute the muted track that comes first in
// reveal order. A token is only spent when a track is actually revealed.
func (s *Sequencer) RevealNext() (contracts.Track, error) {
	if s.tokens <= 0 {
		s.logger.Debug("reveal ignored: no tokens left")
		return contracts.Track{}, contracts.ErrNoTokens
	}
	next := -1
	for i, t := range s.tracks {
		if t.Muted && (next < 0 || revealsBefore(t, s.tracks[next])) {
			next = i
		}
	}
	if next < 0 {
		s.logger.Debug("reveal ignored: every track audible", s.logger.Field().Int("tokens", s.tokens))
		return contracts.Track{}, contracts.ErrFullyRevealed
	}
	s.tokens--
	s.tracks[next].Muted = false
	s.apply(s.tracks[next])
	s.state = contracts.UserModified
	s.logger.Info("track revealed",
		s.logger.Field().Int("track", s.tracks[next].ID),
		s.logger.Field().String("name", s.tracks[next].Name),
		s.logger.Field().Int("tokensLeft", s.tokens))
	return s.tracks[next], nil
}

// MuteAll sets every track to muted and applies it to the engine.
func (s *Sequencer) MuteAll(muted bool) []contracts.Track {
	for i := range s.tracks {
		s.tracks[i].Muted = muted
	}
	s.applyAll()
	s.state = contracts.UserModified
	return s.Tracks()
}

// ResetToInitial rewinds playback and restores the initial single-track
// state. Tokens already spent stay spent.
func (s *Sequencer) ResetToInitial() []contracts.Track {
	s.engine.Stop()
	s.engine.SetCurrentTime(0)
	s.tracks = Initialize(s.tracks)
	s.applyAll()
	s.state = contracts.Initialized
	s.engine.Play()
	return s.Tracks()
}

// VerifyConsistency compares the recorded mute flags with the engine and
// re-applies the recorded flag wherever they differ. Engines without a mute
// query are trusted. It returns the number of corrected channels.
func (s *Sequencer) VerifyConsistency() int {
	q, ok := s.engine.(contracts.ChannelMuteQuerier)
	if !ok {
		return 0
	}
	fixed := 0
	for _, t := range s.tracks {
		ch := s.mapping.Channel(t.ID)
		if q.IsChannelMuted(ch) == t.Muted {
			continue
		}
		s.logger.Warn("mute state drift corrected",
			s.logger.Field().Int("track", t.ID),
			s.logger.Field().Int("channel", ch),
			s.logger.Field().Bool("muted", t.Muted))
		s.engine.MuteChannel(ch, t.Muted)
		fixed++
	}
	return fixed
}

func (s *Sequencer) apply(t contracts.Track) {
	s.engine.MuteChannel(s.mapping.Channel(t.ID), t.Muted)
}

func (s *Sequencer) applyAll() {
	for _, t := range s.tracks {
		s.apply(t)
	}
}

func (s *Sequencer) indexOf(trackID int) int {
	for i, t := range s.tracks {
		if t.ID == trackID {
			return i
		}
	}
	return -1
}
