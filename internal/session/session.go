// Package session implements the playback game: it owns one engine deck per
// loaded song, seeds the reveal sequencer and judges guesses.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/midiguess/internal/guess"
	"github.com/leandrodaf/midiguess/internal/library"
	"github.com/leandrodaf/midiguess/internal/song"
	"github.com/leandrodaf/midiguess/internal/tracks"
	"github.com/leandrodaf/midiguess/sdk/contracts"
)

// Session is safe for concurrent use. Options must have their defaults
// applied; see sdk/game.
type Session struct {
	mu       sync.Mutex
	opts     contracts.SessionOptions
	logger   contracts.Logger
	mapping  tracks.ChannelMapping
	expander *guess.Expander
	matcher  *guess.Matcher

	gen        uint64
	cancelLoad context.CancelFunc
	cur        *playback
	closed     bool
}

// playback is everything bound to one loaded song.
type playback struct {
	id      string
	deck    contracts.Deck
	seq     *tracks.Sequencer
	solved  bool
	guesses int
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

var _ contracts.Session = (*Session)(nil)

// New creates an idle session.
func New(opts contracts.SessionOptions) (*Session, error) {
	if opts.DeckFactory == nil {
		return nil, fmt.Errorf("%w: no deck factory configured", contracts.ErrEngineUnavailable)
	}
	if opts.Logger == nil || opts.Match == nil || opts.RevealTokens == nil || opts.Random == nil {
		return nil, errors.New("session options are missing defaults")
	}
	return &Session{
		opts:     opts,
		logger:   opts.Logger,
		mapping:  tracks.ChannelMapping{Offset: opts.ChannelOffset},
		expander: guess.NewExpander(opts.Aliases),
		matcher:  guess.NewMatcher(*opts.Match),
	}, nil
}

// LoadRandom picks a song from the library and loads it.
func (s *Session) LoadRandom(ctx context.Context) (string, error) {
	if s.opts.Library == nil {
		return "", contracts.ErrNoSongsAvailable
	}
	id, err := library.Pick(ctx, s.opts.Library, s.opts.Random)
	if err != nil {
		s.logger.Error("failed to pick a song", s.logger.Field().Error("error", err))
		return "", err
	}
	return id, s.Load(ctx, id)
}

// Load tears down the current song and loads id. Any load still in flight
// is cancelled and fails with contracts.ErrStaleLoad.
func (s *Session) Load(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return contracts.ErrSessionClosed
	}
	s.gen++
	gen := s.gen
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancelLoad = cancel
	old := s.cur
	s.cur = nil
	s.mu.Unlock()

	if err := old.finish(); err != nil {
		s.logger.Warn("failed to close previous deck", s.logger.Field().String("song", old.id), s.logger.Field().Error("error", err))
	}

	deck, err := s.open(ctx, id)
	if err != nil {
		return s.loadFailed(gen, id, err)
	}
	if err := song.AwaitReady(ctx, deck, s.opts.ReadyPollInterval, s.opts.ReadyPollAttempts); err != nil {
		s.closeDeck(id, deck)
		return s.loadFailed(gen, id, err)
	}

	list := make([]contracts.Track, deck.TrackCount())
	for i := range list {
		list[i] = tracks.Classify(i, deck.TrackName(i))
	}

	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		s.closeDeck(id, deck)
		return fmt.Errorf("%w: %s", contracts.ErrStaleLoad, id)
	}
	pb := &playback{
		id:   id,
		deck: deck,
		seq:  tracks.NewSequencer(deck, list, *s.opts.RevealTokens, s.mapping, s.logger),
	}
	s.cur = pb
	s.startTimers(pb)
	if s.opts.AutoPlay == nil || *s.opts.AutoPlay {
		deck.Play()
	}
	current := pb.seq.Tracks()
	s.mu.Unlock()

	s.logger.Info("song ready",
		s.logger.Field().Int("tracks", len(current)),
		s.logger.Field().Duration("duration", deck.Duration()),
		s.logger.Field().Int("tokens", *s.opts.RevealTokens))
	s.notifyTracks(current)
	return nil
}

func (s *Session) open(ctx context.Context, id string) (contracts.Deck, error) {
	if s.opts.Library == nil {
		return nil, contracts.ErrNoSongsAvailable
	}
	data, err := s.opts.Library.OpenSong(ctx, id)
	if err != nil {
		return nil, err
	}
	deck, err := s.opts.DeckFactory(ctx, id, data)
	if err != nil {
		if !errors.Is(err, contracts.ErrEngineUnavailable) {
			err = fmt.Errorf("%w: %v", contracts.ErrEngineUnavailable, err)
		}
		return nil, err
	}
	return deck, nil
}

// closeDeck releases a deck that never became the current playback.
func (s *Session) closeDeck(id string, deck contracts.Deck) {
	if err := deck.Close(); err != nil {
		s.logger.Warn("failed to close deck", s.logger.Field().String("song", id), s.logger.Field().Error("error", err))
	}
}

func (s *Session) loadFailed(gen uint64, id string, err error) error {
	s.mu.Lock()
	stale := gen != s.gen || s.closed
	s.mu.Unlock()
	if stale {
		s.logger.Debug("stale load discarded", s.logger.Field().Error("error", err))
		return fmt.Errorf("%w: %s", contracts.ErrStaleLoad, id)
	}
	s.logger.Error("failed to load song", s.logger.Field().Error("error", err))
	return err
}

func (s *Session) startTimers(pb *playback) {
	ctx, cancel := context.WithCancel(context.Background())
	pb.cancel = cancel
	pb.wg.Add(1)
	go s.every(ctx, pb, s.opts.ConsistencyInterval, s.checkConsistency)
	if s.opts.OnProgress != nil {
		pb.wg.Add(1)
		go s.every(ctx, pb, s.opts.ProgressInterval, s.publishProgress)
	}
}

func (s *Session) every(ctx context.Context, pb *playback, interval time.Duration, fn func(*playback)) {
	defer pb.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(pb)
		}
	}
}

func (s *Session) checkConsistency(pb *playback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != pb {
		return
	}
	if n := pb.seq.VerifyConsistency(); n > 0 {
		s.logger.Debug("consistency check corrected channels", s.logger.Field().Int("count", n))
	}
}

func (s *Session) publishProgress(pb *playback) {
	s.mu.Lock()
	if s.cur != pb {
		s.mu.Unlock()
		return
	}
	p := contracts.Progress{Position: pb.deck.CurrentTime(), Duration: pb.deck.Duration()}
	s.mu.Unlock()
	s.opts.OnProgress(p)
}

// finish stops the timers of pb and closes its deck. It must be called
// without holding the session lock.
func (pb *playback) finish() error {
	if pb == nil {
		return nil
	}
	if pb.cancel != nil {
		pb.cancel()
	}
	pb.wg.Wait()
	return pb.deck.Close()
}

// current returns the loaded playback or logs and reports a disallowed
// action. The caller holds s.mu.
func (s *Session) current(action string) (*playback, error) {
	if s.cur == nil {
		s.logger.Debug("action ignored: no song loaded", s.logger.Field().String("action", action))
		return nil, contracts.ErrNoSongLoaded
	}
	return s.cur, nil
}

// Play resumes playback.
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pb, err := s.current("play")
	if err != nil {
		return err
	}
	pb.deck.Play()
	return nil
}

// Pause halts playback at the current position.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pb, err := s.current("pause")
	if err != nil {
		return err
	}
	pb.deck.Pause()
	return nil
}

// Restart rewinds and restores the initial single-track state.
func (s *Session) Restart() ([]contracts.Track, error) {
	s.mu.Lock()
	pb, err := s.current("restart")
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	list := pb.seq.ResetToInitial()
	s.mu.Unlock()
	s.notifyTracks(list)
	return list, nil
}

// RevealMore spends a token to unmute the next track in reveal order.
func (s *Session) RevealMore() (contracts.Track, error) {
	s.mu.Lock()
	pb, err := s.current("reveal")
	if err != nil {
		s.mu.Unlock()
		return contracts.Track{}, err
	}
	t, err := pb.seq.RevealNext()
	list := pb.seq.Tracks()
	s.mu.Unlock()
	if err != nil {
		return contracts.Track{}, err
	}
	s.notifyTracks(list)
	return t, nil
}

// ToggleTrack flips the mute flag of one track.
func (s *Session) ToggleTrack(id int) ([]contracts.Track, error) {
	s.mu.Lock()
	pb, err := s.current("toggle")
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	list, err := pb.seq.ToggleMute(id)
	s.mu.Unlock()
	if err != nil {
		return list, err
	}
	s.notifyTracks(list)
	return list, nil
}

// MuteAll sets every track's mute flag.
func (s *Session) MuteAll(muted bool) ([]contracts.Track, error) {
	s.mu.Lock()
	pb, err := s.current("mute all")
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	list := pb.seq.MuteAll(muted)
	s.mu.Unlock()
	s.notifyTracks(list)
	return list, nil
}

// SubmitGuess matches text against the loaded song's file name.
func (s *Session) SubmitGuess(text string) (contracts.GuessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pb, err := s.current("guess")
	if err != nil {
		return contracts.GuessResult{}, err
	}
	candidates := s.expander.Expand(text)
	res := s.matcher.Match(guess.TargetName(pb.id), candidates)
	pb.guesses++
	if res.Matched {
		pb.solved = true
	}
	score := -1.0
	if res.Score != nil {
		score = *res.Score
	}
	s.logger.Info("guess judged",
		s.logger.Field().Bool("matched", res.Matched),
		s.logger.Field().Float64("score", score),
		s.logger.Field().Int("candidates", len(candidates)))
	return res, nil
}

// Snapshot returns the state a view renders.
func (s *Session) Snapshot() contracts.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	pb := s.cur
	if pb == nil {
		return contracts.Snapshot{}
	}
	return contracts.Snapshot{
		Loaded:   true,
		Tracks:   pb.seq.Tracks(),
		Tokens:   pb.seq.Tokens(),
		State:    pb.seq.State(),
		Position: pb.deck.CurrentTime(),
		Duration: pb.deck.Duration(),
		Solved:   pb.solved,
		Guesses:  pb.guesses,
	}
}

// RevealAnswer returns the loaded song id.
func (s *Session) RevealAnswer() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pb, err := s.current("answer")
	if err != nil {
		return "", err
	}
	return pb.id, nil
}

// Close cancels any load in flight, stops the timers and releases the deck.
// Calling it more than once is safe.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	pb := s.cur
	s.cur = nil
	s.mu.Unlock()
	return pb.finish()
}

func (s *Session) notifyTracks(list []contracts.Track) {
	if s.opts.OnTracks != nil {
		s.opts.OnTracks(list)
	}
}
