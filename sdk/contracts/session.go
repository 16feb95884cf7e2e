package contracts

import (
	"context"
	"time"
)

// Snapshot is the view of a session a presentation layer renders. It never
// carries the song title.
type Snapshot struct {
	Loaded   bool          // A song is loaded and ready.
	Tracks   []Track       // Current track list.
	Tokens   int           // Reveal tokens left.
	State    RevealState   // Sequencer lifecycle state.
	Position time.Duration // Playback position.
	Duration time.Duration // Song length.
	Solved   bool          // A guess matched the loaded song.
	Guesses  int           // Guesses submitted for the loaded song.
}

// Session is the user-facing game: it loads songs, reveals their tracks
// and judges guesses. Disallowed actions return an error wrapping
// ErrDisallowedAction and change nothing.
type Session interface {
	// LoadRandom loads a song picked uniformly from the library and returns its id.
	LoadRandom(ctx context.Context) (string, error)
	// Load replaces the current song. A load superseded by a newer one fails
	// with ErrStaleLoad.
	Load(ctx context.Context, id string) error
	Play() error
	Pause() error
	// Restart rewinds and restores the initial single-track state.
	Restart() ([]Track, error)
	// RevealMore spends a token to unmute the next track in reveal order.
	RevealMore() (Track, error)
	ToggleTrack(id int) ([]Track, error)
	MuteAll(muted bool) ([]Track, error)
	SubmitGuess(text string) (GuessResult, error)
	Snapshot() Snapshot
	// RevealAnswer returns the id of the loaded song.
	RevealAnswer() (string, error)
	Close() error
}
