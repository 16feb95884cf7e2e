package contracts

import (
	"errors"
	"fmt"
)

// Session level failures. All of them leave the session usable.
var (
	ErrLoadTimeout       = errors.New("song metadata did not become available in time")
	ErrNoSongsAvailable  = errors.New("no songs available")
	ErrEngineUnavailable = errors.New("audio engine unavailable")
	ErrStaleLoad         = errors.New("load superseded by a newer one")
	ErrSessionClosed     = errors.New("session closed")
)

// ErrDisallowedAction marks user actions that are ignored rather than failed.
var ErrDisallowedAction = errors.New("action not allowed")

var (
	ErrNoTokens      = fmt.Errorf("%w: no reveal tokens left", ErrDisallowedAction)
	ErrFullyRevealed = fmt.Errorf("%w: every track is already audible", ErrDisallowedAction)
	ErrUnknownTrack  = fmt.Errorf("%w: unknown track", ErrDisallowedAction)
	ErrNoSongLoaded  = fmt.Errorf("%w: no song loaded", ErrDisallowedAction)
)
