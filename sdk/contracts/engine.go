package contracts

import (
	"context"
	"time"
)

// UnknownDuration is reported by a SongSource whose metadata is not ready yet.
const UnknownDuration = 99999 * time.Second

// AudioEngine is the set of operations every playback engine must provide.
// Channel numbers are engine channels; callers translate track ids first.
type AudioEngine interface {
	MuteChannel(channel int, muted bool)
	Play()
	Pause()
	Stop()
	CurrentTime() time.Duration
	SetCurrentTime(t time.Duration)
	Duration() time.Duration
}

// ChannelMuteQuerier is an optional AudioEngine capability exposing the
// engine's authoritative per-channel mute flag.
type ChannelMuteQuerier interface {
	IsChannelMuted(channel int) bool
}

// SongSource yields the metadata of a loaded song. Until the song is ready
// Duration returns UnknownDuration.
type SongSource interface {
	TrackCount() int
	TrackName(index int) string
	Duration() time.Duration
}

// LoadErrorReporter is an optional SongSource capability reporting a load
// that failed for good, so readiness polling can stop early.
type LoadErrorReporter interface {
	LoadErr() error
}

// Deck is an engine instance bound to exactly one song.
type Deck interface {
	AudioEngine
	SongSource
	Close() error
}

// DeckFactory creates a deck for the song identified by name with the given file contents.
type DeckFactory func(ctx context.Context, name string, data []byte) (Deck, error)

// SongLibrary lists and opens available songs.
type SongLibrary interface {
	ListSongs(ctx context.Context) ([]string, error)
	OpenSong(ctx context.Context, id string) ([]byte, error)
}
