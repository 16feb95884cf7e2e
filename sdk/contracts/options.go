package contracts

import "time"

// MatchConfig tunes the fuzzy title matcher.
type MatchConfig struct {
	Threshold          float64 // Scores strictly below are matches.
	Distance           int     // Character window for the location penalty.
	IgnoreLocation     bool    // When set, the match position does not affect the score.
	MinCandidateLength int     // Shorter candidates are not scored.
}

// Progress is the periodically published playback position.
type Progress struct {
	Position time.Duration
	Duration time.Duration
}

// SessionOptions defines the configuration of a playback session.
type SessionOptions struct {
	Logger              Logger               // Logger for session, sequencer and matcher.
	LogLevel            LogLevel             // Level of logging to use.
	LogFilePath         string               // File path when file logging is enabled.
	Library             SongLibrary          // Where songs are listed and read from.
	DeckFactory         DeckFactory          // Creates one engine deck per loaded song.
	RevealTokens        *int                 // Tokens granted per loaded song.
	ChannelOffset       int                  // Engine channel = track id + offset.
	ConsistencyInterval time.Duration        // Period of the mute consistency check.
	ProgressInterval    time.Duration        // Period of the position poll.
	ReadyPollInterval   time.Duration        // Delay between metadata readiness polls.
	ReadyPollAttempts   int                  // Polls before a load times out.
	AutoPlay            *bool                // Start playback once a song is loaded.
	Match               *MatchConfig         // Fuzzy matcher tuning.
	Aliases             map[string][]string  // Extra alias entries merged over the built-in table.
	OnProgress          func(Progress)       // Optional position observer.
	OnTracks            func(tracks []Track) // Optional observer of track list changes.
	Random              func(n int) int      // Uniform pick in [0,n); defaults to math/rand/v2.
}

// Option is a function that modifies SessionOptions.
type Option func(*SessionOptions)

// WithLogger sets the logger for the session.
func WithLogger(l Logger) Option {
	return func(opts *SessionOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the session.
func WithLogLevel(level LogLevel) Option {
	return func(opts *SessionOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile directs log output to the given file.
func WithLogFile(path string) Option {
	return func(opts *SessionOptions) {
		opts.LogFilePath = path
	}
}

// WithLibrary sets the song library.
func WithLibrary(lib SongLibrary) Option {
	return func(opts *SessionOptions) {
		opts.Library = lib
	}
}

// WithDeckFactory sets how engine decks are created.
func WithDeckFactory(f DeckFactory) Option {
	return func(opts *SessionOptions) {
		opts.DeckFactory = f
	}
}

// WithRevealTokens sets how many reveals a song grants.
func WithRevealTokens(n int) Option {
	return func(opts *SessionOptions) {
		opts.RevealTokens = &n
	}
}

// WithChannelOffset sets the track id to engine channel shift.
func WithChannelOffset(offset int) Option {
	return func(opts *SessionOptions) {
		opts.ChannelOffset = offset
	}
}

// WithConsistencyInterval sets the period of the mute consistency check.
func WithConsistencyInterval(d time.Duration) Option {
	return func(opts *SessionOptions) {
		opts.ConsistencyInterval = d
	}
}

// WithProgressInterval sets the period of the playback position poll.
func WithProgressInterval(d time.Duration) Option {
	return func(opts *SessionOptions) {
		opts.ProgressInterval = d
	}
}

// WithReadyPolling sets the bounded metadata readiness poll.
func WithReadyPolling(interval time.Duration, attempts int) Option {
	return func(opts *SessionOptions) {
		opts.ReadyPollInterval = interval
		opts.ReadyPollAttempts = attempts
	}
}

// WithAutoPlay controls whether playback starts right after a load.
func WithAutoPlay(enabled bool) Option {
	return func(opts *SessionOptions) {
		opts.AutoPlay = &enabled
	}
}

// WithMatchConfig sets the fuzzy matcher tuning.
func WithMatchConfig(cfg MatchConfig) Option {
	return func(opts *SessionOptions) {
		opts.Match = &cfg
	}
}

// WithAliases merges extra alias entries over the built-in table.
func WithAliases(aliases map[string][]string) Option {
	return func(opts *SessionOptions) {
		opts.Aliases = aliases
	}
}

// WithOnProgress registers a playback position observer.
func WithOnProgress(fn func(Progress)) Option {
	return func(opts *SessionOptions) {
		opts.OnProgress = fn
	}
}

// WithOnTracks registers an observer of track list changes.
func WithOnTracks(fn func([]Track)) Option {
	return func(opts *SessionOptions) {
		opts.OnTracks = fn
	}
}

// WithRandom replaces the uniform song picker.
func WithRandom(fn func(n int) int) Option {
	return func(opts *SessionOptions) {
		opts.Random = fn
	}
}

// PedalOptions defines the configuration of a pedal capture client.
type PedalOptions struct {
	Logger     Logger        // Logger for capture events and errors.
	Commands   []MIDICommand // Commands forwarded to the event channel.
	ClientName string        // Name registered with the OS MIDI service.
}

// PedalOption is a function that modifies PedalOptions.
type PedalOption func(*PedalOptions)

// WithPedalLogger sets the logger for the pedal client.
func WithPedalLogger(l Logger) PedalOption {
	return func(opts *PedalOptions) {
		opts.Logger = l
	}
}

// WithPedalCommands restricts which commands are forwarded.
func WithPedalCommands(cmds ...MIDICommand) PedalOption {
	return func(opts *PedalOptions) {
		opts.Commands = cmds
	}
}

// WithPedalClientName sets the name registered with the OS MIDI service.
func WithPedalClientName(name string) PedalOption {
	return func(opts *PedalOptions) {
		opts.ClientName = name
	}
}
