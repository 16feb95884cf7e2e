package contracts

// PriorityClass orders tracks for revealing. Lower values are heard first.
type PriorityClass int

const (
	Percussion PriorityClass = iota
	Bass
	Other
	Guitar
	Lead
	Voice
	Melody
)

var priorityNames = [...]string{
	Percussion: "percussion",
	Bass:       "bass",
	Other:      "other",
	Guitar:     "guitar",
	Lead:       "lead",
	Voice:      "voice",
	Melody:     "melody",
}

// String returns the lower-case keyword of the class.
func (p PriorityClass) String() string {
	if p < 0 || int(p) >= len(priorityNames) {
		return "unknown"
	}
	return priorityNames[p]
}

// Track is one addressable instrument part of a loaded song.
type Track struct {
	ID       int           // Stable 0-based index within the song.
	Name     string        // Display name, never empty.
	Muted    bool          // Mirrors the engine mute flag of the mapped channel.
	Priority PriorityClass // Fixed at creation time.
}

// RevealState is the lifecycle state of a reveal sequencer.
type RevealState int

const (
	// Initialized means exactly the initial track is audible.
	Initialized RevealState = iota
	// UserModified means a reveal or a manual toggle happened since the last reset.
	UserModified
)

func (s RevealState) String() string {
	if s == Initialized {
		return "initialized"
	}
	return "modified"
}

// GuessResult is the outcome of one guess submission.
type GuessResult struct {
	Matched bool
	Score   *float64 // Best score in [0,1]; nil when no candidate was scored.
}
