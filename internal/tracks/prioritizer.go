// Package tracks decides which tracks of a song are audible and in which
// order muted tracks are revealed.
package tracks

import (
	"fmt"
	"strings"

	"github.com/leandrodaf/midiguess/sdk/contracts"
)

// keywords is scanned in order; the first keyword found in a name decides its class.
var keywords = []struct {
	word  string
	class contracts.PriorityClass
}{
	{"percussion", contracts.Percussion},
	{"bass", contracts.Bass},
	{"guitar", contracts.Guitar},
	{"lead", contracts.Lead},
	{"voice", contracts.Voice},
	{"melody", contracts.Melody},
}

// Classify builds the track for SMF track index from its raw name.
// Blank names become "Track N" with N counting from one.
func Classify(index int, rawName string) contracts.Track {
	name := strings.TrimSpace(rawName)
	if name == "" {
		name = fmt.Sprintf("Track %d", index+1)
	}
	return contracts.Track{
		ID:       index,
		Name:     name,
		Priority: PriorityOf(name),
	}
}

// PriorityOf returns the priority class for a track name.
func PriorityOf(name string) contracts.PriorityClass {
	lower := strings.ToLower(name)
	for _, k := range keywords {
		if strings.Contains(lower, k.word) {
			return k.class
		}
	}
	return contracts.Other
}

// Initialize returns a copy of tracks where only the first track in reveal
// order is unmuted.
func Initialize(tracks []contracts.Track) []contracts.Track {
	out := make([]contracts.Track, len(tracks))
	copy(out, tracks)
	if len(out) == 0 {
		return out
	}
	first := 0
	for i := range out {
		out[i].Muted = true
		if revealsBefore(out[i], out[first]) {
			first = i
		}
	}
	out[first].Muted = false
	return out
}

// revealsBefore is the total reveal order: priority value, then id.
func revealsBefore(a, b contracts.Track) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.ID < b.ID
}
