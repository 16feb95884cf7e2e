// Package song reads Standard MIDI Files into the track list and timed
// channel events the engine plays.
package song

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrUnsupportedTimeFormat is returned for SMPTE timed files.
var ErrUnsupportedTimeFormat = errors.New("only metric (ticks per quarter) MIDI files are supported")

const defaultBPM = 120.0

// Event is one channel voice message scheduled at an absolute time.
type Event struct {
	Track   int
	At      time.Duration
	Command byte // High nibble of the status byte.
	Channel byte
	Data1   byte
	Data2   byte
}

// IsNoteOn reports a note-on with non-zero velocity.
func (e Event) IsNoteOn() bool { return e.Command == 0x90 && e.Data2 > 0 }

// IsNoteOff reports a note-off, including note-on with zero velocity.
func (e Event) IsNoteOff() bool {
	return e.Command == 0x80 || (e.Command == 0x90 && e.Data2 == 0)
}

// Track is the metadata of one SMF track.
type Track struct {
	Name   string
	Events int
}

// Song is a parsed MIDI file.
type Song struct {
	Name     string
	Tracks   []Track
	Events   []Event // Sorted by At, stable in file order.
	Duration time.Duration
}

type tempoChange struct {
	tick uint64
	bpm  float64
}

// Parse reads an SMF from r. name is kept for display only.
func Parse(name string, r io.Reader) (*Song, error) {
	file, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	ticks, ok := file.TimeFormat.(smf.MetricTicks)
	if !ok || ticks == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedTimeFormat)
	}

	type rawEvent struct {
		track int
		tick  uint64
		msg   []byte
	}
	var (
		raws     []rawEvent
		tempos   []tempoChange
		lastTick uint64
	)
	s := &Song{Name: name, Tracks: make([]Track, len(file.Tracks))}
	for i, tr := range file.Tracks {
		var abs uint64
		for _, ev := range tr {
			abs += uint64(ev.Delta)
			msg := ev.Message

			var text string
			var bpm float64
			switch {
			case msg.GetMetaTrackName(&text):
				if s.Tracks[i].Name == "" {
					s.Tracks[i].Name = strings.TrimSpace(text)
				}
			case msg.GetMetaTempo(&bpm):
				if bpm > 0 {
					tempos = append(tempos, tempoChange{tick: abs, bpm: bpm})
				}
			case isChannelMessage(msg):
				raws = append(raws, rawEvent{track: i, tick: abs, msg: msg})
				s.Tracks[i].Events++
			}
		}
		if abs > lastTick {
			lastTick = abs
		}
	}

	sort.SliceStable(tempos, func(a, b int) bool { return tempos[a].tick < tempos[b].tick })
	clock := newTempoMap(float64(ticks), tempos)

	s.Events = make([]Event, 0, len(raws))
	for _, r := range raws {
		e := Event{
			Track:   r.track,
			At:      clock.at(r.tick),
			Command: r.msg[0] & 0xF0,
			Channel: r.msg[0] & 0x0F,
		}
		if len(r.msg) > 1 {
			e.Data1 = r.msg[1]
		}
		if len(r.msg) > 2 {
			e.Data2 = r.msg[2]
		}
		s.Events = append(s.Events, e)
	}
	sort.SliceStable(s.Events, func(a, b int) bool { return s.Events[a].At < s.Events[b].At })
	s.Duration = clock.at(lastTick)
	return s, nil
}

func isChannelMessage(msg []byte) bool {
	return len(msg) > 0 && msg[0] >= 0x80 && msg[0] < 0xF0
}

// tempoMap converts absolute ticks to wall time across tempo changes.
type tempoMap struct {
	perQuarter float64
	changes    []tempoChange
	offsets    []time.Duration // Wall time at each change.
}

func newTempoMap(perQuarter float64, changes []tempoChange) *tempoMap {
	if len(changes) == 0 || changes[0].tick != 0 {
		changes = append([]tempoChange{{tick: 0, bpm: defaultBPM}}, changes...)
	}
	m := &tempoMap{perQuarter: perQuarter, changes: changes, offsets: make([]time.Duration, len(changes))}
	for i := 1; i < len(changes); i++ {
		m.offsets[i] = m.offsets[i-1] + m.span(changes[i].tick-changes[i-1].tick, changes[i-1].bpm)
	}
	return m
}

func (m *tempoMap) at(tick uint64) time.Duration {
	i := sort.Search(len(m.changes), func(i int) bool { return m.changes[i].tick > tick }) - 1
	if i < 0 {
		i = 0
	}
	return m.offsets[i] + m.span(tick-m.changes[i].tick, m.changes[i].bpm)
}

func (m *tempoMap) span(ticks uint64, bpm float64) time.Duration {
	seconds := float64(ticks) / m.perQuarter * 60 / bpm
	return time.Duration(seconds * float64(time.Second))
}
