// Package pedal turns MIDI controller input into session actions.
package pedal

import (
	"time"

	"github.com/leandrodaf/midiguess/sdk/contracts"
)

// Decode turns a raw channel message into an event. Only note on, note off
// and control change messages are accepted.
func Decode(status, data1, data2 byte, at time.Time) (contracts.PedalEvent, bool) {
	cmd := contracts.MIDICommand(status & 0xF0)
	switch cmd {
	case contracts.NoteOn, contracts.NoteOff, contracts.ControlChange:
	default:
		return contracts.PedalEvent{}, false
	}
	return contracts.PedalEvent{
		Timestamp: uint64(at.UTC().UnixNano()),
		Command:   cmd,
		Channel:   status & 0x0F,
		Data1:     data1 & 0x7F,
		Data2:     data2 & 0x7F,
	}, true
}

// Split cuts a packet into three byte channel messages, skipping system
// messages and anything truncated.
func Split(data []byte) [][3]byte {
	var out [][3]byte
	for i := 0; i < len(data); {
		status := data[i]
		if status < 0x80 || status >= 0xF0 {
			i++
			continue
		}
		size := 3
		if cmd := status & 0xF0; cmd == 0xC0 || cmd == 0xD0 {
			size = 2
		}
		if i+size > len(data) {
			break
		}
		msg := [3]byte{status, data[i+1]}
		if size == 3 {
			msg[2] = data[i+2]
		}
		out = append(out, msg)
		i += size
	}
	return out
}

// Filter lists the commands a client forwards. An empty filter forwards all.
type Filter []contracts.MIDICommand

// Allows reports whether cmd passes the filter.
func (f Filter) Allows(cmd contracts.MIDICommand) bool {
	if len(f) == 0 {
		return true
	}
	for _, c := range f {
		if c == cmd {
			return true
		}
	}
	return false
}

// Forward sends ev without blocking. A full channel drops the event.
func Forward(ch chan<- contracts.PedalEvent, ev contracts.PedalEvent, logger contracts.Logger) {
	select {
	case ch <- ev:
	default:
		logger.Warn("pedal event buffer full; dropping event", logger.Field().Uint8("data1", ev.Data1))
	}
}
