package contracts

// MIDICommand represents the types of MIDI commands a pedal client forwards.
type MIDICommand byte

const (
	// NoteOn is the MIDI command for a Note On event (0x90).
	NoteOn MIDICommand = 0x90
	// NoteOff is the MIDI command for a Note Off event (0x80).
	NoteOff MIDICommand = 0x80
	// ControlChange is the MIDI command for a Control Change event (0xB0).
	ControlChange MIDICommand = 0xB0
)

// DeviceInfo contains information about a MIDI input device.
type DeviceInfo struct {
	Name         string // Device name.
	Manufacturer string // Device manufacturer.
	EntityName   string // Name of the entity to which the device belongs.
}

// PedalEvent is one channel message received from a controller.
type PedalEvent struct {
	Timestamp uint64      // Nanoseconds since epoch when the message arrived.
	Command   MIDICommand // High nibble of the status byte.
	Channel   uint8       // Low nibble of the status byte.
	Data1     uint8       // Note or controller number.
	Data2     uint8       // Velocity or controller value.
}

// Pressed reports whether the event is a key or switch going down.
func (e PedalEvent) Pressed() bool {
	switch e.Command {
	case NoteOn:
		return e.Data2 > 0
	case ControlChange:
		return e.Data2 >= 64
	}
	return false
}

// PedalClient captures MIDI input from a foot pedal or controller.
type PedalClient interface {
	Stop() error                               // Stops capture and releases the device.
	ListDevices() ([]DeviceInfo, error)        // Lists available input devices.
	SelectDevice(deviceID int) error           // Connects to a device by index.
	StartCapture(eventChannel chan PedalEvent) // Starts forwarding events to the channel.
}

// Action is a user-facing session action.
type Action int

const (
	ActionNone Action = iota
	ActionPlay
	ActionPause
	ActionRestart
	ActionReveal
	ActionNext
)

var actionNames = map[string]Action{
	"play":    ActionPlay,
	"pause":   ActionPause,
	"restart": ActionRestart,
	"reveal":  ActionReveal,
	"next":    ActionNext,
}

// ParseAction maps an action keyword to an Action. Unknown keywords yield ActionNone.
func ParseAction(s string) Action {
	return actionNames[s]
}

func (a Action) String() string {
	for name, v := range actionNames {
		if v == a {
			return name
		}
	}
	return "none"
}
