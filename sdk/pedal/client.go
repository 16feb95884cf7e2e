// Package pedal creates MIDI foot pedal clients for macOS and Windows.
package pedal

import (
	"github.com/leandrodaf/midiguess/internal/logger"
	"github.com/leandrodaf/midiguess/sdk/contracts"
)

// NewPedalClient creates a pedal client with the given options. By default
// it forwards note on, note off and control change events.
func NewPedalClient(opts ...contracts.PedalOption) (contracts.PedalClient, error) {
	options := applyDefaultOptions(opts...)
	return NewClient(&options)
}

func applyDefaultOptions(opts ...contracts.PedalOption) contracts.PedalOptions {
	options := contracts.PedalOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if len(options.Commands) == 0 {
		options.Commands = []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff, contracts.ControlChange}
	}
	if options.ClientName == "" {
		options.ClientName = "midiguess pedal"
	}
	return options
}
