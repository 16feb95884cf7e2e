package pedal

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/midiguess/internal/pedal/pedaldarwin"
	"github.com/leandrodaf/midiguess/internal/pedal/pedalwindows"
	"github.com/leandrodaf/midiguess/sdk/contracts"
)

// ErrUnsupportedOS is returned when no pedal client exists for the running OS.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// clientInitializers maps OS names to pedal client initializers.
var clientInitializers = map[string]func(*contracts.PedalOptions) (contracts.PedalClient, error){
	"darwin":  pedaldarwin.NewClient,
	"windows": pedalwindows.NewClient,
}

// newClient picks the initializer for goos.
func newClient(goos string, opts *contracts.PedalOptions) (contracts.PedalClient, error) {
	if initializer, exists := clientInitializers[goos]; exists {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
}

// NewClient initializes a pedal client for the current operating system.
func NewClient(opts *contracts.PedalOptions) (contracts.PedalClient, error) {
	return newClient(runtime.GOOS, opts)
}
