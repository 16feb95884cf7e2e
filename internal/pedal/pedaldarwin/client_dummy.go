//go:build !darwin
// +build !darwin

package pedaldarwin

import (
	"errors"

	"github.com/leandrodaf/midiguess/sdk/contracts"
)

// ErrUnavailable is returned by every operation outside macOS.
var ErrUnavailable = errors.New("CoreMIDI is not available on this platform")

type dummyClient struct {
	logger contracts.Logger
}

// NewClient returns a client whose operations fail with ErrUnavailable.
func NewClient(opts *contracts.PedalOptions) (contracts.PedalClient, error) {
	return &dummyClient{logger: opts.Logger}, nil
}

func (c *dummyClient) ListDevices() ([]contracts.DeviceInfo, error) {
	return nil, ErrUnavailable
}

func (c *dummyClient) SelectDevice(int) error {
	return ErrUnavailable
}

func (c *dummyClient) StartCapture(chan contracts.PedalEvent) {
	c.logger.Warn("StartCapture called on dummy pedal client")
}

func (c *dummyClient) Stop() error {
	return nil
}
