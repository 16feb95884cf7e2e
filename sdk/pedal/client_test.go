package pedal

import (
	"errors"
	"testing"

	"github.com/leandrodaf/midiguess/internal/logger"
	"github.com/leandrodaf/midiguess/sdk/contracts"
)

func TestApplyDefaultOptions(t *testing.T) {
	opts := applyDefaultOptions(contracts.WithPedalLogger(logger.NewNopLogger()))
	if opts.ClientName == "" || len(opts.Commands) != 3 {
		t.Fatalf("defaults not applied: %+v", opts)
	}
	opts = applyDefaultOptions(
		contracts.WithPedalLogger(logger.NewNopLogger()),
		contracts.WithPedalCommands(contracts.ControlChange),
		contracts.WithPedalClientName("stage"))
	if opts.ClientName != "stage" || len(opts.Commands) != 1 {
		t.Fatalf("explicit options overridden: %+v", opts)
	}
}

func TestNewClientUnsupportedOS(t *testing.T) {
	opts := applyDefaultOptions(contracts.WithPedalLogger(logger.NewNopLogger()))
	if _, err := newClient("plan9", &opts); !errors.Is(err, ErrUnsupportedOS) {
		t.Fatalf("err = %v, want ErrUnsupportedOS", err)
	}
}
