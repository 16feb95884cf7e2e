package pedal

import (
	"context"
	"errors"
	"fmt"

	"github.com/leandrodaf/midiguess/sdk/contracts"
)

// ErrInvalidBinding is returned for bindings outside the MIDI data range or
// naming an unknown action.
var ErrInvalidBinding = errors.New("invalid pedal binding")

// Bindings maps a note or controller number to an action.
type Bindings map[uint8]contracts.Action

// DefaultBindings binds the sustain, sostenuto and soft pedal controllers.
func DefaultBindings() Bindings {
	return Bindings{
		64: contracts.ActionReveal,
		66: contracts.ActionRestart,
		67: contracts.ActionNext,
	}
}

// ParseBindings converts number to action-name pairs, as found in the
// configuration file.
func ParseBindings(raw map[int]string) (Bindings, error) {
	b := make(Bindings, len(raw))
	for number, name := range raw {
		if number < 0 || number > 127 {
			return nil, fmt.Errorf("%w: number %d", ErrInvalidBinding, number)
		}
		a := contracts.ParseAction(name)
		if a == contracts.ActionNone {
			return nil, fmt.Errorf("%w: action %q", ErrInvalidBinding, name)
		}
		b[uint8(number)] = a
	}
	return b, nil
}

// Action returns the action bound to a pressed event, or ActionNone.
func (b Bindings) Action(ev contracts.PedalEvent) contracts.Action {
	if !ev.Pressed() {
		return contracts.ActionNone
	}
	return b[ev.Data1]
}

// Controller is the part of a session pedal actions drive.
type Controller interface {
	LoadRandom(ctx context.Context) (string, error)
	Play() error
	Pause() error
	Restart() ([]contracts.Track, error)
	RevealMore() (contracts.Track, error)
}

// Apply runs one action against c.
func Apply(ctx context.Context, c Controller, a contracts.Action) error {
	var err error
	switch a {
	case contracts.ActionPlay:
		err = c.Play()
	case contracts.ActionPause:
		err = c.Pause()
	case contracts.ActionRestart:
		_, err = c.Restart()
	case contracts.ActionReveal:
		_, err = c.RevealMore()
	case contracts.ActionNext:
		_, err = c.LoadRandom(ctx)
	}
	return err
}

// Dispatch applies the bound action of every pressed event until events is
// closed or ctx ends. Disallowed actions are logged at debug level, other
// failures as errors. done, when set, observes every applied action.
func Dispatch(ctx context.Context, events <-chan contracts.PedalEvent, b Bindings, c Controller, logger contracts.Logger, done func(contracts.Action, error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			a := b.Action(ev)
			if a == contracts.ActionNone {
				continue
			}
			err := Apply(ctx, c, a)
			switch {
			case errors.Is(err, contracts.ErrDisallowedAction):
				logger.Debug("pedal action ignored", logger.Field().String("action", a.String()), logger.Field().Error("reason", err))
			case err != nil:
				logger.Error("pedal action failed", logger.Field().String("action", a.String()), logger.Field().Error("error", err))
			}
			if done != nil {
				done(a, err)
			}
		}
	}
}
