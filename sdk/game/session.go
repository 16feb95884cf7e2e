// Package game creates track reveal guessing sessions.
package game

import (
	"github.com/leandrodaf/midiguess/internal/session"
	"github.com/leandrodaf/midiguess/sdk/contracts"
)

// NewSession creates a session with the specified options. A deck factory
// is required; see contracts.WithDeckFactory.
func NewSession(opts ...contracts.Option) (contracts.Session, error) {
	options := applyDefaultOptions(opts...)
	s, err := session.New(options)
	if err != nil {
		return nil, err
	}
	return s, nil
}
