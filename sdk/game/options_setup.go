package game

import (
	"math/rand"
	"time"

	"github.com/leandrodaf/midiguess/internal/guess"
	"github.com/leandrodaf/midiguess/internal/logger"
	"github.com/leandrodaf/midiguess/sdk/contracts"
)

// Defaults applied to unset session options.
const (
	DefaultRevealTokens        = 3
	DefaultConsistencyInterval = 5 * time.Second
	DefaultProgressInterval    = 100 * time.Millisecond
	DefaultReadyPollInterval   = 100 * time.Millisecond
	DefaultReadyPollAttempts   = 50
)

// applyDefaultOptions sets default values for SessionOptions if not
// explicitly provided and configures the logger.
func applyDefaultOptions(opts ...contracts.Option) contracts.SessionOptions {
	options := &contracts.SessionOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.RevealTokens == nil {
		tokens := DefaultRevealTokens
		options.RevealTokens = &tokens
	}
	if options.ConsistencyInterval <= 0 {
		options.ConsistencyInterval = DefaultConsistencyInterval
	}
	if options.ProgressInterval <= 0 {
		options.ProgressInterval = DefaultProgressInterval
	}
	if options.ReadyPollInterval <= 0 {
		options.ReadyPollInterval = DefaultReadyPollInterval
	}
	if options.ReadyPollAttempts <= 0 {
		options.ReadyPollAttempts = DefaultReadyPollAttempts
	}
	if options.Match == nil {
		m := guess.DefaultMatchConfig()
		options.Match = &m
	}
	if options.Random == nil {
		options.Random = rand.Intn
	}

	options.Logger.SetLevel(options.LogLevel)
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}
	return *options
}
