// Package config loads the YAML configuration file of the game.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/leandrodaf/midiguess/internal/pedal"
	"github.com/leandrodaf/midiguess/sdk/contracts"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Match mirrors contracts.MatchConfig. Unset fields keep the defaults.
type Match struct {
	Threshold          *float64 `yaml:"threshold"`
	Distance           *int     `yaml:"distance"`
	IgnoreLocation     *bool    `yaml:"ignore_location"`
	MinCandidateLength *int     `yaml:"min_candidate_length"`
}

// Pedal selects a controller and maps its note or controller numbers to
// actions. Without bindings pedal.DefaultBindings apply.
type Pedal struct {
	Device   int            `yaml:"device"`
	Bindings map[int]string `yaml:"bindings"`
}

// Config is the on-disk configuration.
type Config struct {
	SongsDir            string              `yaml:"songs_dir"`
	SongsURL            string              `yaml:"songs_url"`
	SoundFont           string              `yaml:"soundfont"`
	SampleRate          int                 `yaml:"sample_rate"`
	Gain                float32             `yaml:"gain"`
	RevealTokens        *int                `yaml:"reveal_tokens"`
	ChannelOffset       int                 `yaml:"channel_offset"`
	AutoPlay            *bool               `yaml:"auto_play"`
	ConsistencyInterval time.Duration       `yaml:"consistency_interval"`
	ProgressInterval    time.Duration       `yaml:"progress_interval"`
	ReadyPollInterval   time.Duration       `yaml:"ready_poll_interval"`
	ReadyPollAttempts   int                 `yaml:"ready_poll_attempts"`
	Match               Match               `yaml:"match"`
	Aliases             map[string][]string `yaml:"aliases"`
	LogLevel            string              `yaml:"log_level"`
	LogFile             string              `yaml:"log_file"`
	Pedal               *Pedal              `yaml:"pedal"`
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.RevealTokens != nil && *c.RevealTokens < 0 {
		return fmt.Errorf("%w: reveal_tokens must not be negative", ErrInvalidConfig)
	}
	if c.ReadyPollAttempts < 0 {
		return fmt.Errorf("%w: ready_poll_attempts must not be negative", ErrInvalidConfig)
	}
	for name, d := range map[string]time.Duration{
		"consistency_interval": c.ConsistencyInterval,
		"progress_interval":    c.ProgressInterval,
		"ready_poll_interval":  c.ReadyPollInterval,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, name)
		}
	}
	if t := c.Match.Threshold; t != nil && (*t <= 0 || *t > 1) {
		return fmt.Errorf("%w: match.threshold must be in (0,1]", ErrInvalidConfig)
	}
	if c.LogLevel != "" {
		if _, ok := contracts.ParseLogLevel(c.LogLevel); !ok {
			return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
		}
	}
	if c.Pedal != nil {
		if _, err := pedal.ParseBindings(c.Pedal.Bindings); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Options converts the session related settings. Zero values are left to
// the session defaults.
func (c *Config) Options(defaults contracts.MatchConfig) []contracts.Option {
	var opts []contracts.Option
	if c.RevealTokens != nil {
		opts = append(opts, contracts.WithRevealTokens(*c.RevealTokens))
	}
	if c.ChannelOffset != 0 {
		opts = append(opts, contracts.WithChannelOffset(c.ChannelOffset))
	}
	if c.AutoPlay != nil {
		opts = append(opts, contracts.WithAutoPlay(*c.AutoPlay))
	}
	if c.ConsistencyInterval > 0 {
		opts = append(opts, contracts.WithConsistencyInterval(c.ConsistencyInterval))
	}
	if c.ProgressInterval > 0 {
		opts = append(opts, contracts.WithProgressInterval(c.ProgressInterval))
	}
	if c.ReadyPollInterval > 0 || c.ReadyPollAttempts > 0 {
		opts = append(opts, contracts.WithReadyPolling(c.ReadyPollInterval, c.ReadyPollAttempts))
	}
	if m, ok := c.matchConfig(defaults); ok {
		opts = append(opts, contracts.WithMatchConfig(m))
	}
	if len(c.Aliases) > 0 {
		opts = append(opts, contracts.WithAliases(c.Aliases))
	}
	if level, ok := contracts.ParseLogLevel(c.LogLevel); ok {
		opts = append(opts, contracts.WithLogLevel(level))
	}
	if c.LogFile != "" {
		opts = append(opts, contracts.WithLogFile(c.LogFile))
	}
	return opts
}

func (c *Config) matchConfig(m contracts.MatchConfig) (contracts.MatchConfig, bool) {
	set := false
	if c.Match.Threshold != nil {
		m.Threshold, set = *c.Match.Threshold, true
	}
	if c.Match.Distance != nil {
		m.Distance, set = *c.Match.Distance, true
	}
	if c.Match.IgnoreLocation != nil {
		m.IgnoreLocation, set = *c.Match.IgnoreLocation, true
	}
	if c.Match.MinCandidateLength != nil {
		m.MinCandidateLength, set = *c.Match.MinCandidateLength, true
	}
	return m, set
}
