// Package otoout sends deck audio to the speakers through oto.
package otoout

import (
	"context"
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"
	"github.com/leandrodaf/midiguess/internal/engine"
)

// Output wraps an oto context. Only one context may exist per process.
type Output struct {
	ctx *oto.Context
}

// New opens the audio device for stereo float32 output at sampleRate and
// waits until it is ready or ctx ends.
func New(ctx context.Context, sampleRate int) (*Output, error) {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	select {
	case <-ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Output{ctx: otoCtx}, nil
}

// NewPlayer implements engine.Output.
func (o *Output) NewPlayer(r io.Reader) engine.Player {
	return o.ctx.NewPlayer(r)
}
