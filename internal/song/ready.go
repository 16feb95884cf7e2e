package song

import (
	"context"
	"fmt"
	"time"

	"github.com/leandrodaf/midiguess/sdk/contracts"
)

// AwaitReady polls src until its duration is known. It checks immediately
// and then every interval, giving up with contracts.ErrLoadTimeout after
// attempts checks. A source that reports a load error stops the wait early.
func AwaitReady(ctx context.Context, src contracts.SongSource, interval time.Duration, attempts int) error {
	if attempts < 1 {
		attempts = 1
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 1; ; i++ {
		if r, ok := src.(contracts.LoadErrorReporter); ok {
			if err := r.LoadErr(); err != nil {
				return err
			}
		}
		if src.Duration() != contracts.UnknownDuration {
			return nil
		}
		if i >= attempts {
			return fmt.Errorf("%w after %d attempts", contracts.ErrLoadTimeout, attempts)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
