package song

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leandrodaf/midiguess/sdk/contracts"
)

type slowSource struct {
	readyAfter int
	calls      int
	err        error
}

func (s *slowSource) TrackCount() int      { return 1 }
func (s *slowSource) TrackName(int) string { return "" }
func (s *slowSource) LoadErr() error       { return s.err }
func (s *slowSource) Duration() time.Duration {
	s.calls++
	if s.calls > s.readyAfter {
		return time.Minute
	}
	return contracts.UnknownDuration
}

func TestAwaitReady(t *testing.T) {
	src := &slowSource{readyAfter: 3}
	if err := AwaitReady(context.Background(), src, time.Millisecond, 10); err != nil {
		t.Fatalf("AwaitReady: %v", err)
	}
	if src.calls != 4 {
		t.Fatalf("polled %d times, want 4", src.calls)
	}
}

func TestAwaitReadyTimesOut(t *testing.T) {
	src := &slowSource{readyAfter: 100}
	err := AwaitReady(context.Background(), src, time.Millisecond, 5)
	if !errors.Is(err, contracts.ErrLoadTimeout) {
		t.Fatalf("err = %v, want ErrLoadTimeout", err)
	}
	if src.calls != 5 {
		t.Fatalf("polled %d times, want 5", src.calls)
	}
}

func TestAwaitReadyStopsOnLoadError(t *testing.T) {
	src := &slowSource{readyAfter: 100, err: errBroken}
	if err := AwaitReady(context.Background(), src, time.Millisecond, 5); !errors.Is(err, errBroken) {
		t.Fatalf("err = %v, want load error", err)
	}
	if src.calls != 0 {
		t.Fatalf("duration polled after a load error")
	}
}

func TestAwaitReadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := AwaitReady(ctx, &slowSource{readyAfter: 100}, time.Hour, 5)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
