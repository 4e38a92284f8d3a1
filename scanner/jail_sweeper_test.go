package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"moderation-bot/moderation"
)

type countingSweeper struct {
	mu    sync.Mutex
	calls int
	err   error
	hit   chan struct{}
}

func (c *countingSweeper) Sweep(_ context.Context, _ time.Time) (moderation.SweepReport, error) {
	c.mu.Lock()
	c.calls++
	err := c.err
	c.mu.Unlock()
	select {
	case c.hit <- struct{}{}:
	default:
	}
	return moderation.SweepReport{Released: 1}, err
}

func (c *countingSweeper) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestStartJailSweeper_SweepsImmediatelyAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	sweeper := &countingSweeper{hit: make(chan struct{}, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartJailSweeper(ctx, sweeper, time.Hour, zap.NewNop())

	select {
	case <-sweeper.hit:
	case <-time.After(time.Second):
		t.Fatal("no sweep on startup")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
	assert.Equal(t, 1, sweeper.count())
}

func TestStartJailSweeper_KeepsRunningAfterErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	sweeper := &countingSweeper{hit: make(chan struct{}, 1), err: errors.New("database is locked")}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartJailSweeper(ctx, sweeper, 5*time.Millisecond, zap.NewNop())

	deadline := time.After(2 * time.Second)
	for sweeper.count() < 3 {
		select {
		case <-sweeper.hit:
		case <-deadline:
			t.Fatal("sweeper stopped after an error")
		}
	}
	cancel()
	<-done
}

func TestRunJailSweep_ReturnsReport(t *testing.T) {
	sweeper := &countingSweeper{hit: make(chan struct{}, 1)}
	report := RunJailSweep(context.Background(), sweeper, time.Now(), zap.NewNop())
	assert.Equal(t, moderation.SweepReport{Released: 1}, report)
}
