package sweep_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentumhq/billingkit/pkg/sweep"
)

type fakeExpirer struct {
	calls   atomic.Int64
	expired int
	err     error
}

func (f *fakeExpirer) ProcessExpirations(_ context.Context) (int, error) {
	f.calls.Add(1)
	return f.expired, f.err
}

func TestRun(t *testing.T) {
	t.Parallel()

	exp := &fakeExpirer{expired: 3}
	s := sweep.New(sweep.Config{}, exp, nil)

	s.Run()
	assert.Equal(t, int64(1), exp.calls.Load())

	// failures are logged, never panic, and do not poison later runs
	exp.err = errors.New("db down")
	s.Run()
	exp.err = nil
	s.Run()
	assert.Equal(t, int64(3), exp.calls.Load())
}

func TestStartRejectsBadSchedule(t *testing.T) {
	t.Parallel()

	s := sweep.New(sweep.Config{Schedule: "not a cron expr"}, &fakeExpirer{}, nil)
	require.ErrorIs(t, s.Start(), sweep.ErrInvalidSchedule)
}

func TestStartAndStop(t *testing.T) {
	t.Parallel()

	exp := &fakeExpirer{}
	s := sweep.New(sweep.Config{Schedule: "@every 10ms", Timeout: time.Second}, exp, nil)
	require.NoError(t, s.Start())

	assert.Eventually(t, func() bool {
		return exp.calls.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop()
}
