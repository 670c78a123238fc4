package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_Add(t *testing.T) {
	s := New(zap.NewNop())
	noop := func(ctx context.Context) error { return nil }

	require.NoError(t, s.Add(NewFuncJob("warm", "30 18 * * 1-5", noop)))
	require.NoError(t, s.Add(NewFuncJob("hourly", "@hourly", noop)))

	err := s.Add(NewFuncJob("warm", "@daily", noop))
	assert.ErrorContains(t, err, "already exists")

	err = s.Add(NewFuncJob("bad", "whenever", noop))
	assert.Error(t, err)

	assert.Equal(t, []string{"hourly", "warm"}, s.Jobs())
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(nil)
	calls := 0
	boom := errors.New("boom")
	require.NoError(t, s.Add(NewFuncJob("ok", "@daily", func(ctx context.Context) error {
		calls++
		return nil
	})))
	require.NoError(t, s.Add(NewFuncJob("fail", "@daily", func(ctx context.Context) error {
		return boom
	})))

	_, ok := s.Last("ok")
	assert.False(t, ok)

	require.NoError(t, s.RunNow(context.Background(), "ok"))
	assert.Equal(t, 1, calls)
	res, ok := s.Last("ok")
	require.True(t, ok)
	assert.NoError(t, res.Err)
	assert.False(t, res.Start.IsZero())

	assert.ErrorIs(t, s.RunNow(context.Background(), "fail"), boom)
	res, _ = s.Last("fail")
	assert.ErrorIs(t, res.Err, boom)

	assert.Error(t, s.RunNow(context.Background(), "missing"))
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(zap.NewNop())
	require.NoError(t, s.Add(NewFuncJob("daily", "@daily", func(ctx context.Context) error { return nil })))

	s.Start()
	s.Stop()

	assert.Error(t, s.ctx.Err())
}
