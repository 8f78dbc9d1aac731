package sweeps

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/followups"
)

type fakeFollowups struct {
	followups.System

	materialized int
	checked      int
	err          error
}

func (f *fakeFollowups) MaterializeDueToday(context.Context) (followups.SweepResult, error) {
	f.materialized++
	return followups.SweepResult{Examined: 2, Processed: 2}, f.err
}

func (f *fakeFollowups) CheckOverdue(context.Context) (followups.SweepResult, error) {
	f.checked++
	return followups.SweepResult{Examined: 3, Processed: 1, Failed: 1}, f.err
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func newRunner(t *testing.T, fs *fakeFollowups, locker Locker) *Runner {
	t.Helper()
	cfg := &Config{}
	require.NoError(t, cfg.Finalize(nil))
	return New(cfg, fs, locker, time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRedisLockerExclusive(t *testing.T) {
	mr, client := newRedis(t)
	locker := NewRedisLocker(client, time.Minute)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, Overdue)
	require.NoError(t, err)
	assert.True(t, mr.Exists("sweeps:lock:overdue"))

	_, err = locker.Acquire(ctx, Overdue)
	assert.ErrorIs(t, err, ErrLocked)

	_, err = locker.Acquire(ctx, Materialize)
	require.NoError(t, err)

	release()
	assert.False(t, mr.Exists("sweeps:lock:overdue"))

	_, err = locker.Acquire(ctx, Overdue)
	assert.NoError(t, err)
}

func TestRedisLockerReleaseKeepsForeignLease(t *testing.T) {
	mr, client := newRedis(t)
	locker := NewRedisLocker(client, time.Minute)

	release, err := locker.Acquire(context.Background(), Overdue)
	require.NoError(t, err)

	// The lease expired and another instance took it.
	require.NoError(t, mr.Set("sweeps:lock:overdue", "other-owner"))
	release()

	got, err := mr.Get("sweeps:lock:overdue")
	require.NoError(t, err)
	assert.Equal(t, "other-owner", got)
}

func TestRedisLockerExpires(t *testing.T) {
	mr, client := newRedis(t)
	locker := NewRedisLocker(client, time.Minute)

	_, err := locker.Acquire(context.Background(), Materialize)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = locker.Acquire(context.Background(), Materialize)
	assert.NoError(t, err)
}

func TestRunExecutesSweep(t *testing.T) {
	_, client := newRedis(t)
	fs := &fakeFollowups{}
	r := newRunner(t, fs, NewRedisLocker(client, time.Minute))

	result, err := r.Run(context.Background(), Overdue)

	require.NoError(t, err)
	assert.Equal(t, followups.SweepResult{Examined: 3, Processed: 1, Failed: 1}, result)
	assert.Equal(t, 1, fs.checked)
	assert.Zero(t, fs.materialized)
}

func TestRunSkipsWhenLocked(t *testing.T) {
	_, client := newRedis(t)
	fs := &fakeFollowups{}
	locker := NewRedisLocker(client, time.Minute)
	r := newRunner(t, fs, locker)

	release, err := locker.Acquire(context.Background(), Materialize)
	require.NoError(t, err)
	defer release()

	_, err = r.Run(context.Background(), Materialize)

	assert.ErrorIs(t, err, ErrLocked)
	assert.Zero(t, fs.materialized)
}

func TestRunReleasesLockOnFailure(t *testing.T) {
	mr, client := newRedis(t)
	fs := &fakeFollowups{err: errors.New("database unavailable")}
	r := newRunner(t, fs, NewRedisLocker(client, time.Minute))

	_, err := r.Run(context.Background(), Materialize)

	assert.Error(t, err)
	assert.False(t, mr.Exists("sweeps:lock:materialize"))
}

func TestRunWhenRedisUnavailable(t *testing.T) {
	mr, client := newRedis(t)
	fs := &fakeFollowups{}
	r := newRunner(t, fs, NewRedisLocker(client, time.Minute))
	mr.Close()

	result, err := r.Run(context.Background(), Overdue)
	require.NoError(t, err)
	assert.Equal(t, followups.SweepResult{Examined: 3, Processed: 1, Failed: 1}, result)

	_, err = r.Run(context.Background(), Materialize)
	require.NoError(t, err)

	assert.Equal(t, 1, fs.checked)
	assert.Equal(t, 1, fs.materialized)
}

func TestRunWithoutLocker(t *testing.T) {
	fs := &fakeFollowups{}
	r := newRunner(t, fs, nil)

	_, err := r.Run(context.Background(), Materialize)
	require.NoError(t, err)
	_, err = r.Run(context.Background(), Materialize)
	require.NoError(t, err)

	assert.Equal(t, 2, fs.materialized)
}

func TestRunUnknownSweep(t *testing.T) {
	r := newRunner(t, &fakeFollowups{}, nil)

	_, err := r.Run(context.Background(), "reindex")

	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, cfg.Finalize(nil))
		assert.Equal(t, "5 0 * * *", cfg.MaterializeSchedule)
		assert.Equal(t, "0 * * * *", cfg.OverdueSchedule)
		assert.Equal(t, 10*time.Minute, cfg.LockTTLDuration())
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("TEST_SWEEPS_OVERDUE", "*/15 * * * *")
		t.Setenv("TEST_SWEEPS_DISABLED", "true")

		cfg := &Config{}
		require.NoError(t, cfg.Finalize(&Env{OverdueSchedule: "TEST_SWEEPS_OVERDUE", Disabled: "TEST_SWEEPS_DISABLED"}))
		assert.Equal(t, "*/15 * * * *", cfg.OverdueSchedule)
		assert.True(t, cfg.Disabled)
	})

	t.Run("invalid schedule", func(t *testing.T) {
		cfg := &Config{OverdueSchedule: "every hour"}
		assert.Error(t, cfg.Finalize(nil))
	})
}
