package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchedule(t *testing.T) {
	every := int64(1000)
	at := int64(5000)

	require.NoError(t, ValidateSchedule(Schedule{Kind: "at", AtMs: &at}))
	require.NoError(t, ValidateSchedule(Schedule{Kind: "every", EveryMs: &every}))
	require.NoError(t, ValidateSchedule(Schedule{Kind: "cron", Expr: "*/5 * * * *"}))

	require.Error(t, ValidateSchedule(Schedule{Kind: "at"}))
	require.Error(t, ValidateSchedule(Schedule{Kind: "every"}))
	require.Error(t, ValidateSchedule(Schedule{Kind: "cron", Expr: "not a cron expr"}))
	require.Error(t, ValidateSchedule(Schedule{Kind: "bogus"}))
}

func TestNextRunAfterEvery(t *testing.T) {
	every := int64(60_000)
	now := time.UnixMilli(1_000_000)
	next, ok := NextRunAfter(Schedule{Kind: "every", EveryMs: &every}, now)
	require.True(t, ok)
	assert.Equal(t, now.Add(60*time.Second).UnixMilli(), next)
}

func TestNextRunAfterAt(t *testing.T) {
	future := int64(2_000_000)
	now := time.UnixMilli(1_000_000)
	next, ok := NextRunAfter(Schedule{Kind: "at", AtMs: &future}, now)
	require.True(t, ok)
	assert.Equal(t, future, next)

	past := int64(500_000)
	_, ok = NextRunAfter(Schedule{Kind: "at", AtMs: &past}, now)
	assert.False(t, ok)
}

func TestNextRunAfterCron(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next, ok := NextRunAfter(Schedule{Kind: "cron", Expr: "0 * * * *"}, now)
	require.True(t, ok)
	assert.Greater(t, next, now.UnixMilli())
}
