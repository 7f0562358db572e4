package views

import (
	"testing"
	"time"

	"github.com/nextlevelbuilder/runtime-truth/internal/markdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, hhmm string) time.Time {
	t.Helper()
	h, m, ok := markdown.ParseHHMM(hhmm)
	require.True(t, ok)
	return time.Date(2026, 7, 29, h, m, 0, 0, time.UTC)
}

func TestComputeTimelineSlicesBucketsByNow(t *testing.T) {
	blocks := []markdown.TimelineBlock{
		{Start: "09:00", End: "09:30", Task: "standup"},
		{Start: "10:00", End: "11:00", Task: "deep work"},
		{Start: "11:30", End: "12:00", Task: "review"},
	}
	slices := ComputeTimelineSlices(blocks, at(t, "10:15"))

	require.NotNil(t, slices.Current)
	assert.Equal(t, "deep work", slices.Current.Task)
	require.Len(t, slices.Next, 1)
	assert.Equal(t, "review", slices.Next[0].Task)
	require.Len(t, slices.Completed, 1)
	assert.Equal(t, "standup", slices.Completed[0].Task)
}

func TestIsStaleActiveWorkTimeRange(t *testing.T) {
	now := at(t, "11:00")
	assert.False(t, isStaleActiveWork("10:00-10:55 — wrapping up", now))
	assert.True(t, isStaleActiveWork("09:00-09:30 — long gone", now))
}

func TestIsStaleActiveWorkLeadingTimePrefix(t *testing.T) {
	now := at(t, "11:00")
	assert.False(t, isStaleActiveWork("10:30 — writing tests", now))
	assert.True(t, isStaleActiveWork("09:00 — writing tests", now))
	// Completion token lowers the threshold to 15 minutes.
	assert.True(t, isStaleActiveWork("10:40 — finished the migration", now))
	assert.False(t, isStaleActiveWork("10:50 — finished the migration", now))
}

func TestIsStaleActiveWorkNoResolvableTime(t *testing.T) {
	now := at(t, "11:00")
	assert.True(t, isStaleActiveWork("done with the audit", now))
	assert.True(t, isStaleActiveWork("", now))
	assert.False(t, isStaleActiveWork("auditing the pipeline", now))
}

func TestResolveActiveWorkFallsBackToTimeline(t *testing.T) {
	now := at(t, "11:00")
	slices := TimelineSlices{
		Current: &markdown.TimelineBlock{Start: "10:30", End: "11:30", Task: "deep work"},
	}
	got := ResolveActiveWork("09:00 — stale entry", slices, now)
	assert.Equal(t, "10:30-11:30 — deep work", got)
}

func TestResolveActiveWorkPrefersFreshRaw(t *testing.T) {
	now := at(t, "11:00")
	got := ResolveActiveWork("10:50 — writing tests", TimelineSlices{}, now)
	assert.Equal(t, "10:50 — writing tests", got)
}

func TestResolveActiveWorkNextUpFallback(t *testing.T) {
	now := at(t, "11:00")
	slices := TimelineSlices{
		Next: []markdown.TimelineBlock{{Start: "12:00", End: "12:30", Task: "lunch"}},
	}
	got := ResolveActiveWork("", slices, now)
	assert.Equal(t, "Next up: 12:00-12:30 — lunch", got)
}
