package events

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTerminalType(t *testing.T) {
	cases := map[string]string{
		"ok":          TypeFinished,
		"Success":     TypeFinished,
		"SUCCEEDED":   TypeFinished,
		"complete":    TypeFinished,
		"Completed":   TypeFinished,
		"done":        TypeFinished,
		"time-out":    TypeTimedOut,
		"TimedOut":    TypeTimedOut,
		"error":       TypeFailed,
		"errored":     TypeFailed,
		"failure":     TypeFailed,
		"Failed":      TypeFailed,
		"canceled":    TypeCancelled,
		"Cancelled":   TypeCancelled,
		"anything-else": TypeFinished,
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeTerminalType(raw), "raw=%q", raw)
	}
}

func TestDeterministicEventIDIsDeterministic(t *testing.T) {
	id1 := DeterministicEventID("cron:job-1:session-a", TypeStarted, 1000, "cron-runs", "runs.jsonl:1")
	id2 := DeterministicEventID("cron:job-1:session-a", TypeStarted, 1000, "cron-runs", "runs.jsonl:1")
	require.Equal(t, id1, id2)

	id3 := DeterministicEventID("cron:job-1:session-a", TypeStarted, 1001, "cron-runs", "runs.jsonl:1")
	require.NotEqual(t, id1, id3)
}

func TestBuildEventNormalizesNonRunningTypesOnly(t *testing.T) {
	started := BuildEvent("subagent:run-1", TypeStarted, 0, "subagent-registry", "subagent:run-1:started", nil)
	assert.Equal(t, TypeStarted, started.EventType)

	terminal := BuildEvent("subagent:run-1", "Success", 100, "subagent-registry", "subagent:run-1:ended", nil)
	assert.Equal(t, TypeFinished, terminal.EventType)
}

func TestSourcePriority(t *testing.T) {
	assert.Equal(t, 0, SourcePriority("cron-runs"))
	assert.Equal(t, 1, SourcePriority("subagent-registry"))
	assert.Equal(t, 2, SourcePriority("sessions-store"))
	assert.Equal(t, 50, SourcePriority("some-other-source"))
	assert.Equal(t, 99, SourcePriority(""))
}

func TestSortEventsIsPermutationInvariant(t *testing.T) {
	base := []Event{
		BuildEvent("a", TypeStarted, 500, "cron-runs", "f:1", nil),
		BuildEvent("b", TypeStarted, 100, "subagent-registry", "s:1", nil),
		BuildEvent("c", TypeStarted, 100, "cron-runs", "f:2", nil),
		BuildEvent("d", TypeHeartbeat, 100, "cron-runs", "f:1", nil),
	}

	want := make([]Event, len(base))
	copy(want, base)
	SortEvents(want)

	for i := 0; i < 5; i++ {
		shuffled := make([]Event, len(base))
		copy(shuffled, base)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		SortEvents(shuffled)
		require.Equal(t, want, shuffled)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(TypeFinished))
	assert.True(t, IsTerminal(TypeStaleExpired))
	assert.False(t, IsTerminal(TypeStarted))
	assert.False(t, IsTerminal("unknown"))
}
