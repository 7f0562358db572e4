package collector

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nextlevelbuilder/runtime-truth/internal/reducer"
)

func TestParseTimestampMsVariants(t *testing.T) {
	ms, ok := parseTimestampMs(float64(1_700_000_000_000))
	require.True(t, ok)
	require.Equal(t, int64(1_700_000_000_000), ms)

	sec, ok := parseTimestampMs(float64(1_700_000_000))
	require.True(t, ok)
	require.Equal(t, int64(1_700_000_000_000), sec)

	iso, ok := parseTimestampMs("2023-11-14T22:13:20Z")
	require.True(t, ok)
	require.Equal(t, int64(1_700_000_000_000), iso)

	_, ok = parseTimestampMs("not a timestamp")
	require.False(t, ok)
}

func TestNormalizeRuntimeModel(t *testing.T) {
	require.Equal(t, "openai-codex/gpt-5.3-codex", normalizeRuntimeModel("gpt-5.3-codex"))
	require.Equal(t, "anthropic/claude", normalizeRuntimeModel("anthropic/claude"))
	require.Equal(t, "", normalizeRuntimeModel(""))
}

func TestNormalizeRuntimeThinking(t *testing.T) {
	require.Equal(t, "minimal", normalizeRuntimeThinking("min"))
	require.Equal(t, "extra_high", normalizeRuntimeThinking("very high"))
	require.Equal(t, "extra_high", normalizeRuntimeThinking("MAX"))
	require.Equal(t, "high", normalizeRuntimeThinking("high"))
}

func TestCollectIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	runsDir := filepath.Join(dir, "runs")
	require.NoError(t, os.MkdirAll(runsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(runsDir, "job-1.jsonl"),
		[]byte(`{"action":"finished","sessionId":"session-a","status":"ok","finishedAtMs":1000}`+"\n"), 0o644))

	c := &Collector{RunsDir: runsDir}
	evs, err := c.Collect()
	require.NoError(t, err)
	require.Len(t, evs, 1)

	journalPath := filepath.Join(dir, "events.jsonl")
	appended, err := AppendNewEvents(journalPath, evs)
	require.NoError(t, err)
	require.Equal(t, 1, appended)

	evs2, err := c.Collect()
	require.NoError(t, err)
	appended2, err := AppendNewEvents(journalPath, evs2)
	require.NoError(t, err)
	require.Equal(t, 0, appended2)
}

func TestReadSubagentsPopulatesActiveRunFromLabel(t *testing.T) {
	dir := t.TempDir()
	subagentFile := filepath.Join(dir, "runs.json")
	require.NoError(t, os.WriteFile(subagentFile, []byte(`{
		"runs": {
			"abc123": {
				"label": "Audit dependency licenses",
				"childSessionKey": "agent:sub:abc123",
				"startedAt": 1700000000000,
				"updatedAt": 1700000060000,
				"model": "claude-3-5",
				"thinking": "high"
			}
		}
	}`), 0o644))

	c := &Collector{SubagentFile: subagentFile}
	evs, err := c.readSubagents()
	require.NoError(t, err)
	require.Len(t, evs, 2)

	result := reducer.Reduce(evs, time.UnixMilli(1700000070000), 3_600_000)
	require.Len(t, result.Active, 1)

	run := result.Active[0]
	require.Equal(t, "subagent:abc123", run.JobID)
	require.Equal(t, "Audit dependency licenses", run.JobName)
	require.Equal(t, "Audit dependency licenses", run.Summary)
	require.Equal(t, "agent:sub:abc123", run.SessionID)
	require.Equal(t, "agent:sub:abc123", run.SessionKey)
	require.Equal(t, "subagent", run.ActivityType)
}

func TestReadSubagentsFallsBackToSyntheticSessionKeyAndLabel(t *testing.T) {
	dir := t.TempDir()
	subagentFile := filepath.Join(dir, "runs.json")
	require.NoError(t, os.WriteFile(subagentFile, []byte(`{
		"runs": {
			"xyz789": {
				"startedAt": 1700000000000
			}
		}
	}`), 0o644))

	c := &Collector{SubagentFile: subagentFile}
	evs, err := c.readSubagents()
	require.NoError(t, err)
	require.Len(t, evs, 2)

	result := reducer.Reduce(evs, time.UnixMilli(1700000070000), 3_600_000)
	require.Len(t, result.Active, 1)

	run := result.Active[0]
	require.Equal(t, "subagent:xyz789", run.JobID)
	require.Equal(t, "Background task", run.JobName)
	require.Equal(t, "Background task", run.Summary)
	require.Equal(t, "subagent:xyz789", run.SessionID)
	require.Equal(t, "subagent:xyz789", run.SessionKey)
}

func TestReadCronRunsDropsUnresolvableSessionID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "job-1.jsonl"),
		[]byte(`{"action":"finished","status":"ok","finishedAtMs":1000}`+"\n"), 0o644))

	c := &Collector{RunsDir: dir}
	evs, err := c.readCronRuns()
	require.NoError(t, err)
	require.Empty(t, evs)
}
