package payload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextlevelbuilder/runtime-truth/internal/config"
	"github.com/nextlevelbuilder/runtime-truth/internal/jobs"
	"github.com/nextlevelbuilder/runtime-truth/internal/watchdog"
)

type stubProber struct{ status watchdog.Status }

func (s stubProber) Probe(ctx context.Context) watchdog.Status { return s.status }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBuilderBuildAssemblesPayload(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir)

	writeFile(t, cfg.PlanFile, "### 09:00-09:30 — standup\n### 10:00-11:00 — deep work\n")
	writeFile(t, cfg.StatusFile, "- Primary focus: Shipping the dashboard\n- Running now: 10:15 — writing tests\n\n## 09:00 Morning sync\n- reviewed the cron reliability trend\n")
	now := time.Date(2026, 7, 29, 10, 15, 0, 0, time.UTC)
	writeFile(t, filepath.Join(cfg.MemoryDir, now.Format("2006-01-02")+".md"), "- fixed a stale heartbeat bug\n- wrote the event collector\n")

	b := NewBuilder(cfg)
	payload, err := b.Build(now, true)
	require.NoError(t, err)

	assert.Equal(t, "Shipping the dashboard", payload.CurrentFocus)
	assert.Equal(t, "10:15 — writing tests", payload.ActiveWork)
	require.Len(t, payload.Timeline, 2)
	assert.Equal(t, "idle", payload.Runtime.Status)
	assert.Contains(t, payload.Findings, "wrote the event collector")
	require.NotEmpty(t, payload.Workstream.Now)
}

func TestBuilderBuildSanitizesWhenNotLive(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir)
	now := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)

	b := NewBuilder(cfg)
	payload, err := b.Build(now, false)
	require.NoError(t, err)

	assert.Equal(t, "idle", payload.Runtime.Status)
	assert.Equal(t, "fallback-sanitized", payload.Runtime.SnapshotMode)
	assert.Empty(t, payload.Runtime.ActiveRuns)
}

func TestRecentFindingsCapsAtSix(t *testing.T) {
	text := ""
	for i := 0; i < 10; i++ {
		text += "- finding\n"
	}
	assert.Len(t, recentFindings(text), findingsCap)
}

func TestBuilderBuildUsesWatchdogForReliability(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir)
	now := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)

	b := NewBuilder(cfg)
	b.Watchdog = stubProber{status: watchdog.Status{Status: "green"}}
	payload, err := b.Build(now, true)
	require.NoError(t, err)
	assert.Equal(t, "green", payload.Reliability)
}

func TestBuilderBuildReliabilityUnknownWithoutProber(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir)
	now := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)

	b := NewBuilder(cfg)
	b.Watchdog = nil
	payload, err := b.Build(now, true)
	require.NoError(t, err)
	assert.Equal(t, watchdog.StatusUnknown, payload.Reliability)
}

func TestNextJobLabelsSortedAscending(t *testing.T) {
	later := time.Date(2026, 7, 29, 14, 0, 0, 0, time.UTC).UnixMilli()
	sooner := time.Date(2026, 7, 29, 12, 0, 0, 0, time.UTC).UnixMilli()
	now := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)

	list := []jobs.Job{
		{Enabled: true, Name: "backup", State: jobs.State{NextRunAtMs: &later}},
		{Enabled: true, Name: "digest", State: jobs.State{NextRunAtMs: &sooner}},
	}
	labels := nextJobLabels(list, now.UTC())
	require.Len(t, labels, 2)
	assert.Equal(t, "12:00 — digest", labels[0])
	assert.Equal(t, "14:00 — backup", labels[1])
}
