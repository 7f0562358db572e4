package payload

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nextlevelbuilder/runtime-truth/internal/collector"
	"github.com/nextlevelbuilder/runtime-truth/internal/config"
	"github.com/nextlevelbuilder/runtime-truth/internal/reducer"
)

// materializedFreshWindow is how old a materialized snapshot may be
// before the builder falls back to a live reconciliation pass.
const materializedFreshWindow = 90 * time.Second

// resolveRuntime picks the runtime source: prefer a fresh materialized
// snapshot, otherwise re-run the same canonical collection+reduction
// rules directly against the producers and report only the current
// active set.
func resolveRuntime(cfg *config.Config, now time.Time) RuntimePayload {
	var reasons []string

	snap, ok := readMaterializedSnapshot(cfg.RuntimeStateOut)
	if !ok {
		reasons = append(reasons, "materialized-state-missing")
	} else if now.UnixMilli()-snap.CheckedAtMs > materializedFreshWindow.Milliseconds() {
		reasons = append(reasons, "materialized-state-stale")
	} else {
		rows := make([]reducer.ActiveRun, 0, len(snap.ActiveRuns))
		for _, row := range ExcludeMainSessionPublishJob(snap.ActiveRuns) {
			row.RunningForMs = now.UnixMilli() - row.StartedAtMs
			row.StartedAtLocal = time.UnixMilli(row.StartedAtMs).Local().Format(time.RFC3339)
			rows = append(rows, row)
		}
		status := "idle"
		if len(rows) > 0 {
			status = "running"
		}
		return RuntimePayload{
			Status:            status,
			ActiveCount:       len(rows),
			ActiveRuns:        rows,
			CheckedAtMs:       now.UnixMilli(),
			Revision:          snap.Revision,
			TerminalCount:     snap.TerminalCount,
			DroppedStaleCount: snap.DroppedStaleCount,
			SnapshotMode:      reducer.SnapshotModeLive,
			DegradedReason:    "",
			Source:            SourceMaterializedLedger,
		}
	}

	reasons = append(reasons, sessionsStoreDegradedReasons(cfg.SessionsFile)...)

	c := &collector.Collector{
		JobsFile:     cfg.JobsFile,
		SessionsFile: cfg.SessionsFile,
		RunsDir:      cfg.RunsDir,
		SubagentFile: cfg.SubagentFile,
	}
	evs, err := c.Collect()
	if err != nil {
		reasons = append(reasons, "live-collection-failed")
	}

	result := reducer.Reduce(evs, now, cfg.StaleMs)
	rows := ExcludeMainSessionPublishJob(result.Active)

	status := "idle"
	if len(rows) > 0 {
		status = "running"
	}

	return RuntimePayload{
		Status:            status,
		ActiveCount:       len(rows),
		ActiveRuns:        rows,
		CheckedAtMs:       now.UnixMilli(),
		Revision:          fmt.Sprintf("rtv1-%013d", now.UnixMilli()),
		TerminalCount:     len(result.Terminals),
		DroppedStaleCount: result.DroppedStaleCount,
		SnapshotMode:      reducer.SnapshotModeLive,
		DegradedReason:    strings.Join(reasons, ","),
		Source:            SourceLiveReconciler,
	}
}

func readMaterializedSnapshot(path string) (reducer.Snapshot, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return reducer.Snapshot{}, false
	}
	var snap reducer.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return reducer.Snapshot{}, false
	}
	return snap, true
}

func sessionsStoreDegradedReasons(path string) []string {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{"sessions-store-missing"}
		}
		return []string{"sessions-store-invalid"}
	}
	var probe map[string]any
	if err := json.Unmarshal(data, &probe); err != nil {
		return []string{"sessions-store-unexpected-shape"}
	}
	return nil
}
