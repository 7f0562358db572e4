package reducer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nextlevelbuilder/runtime-truth/internal/events"
)

// ReadPriorRevision reads the revision field out of whatever snapshot
// currently lives at path. Any read or parse failure returns "" so
// callers fall back to the rtv1-00000001 bootstrap revision — a
// missing prior snapshot is not an error.
func ReadPriorRevision(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var partial struct {
		Revision string `json:"revision"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return ""
	}
	return partial.Revision
}

// WriteSnapshotAtomic writes snapshot to path via write-temp-then-rename
// in the same directory, so readers always observe either the old or
// the fully-written new content, never a partial write. It marshals the
// same way cron.Service.saveUnsafe does (JSON.MarshalIndent then a
// single write), hardened with the temp-file-then-rename step since this
// file is polled by concurrent readers, unlike the cron store.
func WriteSnapshotAtomic(path string, snapshot Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp snapshot file into place: %w", err)
	}
	return nil
}

// Materialize folds events into a Snapshot: the public entry point
// cmd/materialize.go and internal/mcpserver's runtime.materialize tool
// both call. now defaults to time.Now() when zero.
func Materialize(evs []events.Event, now time.Time, staleMs int64, priorRevision string) Snapshot {
	if now.IsZero() {
		now = time.Now()
	}
	result := Reduce(evs, now, staleMs)

	status := "idle"
	if len(result.Active) > 0 {
		status = "running"
	}

	nowMs := now.UnixMilli()
	rows := make([]ActiveRun, len(result.Active))
	for i, row := range result.Active {
		row.RunningForMs = nowMs - row.StartedAtMs
		row.StartedAtLocal = time.UnixMilli(row.StartedAtMs).Local().Format(time.RFC3339)
		rows[i] = row
	}

	return Snapshot{
		Status:             status,
		ActiveCount:        len(rows),
		ActiveRuns:         rows,
		CheckedAtMs:        nowMs,
		Revision:           NextRevision(ParseRevision(priorRevision)),
		TerminalCount:      len(result.Terminals),
		DroppedStaleCount:  result.DroppedStaleCount,
		SnapshotMode:       SnapshotModeLive,
		DegradedReason:     "",
	}
}
