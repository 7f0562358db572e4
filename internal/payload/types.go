// Package payload orchestrates the dashboard payload: it joins the
// materialized runtime snapshot (or a freshly reconciled live one) with
// parsed plan/status markdown and scheduler metadata, and assembles the
// derived views into one JSON-serializable object.
package payload

import (
	"github.com/nextlevelbuilder/runtime-truth/internal/markdown"
	"github.com/nextlevelbuilder/runtime-truth/internal/reducer"
	"github.com/nextlevelbuilder/runtime-truth/internal/views"
)

// Runtime snapshot sources, distinguishing a read of the materialized
// ledger from a freshly reconciled live pass.
const (
	SourceMaterializedLedger = "materialized-ledger"
	SourceLiveReconciler     = "live-reconciler"
)

// RuntimePayload is the "runtime" key of the dashboard payload: the
// materialized-or-reconciled snapshot plus provenance.
type RuntimePayload struct {
	Status            string              `json:"status"`
	ActiveCount        int                `json:"activeCount"`
	ActiveRuns        []reducer.ActiveRun `json:"activeRuns"`
	CheckedAtMs       int64               `json:"checkedAtMs"`
	Revision          string              `json:"revision"`
	TerminalCount     int                 `json:"terminalCount"`
	DroppedStaleCount int                 `json:"droppedStaleCount"`
	SnapshotMode      string              `json:"snapshotMode"`
	DegradedReason    string              `json:"degradedReason"`
	Source            string              `json:"source"`
}

// Charts is the "charts" key: the two trend series.
type Charts struct {
	JobSuccessTrend   []views.TrendPoint `json:"jobSuccessTrend"`
	ReliabilityTrend  []views.TrendPoint `json:"reliabilityTrend"`
}

// Payload is the single JSON object the builder produces, matching the
// stable key set the dashboard front-end reads.
type Payload struct {
	GeneratedAt        string                  `json:"generatedAt"`
	GeneratedAtLocal   string                  `json:"generatedAtLocal"`
	ControlRoomVersion string                  `json:"controlRoomVersion"`
	CurrentFocus       string                  `json:"currentFocus"`
	ActiveWork         string                  `json:"activeWork"`
	Reliability        string                  `json:"reliability"`
	Timeline           []markdown.TimelineBlock `json:"timeline"`
	NextJobs           []string                `json:"nextJobs"`
	Findings           []string                `json:"findings"`
	Workstream         views.Lanes             `json:"workstream"`
	Charts             Charts                  `json:"charts"`
	Activity           []markdown.ActivityItem `json:"activity"`
	Skills             []views.SkillNode       `json:"skills"`
	SkillsSeed         string                  `json:"skillsSeed"`
	Runtime            RuntimePayload          `json:"runtime"`
}
