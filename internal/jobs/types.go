// Package jobs defines the scheduler jobs-file schema the collector,
// trend views, and workstream-lane assembly all read: a map of job
// entries each carrying enablement, a payload (model/thinking used for
// cron-run heartbeats) and run state (status/timestamps used for trend
// scoring and the next-run lane event).
package jobs

// Schedule mirrors the "at"/"every"/"cron" schedule shapes a job may
// carry; only "cron" schedules need NextRunAfter (see schedule.go)
// since "at"/"every" jobs already carry a resolved State.NextRunAtMs.
type Schedule struct {
	Kind    string `json:"kind,omitempty"`    // "at", "every", or "cron"
	AtMs    *int64 `json:"atMs,omitempty"`    // absolute timestamp (for "at")
	EveryMs *int64 `json:"everyMs,omitempty"` // interval in milliseconds (for "every")
	Expr    string `json:"expr,omitempty"`    // cron expression (for "cron")
	TZ      string `json:"tz,omitempty"`      // timezone, IANA name; empty = local
}

// Payload is the per-job execution payload metadata the collector folds
// into cron-run heartbeat events.
type Payload struct {
	Model    string `json:"model,omitempty"`
	Thinking string `json:"thinking,omitempty"`
}

// State tracks a job's last/next run bookkeeping.
type State struct {
	NextRunAtMs *int64 `json:"nextRunAtMs,omitempty"`
	LastRunAtMs *int64 `json:"lastRunAtMs,omitempty"`
	LastStatus  string `json:"lastStatus,omitempty"`
}

// Job is one scheduler jobs-file entry.
type Job struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Enabled  bool     `json:"enabled"`
	Schedule Schedule `json:"schedule,omitempty"`
	Payload  Payload  `json:"payload,omitempty"`
	State    State    `json:"state,omitempty"`
}

// File is the top-level shape of the scheduler jobs file:
// {"jobs": [...]}.
type File struct {
	Jobs []Job `json:"jobs"`
}

// ByID indexes a job slice by id, last entry wins on duplicate ids.
func ByID(jobs []Job) map[string]Job {
	out := make(map[string]Job, len(jobs))
	for _, j := range jobs {
		out[j.ID] = j
	}
	return out
}
