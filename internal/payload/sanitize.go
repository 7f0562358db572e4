package payload

import "github.com/nextlevelbuilder/runtime-truth/internal/reducer"

// Sanitize produces a copy of p with runtime status forced to idle, no
// active runs, and snapshot mode fallback-sanitized. Used whenever the
// payload is written to a file a downstream reader might cache, so a
// stale runtime section is never mistaken for a live one.
func Sanitize(p Payload) Payload {
	out := p
	out.Runtime = RuntimePayload{
		Status:            "idle",
		ActiveCount:       0,
		ActiveRuns:        []reducer.ActiveRun{},
		CheckedAtMs:       p.Runtime.CheckedAtMs,
		Revision:          p.Runtime.Revision,
		TerminalCount:     p.Runtime.TerminalCount,
		DroppedStaleCount: p.Runtime.DroppedStaleCount,
		SnapshotMode:      reducer.SnapshotModeFallbackSanitized,
		DegradedReason:    "static-snapshot-sanitized",
		Source:            p.Runtime.Source,
	}
	return out
}
