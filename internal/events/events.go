// Package events defines the canonical runtime event shape, the
// deterministic content-addressed id scheme, and the sort order used to
// replay the journal. Every function here is pure: no package-level
// mutable state, no I/O.
package events

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Event is one immutable journal record.
type Event struct {
	EventID      string                 `json:"eventId"`
	RunKey       string                 `json:"runKey"`
	EventType    string                 `json:"eventType"`
	EventAtMs    int64                  `json:"eventAtMs"`
	Source       string                 `json:"source"`
	SourceOffset string                 `json:"sourceOffset"`
	Payload      map[string]any         `json:"payload"`
}

// Running event types. Never remapped by NormalizeTerminalType.
const (
	TypeStarted   = "started"
	TypeHeartbeat = "heartbeat"
)

// Terminal event types. Absorbing: once seen for a run key, nothing
// after it can produce an active row for that key.
const (
	TypeFinished     = "finished"
	TypeFailed       = "failed"
	TypeCancelled    = "cancelled"
	TypeTimedOut     = "timed_out"
	TypeStaleExpired = "stale_expired"
)

var runningTypes = map[string]bool{
	TypeStarted:   true,
	TypeHeartbeat: true,
}

var terminalTypes = map[string]bool{
	TypeFinished:     true,
	TypeFailed:       true,
	TypeCancelled:    true,
	TypeTimedOut:     true,
	TypeStaleExpired: true,
}

// sourcePriority drives tie-breaking in the sort key: lower sorts first.
var sourcePriority = map[string]int{
	"cron-runs":        0,
	"subagent-registry": 1,
	"sessions-store":    2,
}

const (
	unknownSourcePriority = 50
	otherSourcePriority   = 99
)

// IsTerminal reports whether typ is a member of the terminal set.
func IsTerminal(typ string) bool {
	return terminalTypes[typ]
}

// IsRunning reports whether typ is a member of the running set.
func IsRunning(typ string) bool {
	return runningTypes[typ]
}

// NormalizeTerminalType collapses an inbound free-form status/result
// string into the closed terminal vocabulary. Running types are never
// remapped — callers must check IsRunning first if raw could be either.
func NormalizeTerminalType(raw string) string {
	norm := normalizeLabel(raw)
	switch norm {
	case "ok", "success", "succeeded", "complete", "completed", "done":
		return TypeFinished
	case "timeout", "timedout":
		return TypeTimedOut
	case "error", "errored", "failure", "failed":
		return TypeFailed
	case "canceled", "cancelled":
		return TypeCancelled
	default:
		return TypeFinished
	}
}

// normalizeLabel lowercases raw and strips everything but letters and
// digits, so "Time-Out" becomes "timeout" and both "TIMED OUT" and
// "timed_out" become "timedout".
func normalizeLabel(raw string) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			out = append(out, c)
		}
	}
	return string(out)
}

// SourcePriority returns the tie-break priority for a source tag:
// known tags use the fixed table, any other non-empty string is 50,
// and empty/unrecognized-as-string values are 99.
func SourcePriority(source string) int {
	if p, ok := sourcePriority[source]; ok {
		return p
	}
	if source == "" {
		return otherSourcePriority
	}
	return unknownSourcePriority
}

// DeterministicEventID computes the content-addressed id for one event:
// sha-256 hex of the pipe-joined canonical fields. Identical inputs
// always yield identical ids; this is what makes collector re-runs
// idempotent and safe to merge across sources.
func DeterministicEventID(runKey, eventType string, eventAtMs int64, source, sourceOffset string) string {
	joined := fmt.Sprintf("%s|%s|%d|%s|%s", runKey, eventType, eventAtMs, source, sourceOffset)
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}

// BuildEvent composes a canonical Event. The event type is normalized
// through NormalizeTerminalType only when it is not already a running
// type — so a caller-supplied "started"/"heartbeat" always passes
// through unchanged, while any other label is folded into the closed
// terminal vocabulary.
func BuildEvent(runKey, eventType string, eventAtMs int64, source, sourceOffset string, payload map[string]any) Event {
	typ := eventType
	if !IsRunning(typ) {
		typ = NormalizeTerminalType(typ)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return Event{
		EventID:      DeterministicEventID(runKey, typ, eventAtMs, source, sourceOffset),
		RunKey:       runKey,
		EventType:    typ,
		EventAtMs:    eventAtMs,
		Source:       source,
		SourceOffset: sourceOffset,
		Payload:      payload,
	}
}

// SortKey is the deterministic replay ordering tuple:
// (eventAtMs asc, sourcePriority asc, sourceOffset asc, eventId asc).
type SortKey struct {
	EventAtMs     int64
	SourcePriority int
	SourceOffset  string
	EventID       string
}

// Key returns e's sort key.
func (e Event) Key() SortKey {
	return SortKey{
		EventAtMs:      e.EventAtMs,
		SourcePriority: SourcePriority(e.Source),
		SourceOffset:   e.SourceOffset,
		EventID:        e.EventID,
	}
}

// Less implements the canonical ordering between two sort keys.
func (k SortKey) Less(other SortKey) bool {
	if k.EventAtMs != other.EventAtMs {
		return k.EventAtMs < other.EventAtMs
	}
	if k.SourcePriority != other.SourcePriority {
		return k.SourcePriority < other.SourcePriority
	}
	if k.SourceOffset != other.SourceOffset {
		return k.SourceOffset < other.SourceOffset
	}
	return k.EventID < other.EventID
}

// SortEvents sorts events in place by the canonical replay order. The
// sort is total (ties broken down to EventID) so the result is
// independent of input order and of Go's sort implementation.
func SortEvents(events []Event) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].Key().Less(events[j].Key())
	})
}
