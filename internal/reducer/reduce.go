package reducer

import (
	"sort"
	"time"

	"github.com/nextlevelbuilder/runtime-truth/internal/events"
)

// candidate is the mutable in-progress merge of running events for one
// run key, kept separate from the public ActiveRun so nil-coalescing
// merge logic doesn't need to smuggle "unset" through zero values.
type candidate struct {
	runKey       string
	jobID        *string
	jobName      *string
	sessionID    *string
	sessionKey   *string
	summary      *string
	activityType *string
	model        *string
	thinking     *string
	startedAtMs  int64
	lastSeenAtMs int64
}

func (c *candidate) toActiveRun() ActiveRun {
	return ActiveRun{
		RunKey:       c.runKey,
		JobID:        deref(c.jobID),
		JobName:      deref(c.jobName),
		SessionID:    deref(c.sessionID),
		SessionKey:   deref(c.sessionKey),
		Summary:      deref(c.summary),
		ActivityType: deref(c.activityType),
		Model:        deref(c.model),
		Thinking:     deref(c.thinking),
		StartedAtMs:  c.startedAtMs,
		LastSeenAtMs: c.lastSeenAtMs,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Reduce folds a sorted-or-unsorted event multiset into a Result. The
// fold is an absorbing-terminal state machine: once a run key has a
// terminal recorded, every later event for that key is dropped. After
// the fold, any candidate whose lastSeenAtMs is older than
// now-staleMs is synthesized into a stale_expired terminal.
func Reduce(input []events.Event, now time.Time, staleMs int64) Result {
	sorted := make([]events.Event, len(input))
	copy(sorted, input)
	events.SortEvents(sorted)

	active := make(map[string]*candidate)
	terminals := make(map[string]Terminal)

	for _, ev := range sorted {
		if _, done := terminals[ev.RunKey]; done {
			continue
		}

		switch {
		case events.IsTerminal(ev.EventType):
			terminals[ev.RunKey] = Terminal{
				RunKey:    ev.RunKey,
				EventType: ev.EventType,
				EventAtMs: ev.EventAtMs,
			}
			delete(active, ev.RunKey)

		case events.IsRunning(ev.EventType):
			mergeRunning(active, ev)

		default:
			// unrecognized event type: ignored per spec.
		}
	}

	nowMs := now.UnixMilli()
	staleBefore := nowMs - staleMs
	droppedStale := 0

	staleKeys := make([]string, 0)
	for key, c := range active {
		if c.lastSeenAtMs < staleBefore {
			staleKeys = append(staleKeys, key)
		}
	}
	sort.Strings(staleKeys)
	for _, key := range staleKeys {
		terminals[key] = Terminal{RunKey: key, EventType: events.TypeStaleExpired, EventAtMs: nowMs}
		delete(active, key)
		droppedStale++
	}

	rows := make([]ActiveRun, 0, len(active))
	for _, c := range active {
		rows = append(rows, c.toActiveRun())
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StartedAtMs != rows[j].StartedAtMs {
			return rows[i].StartedAtMs < rows[j].StartedAtMs
		}
		return rows[i].RunKey < rows[j].RunKey
	})

	return Result{Active: rows, Terminals: terminals, DroppedStaleCount: droppedStale}
}

func mergeRunning(active map[string]*candidate, ev events.Event) {
	payloadStarted, hasStarted := payloadInt64(ev.Payload, "startedAtMs")
	if !hasStarted {
		payloadStarted = ev.EventAtMs
	}
	payloadSeen, hasSeen := payloadInt64(ev.Payload, "lastSeenAtMs")
	if !hasSeen {
		payloadSeen = ev.EventAtMs
	}

	c, ok := active[ev.RunKey]
	if !ok {
		c = &candidate{runKey: ev.RunKey, startedAtMs: payloadStarted, lastSeenAtMs: payloadSeen}
		active[ev.RunKey] = c
	} else {
		if payloadStarted < c.startedAtMs {
			c.startedAtMs = payloadStarted
		}
		if payloadSeen > c.lastSeenAtMs {
			c.lastSeenAtMs = payloadSeen
		}
	}

	coalesceString(ev.Payload, "jobId", &c.jobID)
	coalesceString(ev.Payload, "jobName", &c.jobName)
	coalesceString(ev.Payload, "sessionId", &c.sessionID)
	coalesceString(ev.Payload, "sessionKey", &c.sessionKey)
	coalesceString(ev.Payload, "summary", &c.summary)
	coalesceString(ev.Payload, "activityType", &c.activityType)
	coalesceString(ev.Payload, "model", &c.model)
	coalesceString(ev.Payload, "thinking", &c.thinking)
}

// coalesceString prefers the incoming payload's value over whatever is
// already recorded, but never overwrites a present value with an
// absent one (nil-coalescing, payload wins when present).
func coalesceString(payload map[string]any, key string, dst **string) {
	v, ok := payload[key]
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return
	}
	*dst = strPtr(s)
}

func payloadInt64(payload map[string]any, key string) (int64, bool) {
	v, ok := payload[key]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int64:
		return t, true
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	default:
		return 0, false
	}
}
