package views

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/nextlevelbuilder/runtime-truth/internal/jobs"
	"github.com/nextlevelbuilder/runtime-truth/internal/markdown"
	"github.com/nextlevelbuilder/runtime-truth/internal/reducer"
)

// LaneEvent is one candidate workstream event: a timeline block not
// yet ended, an enabled job's future next-run, or an active runtime
// row.
type LaneEvent struct {
	ID      string
	StartMs int64
	Label   string
}

// LaneState is the persisted, per-calendar-day lane bookkeeping:
// every event id ever seen in "now", the ordered ids promoted to
// "done", and a label cache. It resets whenever Day changes.
type LaneState struct {
	Day    string            `json:"day"`
	SeenNow []string         `json:"seenNow"`
	Done   []string          `json:"done"`
	Labels map[string]string `json:"labels"`
}

// Lanes is the rendered now/next/done label lists.
type Lanes struct {
	Now  []string `json:"now"`
	Next []string `json:"next"`
	Done []string `json:"done"`
}

// Store persists LaneState, isolating the only mutable global state in
// the derived-views layer behind a pure-function-friendly interface.
type Store interface {
	Load(day string) (LaneState, error)
	Save(state LaneState) error
}

func emptyState(day string) LaneState {
	return LaneState{Day: day, Labels: map[string]string{}}
}

// resetIfDayChanged returns a fresh state when prior.Day != day,
// matching the "Lane-state day reset" invariant.
func resetIfDayChanged(prior LaneState, day string) LaneState {
	if prior.Day != day {
		return emptyState(day)
	}
	if prior.Labels == nil {
		prior.Labels = map[string]string{}
	}
	return prior
}

// BuildLaneEvents assembles the unified timeline/scheduled-job/runtime
// event model for one payload build.
func BuildLaneEvents(timeline []markdown.TimelineBlock, jobList []jobs.Job, activeRuns []reducer.ActiveRun, nowLocal time.Time) (future []LaneEvent, runtime []LaneEvent) {
	date := nowLocal.Format("2006-01-02")
	slices := ComputeTimelineSlices(timeline, nowLocal)

	notEnded := make([]markdown.TimelineBlock, 0, len(timeline))
	if slices.Current != nil {
		notEnded = append(notEnded, *slices.Current)
	}
	notEnded = append(notEnded, slices.Next...)

	for _, b := range notEnded {
		id := fmt.Sprintf("timeline:%s:%s-%s:%s", date, b.Start, b.End, strings.ToLower(b.Task))
		startMs := timeToday(b.Start, nowLocal).UnixMilli()
		future = append(future, LaneEvent{ID: id, StartMs: startMs, Label: b.Label()})
	}

	nowMs := nowLocal.UnixMilli()
	for _, j := range jobList {
		if !j.Enabled || j.State.NextRunAtMs == nil {
			continue
		}
		next := *j.State.NextRunAtMs
		if next <= nowMs {
			continue
		}
		id := fmt.Sprintf("job:%s:%d", j.ID, next)
		label := fmt.Sprintf("%s — Scheduled job: %s", time.UnixMilli(next).In(nowLocal.Location()).Format("15:04"), j.Name)
		future = append(future, LaneEvent{ID: id, StartMs: next, Label: label})
	}

	for _, row := range activeRuns {
		ident := firstNonEmptyLane(row.SessionID, row.JobID, row.RunKey)
		id := "runtime:" + ident
		label := row.Summary
		if label == "" {
			label = row.JobName
		}
		runtime = append(runtime, LaneEvent{ID: id, StartMs: row.StartedAtMs, Label: label})
	}

	sort.Slice(future, func(i, j int) bool {
		if future[i].StartMs != future[j].StartMs {
			return future[i].StartMs < future[j].StartMs
		}
		return future[i].ID < future[j].ID
	})
	sort.Slice(runtime, func(i, j int) bool {
		if runtime[i].StartMs != runtime[j].StartMs {
			return runtime[i].StartMs < runtime[j].StartMs
		}
		return runtime[i].ID < runtime[j].ID
	})
	return future, runtime
}

func firstNonEmptyLane(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

const (
	doneLaneCap = 5
	nextLaneCap = 5
)

// BuildLanes applies the lane-assembly algorithm to a prior LaneState
// and the current future/runtime event sets, returning the
// rendered lanes plus the updated state to persist.
func BuildLanes(day string, future, runtime []LaneEvent, prior LaneState) (Lanes, LaneState) {
	state := resetIfDayChanged(prior, day)

	var nowEvents, nextEvents []LaneEvent
	switch {
	case len(runtime) > 0:
		nowEvents = runtime[:1]
		nextEvents = future
	case len(future) > 0:
		nowEvents = future[:1]
		nextEvents = future[1:]
	}

	futureIDs := make(map[string]bool, len(future))
	for _, e := range future {
		futureIDs[e.ID] = true
	}

	for _, e := range nowEvents {
		state.Labels[e.ID] = e.Label
	}
	for _, e := range nextEvents {
		state.Labels[e.ID] = e.Label
	}
	for _, e := range runtime {
		state.Labels[e.ID] = e.Label
	}

	seenNow := make(map[string]bool, len(state.SeenNow))
	for _, id := range state.SeenNow {
		seenNow[id] = true
	}
	for _, e := range nowEvents {
		seenNow[e.ID] = true
	}

	nowIDs := make(map[string]bool, len(nowEvents))
	for _, e := range nowEvents {
		nowIDs[e.ID] = true
	}

	doneSet := make(map[string]bool, len(state.Done))
	for _, id := range state.Done {
		doneSet[id] = true
	}
	for id := range seenNow {
		if nowIDs[id] || futureIDs[id] {
			continue
		}
		if !doneSet[id] {
			state.Done = append(state.Done, id)
			doneSet[id] = true
		}
	}

	state.SeenNow = sortedKeys(seenNow)

	nowLabels := labelsFor(nowEvents, state.Labels)
	nextLabels := capExcluding(nextEvents, state.Labels, nowIDs, nextLaneCap)

	doneLabels := make([]string, 0, len(state.Done))
	nextIDs := make(map[string]bool, len(nextEvents))
	for _, e := range nextEvents {
		nextIDs[e.ID] = true
	}
	for i := len(state.Done) - 1; i >= 0 && len(doneLabels) < doneLaneCap; i-- {
		id := state.Done[i]
		if nowIDs[id] || nextIDs[id] {
			continue
		}
		label, ok := state.Labels[id]
		if !ok {
			continue
		}
		doneLabels = append(doneLabels, rewriteDoneLabel(label))
	}

	return Lanes{Now: nowLabels, Next: nextLabels, Done: doneLabels}, state
}

func labelsFor(evs []LaneEvent, labels map[string]string) []string {
	out := make([]string, 0, len(evs))
	for _, e := range evs {
		if l, ok := labels[e.ID]; ok {
			out = append(out, l)
		} else {
			out = append(out, e.Label)
		}
	}
	return out
}

func capExcluding(evs []LaneEvent, labels map[string]string, exclude map[string]bool, limit int) []string {
	out := make([]string, 0, limit)
	for _, e := range evs {
		if exclude[e.ID] {
			continue
		}
		if len(out) >= limit {
			break
		}
		label := e.Label
		if l, ok := labels[e.ID]; ok {
			label = l
		}
		out = append(out, label)
	}
	return out
}

var doneRangeLabelRe = regexp.MustCompile(`^(\d{2}:\d{2})-(\d{2}:\d{2}) — (.+)$`)
var doneSingleLabelRe = regexp.MustCompile(`^\d{2}:\d{2} — .+$`)

// rewriteDoneLabel canonicalizes a done-lane label: a leading
// "HH:MM-HH:MM — X" becomes "HH:MM — X" using the end time; a leading
// "HH:MM — X" is preserved; anything else passes through unchanged.
func rewriteDoneLabel(label string) string {
	if m := doneRangeLabelRe.FindStringSubmatch(label); m != nil {
		return m[2] + " — " + m[3]
	}
	if doneSingleLabelRe.MatchString(label) {
		return label
	}
	return label
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
