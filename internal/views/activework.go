// Package views implements the pure derived-view functions that turn
// parsed markdown, the materialized runtime snapshot, and scheduler
// metadata into the dashboard payload's now/next/done swimlanes,
// current-focus resolution, trends, and skill graph.
package views

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/nextlevelbuilder/runtime-truth/internal/markdown"
)

// TimelineSlices is the three-way split of plan blocks relative to now.
type TimelineSlices struct {
	Current   *markdown.TimelineBlock
	Next      []markdown.TimelineBlock
	Completed []markdown.TimelineBlock
}

// ComputeTimelineSlices buckets blocks into current/next/completed
// relative to nowLocal's time-of-day.
func ComputeTimelineSlices(blocks []markdown.TimelineBlock, nowLocal time.Time) TimelineSlices {
	nowMin := nowLocal.Hour()*60 + nowLocal.Minute()

	var slices TimelineSlices
	for _, b := range blocks {
		start, okS := markdown.MinutesOfDay(b.Start)
		end, okE := markdown.MinutesOfDay(b.End)
		if !okS || !okE {
			continue
		}
		block := b
		switch {
		case start <= nowMin && nowMin < end:
			if slices.Current == nil {
				slices.Current = &block
			}
		case start > nowMin:
			slices.Next = append(slices.Next, block)
		case end <= nowMin:
			slices.Completed = append(slices.Completed, block)
		}
	}
	sort.Slice(slices.Next, func(i, j int) bool {
		si, _ := markdown.MinutesOfDay(slices.Next[i].Start)
		sj, _ := markdown.MinutesOfDay(slices.Next[j].Start)
		return si < sj
	})
	return slices
}

var timeRangeInStringRe = regexp.MustCompile(`(\d{2}:\d{2})-(\d{2}:\d{2})`)
var leadingTimeRe = regexp.MustCompile(`^(\d{2}:\d{2})\b`)

const completionTokens = "complete|completed|done|finished"

func containsCompletionToken(s string) bool {
	lower := strings.ToLower(s)
	for _, tok := range strings.Split(completionTokens, "|") {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// isStaleActiveWork implements the richer stale-active-work heuristic:
// a time range more than 10 minutes past its end, an HH:MM-prefixed
// value more than 90 minutes old (15 if it reads as a completion), or a
// completion token with no resolvable time at all.
func isStaleActiveWork(raw string, now time.Time) bool {
	if raw == "" {
		return true
	}

	hasCompletion := containsCompletionToken(raw)

	if m := timeRangeInStringRe.FindStringSubmatch(raw); m != nil {
		if markdown.ValidHHMM(m[1]) && markdown.ValidHHMM(m[2]) {
			end := timeToday(m[2], now)
			return now.After(end.Add(10 * time.Minute))
		}
	}

	if m := leadingTimeRe.FindStringSubmatch(raw); m != nil && markdown.ValidHHMM(m[1]) {
		at := timeToday(m[1], now)
		threshold := 90 * time.Minute
		if hasCompletion {
			threshold = 15 * time.Minute
		}
		return now.After(at.Add(threshold))
	}

	// No resolvable time at all.
	return hasCompletion
}

func timeToday(hhmm string, now time.Time) time.Time {
	h, m, _ := markdown.ParseHHMM(hhmm)
	return time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
}

// ResolveActiveWork resolves the "active work" label: return the raw
// "Running now" value if fresh, otherwise fall back to the
// current timeline block, then the next one, then the raw value
// unchanged.
func ResolveActiveWork(raw string, slices TimelineSlices, now time.Time) string {
	if !isStaleActiveWork(raw, now) {
		return raw
	}
	if slices.Current != nil {
		return slices.Current.Label()
	}
	if len(slices.Next) > 0 {
		return "Next up: " + slices.Next[0].Label()
	}
	return raw
}
