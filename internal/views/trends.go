package views

import (
	"bufio"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/nextlevelbuilder/runtime-truth/internal/jobs"
)

// TrendPoint is one rendered point on a trend chart.
type TrendPoint struct {
	Label  string  `json:"label"`
	Status string  `json:"status"`
	Score  float64 `json:"score"`
	Job    string  `json:"job,omitempty"`
}

const trendCap = 14

// scoreForStatus maps a free-form status label to the fixed trend
// score buckets.
func scoreForStatus(status string) float64 {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "ok", "green", "success":
		return 1.0
	case "yellow", "warn", "warning":
		return 0.55
	case "error", "red", "failed":
		return 0.0
	default:
		return 0.35
	}
}

// JobSuccessTrend emits one point per enabled job that has recorded a
// last run, labeled by that run's local time-of-day, sorted ascending
// and capped to the most recent 14.
func JobSuccessTrend(jobList []jobs.Job, loc *time.Location) []TrendPoint {
	type scored struct {
		ts    int64
		point TrendPoint
	}
	var entries []scored
	for _, j := range jobList {
		if !j.Enabled || j.State.LastRunAtMs == nil {
			continue
		}
		ts := *j.State.LastRunAtMs
		status := j.State.LastStatus
		entries = append(entries, scored{
			ts: ts,
			point: TrendPoint{
				Label:  time.UnixMilli(ts).In(loc).Format("15:04"),
				Status: status,
				Score:  scoreForStatus(status),
				Job:    j.Name,
			},
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ts < entries[j].ts })
	return lastN(entries, func(e scored) TrendPoint { return e.point })
}

func lastN[T any, R any](items []T, project func(T) R) []R {
	start := 0
	if len(items) > trendCap {
		start = len(items) - trendCap
	}
	out := make([]R, 0, len(items)-start)
	for _, it := range items[start:] {
		out = append(out, project(it))
	}
	return out
}

type reliabilityRecord struct {
	Ts         any  `json:"ts"`
	PostHealth struct {
		Status string `json:"status"`
	} `json:"postHealth"`
	Health struct {
		Status string `json:"status"`
	} `json:"health"`
	GuardrailTriggered bool `json:"guardrailTriggered"`
}

// resolveStatus mirrors the watchdog log's status precedence: the
// post-action health check wins, then the ambient health snapshot,
// and a guardrail trip downgrades an otherwise silent line to yellow.
func (r reliabilityRecord) resolveStatus() string {
	if r.PostHealth.Status != "" {
		return r.PostHealth.Status
	}
	if r.Health.Status != "" {
		return r.Health.Status
	}
	if r.GuardrailTriggered {
		return "yellow"
	}
	return "green"
}

// ReliabilityTrend parses a newline-delimited JSON log of watchdog
// probe results into trend points, ascending, capped to 14.
func ReliabilityTrend(logText string, loc *time.Location) []TrendPoint {
	type scored struct {
		ts    int64
		point TrendPoint
	}
	var entries []scored

	scanner := bufio.NewScanner(strings.NewReader(logText))
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec reliabilityRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		ts, ok := tsToMillis(rec.Ts)
		if !ok {
			continue
		}
		status := rec.resolveStatus()
		entries = append(entries, scored{
			ts: ts,
			point: TrendPoint{
				Label:  time.UnixMilli(ts).In(loc).Format("15:04"),
				Status: status,
				Score:  scoreForStatus(status),
			},
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ts < entries[j].ts })
	return lastN(entries, func(e scored) TrendPoint { return e.point })
}

func tsToMillis(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case int64:
		return t, true
	default:
		return 0, false
	}
}
