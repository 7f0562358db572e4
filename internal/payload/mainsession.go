package payload

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/nextlevelbuilder/runtime-truth/internal/reducer"
)

// MainSessionActivity is the reverse-scan result over the interactive
// main session's transcript: when the user last spoke, when a tool
// event last fired, and how many tool calls are still unresolved.
type MainSessionActivity struct {
	LatestUserAtMs   int64
	LastToolAtMs     int64
	PendingCallCount int
	HasToolAfterUser bool
}

type sessionEvent struct {
	Type   string `json:"type"`
	AtMs   int64  `json:"atMs"`
	CallID string `json:"callId,omitempty"`
}

// ScanMainSessionActivity reverse-scans a newline-delimited JSON
// transcript file, stopping at the most recent user message, and
// reports the tool-call activity observed after it. A missing file
// yields a zero-value MainSessionActivity (never running).
func ScanMainSessionActivity(path string) (MainSessionActivity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return MainSessionActivity{}, nil
		}
		return MainSessionActivity{}, err
	}

	var events []sessionEvent
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev sessionEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}

	var activity MainSessionActivity
	pending := map[string]bool{}
	// Scanning backwards, a call's result is seen before the call itself.
	resolved := map[string]bool{}
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		switch ev.Type {
		case "user_message":
			activity.LatestUserAtMs = ev.AtMs
			activity.PendingCallCount = len(pending)
			return activity, nil
		case "tool_call":
			if activity.LastToolAtMs == 0 {
				activity.LastToolAtMs = ev.AtMs
			}
			activity.HasToolAfterUser = true
			if ev.CallID != "" && !resolved[ev.CallID] {
				pending[ev.CallID] = true
			}
		case "tool_result":
			if activity.LastToolAtMs == 0 {
				activity.LastToolAtMs = ev.AtMs
			}
			activity.HasToolAfterUser = true
			if ev.CallID != "" {
				resolved[ev.CallID] = true
			}
		}
	}
	activity.PendingCallCount = len(pending)
	return activity, nil
}

// IsMainSessionActive applies the main-session activity rule: a tool
// event must follow the latest user message, and either a pending call
// exists with the last tool event within 10 minutes, or the last tool
// event is within 2 minutes. Plain chat with no tool activity never
// counts as running.
func IsMainSessionActive(activity MainSessionActivity, now time.Time) bool {
	if !activity.HasToolAfterUser || activity.LastToolAtMs == 0 {
		return false
	}
	age := now.Sub(time.UnixMilli(activity.LastToolAtMs))
	if activity.PendingCallCount > 0 && age <= 10*time.Minute {
		return true
	}
	return age <= 2*time.Minute
}

const mainSessionPublishMarker = "control room status publish"

// ExcludeMainSessionPublishJob drops any active row whose job name
// names the self-publishing job, matching it case-insensitively so the
// publisher never observes itself as "running" in its own output.
func ExcludeMainSessionPublishJob(rows []reducer.ActiveRun) []reducer.ActiveRun {
	out := make([]reducer.ActiveRun, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.JobName), mainSessionPublishMarker) {
			continue
		}
		out = append(out, r)
	}
	return out
}
