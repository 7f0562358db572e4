// Package collector reads each producer's native artifacts — the
// scheduler jobs file, the interactive sessions store, the cron runs
// directory, and the sub-agent registry — and folds them into the
// canonical events.Event shape, appending unseen ones to the journal.
package collector

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/nextlevelbuilder/runtime-truth/internal/events"
	"github.com/nextlevelbuilder/runtime-truth/internal/jobs"
)

// Collector holds the resolved producer paths, mirroring the field
// pattern cron.Service used for its single storePath.
type Collector struct {
	JobsFile     string
	SessionsFile string
	RunsDir      string
	SubagentFile string
}

// cronRunSessionKeyRe matches the synthetic session keys the main agent
// writes for a cron-driven run: agent:main:cron:<jobId>:run:<sessionId>.
var cronRunSessionKeyRe = regexp.MustCompile(`^agent:main:cron:([^:]+):run:([^:]+)$`)

// Collect runs all four producer readers and returns the union of
// canonical events, sorted by the canonical replay order.
func (c *Collector) Collect() ([]events.Event, error) {
	jobsByID, err := c.loadJobs()
	if err != nil {
		return nil, fmt.Errorf("load jobs file: %w", err)
	}

	var out []events.Event

	sessionEvents, err := c.readSessions(jobsByID)
	if err != nil {
		slog.Warn("collector: sessions store read failed", "path", c.SessionsFile, "error", err)
	} else {
		out = append(out, sessionEvents...)
	}

	cronEvents, err := c.readCronRuns()
	if err != nil {
		slog.Warn("collector: cron runs dir read failed", "path", c.RunsDir, "error", err)
	} else {
		out = append(out, cronEvents...)
	}

	subagentEvents, err := c.readSubagents()
	if err != nil {
		slog.Warn("collector: subagent registry read failed", "path", c.SubagentFile, "error", err)
	} else {
		out = append(out, subagentEvents...)
	}

	events.SortEvents(out)
	return out, nil
}

func (c *Collector) loadJobs() (map[string]jobs.Job, error) {
	if c.JobsFile == "" {
		return map[string]jobs.Job{}, nil
	}
	data, err := os.ReadFile(c.JobsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]jobs.Job{}, nil
		}
		return nil, err
	}
	var file jobs.File
	if err := json.Unmarshal(data, &file); err != nil {
		slog.Warn("collector: jobs file malformed, treating as empty", "path", c.JobsFile, "error", err)
		return map[string]jobs.Job{}, nil
	}
	return jobs.ByID(file.Jobs), nil
}

type sessionEntry struct {
	SessionID   string `json:"sessionId"`
	SessionFile string `json:"sessionFile"`
	UpdatedAt   any    `json:"updatedAt"`
	Model       string `json:"model"`
	Thinking    string `json:"thinking"`
}

// readSessions derives one heartbeat event per cron-driven interactive
// session key found in the sessions store.
func (c *Collector) readSessions(jobsByID map[string]jobs.Job) ([]events.Event, error) {
	if c.SessionsFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.SessionsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var store map[string]sessionEntry
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parse sessions store: %w", err)
	}

	var out []events.Event
	for sessionKey, entry := range store {
		m := cronRunSessionKeyRe.FindStringSubmatch(sessionKey)
		if m == nil {
			continue
		}
		jobID, sessionID := m[1], m[2]

		ts, ok := parseTimestampMs(entry.UpdatedAt)
		if !ok {
			continue
		}

		job, hasJob := jobsByID[jobID]
		jobName := job.Name
		if !hasJob || jobName == "" {
			jobName = syntheticJobName(jobID)
		}

		model := normalizeRuntimeModel(firstNonEmpty(entry.Model, job.Payload.Model))
		thinking := normalizeRuntimeThinking(firstNonEmpty(entry.Thinking, job.Payload.Thinking))

		runKey := fmt.Sprintf("cron:%s:%s", jobID, sessionID)
		payload := map[string]any{
			"jobId":        jobID,
			"jobName":      jobName,
			"sessionId":    sessionID,
			"sessionKey":   sessionKey,
			"startedAtMs":  ts,
			"lastSeenAtMs": ts,
			"activityType": "cron",
		}
		if model != "" {
			payload["model"] = model
		}
		if thinking != "" {
			payload["thinking"] = thinking
		}

		out = append(out, events.BuildEvent(runKey, events.TypeHeartbeat, ts, "sessions-store", "sessions:"+sessionKey, payload))
	}
	return out, nil
}

func syntheticJobName(jobID string) string {
	if len(jobID) <= 8 {
		return jobID
	}
	return jobID[:8]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// readCronRuns scans every file in the cron runs directory, one
// append-only text file per job id, and emits a terminal event for
// every line whose action is "finished".
func (c *Collector) readCronRuns() ([]events.Event, error) {
	if c.RunsDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(c.RunsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []events.Event
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		jobID := name[:len(name)-len(filepath.Ext(name))]
		out = append(out, c.readCronRunFile(filepath.Join(c.RunsDir, name), name, jobID)...)
	}
	return out, nil
}

func (c *Collector) readCronRunFile(path, fileName, jobID string) []events.Event {
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("collector: cannot open cron run file", "path", path, "error", err)
		return nil
	}
	defer f.Close()

	var out []events.Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec RawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}

		action, _ := pickString(rec, "action")
		if action != "finished" {
			continue
		}

		sessionID, ok := pickString(rec, "sessionId")
		if !ok {
			// unresolvable run key: dropped, not placeholder-normalized.
			continue
		}

		ts, ok := pickAnyTimestamp(rec, "finishedAtMs", "finishedAt", "endedAt", "timestamp", "ts")
		if !ok {
			continue
		}

		rawStatus, _ := pickString(rec, "status", "result")
		runKey := fmt.Sprintf("cron:%s:%s", jobID, sessionID)
		offset := fmt.Sprintf("%s:%d", fileName, lineNo)
		out = append(out, events.BuildEvent(runKey, rawStatus, ts, "cron-runs", offset, map[string]any{
			"jobId":     jobID,
			"sessionId": sessionID,
		}))
	}
	return out
}

type subagentRegistry struct {
	Runs map[string]RawRecord `json:"runs"`
}

// readSubagents derives started/heartbeat/(optional) terminal events
// for every sub-agent run in the registry file.
func (c *Collector) readSubagents() ([]events.Event, error) {
	if c.SubagentFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.SubagentFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var reg subagentRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse subagent registry: %w", err)
	}

	var out []events.Event
	for runID, rec := range reg.Runs {
		startedAt, ok := pickAnyTimestamp(rec, "startedAt", "createdAt")
		if !ok {
			continue
		}
		runKey := "subagent:" + runID
		jobID := "subagent:" + runID

		label, _ := pickString(rec, "label")
		if label == "" {
			label = "Background task"
		}
		childSessionKey, _ := pickString(rec, "childSessionKey")
		sessionKey := childSessionKey
		if sessionKey == "" {
			sessionKey = "subagent:" + runID
		}
		model := normalizeRuntimeModel(firstString(rec, "model", "agentModel"))
		thinking := normalizeRuntimeThinking(firstString(rec, "thinking"))

		// jobName/summary both carry the run's label, matching how
		// collect_runtime_events.py's subagent payload folds into the
		// reducer's coalesceString fields.
		basePayload := map[string]any{
			"jobId":        jobID,
			"jobName":      label,
			"summary":      label,
			"sessionId":    sessionKey,
			"sessionKey":   sessionKey,
			"activityType": "subagent",
		}
		if model != "" {
			basePayload["model"] = model
		}
		if thinking != "" {
			basePayload["thinking"] = thinking
		}

		startedPayload := cloneMap(basePayload)
		startedPayload["startedAtMs"] = startedAt
		startedPayload["lastSeenAtMs"] = startedAt
		out = append(out, events.BuildEvent(runKey, events.TypeStarted, startedAt, "subagent-registry", "subagent:"+runID+":started", startedPayload))

		heartbeatAt, hbOK := pickAnyTimestamp(rec, "updatedAt")
		if !hbOK {
			heartbeatAt = startedAt
		}
		heartbeatPayload := cloneMap(basePayload)
		heartbeatPayload["startedAtMs"] = startedAt
		heartbeatPayload["lastSeenAtMs"] = heartbeatAt
		out = append(out, events.BuildEvent(runKey, events.TypeHeartbeat, heartbeatAt, "subagent-registry", "subagent:"+runID+":heartbeat", heartbeatPayload))

		if endedAt, ok := pickAnyTimestamp(rec, "endedAt"); ok {
			status, _ := pickString(rec, "status", "endStatus")
			endedPayload := map[string]any{
				"jobId":     jobID,
				"sessionId": sessionKey,
			}
			out = append(out, events.BuildEvent(runKey, status, endedAt, "subagent-registry", "subagent:"+runID+":ended", endedPayload))
		}
	}
	return out, nil
}

func firstString(rec RawRecord, keys ...string) string {
	s, _ := pickString(rec, keys...)
	return s
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
