package payload

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nextlevelbuilder/runtime-truth/internal/config"
	"github.com/nextlevelbuilder/runtime-truth/internal/jobs"
	"github.com/nextlevelbuilder/runtime-truth/internal/markdown"
	"github.com/nextlevelbuilder/runtime-truth/internal/reducer"
	"github.com/nextlevelbuilder/runtime-truth/internal/views"
	"github.com/nextlevelbuilder/runtime-truth/internal/watchdog"
)

// reliabilityProber is the subset of *watchdog.Prober the builder
// depends on, so tests can substitute a stub instead of shelling out.
type reliabilityProber interface {
	Probe(ctx context.Context) watchdog.Status
}

// Builder orchestrates one dashboard payload build: reading the plan,
// status, and memory markdown, resolving the runtime snapshot, and
// assembling every derived view into a single Payload. It is the Go
// shape of status_builder.py's top-level build_status_payload(),
// generalized to the cron+subagent+session producer set.
type Builder struct {
	Config    *config.Config
	LaneStore views.Store
	Watchdog  reliabilityProber

	mu     sync.Mutex
	cached *markdownArtifacts
}

// markdownArtifacts is the subset of a build's inputs that only change
// when someone edits the plan/status/memory files on disk: everything
// a Watcher can invalidate. Runtime, jobs, and lane state are always
// re-read fresh regardless of this cache, since their own freshness
// rules (materialized-snapshot age, lane day-reset) already govern
// staleness.
type markdownArtifacts struct {
	day        string
	planText   string
	statusText string
	memoryText string
}

// InvalidateMarkdownCache drops any cached plan/status/memory read, so
// the next Build re-reads from disk. A Watcher calls this when it sees
// the plan file, status file, or memory directory change, so a
// long-lived mcp-server process doesn't re-parse unchanged markdown on
// every tool call yet still picks up edits promptly.
func (b *Builder) InvalidateMarkdownCache() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cached = nil
}

func (b *Builder) loadMarkdownArtifacts(nowLocal time.Time) markdownArtifacts {
	day := nowLocal.Format("2006-01-02")
	cfg := b.Config

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cached != nil && b.cached.day == day {
		return *b.cached
	}

	art := markdownArtifacts{
		day:        day,
		planText:   readFileOrEmpty(cfg.PlanFile),
		statusText: readFileOrEmpty(cfg.StatusFile),
		memoryText: readFileOrEmpty(memoryFilePath(cfg.MemoryDir, nowLocal)),
	}
	b.cached = &art
	return art
}

// NewBuilder wires a Builder against cfg, defaulting the lane store to
// the atomic file-backed implementation and the reliability prober to
// cfg.WatchdogScript.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		Config:    cfg,
		LaneStore: views.FileStore{Path: cfg.LaneStateFile},
		Watchdog:  watchdog.NewProber(cfg.WatchdogScript),
	}
}

const findingsCap = 6

// Build assembles the dashboard payload at now. liveRuntime mirrors the
// status.build MCP tool's flag: false produces a sanitized payload
// suitable for writing to a file a downstream reader might cache.
func (b *Builder) Build(now time.Time, liveRuntime bool) (Payload, error) {
	cfg := b.Config
	nowLocal := now.Local()

	art := b.loadMarkdownArtifacts(nowLocal)
	planText, statusText, memoryText := art.planText, art.statusText, art.memoryText

	fields := markdown.ParseStatusFields(statusText)
	timeline := markdown.ParseTimelineBlocks(planText)
	slices := views.ComputeTimelineSlices(timeline, nowLocal)

	activeWork := views.ResolveActiveWork(fields.ActiveWork, slices, nowLocal)
	currentFocus := views.ResolveCurrentFocus(fields.CurrentFocus, slices, activeWork)

	jobList, err := jobs.Load(cfg.JobsFile)
	if err != nil {
		jobList = nil
	}

	rt := resolveRuntime(cfg, now)
	rt = includeMainSession(rt, cfg.MainSessionFile, now)

	future, runtimeEvents := views.BuildLaneEvents(timeline, jobList, rt.ActiveRuns, nowLocal)
	day := nowLocal.Format("2006-01-02")
	prior, err := b.laneStore().Load(day)
	if err != nil {
		prior = views.LaneState{Day: day, Labels: map[string]string{}}
	}
	lanes, newState := views.BuildLanes(day, future, runtimeEvents, prior)
	if err := b.laneStore().Save(newState); err != nil {
		return Payload{}, fmt.Errorf("save lane state: %w", err)
	}

	reliabilityLogText := readFileOrEmpty(cfg.ReliabilityLog)
	reliabilityTrend := views.ReliabilityTrend(reliabilityLogText, nowLocal.Location())
	jobSuccessTrend := views.JobSuccessTrend(jobList, nowLocal.Location())

	activity := markdown.ParseActivity(statusText)

	artifactText, artifactPaths := collectSkillArtifacts(cfg.MemoryDir, nowLocal)
	skills := views.DeriveSkills(artifactText)
	skillsSeed := views.SkillsSeed(artifactPaths, day)

	payload := Payload{
		GeneratedAt:        now.UTC().Format(time.RFC3339),
		GeneratedAtLocal:   nowLocal.Format(time.RFC3339),
		ControlRoomVersion: readVersion(cfg.VersionFile),
		CurrentFocus:       currentFocus,
		ActiveWork:         activeWork,
		Reliability:        b.reliabilityStatus(),
		Timeline:           timeline,
		NextJobs:           nextJobLabels(jobList, nowLocal),
		Findings:           recentFindings(memoryText),
		Workstream:         lanes,
		Charts: Charts{
			JobSuccessTrend:  jobSuccessTrend,
			ReliabilityTrend: reliabilityTrend,
		},
		Activity:   activity,
		Skills:     skills,
		SkillsSeed: skillsSeed,
		Runtime:    rt,
	}

	if !liveRuntime {
		payload = Sanitize(payload)
	}
	return payload, nil
}

func (b *Builder) laneStore() views.Store {
	if b.LaneStore != nil {
		return b.LaneStore
	}
	return views.FileStore{Path: b.Config.LaneStateFile}
}

func readFileOrEmpty(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func memoryFilePath(memoryDir string, nowLocal time.Time) string {
	if memoryDir == "" {
		return ""
	}
	return memoryDir + "/" + nowLocal.Format("2006-01-02") + ".md"
}

func readVersion(path string) string {
	return ReadVersion(path)
}

// ReadVersion reads and trims the version string from path.
func ReadVersion(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// recentFindings returns the last findingsCap top-level bullet lines in
// text, in file order.
func recentFindings(text string) []string {
	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") {
			bullets = append(bullets, strings.TrimSpace(strings.TrimPrefix(trimmed, "- ")))
		}
	}
	if len(bullets) > findingsCap {
		bullets = bullets[len(bullets)-findingsCap:]
	}
	return bullets
}

// nextJobLabels renders up to 5 upcoming scheduled jobs as "HH:MM —
// <name>", ascending by next-run time.
func nextJobLabels(jobList []jobs.Job, nowLocal time.Time) []string {
	const maxNextJobs = 5
	type entry struct {
		next  int64
		label string
	}
	var entries []entry
	nowMs := nowLocal.UnixMilli()
	for _, j := range jobList {
		if !j.Enabled || j.State.NextRunAtMs == nil {
			continue
		}
		next := *j.State.NextRunAtMs
		if next <= nowMs {
			continue
		}
		label := fmt.Sprintf("%s — %s", time.UnixMilli(next).In(nowLocal.Location()).Format("15:04"), j.Name)
		entries = append(entries, entry{next: next, label: label})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].next < entries[j].next })
	if len(entries) > maxNextJobs {
		entries = entries[:maxNextJobs]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.label
	}
	return out
}

// reliabilityStatus queries the external watchdog probe for the
// current health status, the live counterpart to the reliability
// trend's historical log tail. A missing prober or any probe failure
// reports watchdog.StatusUnknown.
func (b *Builder) reliabilityStatus() string {
	if b.Watchdog == nil {
		return watchdog.StatusUnknown
	}
	return b.Watchdog.Probe(context.Background()).Status
}

// includeMainSession folds the interactive main session's own
// tool-call activity into the runtime payload as a synthetic active
// row, when IsMainSessionActive judges it running. A session with no
// recent tool activity contributes nothing.
func includeMainSession(rt RuntimePayload, sessionFile string, now time.Time) RuntimePayload {
	if sessionFile == "" {
		return rt
	}
	activity, err := ScanMainSessionActivity(sessionFile)
	if err != nil || !IsMainSessionActive(activity, now) {
		return rt
	}

	row := reducer.ActiveRun{
		RunKey:         "main-session",
		Summary:        "Interactive session active",
		ActivityType:   "interactive",
		StartedAtMs:    activity.LatestUserAtMs,
		LastSeenAtMs:   activity.LastToolAtMs,
		RunningForMs:   now.UnixMilli() - activity.LatestUserAtMs,
		StartedAtLocal: time.UnixMilli(activity.LatestUserAtMs).Local().Format(time.RFC3339),
	}

	rt.ActiveRuns = append([]reducer.ActiveRun{row}, rt.ActiveRuns...)
	rt.ActiveCount = len(rt.ActiveRuns)
	rt.Status = "running"
	return rt
}
