package mcpserver

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nextlevelbuilder/runtime-truth/internal/collector"
	"github.com/nextlevelbuilder/runtime-truth/internal/reducer"
	"github.com/nextlevelbuilder/runtime-truth/internal/release"
)

// toolSpec is one entry of the tools/list catalog.
type toolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func (s *Server) toolCatalog() []toolSpec {
	return []toolSpec{
		{
			Name:        "issue.snapshot",
			Description: "Return the current materialized-or-reconciled runtime snapshot: what is running right now.",
			InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		},
		{
			Name:        "status.build",
			Description: "Build the full dashboard status payload from plan/status markdown, scheduler metadata, and the runtime snapshot.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"liveRuntime": map[string]any{"type": "boolean", "description": "false sanitizes the runtime section for a cacheable fallback payload"},
				},
			},
		},
		{
			Name:        "release.extract-notes",
			Description: "Extract one version's section from a changelog.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []string{"version"},
				"properties": map[string]any{
					"version":   map[string]any{"type": "string"},
					"changelog": map[string]any{"type": "string", "description": "path to the changelog file; defaults to the configured workspace changelog"},
				},
			},
		},
		{
			Name:        "runtime.materialize",
			Description: "Run the reducer against a journal file and write a materialized snapshot.",
			InputSchema: map[string]any{
				"type":     "object",
				"required": []string{"eventsFile", "out"},
				"properties": map[string]any{
					"eventsFile": map[string]any{"type": "string"},
					"out":        map[string]any{"type": "string"},
					"nowMs":      map[string]any{"type": "integer"},
					"staleMs":    map[string]any{"type": "integer"},
				},
			},
		},
	}
}

func (s *Server) dispatchTool(name string, rawParams json.RawMessage) toolResult {
	switch name {
	case "issue.snapshot":
		return s.handleIssueSnapshot()
	case "status.build":
		return s.handleStatusBuild(rawParams)
	case "release.extract-notes":
		return s.handleReleaseExtract(rawParams)
	case "runtime.materialize":
		return s.handleRuntimeMaterialize(rawParams)
	default:
		return errorResult(fmt.Errorf("unknown tool %q", name))
	}
}

func (s *Server) handleIssueSnapshot() toolResult {
	p, err := s.builder().Build(s.nowFn(), true)
	if err != nil {
		return errorResult(err)
	}
	rt := p.Runtime
	text := fmt.Sprintf("runtime status=%s active=%d", rt.Status, rt.ActiveCount)
	return textResult(text, rt, false)
}

type statusBuildParams struct {
	LiveRuntime *bool `json:"liveRuntime"`
}

func (s *Server) handleStatusBuild(raw json.RawMessage) toolResult {
	var params statusBuildParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return errorResult(fmt.Errorf("invalid params: %w", err))
		}
	}
	live := true
	if params.LiveRuntime != nil {
		live = *params.LiveRuntime
	}

	p, err := s.builder().Build(s.nowFn(), live)
	if err != nil {
		return errorResult(err)
	}
	text := fmt.Sprintf("status payload built: focus=%q activeWork=%q", p.CurrentFocus, p.ActiveWork)
	return textResult(text, p, false)
}

type releaseExtractParams struct {
	Version   string `json:"version"`
	Changelog string `json:"changelog"`
}

func (s *Server) handleReleaseExtract(raw json.RawMessage) toolResult {
	var params releaseExtractParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return errorResult(fmt.Errorf("invalid params: %w", err))
	}
	if params.Version == "" {
		return errorResult(fmt.Errorf("version is required"))
	}
	changelogPath := params.Changelog
	if changelogPath == "" {
		changelogPath = s.cfg().Changelog
	}

	data, err := os.ReadFile(changelogPath)
	if err != nil {
		return errorResult(fmt.Errorf("read changelog %s: %w", changelogPath, err))
	}

	notes, err := release.ExtractNotes(string(data), params.Version)
	if err != nil {
		return errorResult(err)
	}
	return textResult(notes, map[string]any{"ok": true, "version": params.Version, "notes": notes}, false)
}

type runtimeMaterializeParams struct {
	EventsFile string `json:"eventsFile"`
	Out        string `json:"out"`
	NowMs      *int64 `json:"nowMs"`
	StaleMs    *int64 `json:"staleMs"`
}

const defaultStaleMs = 10 * 60 * 1000

func (s *Server) handleRuntimeMaterialize(raw json.RawMessage) toolResult {
	var params runtimeMaterializeParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return errorResult(fmt.Errorf("invalid params: %w", err))
	}
	if params.EventsFile == "" || params.Out == "" {
		return errorResult(fmt.Errorf("eventsFile and out are required"))
	}

	evs, err := collector.ReadJournal(params.EventsFile)
	if err != nil {
		return errorResult(fmt.Errorf("read journal %s: %w", params.EventsFile, err))
	}

	now := s.nowFn()
	if params.NowMs != nil {
		now = time.UnixMilli(*params.NowMs)
	}
	staleMs := int64(defaultStaleMs)
	if params.StaleMs != nil {
		staleMs = *params.StaleMs
	}

	prior := reducer.ReadPriorRevision(params.Out)
	snap := reducer.Materialize(evs, now, staleMs, prior)
	if err := reducer.WriteSnapshotAtomic(params.Out, snap); err != nil {
		return errorResult(fmt.Errorf("write snapshot %s: %w", params.Out, err))
	}

	text := fmt.Sprintf("runtime materialized: revision=%s active=%d terminals=%d", snap.Revision, snap.ActiveCount, snap.TerminalCount)
	return textResult(text, snap, false)
}
