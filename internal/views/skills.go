package views

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strings"
)

// SkillTier is one rung of a skill's tier ladder.
type SkillTier struct {
	Title      string `json:"title"`
	Definition string `json:"definition"`
	Difference string `json:"difference"`
}

// SkillState values.
const (
	SkillStateActive  = "active"
	SkillStatePlanned = "planned"
	SkillStateLocked  = "locked"
)

// SkillCatalogEntry is one constant entry in the fixed skill DAG.
type SkillCatalogEntry struct {
	ID           string
	Name         string
	Description  string
	Effect       string
	DependsOn    []string
	Keywords     []string
	Tiers        [5]SkillTier
}

// SkillNode is a fully derived skill, ready for the dashboard payload.
type SkillNode struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Effect      string      `json:"effect"`
	State       string      `json:"state"`
	Tier        int         `json:"tier"`
	MaxTier     int         `json:"maxTier"`
	DependsOn   []string    `json:"dependsOn"`
	Tiers       [5]SkillTier `json:"tiers"`
	Progress    float64     `json:"progress"`
}

func tierLadder(skill string) [5]SkillTier {
	stages := [5]string{"first noticed", "used deliberately", "used reliably", "taught to others", "automated end to end"}
	var ladder [5]SkillTier
	for i, stage := range stages {
		ladder[i] = SkillTier{
			Title:      "Tier " + string(rune('1'+i)),
			Definition: skill + " is " + stage,
			Difference: "more artifacts reference " + skill + " than at the previous tier",
		}
	}
	return ladder
}

// SkillCatalog is the fixed 6-skill dependency DAG. Every dependency
// name must name another entry in this slice and appear earlier in it,
// so the DAG is trivially acyclic by construction.
var SkillCatalog = buildCatalog()

func buildCatalog() []SkillCatalogEntry {
	entries := []SkillCatalogEntry{
		{
			ID:          "event-collection",
			Name:        "Event Collection",
			Description: "Reading producer artifacts into canonical lifecycle events",
			Effect:      "New runs are observed within one collection cycle",
			Keywords:    []string{"collector", "journal", "event id", "ingest"},
		},
		{
			ID:          "deterministic-reduction",
			Name:        "Deterministic Reduction",
			Description: "Folding the event journal into a materialized active-run snapshot",
			Effect:      "The dashboard never flickers between contradictory states",
			DependsOn:   []string{"event-collection"},
			Keywords:    []string{"reducer", "fold", "snapshot", "terminal", "revision"},
		},
		{
			ID:          "status-dashboards",
			Name:        "Status Dashboards",
			Description: "Assembling the markdown + snapshot join into one payload",
			Effect:      "One JSON document answers what is running right now",
			DependsOn:   []string{"deterministic-reduction"},
			Keywords:    []string{"dashboard", "payload", "status.md", "status json"},
		},
		{
			ID:          "workstream-lanes",
			Name:        "Workstream Lanes",
			Description: "Now/next/done swimlanes derived from plan and schedule",
			Effect:      "Completed work is never silently dropped from the feed",
			DependsOn:   []string{"status-dashboards"},
			Keywords:    []string{"workstream", "lane", "now/next/done", "swimlane"},
		},
		{
			ID:          "reliability-trends",
			Name:        "Reliability Trends",
			Description: "Scoring job and watchdog history into a rolling trend",
			Effect:      "Degradation is visible before it becomes an incident",
			DependsOn:   []string{"deterministic-reduction"},
			Keywords:    []string{"reliability", "watchdog", "trend", "uptime"},
		},
		{
			ID:          "mcp-tooling",
			Name:        "MCP Tooling",
			Description: "Exposing the pipeline as callable tools over stdio",
			Effect:      "Any MCP-aware client can collect/materialize/build on demand",
			DependsOn:   []string{"status-dashboards", "reliability-trends"},
			Keywords:    []string{"mcp", "jsonrpc", "tool call", "stdio"},
		},
	}
	for i := range entries {
		entries[i].Tiers = tierLadder(entries[i].Name)
	}
	return entries
}

const skillHitsForFullProgress = 8.0

// DeriveSkills computes the deterministic skill graph from the
// lowercase-joined text of the artifacts considered (last 7 days of
// memory files plus the long-lived memory file).
func DeriveSkills(artifactText string) []SkillNode {
	lower := strings.ToLower(artifactText)

	progress := make(map[string]float64, len(SkillCatalog))
	tier := make(map[string]int, len(SkillCatalog))
	for _, entry := range SkillCatalog {
		hits := 0
		for _, kw := range entry.Keywords {
			hits += strings.Count(lower, strings.ToLower(kw))
		}
		p := clamp01(float64(hits) / skillHitsForFullProgress)
		t := int(math.Floor(p * 5))
		if p > 0 && t == 0 {
			t = 1
		}
		progress[entry.ID] = p
		tier[entry.ID] = t
	}

	nodes := make([]SkillNode, 0, len(SkillCatalog))
	state := make(map[string]string, len(SkillCatalog))
	for _, entry := range SkillCatalog {
		depsActive := true
		depsMet := true
		for _, dep := range entry.DependsOn {
			if state[dep] != SkillStateActive {
				depsActive = false
			}
			if tier[dep] == 0 {
				depsMet = false
			}
		}

		var s string
		switch {
		case depsActive && tier[entry.ID] >= 3:
			s = SkillStateActive
		case depsMet && tier[entry.ID] > 0:
			s = SkillStatePlanned
		default:
			s = SkillStateLocked
		}
		state[entry.ID] = s

		nodes = append(nodes, SkillNode{
			ID:          entry.ID,
			Name:        entry.Name,
			Description: entry.Description,
			Effect:      entry.Effect,
			State:       s,
			Tier:        tier[entry.ID],
			MaxTier:     5,
			DependsOn:   entry.DependsOn,
			Tiers:       entry.Tiers,
			Progress:    progress[entry.ID],
		})
	}
	return nodes
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SkillsSeed computes the deterministic seed sha256(joined paths ++
// today)[:12] the payload exposes alongside the skill graph.
func SkillsSeed(artifactPaths []string, today string) string {
	joined := strings.Join(artifactPaths, "|") + today
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])[:12]
}
