// Package config resolves the file paths the runtime-truth pipeline reads
// and writes. Defaults mirror the layout skills.NewLoader assumed for a
// workspace directory tree; every path can be overridden by a CLI flag or
// by a single optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds every resolved file path the pipeline touches.
type Config struct {
	Workspace string `yaml:"workspace"`

	PlanFile        string `yaml:"planFile"`
	StatusFile      string `yaml:"statusFile"`
	MemoryDir       string `yaml:"memoryDir"`
	JobsFile        string `yaml:"jobsFile"`
	SessionsFile    string `yaml:"sessionsFile"`
	RunsDir         string `yaml:"runsDir"`
	SubagentFile    string `yaml:"subagentFile"`
	ReliabilityLog  string `yaml:"reliabilityLog"`
	EventsFile      string `yaml:"eventsFile"`
	RuntimeStateOut string `yaml:"runtimeStateOut"`
	LaneStateFile   string `yaml:"laneStateFile"`
	VersionFile     string `yaml:"versionFile"`
	Changelog       string `yaml:"changelog"`
	WatchdogScript  string `yaml:"watchdogScript"`
	MainSessionFile string `yaml:"mainSessionFile"`

	StaleMs int64 `yaml:"staleMs"`
}

const defaultStaleMs = 10 * 60 * 1000

// Default builds a Config rooted at workspace with the conventional
// sub-paths. An empty workspace resolves to ~/.runtimetruth/workspace.
func Default(workspace string) *Config {
	if workspace == "" {
		workspace = defaultWorkspace()
	}
	statusDir := filepath.Join(workspace, "status")
	return &Config{
		Workspace:       workspace,
		PlanFile:        filepath.Join(workspace, "PLAN.md"),
		StatusFile:      filepath.Join(workspace, "STATUS.md"),
		MemoryDir:       filepath.Join(workspace, "memory"),
		JobsFile:        filepath.Join(workspace, "cron", "jobs.json"),
		SessionsFile:    filepath.Join(workspace, "sessions", "sessions.json"),
		RunsDir:         filepath.Join(workspace, "cron", "runs"),
		SubagentFile:    filepath.Join(workspace, "subagents", "registry.json"),
		ReliabilityLog:  filepath.Join(statusDir, "reliability.jsonl"),
		EventsFile:      filepath.Join(statusDir, "runtime-events.jsonl"),
		RuntimeStateOut: filepath.Join(statusDir, "runtime-state.json"),
		LaneStateFile:   filepath.Join(statusDir, "workstream-lanes.json"),
		VersionFile:     filepath.Join(workspace, "VERSION"),
		Changelog:       filepath.Join(workspace, "CHANGELOG.md"),
		WatchdogScript:  filepath.Join(workspace, "bin", "watchdog-health.sh"),
		MainSessionFile: filepath.Join(workspace, "sessions", "main-session.jsonl"),
		StaleMs:         defaultStaleMs,
	}
}

func defaultWorkspace() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".runtimetruth", "workspace")
	}
	return filepath.Join(home, ".runtimetruth", "workspace")
}

// Load reads an optional YAML override file on top of Default(workspace).
// A missing file is not an error: defaults are used as-is.
func Load(workspace, overridePath string) (*Config, error) {
	cfg := Default(workspace)
	if overridePath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(overridePath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config override %s: %w", overridePath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config override %s: %w", overridePath, err)
	}
	if cfg.StaleMs <= 0 {
		cfg.StaleMs = defaultStaleMs
	}
	return cfg, nil
}
