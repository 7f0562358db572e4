// Package watchdog calls an external reliability-probe script as an
// opaque collaborator: only its contract — a 30s hard timeout, any
// failure collapsing to an "unknown" status — is implemented here.
// There is no bundled script.
package watchdog

import (
	"context"
	"encoding/json"
	"log/slog"
	"os/exec"
	"time"

	"golang.org/x/time/rate"
)

// StatusUnknown is reported whenever the probe cannot be run or its
// output cannot be parsed.
const StatusUnknown = "unknown"

// Status is the watchdog probe's parsed result.
type Status struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// probeTimeout is the hard ceiling on the external call.
const probeTimeout = 30 * time.Second

// Prober runs the external health script, rate-limited so a caller
// looping tool invocations can't hammer the subprocess.
type Prober struct {
	ScriptPath string
	limiter    *rate.Limiter
}

// NewProber builds a Prober allowing at most one probe per second with
// a burst of one, the token-bucket discipline goclaw applies to its own
// outbound rate limiter (internal/gateway/ratelimit.go), reused here via
// the real golang.org/x/time/rate module instead of a second hand-rolled
// limiter.
func NewProber(scriptPath string) *Prober {
	return &Prober{ScriptPath: scriptPath, limiter: rate.NewLimiter(rate.Limit(1), 1)}
}

// Probe runs the script and parses its stdout as {"status":...}. Any
// failure — missing script, non-zero exit, timeout, unparseable
// output — collapses to Status{Status: StatusUnknown}, never an error.
func (p *Prober) Probe(ctx context.Context) Status {
	if err := p.limiter.Wait(ctx); err != nil {
		return Status{Status: StatusUnknown, Message: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.ScriptPath)
	out, err := cmd.Output()
	if err != nil {
		slog.Warn("watchdog probe failed", "script", p.ScriptPath, "error", err)
		return Status{Status: StatusUnknown}
	}

	var status Status
	if err := json.Unmarshal(out, &status); err != nil || status.Status == "" {
		slog.Warn("watchdog probe returned unparseable output", "script", p.ScriptPath)
		return Status{Status: StatusUnknown}
	}
	return status
}
