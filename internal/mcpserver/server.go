package mcpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/runtime-truth/internal/config"
	"github.com/nextlevelbuilder/runtime-truth/internal/payload"
	"github.com/nextlevelbuilder/runtime-truth/pkg/rpcframe"
)

// Server is a single-threaded MCP server: it reads one framed JSON-RPC
// request at a time from In, dispatches it, and writes one framed
// response to Out before reading the next. There is no concurrent
// request handling, mirroring how the reference stdio client expects a
// strictly alternating request/response stream. Config/Builder may
// still be swapped underneath it by a background config.Watcher, so
// every access goes through cfg()/builder() rather than the
// exported fields directly.
type Server struct {
	Config  *config.Config
	Builder *payload.Builder
	In      io.Reader
	Out     io.Writer
	Log     *slog.Logger

	// ConfigPath, when non-empty, is watched for changes: an edit
	// reloads Config and rebuilds Builder against the new paths, the
	// hot-reload behavior config.Watcher gives any long-lived process.
	ConfigPath string
	Workspace  string

	// connID identifies this stdio connection in log lines, the same
	// correlation role tracing.Collector keys a trace by.
	connID string

	now func() time.Time

	mu sync.RWMutex
}

// NewServer wires a Server against cfg, reading requests from in and
// writing responses to out.
func NewServer(cfg *config.Config, in io.Reader, out io.Writer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		Config:  cfg,
		Builder: payload.NewBuilder(cfg),
		In:      in,
		Out:     out,
		Log:     log,
		connID:  uuid.NewString(),
		now:     time.Now,
	}
}

func (s *Server) nowFn() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// cfg returns the current config, safe to call concurrently with a
// config.Watcher reload.
func (s *Server) cfg() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Config
}

// builder returns the current payload builder, safe to call
// concurrently with a config.Watcher reload.
func (s *Server) builder() *payload.Builder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Builder
}

// reloadConfig swaps in a freshly loaded config and a brand-new
// Builder (and therefore a cold markdown cache) built against it.
func (s *Server) reloadConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Config = cfg
	s.Builder = payload.NewBuilder(cfg)
}

// watchArtifacts starts the markdown-cache invalidation watcher over
// the current config's plan/status/memory paths. Failures are logged
// and non-fatal: the server still works, it just re-reads markdown on
// every build instead of only on change.
func (s *Server) watchArtifacts(ctx context.Context) func() {
	cfg := s.cfg()
	paths := []string{cfg.PlanFile, cfg.StatusFile, cfg.MemoryDir}
	w, err := payload.NewWatcher(paths, func() { s.builder().InvalidateMarkdownCache() })
	if err != nil {
		s.Log.Warn("mcpserver: artifact watcher unavailable", "error", err)
		return func() {}
	}
	if err := w.Start(ctx); err != nil {
		s.Log.Warn("mcpserver: artifact watcher failed to start", "error", err)
		return func() {}
	}
	return w.Stop
}

// watchConfig starts the config-reload watcher when s.ConfigPath is
// set. A no-op otherwise, since there is nothing to watch without an
// override file.
func (s *Server) watchConfig() func() {
	if s.ConfigPath == "" {
		return func() {}
	}
	w, err := config.NewWatcher(s.Workspace, s.ConfigPath)
	if err != nil {
		s.Log.Warn("mcpserver: config watcher unavailable", "error", err)
		return func() {}
	}
	w.OnChange(s.reloadConfig)
	if err := w.Start(); err != nil {
		s.Log.Warn("mcpserver: config watcher failed to start", "path", s.ConfigPath, "error", err)
		return func() {}
	}
	return w.Stop
}

// Run drives the read/dispatch/write loop until In reaches EOF or a
// framing error occurs. A clean EOF between messages is not an error;
// any other read failure (a missing Content-Length, a truncated body,
// invalid JSON, or a request that isn't a JSON object) is fatal and
// returned to the caller, who should exit non-zero.
func (s *Server) Run() error {
	reader := bufio.NewReader(s.In)
	writer := rpcframe.NewSyncWriter(s.Out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopArtifacts := s.watchArtifacts(ctx)
	defer stopArtifacts()
	stopConfig := s.watchConfig()
	defer stopConfig()

	for {
		body, err := rpcframe.ReadFrame(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("mcpserver: read frame: %w", err)
		}

		var req rpcRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return fmt.Errorf("mcpserver: decode request: %w", err)
		}
		if req.JSONRPC != "2.0" && req.JSONRPC != "" {
			return fmt.Errorf("mcpserver: unsupported jsonrpc version %q", req.JSONRPC)
		}

		resp, shouldReply := s.handle(req)
		if !shouldReply {
			continue
		}

		out, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("mcpserver: encode response: %w", err)
		}
		if err := writer.WriteFrame(out); err != nil {
			return fmt.Errorf("mcpserver: write frame: %w", err)
		}

		if req.Method == "shutdown" {
			return nil
		}
	}
}

// handle dispatches one decoded request to its method handler.
// shouldReply is false for notifications (no id), which never get a
// response frame regardless of outcome.
func (s *Server) handle(req rpcRequest) (rpcResponse, bool) {
	isNotification := len(req.ID) == 0
	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "initialize":
		resp.Result = map[string]any{
			"protocolVersion": ProtocolVersion,
			"serverInfo":      map[string]any{"name": "runtime-truth", "version": readServerVersion(s.cfg())},
			"capabilities":    map[string]any{"tools": map[string]any{}},
		}
	case "notifications/initialized":
		return resp, false
	case "ping":
		resp.Result = map[string]any{}
	case "tools/list":
		resp.Result = map[string]any{"tools": s.toolCatalog()}
	case "tools/call":
		result, err := s.callTool(req.Params)
		if err != nil {
			s.Log.Warn("tools/call rejected", "conn", s.connID, "error", err)
			resp.Error = &rpcError{Code: errCodeInvalidParams, Message: err.Error()}
			break
		}
		s.Log.Info("tools/call handled", "conn", s.connID, "isError", result.IsError)
		resp.Result = result
	case "shutdown":
		resp.Result = map[string]any{}
	default:
		resp.Error = &rpcError{Code: errCodeMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
	}

	if isNotification {
		return resp, false
	}
	return resp, true
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (s *Server) callTool(raw json.RawMessage) (toolResult, error) {
	var params toolCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return toolResult{}, fmt.Errorf("invalid tools/call params: %w", err)
	}
	if params.Name == "" {
		return toolResult{}, errors.New("tools/call requires a name")
	}
	return s.dispatchTool(params.Name, params.Arguments), nil
}

func readServerVersion(cfg *config.Config) string {
	if cfg == nil {
		return "dev"
	}
	v := payload.ReadVersion(cfg.VersionFile)
	if v == "" {
		return "dev"
	}
	return v
}
