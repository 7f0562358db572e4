package mcpserver

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextlevelbuilder/runtime-truth/internal/config"
	"github.com/nextlevelbuilder/runtime-truth/internal/payload"
	"github.com/nextlevelbuilder/runtime-truth/pkg/rpcframe"
)

func writeRequest(t *testing.T, buf *bytes.Buffer, id, method string, params any) {
	t.Helper()
	req := map[string]any{"jsonrpc": "2.0", "method": method}
	if id != "" {
		req["id"] = id
	}
	if params != nil {
		req["params"] = params
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)
	require.NoError(t, rpcframe.WriteFrame(buf, body))
}

func readResponses(t *testing.T, r *bufio.Reader) []rpcResponse {
	t.Helper()
	var out []rpcResponse
	for {
		body, err := rpcframe.ReadFrame(r)
		if err != nil {
			break
		}
		var resp rpcResponse
		require.NoError(t, json.Unmarshal(body, &resp))
		out = append(out, resp)
	}
	return out
}

func newTestServer(t *testing.T, in *bytes.Buffer, out *bytes.Buffer) *Server {
	t.Helper()
	cfg := config.Default(t.TempDir())
	srv := NewServer(cfg, in, out, nil)
	srv.Builder = payload.NewBuilder(cfg)
	srv.now = func() time.Time { return time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC) }
	return srv
}

func TestServerInitializeAndToolsList(t *testing.T) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	writeRequest(t, in, "1", "initialize", map[string]any{})
	writeRequest(t, in, "2", "tools/list", nil)
	writeRequest(t, in, "", "notifications/initialized", nil)
	writeRequest(t, in, "3", "shutdown", nil)

	srv := newTestServer(t, in, out)
	require.NoError(t, srv.Run())

	responses := readResponses(t, bufio.NewReader(out))
	require.Len(t, responses, 3)
	assert.Nil(t, responses[0].Error)
	assert.Nil(t, responses[1].Error)
	assert.Nil(t, responses[2].Error)
}

func TestServerUnknownMethodReturnsMethodNotFound(t *testing.T) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	writeRequest(t, in, "1", "nonexistent/method", nil)
	writeRequest(t, in, "2", "shutdown", nil)

	srv := newTestServer(t, in, out)
	require.NoError(t, srv.Run())

	responses := readResponses(t, bufio.NewReader(out))
	require.Len(t, responses, 2)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, errCodeMethodNotFound, responses[0].Error.Code)
}

func TestServerToolsCallIssueSnapshot(t *testing.T) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	writeRequest(t, in, "1", "tools/call", map[string]any{"name": "issue.snapshot"})
	writeRequest(t, in, "2", "shutdown", nil)

	srv := newTestServer(t, in, out)
	require.NoError(t, srv.Run())

	responses := readResponses(t, bufio.NewReader(out))
	require.Len(t, responses, 2)
	require.Nil(t, responses[0].Error)

	raw, err := json.Marshal(responses[0].Result)
	require.NoError(t, err)
	var result toolResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, "status=")
}

func TestServerToolsCallMissingNameIsInvalidParams(t *testing.T) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	writeRequest(t, in, "1", "tools/call", map[string]any{})
	writeRequest(t, in, "2", "shutdown", nil)

	srv := newTestServer(t, in, out)
	require.NoError(t, srv.Run())

	responses := readResponses(t, bufio.NewReader(out))
	require.Len(t, responses, 2)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, errCodeInvalidParams, responses[0].Error.Code)
}

func TestServerMalformedFrameIsFatal(t *testing.T) {
	in := &bytes.Buffer{}
	in.WriteString("not a valid frame at all\r\n\r\n")
	out := &bytes.Buffer{}

	srv := newTestServer(t, in, out)
	err := srv.Run()
	require.Error(t, err)
}
