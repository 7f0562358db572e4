package watchdog

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script probes are posix-only")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "probe.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestProbeReturnsParsedStatus(t *testing.T) {
	path := writeScript(t, `echo '{"status":"ok"}'`)
	p := NewProber(path)
	got := p.Probe(context.Background())
	assert.Equal(t, "ok", got.Status)
}

func TestProbeCollapsesMissingScriptToUnknown(t *testing.T) {
	p := NewProber(filepath.Join(t.TempDir(), "does-not-exist.sh"))
	got := p.Probe(context.Background())
	assert.Equal(t, StatusUnknown, got.Status)
}

func TestProbeCollapsesBadOutputToUnknown(t *testing.T) {
	path := writeScript(t, `echo 'not json'`)
	p := NewProber(path)
	got := p.Probe(context.Background())
	assert.Equal(t, StatusUnknown, got.Status)
}

func TestProbeCollapsesNonZeroExitToUnknown(t *testing.T) {
	path := writeScript(t, `exit 1`)
	p := NewProber(path)
	got := p.Probe(context.Background())
	assert.Equal(t, StatusUnknown, got.Status)
}
