package rpcframe

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadFrameRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte(`{"jsonrpc":"2.0","id":1}`)))

	got, err := ReadFrame(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1}`, string(got))
}

func TestReadFrameMissingContentLength(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("X-Other: 1\r\n\r\n{}"))
	_, err := ReadFrame(r)
	assert.ErrorIs(t, err, ErrContentLengthMissing)
}

func TestReadFrameShortBody(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("Content-Length: 10\r\n\r\n{}"))
	_, err := ReadFrame(r)
	assert.Error(t, err)
}

func TestReadFrameCaseInsensitiveHeader(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("content-length: 2\r\n\r\n{}"))
	got, err := ReadFrame(r)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))
}

func TestSyncWriterSerializesWrites(t *testing.T) {
	var buf bytes.Buffer
	sw := NewSyncWriter(&buf)
	require.NoError(t, sw.WriteFrame([]byte(`{"a":1}`)))
	require.NoError(t, sw.WriteFrame([]byte(`{"b":2}`)))

	r := bufio.NewReader(&buf)
	first, err := ReadFrame(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(first))
	second, err := ReadFrame(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":2}`, string(second))
}
