package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("nil ports returns error", func(t *testing.T) {
		server, err := New(nil)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingExamService)
	})

	t.Run("nil exam service returns error", func(t *testing.T) {
		server, err := New(&Ports{})
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingExamService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := New(&Ports{Exams: &mockExamService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingExamService)
	assert.NoError(t, (&Ports{Exams: &mockExamService{}}).Validate())
}

func TestServer_HandlerRejectsPlainGet(t *testing.T) {
	server := newTestServer(t, &mockExamService{})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	// Without a session or an event-stream Accept header there is nothing
	// to stream back.
	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.GreaterOrEqual(t, resp.StatusCode, 400)
}

func TestServer_HandlerInitialize(t *testing.T) {
	server := newTestServer(t, &mockExamService{})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{` +
		`"protocolVersion":"2025-03-26","capabilities":{},` +
		`"clientInfo":{"name":"test","version":"1"}}}`
	req, err := http.NewRequest(http.MethodPost, ts.URL, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Mcp-Session-Id"))
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	server := newTestServer(t, &mockExamService{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServer_ServeBadAddress(t *testing.T) {
	server := newTestServer(t, &mockExamService{})

	err := server.Serve(context.Background(), "127.0.0.1:-1")
	assert.Error(t, err)
}
