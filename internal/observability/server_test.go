// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/holomush/holokit/internal/bus"
)

// client never reuses connections so stopped servers leave no idle readers.
var client = &http.Client{
	Transport: &http.Transport{DisableKeepAlives: true},
	Timeout:   5 * time.Second,
}

func startServer(t *testing.T, ready ReadinessChecker, registrations ...Registration) *Server {
	t.Helper()
	server := NewServer("127.0.0.1:0", ready, registrations...)
	_, err := server.Start()
	require.NoError(t, err, "failed to start server")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})
	require.NotEmpty(t, server.Addr(), "server address is empty")
	return server
}

func get(t *testing.T, server *Server, path string) (int, string) {
	t.Helper()
	resp, err := client.Get("http://" + server.Addr() + path)
	require.NoError(t, err, "failed to GET %s", path)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	return resp.StatusCode, string(body)
}

func TestServer_Metrics(t *testing.T) {
	server := startServer(t, func() bool { return true })

	status, body := get(t, server, "/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "# HELP")
	assert.Contains(t, body, "# TYPE")
	assert.Contains(t, body, "go_")
	assert.Contains(t, body, "process_")
	assert.Contains(t, body, "holokit_player_level")

	m := server.Metrics()
	m.EventsTotal.WithLabelValues("item.used", "ok").Inc()
	m.EventsTotal.WithLabelValues("item.used", "ok").Inc()
	m.Level.Set(3)
	RecordDecodeFailure("syntax")

	_, body = get(t, server, "/metrics")
	assert.Contains(t, body, `holokit_events_total{event="item.used",status="ok"} 2`)
	assert.Contains(t, body, "holokit_player_level 3")
	assert.Contains(t, body, `holokit_event_decode_failures_total{reason="syntax"}`)
}

type ping struct{}

func TestServer_Registrations(t *testing.T) {
	server := startServer(t, nil, bus.RegisterMetrics)

	b := bus.New()
	bus.Publish(b, ping{})

	_, body := get(t, server, "/metrics")
	assert.Contains(t, body, "holokit_bus_published_total")
}

func TestServer_Liveness(t *testing.T) {
	server := startServer(t, nil)

	status, body := get(t, server, "/healthz/liveness")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", strings.TrimSpace(body))
}

func TestServer_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		ready      ReadinessChecker
		wantStatus int
		wantBody   string
	}{
		{"ready", func() bool { return true }, http.StatusOK, "ok"},
		{"not ready", func() bool { return false }, http.StatusServiceUnavailable, "not ready"},
		{"nil checker", nil, http.StatusOK, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := startServer(t, tt.ready)

			status, body := get(t, server, "/healthz/readiness")
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, strings.TrimSpace(body))
		})
	}
}

func TestServer_DoubleStartFails(t *testing.T) {
	server := startServer(t, nil)

	_, err := server.Start()
	assert.Error(t, err, "expected error on double start")
}

func TestServer_StopWithoutStart(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil)

	assert.NoError(t, server.Stop(context.Background()))
	assert.Empty(t, server.Addr())
}

func TestServer_ErrorChannelReportsServeErrors(t *testing.T) {
	server := startServer(t, nil)
	errCh, err := server.Start()
	require.Error(t, err)
	assert.Nil(t, errCh)

	fresh := NewServer("127.0.0.1:0", nil)
	errCh, err = fresh.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = fresh.Stop(context.Background()) })

	// Closing the listener makes Serve fail after Start returned.
	require.NoError(t, fresh.listener.Close())

	select {
	case serveErr := <-errCh:
		assert.Error(t, serveErr)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error on error channel")
	}
}

func TestServer_StopLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	server := NewServer("127.0.0.1:0", nil)
	errCh, err := server.Start()
	require.NoError(t, err)

	status, _ := get(t, server, "/healthz/liveness")
	require.Equal(t, http.StatusOK, status)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Stop(ctx))

	select {
	case err, ok := <-errCh:
		assert.False(t, ok && err != nil, "unexpected error on normal shutdown: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error channel to close")
	}
}
