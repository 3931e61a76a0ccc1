package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/comuna-app/feed-service/internal/config"
	"github.com/stretchr/testify/require"
)

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:        "0",
		Handler:     http.NotFoundHandler(),
		ReadTimeout: time.Second,
	}
}

func TestShutdownBeforeRun(t *testing.T) {
	srv := New(testConfig())
	require.NoError(t, srv.Shutdown(context.Background()))

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server kept serving after shutdown")
	}
}

func TestShutdownStopsRunningServer(t *testing.T) {
	srv := New(testConfig())

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}
