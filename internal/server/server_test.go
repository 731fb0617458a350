package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/wealthnet/internal/config"
)

func TestServerStartAndShutdown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	srv := New(logger, config.HTTPConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second}, handler)
	assert.Equal(t, "127.0.0.1:0", srv.Addr())

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	select {
	case <-srv.Ready():
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not bind")
	}
	require.NotEqual(t, "127.0.0.1:0", srv.Addr())

	resp, err := http.Get("http://" + srv.Addr() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, <-done)
}

func TestServerStartReportsBindFailure(t *testing.T) {
	srv := New(nil, config.HTTPConfig{Host: "256.0.0.1", Port: 1}, http.NotFoundHandler())
	assert.Error(t, srv.Start())
}
