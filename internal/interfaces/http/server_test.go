package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molprint/internal/config"
)

func TestNewServer(t *testing.T) {
	mux := http.NewServeMux()
	server := NewServer(config.ServerConfig{Port: 8080, ReadTimeout: time.Second}, mux, nil)

	assert.Equal(t, ":8080", server.Addr())
	assert.Equal(t, time.Second, server.srv.ReadTimeout)
	assert.Same(t, http.Handler(mux), server.Handler())
}

func TestServer_ServeAndStop(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	server := NewServer(config.ServerConfig{ShutdownTimeout: time.Second}, mux, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- server.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "pong", string(body))

	require.NoError(t, server.Stop(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err, "a graceful stop is not an error")
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_StopIdle(t *testing.T) {
	server := NewServer(config.ServerConfig{}, http.NewServeMux(), nil)
	assert.NoError(t, server.Stop(context.Background()))
}
