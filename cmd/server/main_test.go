package main

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmchat/internal/httpserver"
)

func setTestEnv(t *testing.T, port int) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "messages.db"))
	t.Setenv("UPLOAD_DIR", filepath.Join(dir, "uploads"))
	t.Setenv("HTTP_HOST", "127.0.0.1")
	t.Setenv("HTTP_PORT", strconv.Itoa(port))
	t.Setenv("ENCRYPTION_KEY", "")
}

func TestNewServerWriteTimeoutExceedsRequestTimeout(t *testing.T) {
	srv := newServer("127.0.0.1:0", http.NotFoundHandler())
	assert.Greater(t, srv.WriteTimeout, httpserver.RequestTimeout)
}

func TestRunReturnsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	setTestEnv(t, ln.Addr().(*net.TCPAddr).Port)

	err = run(context.Background())
	assert.ErrorContains(t, err, "serve")
}

func TestRunStopsOnCancel(t *testing.T) {
	setTestEnv(t, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- run(ctx) }()
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
