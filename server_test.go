package devserve

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.txt"), []byte("hello\n"), 0644))

	srv := NewServer(Config{
		Host:  "127.0.0.1",
		Port:  0,
		Root:  root,
		Quiet: true,
	})
	require.NoError(t, srv.Start())
	return srv
}

func TestServerServesAndShutsDown(t *testing.T) {
	srv := newTestServer(t)
	assert.Greater(t, srv.BoundPort(), 0)

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve() }()

	resp, err := http.Get(srv.URL() + "/hello.txt")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello\n", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-errc:
		assert.Equal(t, http.ErrServerClosed, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}

	// the listening socket must be released
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(srv.BoundPort())))
	require.NoError(t, err)
	ln.Close()
}

func TestServerBusyPortFallsBack(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	busy := ln.Addr().(*net.TCPAddr).Port

	root := t.TempDir()
	srv := NewServer(Config{Host: "127.0.0.1", Port: busy, Root: root, Quiet: true})
	require.NoError(t, srv.Start())
	assert.NotEqual(t, busy, srv.BoundPort())

	go srv.Serve()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}

func TestServerConcurrentRequests(t *testing.T) {
	srv := newTestServer(t)
	go srv.Serve()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			resp, err := http.Get(srv.URL() + "/hello.txt")
			if err == nil {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					err = fmt.Errorf("unexpected status %s", resp.Status)
				}
			}
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}
}
