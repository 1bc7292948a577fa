package server

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
}

func TestNewServer(t *testing.T) {
	conf := Config{Port: 8080}
	conf.ApplyDefaults()

	srv := newServer(zap.NewNop(), conf, okHandler())

	s, ok := srv.(*server)
	require.True(t, ok)
	assert.Equal(t, ":8080", s.httpSrv.Addr)
	assert.Equal(t, 10*time.Second, s.httpSrv.ReadHeaderTimeout)
	assert.Equal(t, 40*time.Second, s.httpSrv.WriteTimeout)
	assert.Equal(t, ":8080", srv.Addr())
}

func TestServer_ServeWithReadyCallback(t *testing.T) {
	srv := newServer(zap.NewNop(), Config{}, okHandler())

	ready := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ServeWithReadyCallback(func() { close(ready) })
	}()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("onReady was not called")
	}

	resp, err := http.Get("http://" + srv.Addr() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_ListenError(t *testing.T) {
	srv := newServer(zap.NewNop(), Config{Port: -1}, okHandler())

	assert.Error(t, srv.Serve())
}
