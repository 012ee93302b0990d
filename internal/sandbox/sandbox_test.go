package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *PistonClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL + "/api/v2/piston/"
	return NewPistonClient(cfg, nil)
}

func TestRun_Success(t *testing.T) {
	var got executeRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/piston/execute", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"language":"python","version":"3.10.0","run":{"stdout":"5\n","stderr":"","code":0,"signal":null,"output":"5\n"}}`))
	})

	res, err := c.Run(context.Background(), "print(2 + 3)")
	require.NoError(t, err)
	assert.Equal(t, "5\n", res.Stdout)
	assert.Empty(t, res.Stderr)
	assert.False(t, res.Failed())

	assert.Equal(t, "python", got.Language)
	assert.Equal(t, "3.10.0", got.Version)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "print(2 + 3)", got.Files[0].Content)
}

func TestRun_RuntimeErrorIsNormalResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"run":{"stdout":"partial\n","stderr":"Traceback: ZeroDivisionError","code":1}}`))
	})

	res, err := c.Run(context.Background(), "print('partial'); 1/0")
	require.NoError(t, err)
	assert.Equal(t, "partial\n", res.Stdout)
	assert.Equal(t, "Traceback: ZeroDivisionError", res.Stderr)
	assert.Equal(t, 1, res.ExitCode)
	assert.True(t, res.Failed())
}

func TestRun_KilledBySignal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"run":{"stdout":"","stderr":"","code":null,"signal":"SIGKILL"}}`))
	})

	res, err := c.Run(context.Background(), "while True: pass")
	require.NoError(t, err)
	assert.Equal(t, -1, res.ExitCode)
	assert.True(t, res.Failed())
}

func TestRun_TransportErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			status: http.StatusInternalServerError,
		},
		{
			name: "bad request with message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"message":"python-3.10.0 runtime is unknown"}`))
			},
			status: http.StatusBadRequest,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			status: http.StatusTooManyRequests,
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>maintenance</html>`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.Run(context.Background(), "print(1)")
			var te *TransportError
			require.True(t, errors.As(err, &te), "got %T: %v", err, err)
			assert.Equal(t, tt.status, te.StatusCode)
		})
	}
}

func TestRun_BadRequestMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"python-3.10.0 runtime is unknown"}`))
	})
	_, err := c.Run(context.Background(), "print(1)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runtime is unknown")
}

func TestRun_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = url
	_, err := NewPistonClient(cfg, nil).Run(context.Background(), "print(1)")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.StatusCode)
}

func TestRun_TimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Timeout = 50 * time.Millisecond

	_, err := NewPistonClient(cfg, nil).Run(context.Background(), "print(1)")
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %T: %v", err, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("QUIZCRAFT_SANDBOX_URL", "http://localhost:2000/api/v2")
	t.Setenv("QUIZCRAFT_SANDBOX_TIMEOUT", "5s")

	cfg := ConfigFromEnv()
	assert.Equal(t, "http://localhost:2000/api/v2", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "python", cfg.Language)
}
