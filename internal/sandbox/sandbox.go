// Package sandbox runs learner code on a remote Piston execution service.
package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abhisek/quizcraft/internal/envutil"
	"github.com/abhisek/quizcraft/internal/logger"
)

type Config struct {
	// BaseURL is the Piston API root; requests go to BaseURL + "/execute".
	BaseURL  string
	Language string
	Version  string

	// Timeout bounds one execution round trip. Expiry is a transport error.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:  "https://emkc.org/api/v2/piston",
		Language: "python",
		Version:  "3.10.0",
		Timeout:  30 * time.Second,
	}
}

func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.BaseURL = envutil.String("QUIZCRAFT_SANDBOX_URL", cfg.BaseURL)
	cfg.Language = envutil.String("QUIZCRAFT_SANDBOX_LANGUAGE", cfg.Language)
	cfg.Version = envutil.String("QUIZCRAFT_SANDBOX_VERSION", cfg.Version)
	cfg.Timeout = envutil.Duration("QUIZCRAFT_SANDBOX_TIMEOUT", cfg.Timeout)
	return cfg
}

// Result is the captured output of one run. A non-zero exit or a runtime
// error is a normal result, reported through Stderr and ExitCode.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Failed reports whether the program wrote to stderr or exited non-zero.
func (r *Result) Failed() bool {
	return r.Stderr != "" || r.ExitCode != 0
}

// Runner executes source code remotely.
type Runner interface {
	// Run returns *TransportError only when the service could not be
	// reached or answered with an error status.
	Run(ctx context.Context, source string) (*Result, error)
}

// PistonClient implements Runner against the Piston HTTP API.
type PistonClient struct {
	cfg    Config
	client *http.Client
	log    *logger.Logger
}

func NewPistonClient(cfg Config, log *logger.Logger) *PistonClient {
	if log == nil {
		log = logger.Nop()
	}
	return &PistonClient{
		cfg:    cfg,
		client: &http.Client{},
		log:    log.With("component", "sandbox"),
	}
}

type executeFile struct {
	Content string `json:"content"`
}

type executeRequest struct {
	Language string        `json:"language"`
	Version  string        `json:"version"`
	Files    []executeFile `json:"files"`
}

type executeResponse struct {
	Run struct {
		Stdout string  `json:"stdout"`
		Stderr string  `json:"stderr"`
		Code   *int    `json:"code"`
		Signal *string `json:"signal"`
	} `json:"run"`
	Message string `json:"message"`
}

func (c *PistonClient) Run(ctx context.Context, source string) (*Result, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(executeRequest{
		Language: c.cfg.Language,
		Version:  c.cfg.Version,
		Files:    []executeFile{{Content: source}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal execute request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/execute"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	var out executeResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode >= 300 {
		msg := out.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", msg)}
	}
	if decodeErr != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode response: %w", decodeErr)}
	}

	res := &Result{Stdout: out.Run.Stdout, Stderr: out.Run.Stderr}
	if out.Run.Code != nil {
		res.ExitCode = *out.Run.Code
	} else if out.Run.Signal != nil {
		res.ExitCode = -1
	}

	c.log.Debug("code executed", "language", c.cfg.Language, "exit_code", res.ExitCode,
		"latency_ms", time.Since(start).Milliseconds(), "stdout_bytes", len(res.Stdout))
	return res, nil
}

// TransportError reports that the sandbox could not run the code at all.
type TransportError struct {
	// StatusCode is set when the service answered with an error status.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sandbox returned HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("sandbox unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
