// Command smoketest exercises a running server end to end: health check,
// plan generation and a short walk session. Intended to run against a fresh
// deployment before routing traffic to it.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/myrsky/passo/internal/logging"
	"github.com/myrsky/passo/internal/testhelpers"
)

const readyTimeout = 30 * time.Second

type client struct {
	baseURL    string
	httpClient *http.Client
}

func (c *client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, responseBody, nil
}

func (c *client) expect(ctx context.Context, method, path string, body any, wantStatus int) ([]byte, error) {
	status, responseBody, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if status != wantStatus {
		return nil, fmt.Errorf("%s %s returned %d, want %d: %s", method, path, status, wantStatus, responseBody)
	}
	return responseBody, nil
}

func (c *client) waitForReady(ctx context.Context) error {
	deadline := time.Now().Add(readyTimeout)
	for {
		status, _, err := c.do(ctx, http.MethodGet, "/api/health", nil)
		if err == nil && status == http.StatusOK {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("server not ready after %s: %w", readyTimeout, err)
		}
		time.Sleep(time.Second)
	}
}

func testPlanGeneration(ctx context.Context, c *client) error {
	body, err := c.expect(ctx, http.MethodPost, "/api/plans/generate", nil, http.StatusCreated)
	if err != nil {
		return err
	}
	var generated struct {
		ID   string `json:"id"`
		Days []any  `json:"days"`
	}
	if err = json.Unmarshal(body, &generated); err != nil {
		return fmt.Errorf("unmarshal generated plan: %w", err)
	}
	if len(generated.Days) != 7 {
		return fmt.Errorf("generated plan has %d days, want 7", len(generated.Days))
	}

	if _, err = c.expect(ctx, http.MethodGet, "/api/plans/active", nil, http.StatusOK); err != nil {
		return err
	}
	return nil
}

func testWalkSession(ctx context.Context, c *client) error {
	if _, err := c.expect(ctx, http.MethodPost, "/api/walk/start", nil, http.StatusOK); err != nil {
		return err
	}
	steps := map[string]int{"steps": 200}
	if _, err := c.expect(ctx, http.MethodPost, "/api/walk/steps", steps, http.StatusOK); err != nil {
		return err
	}
	if _, err := c.expect(ctx, http.MethodPost, "/api/walk/stop", nil, http.StatusOK); err != nil {
		return err
	}
	// Discard instead of save so the smoke test leaves no history behind.
	if _, err := c.expect(ctx, http.MethodPost, "/api/walk/discard", nil, http.StatusOK); err != nil {
		return err
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	hostname := os.Args[1]
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	c := &client{baseURL: url, httpClient: &http.Client{Timeout: 10 * time.Second}}
	start := time.Now()

	if err := c.waitForReady(ctx); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready", slog.Any("error", err))
		os.Exit(1)
	}
	if err := testPlanGeneration(ctx, c); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "plan generation smoke test failed", slog.Any("error", err))
		os.Exit(1)
	}
	if err := testWalkSession(ctx, c); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "walk session smoke test failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "smoke test passed", slog.Duration("duration", time.Since(start)))
}
