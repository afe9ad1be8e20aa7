// Package fpl provides a rate-limited client for the public Fantasy Premier
// League API and maps its payloads onto the squad model.
//
// The API is unauthenticated and serves plain JSON documents. Requests share
// one token bucket limiter so bursts of planner calls stay polite.
package fpl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/albapepper/fpl-optimizer/internal/fixture"
)

// DefaultBaseURL is the public FPL API root.
const DefaultBaseURL = "https://fantasy.premierleague.com/api"

// ErrNotFound is returned when the API answers 404, e.g. for an unknown
// entry or picks of a gameweek the entry did not play.
var ErrNotFound = errors.New("fpl: not found")

// Client is the HTTP client for all FPL endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates an FPL client allowing requestsPerSecond requests.
func NewClient(baseURL string, requestsPerSecond float64, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:     logger,
	}
}

// get performs a rate-limited GET request and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "fpl-optimizer/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("FPL request failed", "path", path, "error", err)
		return fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	c.logger.Debug("FPL request", "path", path, "status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("FPL request rejected", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("FPL %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Endpoints
// --------------------------------------------------------------------------

// Bootstrap fetches bootstrap-static: every player, team and gameweek.
func (c *Client) Bootstrap(ctx context.Context) (*Bootstrap, error) {
	var b Bootstrap
	if err := c.get(ctx, "/bootstrap-static/", &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Fixtures fetches the season's fixtures.
func (c *Client) Fixtures(ctx context.Context) ([]fixture.Fixture, error) {
	var fs []fixture.Fixture
	if err := c.get(ctx, "/fixtures/", &fs); err != nil {
		return nil, err
	}
	return fs, nil
}

// Entry fetches a manager's entry summary.
func (c *Client) Entry(ctx context.Context, entryID int) (*Entry, error) {
	var e Entry
	if err := c.get(ctx, fmt.Sprintf("/entry/%d/", entryID), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Picks fetches the squad an entry fielded in a gameweek.
func (c *Client) Picks(ctx context.Context, entryID, gameweek int) (*Picks, error) {
	var p Picks
	if err := c.get(ctx, fmt.Sprintf("/entry/%d/event/%d/picks/", entryID, gameweek), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Transfers fetches an entry's transfer history.
func (c *Client) Transfers(ctx context.Context, entryID int) ([]Transfer, error) {
	var ts []Transfer
	if err := c.get(ctx, fmt.Sprintf("/entry/%d/transfers/", entryID), &ts); err != nil {
		return nil, err
	}
	return ts, nil
}

// History fetches an entry's per-gameweek history and chip usage.
func (c *Client) History(ctx context.Context, entryID int) (*History, error) {
	var h History
	if err := c.get(ctx, fmt.Sprintf("/entry/%d/history/", entryID), &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Live fetches per-player statistics for a gameweek.
func (c *Client) Live(ctx context.Context, gameweek int) (*Live, error) {
	var l Live
	if err := c.get(ctx, fmt.Sprintf("/event/%d/live/", gameweek), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
