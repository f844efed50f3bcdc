package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/bgg-shelf-mapper/internal/metrics"
	"github.com/DoyleJ11/bgg-shelf-mapper/pkg/types"
)

// Client talks to the shelf API. It holds no state beyond its configuration
// and never retries; callers surface failures to the user.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) ListFixtures(ctx context.Context) ([]types.Fixture, error) {
	var out []types.Fixture
	if err := c.doJSON(ctx, "list_fixtures", http.MethodGet, "/api/fixtures", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetFixtureGrid(ctx context.Context, fixtureID int) (*types.FixtureGrid, error) {
	var out types.FixtureGrid
	path := fmt.Sprintf("/api/fixtures/%d/grid", fixtureID)
	if err := c.doJSON(ctx, "get_fixture_grid", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListGames searches the catalog. A blank q is sent as no filter at all.
func (c *Client) ListGames(ctx context.Context, q string) ([]types.GameWithPlacement, error) {
	var query url.Values
	if q = strings.TrimSpace(q); q != "" {
		query = url.Values{"q": []string{q}}
	}

	var out []types.GameWithPlacement
	if err := c.doJSON(ctx, "list_games", http.MethodGet, "/api/games", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpsertPlacement(ctx context.Context, p types.PlacementUpsert) error {
	return c.doJSON(ctx, "upsert_placement", http.MethodPut, "/api/placements", nil, p, nil)
}

func (c *Client) ClearPlacement(ctx context.Context, fixtureID int, slot string) error {
	path := fmt.Sprintf("/api/placements/%d/%s", fixtureID, url.PathEscape(slot))
	return c.doJSON(ctx, "clear_placement", http.MethodDelete, path, nil, nil, nil)
}

// Health pings the backend's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, "health", http.MethodGet, "/api/health", nil, nil, nil)
}

// doJSON sends body (if any) as JSON and decodes a 2xx response into out
// (if non-nil). Non-2xx responses become *Error.
func (c *Client) doJSON(ctx context.Context, op, method, path string, query url.Values, body, out any) (err error) {
	start := time.Now()
	outcome := metrics.OutcomeOK
	defer func() {
		metrics.ObserveAPICall(op, outcome, time.Since(start))
		if err != nil {
			c.log.Debug("shelf api call failed", zap.String("op", op), zap.Error(err))
		}
	}()

	var reader io.Reader
	if body != nil {
		b, mErr := json.Marshal(body)
		if mErr != nil {
			outcome = metrics.OutcomeTransport
			return fmt.Errorf("%s %s: marshal body: %w", method, path, mErr)
		}
		reader = bytes.NewReader(b)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		outcome = metrics.OutcomeTransport
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		outcome = metrics.OutcomeTransport
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = metrics.OutcomeHTTPError
		raw, _ := io.ReadAll(resp.Body)
		return &Error{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
			Body:       string(raw),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		outcome = metrics.OutcomeTransport
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// statusText strips the numeric code from resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
