// Package client is a Go client for the events API. The server is the
// authority for list results; the client keeps a copy of the full
// collection for instant local filtering and refetches it whenever it
// disagrees with the server or after any mutation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"eventify/internal/auth"
	"eventify/internal/models"
	"eventify/internal/utils"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Unwrap maps the status back onto the domain errors so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return &models.ValidationError{Reason: e.Message}
	case http.StatusUnauthorized:
		return auth.ErrUnauthenticated
	case http.StatusForbidden:
		return models.ErrForbidden
	case http.StatusNotFound:
		return models.ErrNotFound
	}
	return nil
}

type Client struct {
	BaseURL string
	HTTP    *http.Client

	mu     sync.Mutex
	token  string
	cache  []models.Event
	cached bool
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		token:   token,
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Logout asks the server to revoke the token, then forgets it together
// with the cached collection. Local state is cleared even if the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	var err error
	if c.Token() != "" {
		err = c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	}

	c.mu.Lock()
	c.token = ""
	c.cache = nil
	c.cached = false
	c.mu.Unlock()
	return err
}

// Refresh replaces the cached collection with the server's.
func (c *Client) Refresh(ctx context.Context) ([]models.Event, error) {
	var all []models.Event
	if err := c.do(ctx, http.MethodGet, "/api/events", nil, &all); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache = all
	c.cached = true
	c.mu.Unlock()
	return all, nil
}

// Events returns the cached collection, fetching it on first use.
func (c *Client) Events(ctx context.Context) ([]models.Event, error) {
	c.mu.Lock()
	if c.cached {
		out := append([]models.Event(nil), c.cache...)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Filter pages the cached collection locally with the same predicate the
// server uses. ok is false when nothing is cached yet.
func (c *Client) Filter(q models.ListQuery, defaultPageSize int) (page models.EventPage, ok bool, err error) {
	q, err = q.Normalized(defaultPageSize, 0)
	if err != nil {
		return page, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cached {
		return page, false, nil
	}
	return models.Paginate(c.cache, q), true, nil
}

// List asks the server for one page. If a cached collection exists and
// yields a different total for the same filter, the cache is refetched.
func (c *Client) List(ctx context.Context, q models.ListQuery) (*models.EventPage, error) {
	var page models.EventPage
	if err := c.do(ctx, http.MethodGet, "/api/events?"+encodeQuery(q).Encode(), nil, &page); err != nil {
		return nil, err
	}

	local, ok, err := c.Filter(q, page.PageSize)
	if err == nil && ok && local.TotalCount != page.TotalCount {
		if _, err := c.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return &page, nil
}

func (c *Client) Get(ctx context.Context, id string) (*models.Event, error) {
	var ev models.Event
	if err := c.do(ctx, http.MethodGet, "/api/events/"+url.PathEscape(id), nil, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (c *Client) Create(ctx context.Context, in models.EventInput) (*models.Event, error) {
	var out struct {
		Message string       `json:"message"`
		Event   models.Event `json:"event"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/events", in, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return &out.Event, nil
}

func (c *Client) Update(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error) {
	var ev models.Event
	if err := c.do(ctx, http.MethodPut, "/api/events/"+url.PathEscape(id), patch, &ev); err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return &ev, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/events/"+url.PathEscape(id), nil, nil); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// invalidate drops the cache after a mutation and tries to refetch it.
// The mutation already succeeded on the server, so a failed refetch only
// leaves the cache empty; Events fetches it again on next use.
func (c *Client) invalidate(ctx context.Context) {
	c.mu.Lock()
	c.cache = nil
	c.cached = false
	c.mu.Unlock()

	c.Refresh(ctx)
}

func encodeQuery(q models.ListQuery) url.Values {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	page := q.Page
	if page == 0 {
		page = 1
	}
	// page is always sent so the server answers with the envelope.
	values.Set("page", strconv.Itoa(page))
	if q.PageSize != 0 {
		values.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	return values
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload utils.APIResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Message != "" {
			apiErr.Message = payload.Message
			apiErr.Code = payload.Error
		}
		return apiErr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsNotFound is a shorthand used by the CLI.
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
