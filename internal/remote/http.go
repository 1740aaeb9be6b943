package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cristianoliveira/lostfound/internal/domain"
	"github.com/cristianoliveira/lostfound/internal/logging"
	"github.com/cristianoliveira/lostfound/internal/version"
)

const (
	// MutationIDHeader carries the idempotency key of a remote write.
	MutationIDHeader = "X-Mutation-ID"

	maxErrorBody = 4096
)

// HTTPClient is a Collection backed by the JSON HTTP API.
type HTTPClient struct {
	baseURL *url.URL
	token   string
	client  *http.Client
	logger  logging.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *HTTPClient) {
		c.token = token
	}
}

// WithTimeout bounds every request, including reading the body.
func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		c.client.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger logging.Logger) Option {
	return func(c *HTTPClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewHTTPClient creates a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote: invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote: invalid base url %q: scheme must be http or https", baseURL)
	}
	c := &HTTPClient{
		baseURL: u,
		client:  &http.Client{},
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchPage implements Collection.
func (c *HTTPClient) FetchPage(ctx context.Context, res Resource, params Params) (RawPage, error) {
	values := url.Values{}
	for k, v := range params.Values() {
		values.Set(k, v)
	}

	var body io.Reader
	target := c.endpoint(res.Path)
	if res.Form {
		body = strings.NewReader(values.Encode())
	} else {
		target.RawQuery = values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, res.Method, target.String(), body)
	if err != nil {
		return RawPage{}, fmt.Errorf("remote: build %s request: %w", res.Name, err)
	}
	if res.Form {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	data, err := c.do(req, "fetch "+res.Name)
	if err != nil {
		return RawPage{}, err
	}
	page, err := decodeRawPage(data, params.Page)
	if err != nil {
		return RawPage{}, err
	}
	c.logger.Debug("fetched page", "resource", res.Name, "page", page.Page, "items", len(page.Items), "total", page.Total)
	return page, nil
}

// Mutate implements Collection.
func (c *HTTPClient) Mutate(ctx context.Context, m Mutation) error {
	target := c.endpoint(m.Path)
	if len(m.Query) > 0 {
		values := url.Values{}
		for k, v := range m.Query {
			values.Set(k, v)
		}
		target.RawQuery = values.Encode()
	}

	var body io.Reader
	if m.Payload != nil {
		payload, err := json.Marshal(m.Payload)
		if err != nil {
			return fmt.Errorf("remote: encode mutation payload: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, m.Method, target.String(), body)
	if err != nil {
		return fmt.Errorf("remote: build mutation request: %w", err)
	}
	if m.Payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if m.ID != "" {
		req.Header.Set(MutationIDHeader, m.ID)
	}

	if _, err := c.do(req, "mutate "+m.Path); err != nil {
		return err
	}
	c.logger.Debug("mutation confirmed", "method", m.Method, "path", m.Path, "mutation_id", m.ID)
	return nil
}

func (c *HTTPClient) endpoint(path string) *url.URL {
	u := *c.baseURL
	u.Path = u.Path + "/" + strings.TrimLeft(path, "/")
	return &u
}

func (c *HTTPClient) do(req *http.Request, op string) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Timeout: isTimeout(req.Context(), err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		srvErr := &domain.ServerError{Status: resp.StatusCode, Message: errorMessage(data)}
		c.logger.Warn("request failed", "op", op, "status", resp.StatusCode, "error", srvErr.Message)
		return nil, srvErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Timeout: isTimeout(req.Context(), err), Err: err}
	}
	return data, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// errorMessage extracts the user-facing message from an error body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		for _, msg := range []string{body.Message, body.Detail, body.Error} {
			if msg != "" {
				return msg
			}
		}
		return ""
	}
	return strings.TrimSpace(string(data))
}

// decodeRawPage accepts the page envelope {page, total, posts|items|data}
// or a bare array.
func decodeRawPage(data []byte, requested int) (RawPage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return RawPage{Page: requested, Total: domain.UnknownTotal}, nil
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return RawPage{}, &domain.ValidationError{Reason: "decode item list", Err: err}
		}
		return RawPage{Page: requested, Total: domain.UnknownTotal, Items: items}, nil
	}

	var envelope struct {
		Page          *int            `json:"page"`
		Total         *int            `json:"total"`
		Posts         json.RawMessage `json:"posts"`
		Items         json.RawMessage `json:"items"`
		Data          json.RawMessage `json:"data"`
		Notifications json.RawMessage `json:"notifications"`
		Reports       json.RawMessage `json:"reports"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return RawPage{}, &domain.ValidationError{Reason: "decode page envelope", Err: err}
	}

	page := RawPage{Page: requested, Total: domain.UnknownTotal}
	if envelope.Page != nil {
		page.Page = *envelope.Page
	}
	if envelope.Total != nil {
		page.Total = *envelope.Total
	}

	for _, raw := range []json.RawMessage{envelope.Posts, envelope.Items, envelope.Data, envelope.Notifications, envelope.Reports} {
		if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		if err := json.Unmarshal(raw, &page.Items); err != nil {
			return RawPage{}, &domain.ValidationError{Reason: "decode page items", Err: err}
		}
		break
	}
	return page, nil
}
