// Package remote implements the HTTP client for the remote relational store.
// The wire protocol is PostgREST-style: one table, addressed by column
// filters, with JSON rows whose field names are the persisted contract.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/driftnotes/drift-sync-service/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Error is the application error bundle the remote store reports. It is
// logged verbatim at the call site.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`

	HTTPStatus int `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("remote store error %s: %s", e.Code, e.Message)
}

// Config configures the remote table client.
type Config struct {
	// BaseURL is the REST root, e.g. https://example.supabase.co/rest/v1
	BaseURL string
	// APIKey authenticates every request.
	APIKey string
	// Table is the replicated table name.
	Table string
}

// Client talks to one remote table. Requests carry no client-side timeout;
// cancellation, when wanted, comes from the caller's context.
type Client struct {
	config Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a remote table client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config: cfg,
		http:   &http.Client{},
		logger: logger,
	}
}

func (c *Client) tableURL(filter domain.RemoteFilter) string {
	u := strings.TrimRight(c.config.BaseURL, "/") + "/" + c.config.Table
	if len(filter) == 0 {
		return u
	}
	q := url.Values{}
	for col, val := range filter {
		q.Set(col, "eq."+val)
	}
	return u + "?" + q.Encode()
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.config.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// decodeError turns a non-2xx response into an *Error, keeping whatever
// code/message/details/hint bundle the store returned.
func decodeError(resp *http.Response) error {
	payload, _ := io.ReadAll(resp.Body)
	remoteErr := &Error{HTTPStatus: resp.StatusCode}
	if err := sonic.Unmarshal(payload, remoteErr); err != nil || remoteErr.Message == "" {
		remoteErr.Message = strings.TrimSpace(string(payload))
		if remoteErr.Message == "" {
			remoteErr.Message = resp.Status
		}
	}
	return remoteErr
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "remote store unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}
	return io.ReadAll(resp.Body)
}

// Select returns the rows matching the filter.
func (c *Client) Select(ctx context.Context, filter domain.RemoteFilter) ([]*domain.SyncRecord, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.tableURL(filter), nil)
	if err != nil {
		return nil, err
	}
	payload, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var rows []*domain.SyncRecord
	if err := sonic.Unmarshal(payload, &rows); err != nil {
		return nil, errors.Wrap(err, "decode remote rows")
	}
	return rows, nil
}

// Upsert writes one row, merging on the primary key.
func (c *Client) Upsert(ctx context.Context, record *domain.SyncRecord) error {
	body, err := sonic.Marshal([]*domain.SyncRecord{record})
	if err != nil {
		return errors.Wrap(err, "encode remote row")
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.tableURL(nil), body)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	_, err = c.do(req)
	return err
}

// Update applies a partial row to every row matching the filter.
func (c *Client) Update(ctx context.Context, fields map[string]interface{}, filter domain.RemoteFilter) error {
	body, err := sonic.Marshal(fields)
	if err != nil {
		return errors.Wrap(err, "encode remote fields")
	}
	req, err := c.newRequest(ctx, http.MethodPatch, c.tableURL(filter), body)
	if err != nil {
		return err
	}

	_, err = c.do(req)
	return err
}

// Ping reports whether the remote table answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodHead, c.tableURL(nil), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "remote store unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return decodeError(resp)
	}
	return nil
}

// Ensure Client implements domain.RemoteStore
var _ domain.RemoteStore = (*Client)(nil)
