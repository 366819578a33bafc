// Package notion implements the persisted record store client against the
// Notion REST API. Records live as pages in a single database; the video URL
// property is the dedup key and the Found Date property drives retention.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"outliertrack/retry"
	"outliertrack/tracker"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"

	// queryPageSize is the page size used for database query pagination.
	queryPageSize = 100
)

// ErrMissingCredentials indicates the API token or database ID is absent.
// Construction fails before any network activity.
var ErrMissingCredentials = errors.New("notion: api token and database id required")

// HTTPError reports a non-2xx response from the Notion API.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

// Error returns a string representation of the API error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("notion: http %d: %s", e.StatusCode, truncateBody(e.Body))
}

func truncateBody(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

// Client talks to one Notion database. It pages through query results with
// the API's start_cursor/has_more continuation and retries transient
// failures; callers see complete listings or an error.
type Client struct {
	http       *http.Client
	baseURL    string
	token      string
	databaseID string
	retry      retry.Config
}

var _ tracker.RecordStore = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// New creates a store client for the given database.
func New(token, databaseID string, opts ...Option) (*Client, error) {
	if token == "" || databaseID == "" {
		return nil, ErrMissingCredentials
	}

	c := &Client{
		http:       &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
		databaseID: databaseID,
		retry:      retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// --- wire types ---

type queryRequest struct {
	PageSize    int          `json:"page_size"`
	StartCursor string       `json:"start_cursor,omitempty"`
	Filter      *queryFilter `json:"filter,omitempty"`
}

type queryFilter struct {
	Property string      `json:"property"`
	Date     *dateFilter `json:"date,omitempty"`
}

type dateFilter struct {
	Before string `json:"before,omitempty"`
}

type queryResponse struct {
	Results    []page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

type page struct {
	ID         string                   `json:"id"`
	Properties map[string]propertyValue `json:"properties"`
}

type propertyValue struct {
	URL  string     `json:"url,omitempty"`
	Date *dateValue `json:"date,omitempty"`
}

type dateValue struct {
	Start string `json:"start"`
}

// ListRecords returns every record in the database, following the cursor
// until the API reports no more pages.
func (c *Client) ListRecords(ctx context.Context) ([]tracker.Record, error) {
	return c.queryAll(ctx, nil)
}

// ListRecordsFoundBefore returns records whose Found Date is before cutoff,
// using a store-side date filter.
func (c *Client) ListRecordsFoundBefore(ctx context.Context, cutoff time.Time) ([]tracker.Record, error) {
	filter := &queryFilter{
		Property: "Found Date",
		Date:     &dateFilter{Before: cutoff.UTC().Format("2006-01-02")},
	}
	return c.queryAll(ctx, filter)
}

// queryAll pages through a database query and accumulates every result.
func (c *Client) queryAll(ctx context.Context, filter *queryFilter) ([]tracker.Record, error) {
	url := fmt.Sprintf("%s/databases/%s/query", c.baseURL, c.databaseID)

	var records []tracker.Record
	cursor := ""
	for {
		req := queryRequest{PageSize: queryPageSize, StartCursor: cursor, Filter: filter}

		var resp queryResponse
		if err := c.doJSON(ctx, http.MethodPost, url, req, &resp); err != nil {
			return nil, fmt.Errorf("query database: %w", err)
		}

		for _, p := range resp.Results {
			records = append(records, recordFromPage(p))
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	return records, nil
}

// recordFromPage extracts the tracker's view of a database page.
func recordFromPage(p page) tracker.Record {
	rec := tracker.Record{ID: p.ID}

	if prop, ok := p.Properties["URL"]; ok {
		rec.URL = prop.URL
	}
	if prop, ok := p.Properties["Found Date"]; ok && prop.Date != nil {
		if t, err := time.Parse(time.RFC3339, prop.Date.Start); err == nil {
			rec.FoundAt = t
		}
	}
	return rec
}

// ArchiveRecord soft-deletes a page. Notion has no hard delete through the
// API; archived pages drop out of query results.
func (c *Client) ArchiveRecord(ctx context.Context, recordID string) error {
	url := fmt.Sprintf("%s/pages/%s", c.baseURL, recordID)
	payload := map[string]bool{"archived": true}

	if err := c.doJSON(ctx, http.MethodPatch, url, payload, nil); err != nil {
		return fmt.Errorf("archive page %s: %w", recordID, err)
	}
	return nil
}

type createPageRequest struct {
	Parent     parentRef      `json:"parent"`
	Properties map[string]any `json:"properties"`
	Cover      *cover         `json:"cover,omitempty"`
}

type parentRef struct {
	DatabaseID string `json:"database_id"`
}

type cover struct {
	Type     string        `json:"type"`
	External externalCover `json:"external"`
}

type externalCover struct {
	URL string `json:"url"`
}

// CreateRecord writes one record as a new database page, attaching the
// thumbnail as an external cover when present.
func (c *Client) CreateRecord(ctx context.Context, props tracker.RecordProperties) error {
	req := createPageRequest{
		Parent: parentRef{DatabaseID: c.databaseID},
		Properties: map[string]any{
			"Title":           titleProp(props.Title),
			"Channel":         selectProp(props.Channel),
			"Views":           numberProp(float64(props.Views)),
			"Outlier Score":   numberProp(props.OutlierScore),
			"Channel Average": numberProp(float64(props.ChannelAverage)),
			"Views/Hour":      numberProp(float64(props.ViewsPerHour)),
			"URL":             urlProp(props.URL),
			"Published":       dateProp(props.PublishedAt),
			"Found Date":      dateProp(props.FoundAt),
		},
	}
	if props.CoverURL != "" {
		req.Cover = &cover{Type: "external", External: externalCover{URL: props.CoverURL}}
	}

	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/pages", req, nil); err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	return nil
}

// --- property constructors ---

func titleProp(s string) map[string]any {
	return map[string]any{
		"title": []map[string]any{
			{"text": map[string]string{"content": s}},
		},
	}
}

func selectProp(s string) map[string]any {
	return map[string]any{"select": map[string]string{"name": s}}
}

func numberProp(n float64) map[string]any {
	return map[string]any{"number": n}
}

func urlProp(s string) map[string]any {
	return map[string]any{"url": s}
}

func dateProp(t time.Time) map[string]any {
	return map[string]any{"date": map[string]string{"start": t.UTC().Format(time.RFC3339)}}
}

// doJSON performs one API call with retry, encoding payload and decoding the
// response into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	return retry.Do(ctx, c.retry, isRetryableAPIError, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Notion-Version", apiVersion)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("http request failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &HTTPError{StatusCode: resp.StatusCode, Body: respBody}
		}

		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	})
}

// isRetryableAPIError retries server errors and rate limiting; other client
// errors are permanent.
func isRetryableAPIError(err error) bool {
	if !retry.IsRetryable(err) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500 || httpErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}
