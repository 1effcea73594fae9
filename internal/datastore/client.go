package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Record is one row as returned by the REST data store.
type Record = map[string]any

// StoreMetrics receives one observation per wire call.
type StoreMetrics interface {
	ObserveStoreOp(op, table string, duration time.Duration, err error)
}

// Client talks to a PostgREST-style data store. It is constructed once at
// startup and shared; per-call credentials decide whether row-level security
// applies (caller token) or not (service key).
type Client struct {
	http       *resty.Client
	serviceKey string
	metrics    StoreMetrics
}

func New(baseURL, serviceKey string, timeout time.Duration) *Client {
	hc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0)

	return &Client{http: hc, serviceKey: serviceKey}
}

// SetMetrics is optional; a nil receiver-side metrics sink disables reporting.
func (c *Client) SetMetrics(m StoreMetrics) {
	c.metrics = m
}

// Table starts a query against one collection, using the service credential
// unless the query is re-scoped with AsCaller.
func (c *Client) Table(name string) Query {
	return Query{client: c, table: name}
}

func (c *Client) do(ctx context.Context, q Query, method string, body any, prefer string) ([]Record, error) {
	start := time.Now()
	rows, err := c.roundTrip(ctx, q, method, body, prefer)

	if c.metrics != nil {
		c.metrics.ObserveStoreOp(method, q.table, time.Since(start), err)
	}

	return rows, err
}

func (c *Client) roundTrip(ctx context.Context, q Query, method string, body any, prefer string) ([]Record, error) {
	token := q.token
	if token == "" {
		token = c.serviceKey
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("apikey", c.serviceKey).
		SetHeader("Authorization", "Bearer "+token).
		SetQueryParamsFromValues(q.params())

	if prefer != "" {
		req.SetHeader("Prefer", prefer)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, "/rest/v1/"+q.table)
	if err != nil {
		// network failure surfaces as a value, never a panic or a retry
		return nil, transportError(err)
	}

	return normalize(resp)
}

func normalize(resp *resty.Response) ([]Record, error) {
	raw := bytes.TrimSpace(resp.Body())

	if resp.IsError() {
		msg := string(raw)
		if msg == "" {
			msg = resp.Status()
		}
		return nil, &StoreError{Status: resp.StatusCode(), Message: msg}
	}

	// 204 and empty bodies are successes, not "no data found" — deletes and
	// merge-upserts legitimately return nothing.
	if resp.StatusCode() == http.StatusNoContent || len(raw) == 0 {
		return []Record{}, nil
	}

	if raw[0] == '[' {
		var rows []Record
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, invalidBody(resp.StatusCode(), raw)
		}
		return rows, nil
	}

	var row Record
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, invalidBody(resp.StatusCode(), raw)
	}

	return []Record{row}, nil
}

func invalidBody(status int, raw []byte) *StoreError {
	return &StoreError{Status: status, Message: "invalid body: " + truncate(string(raw), 200)}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}

// Decode maps raw records onto a typed destination via a JSON round trip.
func Decode(rows []Record, out any) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	return json.Unmarshal(raw, out)
}

// DecodeOne maps a single record onto a typed destination.
func DecodeOne(row Record, out any) error {
	raw, err := json.Marshal(row)
	if err != nil {
		return err
	}

	return json.Unmarshal(raw, out)
}
