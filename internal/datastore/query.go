package datastore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type FilterOp int

const (
	OpEq FilterOp = iota
	OpIn
)

// Filter is one rendered condition. Conditions conjunct; at most one filter
// exists per column, and a later filter on the same column replaces the
// earlier one (route handlers rely on this to re-scope a base query by
// tenant).
type Filter struct {
	Column string
	Op     FilterOp
	Value  string
	Values []string
}

// Query is an immutable description of one data-store request. Builder
// methods return a modified copy, so a query can be composed, passed around
// and executed more than once; the mutation is the terminal method itself,
// which makes "two mutations on one builder" unrepresentable.
type Query struct {
	client     *Client
	table      string
	token      string
	sel        string
	onConflict string
	filters    []Filter
}

// AsCaller re-scopes the query to the caller's bearer token so the data
// store applies row-level security. Without it the service key is used.
func (q Query) AsCaller(token string) Query {
	q.token = token
	return q
}

func (q Query) Select(columns string) Query {
	q.sel = columns
	return q
}

// Eq adds an equality filter. Value is stringified; strings and numbers both
// render as the bare value.
func (q Query) Eq(column string, value any) Query {
	return q.withFilter(Filter{Column: column, Op: OpEq, Value: fmt.Sprint(value)})
}

// In adds a set-membership filter. An empty set short-circuits every
// terminal to "no matching rows" without touching the wire.
func (q Query) In(column string, values []string) Query {
	return q.withFilter(Filter{Column: column, Op: OpIn, Values: values})
}

func (q Query) withFilter(f Filter) Query {
	filters := make([]Filter, len(q.filters), len(q.filters)+1)
	copy(filters, q.filters)

	for i := range filters {
		if filters[i].Column == f.Column {
			filters[i] = f
			q.filters = filters
			return q
		}
	}

	q.filters = append(filters, f)
	return q
}

// emptySet reports whether any in-filter has no members, which can never
// match and would render as an ill-formed empty list on the wire.
func (q Query) emptySet() bool {
	for _, f := range q.filters {
		if f.Op == OpIn && len(f.Values) == 0 {
			return true
		}
	}

	return false
}

func (q Query) params() url.Values {
	v := url.Values{}

	if q.sel != "" {
		v.Set("select", q.sel)
	}
	if q.onConflict != "" {
		v.Set("on_conflict", q.onConflict)
	}

	for _, f := range q.filters {
		switch f.Op {
		case OpEq:
			v.Set(f.Column, "eq."+f.Value)
		case OpIn:
			quoted := make([]string, len(f.Values))
			for i, s := range f.Values {
				quoted[i] = `"` + s + `"`
			}
			v.Set(f.Column, "in.("+strings.Join(quoted, ",")+")")
		}
	}

	return v
}

// Get reads the matching rows.
func (q Query) Get(ctx context.Context) ([]Record, error) {
	if q.emptySet() {
		return []Record{}, nil
	}

	return q.client.do(ctx, q, http.MethodGet, nil, "")
}

// Insert writes one record or a slice of records and returns the stored
// representation.
func (q Query) Insert(ctx context.Context, body any) ([]Record, error) {
	if q.emptySet() {
		return []Record{}, nil
	}

	return q.client.do(ctx, q, http.MethodPost, body, "return=representation")
}

// Update patches the matching rows with a partial record and returns the
// updated representation.
func (q Query) Update(ctx context.Context, body any) ([]Record, error) {
	if q.emptySet() {
		return []Record{}, nil
	}

	return q.client.do(ctx, q, http.MethodPatch, body, "return=representation")
}

// Delete removes the matching rows. Success usually carries no body.
func (q Query) Delete(ctx context.Context) ([]Record, error) {
	if q.emptySet() {
		return []Record{}, nil
	}

	return q.client.do(ctx, q, http.MethodDelete, nil, "")
}

// Upsert inserts records, merging with any existing row that collides on
// onConflict. Callers only get a success signal; merge-upserts return no
// body.
func (q Query) Upsert(ctx context.Context, body any, onConflict string) ([]Record, error) {
	if q.emptySet() {
		return []Record{}, nil
	}

	q.onConflict = onConflict

	return q.client.do(ctx, q, http.MethodPost, body, "resolution=merge-duplicates")
}
