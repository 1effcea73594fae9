package datastore

import (
	"testing"
)

func TestQueryParamsRendering(t *testing.T) {
	c := New("http://store.local", "service-key", 0)

	tests := []struct {
		name string
		q    Query
		key  string
		want string
	}{
		{
			name: "eq_renders_bare_value",
			q:    c.Table("profiles").Eq("id", "u-1"),
			key:  "id",
			want: "eq.u-1",
		},
		{
			name: "eq_stringifies_numbers",
			q:    c.Table("classes").Eq("capacity", 30),
			key:  "capacity",
			want: "eq.30",
		},
		{
			name: "last_eq_wins_per_column",
			q:    c.Table("profiles").Eq("school_id", "s-1").Eq("school_id", "s-2"),
			key:  "school_id",
			want: "eq.s-2",
		},
		{
			name: "in_quotes_each_element",
			q:    c.Table("profiles").In("id", []string{"a", "b"}),
			key:  "id",
			want: `in.("a","b")`,
		},
		{
			name: "in_replaces_eq_on_same_column",
			q:    c.Table("profiles").Eq("id", "a").In("id", []string{"b"}),
			key:  "id",
			want: `in.("b")`,
		},
		{
			name: "select_sets_projection",
			q:    c.Table("classes").Select("id, class_name"),
			key:  "select",
			want: "id, class_name",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := tt.q.params().Get(tt.key)

			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryFiltersConjunct(t *testing.T) {
	c := New("http://store.local", "service-key", 0)

	q := c.Table("profiles").Eq("school_id", "s-1").Eq("role", "student")
	v := q.params()

	if got := v.Get("school_id"); got != "eq.s-1" {
		t.Fatalf("school_id filter lost: %q", got)
	}
	if got := v.Get("role"); got != "eq.student" {
		t.Fatalf("role filter lost: %q", got)
	}
}

func TestQueryIsImmutable(t *testing.T) {
	c := New("http://store.local", "service-key", 0)

	base := c.Table("profiles").Eq("school_id", "s-1")
	scoped := base.Eq("role", "teacher")

	if base.params().Get("role") != "" {
		t.Fatalf("deriving a query mutated its base")
	}
	if scoped.params().Get("role") != "eq.teacher" {
		t.Fatalf("derived query missing its own filter")
	}
}

func TestEmptyInShortCircuits(t *testing.T) {
	c := New("http://store.local", "service-key", 0)

	q := c.Table("student_classes").In("student_id", nil)

	if !q.emptySet() {
		t.Fatalf("empty in-filter not detected")
	}

	// no server is running at store.local; a wire call would fail loudly
	rows, err := q.Get(t.Context())

	if err != nil {
		t.Fatalf("expected short-circuit success, got %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
