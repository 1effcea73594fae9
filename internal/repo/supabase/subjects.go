package supabase

import (
	"context"
	"strings"

	"github.com/launchpadhq/schoolhub/internal/datastore"
	"github.com/launchpadhq/schoolhub/internal/domain/subject"
)

type SubjectsRepo struct {
	store *datastore.Client
}

func NewSubjectsRepo(store *datastore.Client) *SubjectsRepo {
	return &SubjectsRepo{store: store}
}

// EnsureCatalog seeds the fixed subject catalog for a school and returns the
// resulting rows. The upsert conflicts on (school_id, name, category), so
// calling it on every listing is safe.
func (r *SubjectsRepo) EnsureCatalog(ctx context.Context, schoolID string) ([]subject.Subject, error) {
	rows := make([]datastore.Record, 0, len(subject.Catalog))
	for _, s := range subject.Catalog {
		rows = append(rows, datastore.Record{
			"school_id": schoolID,
			"name":      s.Name,
			"category":  s.Category,
		})
	}

	if _, err := r.store.Table("subjects").Upsert(ctx, rows, "school_id,name,category"); err != nil {
		return nil, err
	}

	return r.ListBySchool(ctx, schoolID)
}

func (r *SubjectsRepo) ListBySchool(ctx context.Context, schoolID string) ([]subject.Subject, error) {
	rows, err := r.store.Table("subjects").Select("*").Eq("school_id", schoolID).Get(ctx)
	if err != nil {
		return nil, err
	}

	var out []subject.Subject
	if err := datastore.Decode(rows, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *SubjectsRepo) Get(ctx context.Context, schoolID, id string) (subject.Subject, error) {
	rows, err := r.store.Table("subjects").
		Select("*").
		Eq("id", id).
		Eq("school_id", schoolID).
		Get(ctx)
	if err != nil {
		return subject.Subject{}, err
	}
	if len(rows) == 0 {
		return subject.Subject{}, subject.ErrNotFound
	}

	var s subject.Subject
	if err := datastore.DecodeOne(rows[0], &s); err != nil {
		return subject.Subject{}, err
	}

	return s, nil
}

// FindByName matches the catalog name case-insensitively within a school.
func (r *SubjectsRepo) FindByName(ctx context.Context, schoolID, name string) (subject.Subject, error) {
	subjects, err := r.ListBySchool(ctx, schoolID)
	if err != nil {
		return subject.Subject{}, err
	}

	want := strings.ToLower(strings.TrimSpace(name))
	for _, s := range subjects {
		if strings.ToLower(s.Name) == want {
			return s, nil
		}
	}

	return subject.Subject{}, subject.ErrNotFound
}

func (r *SubjectsRepo) ListByIDs(ctx context.Context, ids []string) ([]subject.Subject, error) {
	rows, err := r.store.Table("subjects").Select("*").In("id", ids).Get(ctx)
	if err != nil {
		return nil, err
	}

	var out []subject.Subject
	if err := datastore.Decode(rows, &out); err != nil {
		return nil, err
	}

	return out, nil
}
