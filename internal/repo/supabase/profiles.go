package supabase

import (
	"context"

	"github.com/launchpadhq/schoolhub/internal/datastore"
	"github.com/launchpadhq/schoolhub/internal/domain/profile"
)

type ProfilesRepo struct {
	store *datastore.Client
}

func NewProfilesRepo(store *datastore.Client) *ProfilesRepo {
	return &ProfilesRepo{store: store}
}

// GetBySubject resolves a verified subject id to its profile row. Runs under
// the service credential so resolution works before any row-level-security
// context exists.
func (r *ProfilesRepo) GetBySubject(ctx context.Context, subjectID string) (profile.Profile, error) {
	rows, err := r.store.Table("profiles").Select("*").Eq("id", subjectID).Get(ctx)
	if err != nil {
		return profile.Profile{}, err
	}
	if len(rows) == 0 {
		return profile.Profile{}, profile.ErrNotFound
	}

	var p profile.Profile
	if err := datastore.DecodeOne(rows[0], &p); err != nil {
		return profile.Profile{}, err
	}

	return p, nil
}

// GetInSchool fetches one profile of a given role inside a tenant;
// profile.ErrNotFound covers both "no such row" and "wrong tenant".
func (r *ProfilesRepo) GetInSchool(ctx context.Context, schoolID, id string, role profile.Role) (profile.Profile, error) {
	rows, err := r.store.Table("profiles").
		Select("*").
		Eq("id", id).
		Eq("school_id", schoolID).
		Eq("role", string(role)).
		Get(ctx)
	if err != nil {
		return profile.Profile{}, err
	}
	if len(rows) == 0 {
		return profile.Profile{}, profile.ErrNotFound
	}

	var p profile.Profile
	if err := datastore.DecodeOne(rows[0], &p); err != nil {
		return profile.Profile{}, err
	}

	return p, nil
}

// GetAnyInSchool is GetInSchool without the role filter.
func (r *ProfilesRepo) GetAnyInSchool(ctx context.Context, schoolID, id string) (profile.Profile, error) {
	rows, err := r.store.Table("profiles").
		Select("*").
		Eq("id", id).
		Eq("school_id", schoolID).
		Get(ctx)
	if err != nil {
		return profile.Profile{}, err
	}
	if len(rows) == 0 {
		return profile.Profile{}, profile.ErrNotFound
	}

	var p profile.Profile
	if err := datastore.DecodeOne(rows[0], &p); err != nil {
		return profile.Profile{}, err
	}

	return p, nil
}

func (r *ProfilesRepo) ListByRole(ctx context.Context, schoolID string, role profile.Role) ([]profile.Profile, error) {
	rows, err := r.store.Table("profiles").
		Select("*").
		Eq("school_id", schoolID).
		Eq("role", string(role)).
		Get(ctx)
	if err != nil {
		return nil, err
	}

	var out []profile.Profile
	if err := datastore.Decode(rows, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ProfilesRepo) ListByIDs(ctx context.Context, ids []string) ([]profile.Profile, error) {
	rows, err := r.store.Table("profiles").Select("*").In("id", ids).Get(ctx)
	if err != nil {
		return nil, err
	}

	var out []profile.Profile
	if err := datastore.Decode(rows, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// ListStudentsByIDs resolves ids to student profiles within one tenant; ids
// that do not resolve are simply absent from the result, which is exactly
// what the roster reconciler needs to detect unknowns.
func (r *ProfilesRepo) ListStudentsByIDs(ctx context.Context, schoolID string, ids []string) ([]profile.Profile, error) {
	rows, err := r.store.Table("profiles").
		Select("*").
		In("id", ids).
		Eq("school_id", schoolID).
		Eq("role", string(profile.RoleStudent)).
		Get(ctx)
	if err != nil {
		return nil, err
	}

	var out []profile.Profile
	if err := datastore.Decode(rows, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ProfilesRepo) Insert(ctx context.Context, p profile.Profile) error {
	row := datastore.Record{
		"id":        p.ID,
		"school_id": p.SchoolID,
		"role":      string(p.Role),
		"full_name": p.FullName,
		"email":     p.Email,
	}
	if p.YearLevel != "" {
		row["year_level"] = p.YearLevel
	}

	_, err := r.store.Table("profiles").Insert(ctx, row)
	return err
}

func (r *ProfilesRepo) Update(ctx context.Context, id string, fields datastore.Record) error {
	_, err := r.store.Table("profiles").Eq("id", id).Update(ctx, fields)
	return err
}

// Delete removes the profile row; related rows cascade inside the store.
func (r *ProfilesRepo) Delete(ctx context.Context, id string) error {
	_, err := r.store.Table("profiles").Eq("id", id).Delete(ctx)
	return err
}
