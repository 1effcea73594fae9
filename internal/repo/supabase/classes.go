package supabase

import (
	"context"

	"github.com/launchpadhq/schoolhub/internal/datastore"
	"github.com/launchpadhq/schoolhub/internal/domain/class"
)

type ClassesRepo struct {
	store *datastore.Client
}

func NewClassesRepo(store *datastore.Client) *ClassesRepo {
	return &ClassesRepo{store: store}
}

// Get is school-scoped: a class id from another tenant reads as not found.
func (r *ClassesRepo) Get(ctx context.Context, schoolID, id string) (class.Class, error) {
	rows, err := r.store.Table("classes").
		Select("*").
		Eq("id", id).
		Eq("school_id", schoolID).
		Get(ctx)
	if err != nil {
		return class.Class{}, err
	}
	if len(rows) == 0 {
		return class.Class{}, class.ErrNotFound
	}

	var c class.Class
	if err := datastore.DecodeOne(rows[0], &c); err != nil {
		return class.Class{}, err
	}

	return c, nil
}

func (r *ClassesRepo) ListBySchool(ctx context.Context, schoolID string) ([]class.Class, error) {
	rows, err := r.store.Table("classes").Select("*").Eq("school_id", schoolID).Get(ctx)
	if err != nil {
		return nil, err
	}

	var out []class.Class
	if err := datastore.Decode(rows, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ClassesRepo) ListByTeacher(ctx context.Context, schoolID, teacherID string) ([]class.Class, error) {
	rows, err := r.store.Table("classes").
		Select("*").
		Eq("school_id", schoolID).
		Eq("teacher_id", teacherID).
		Get(ctx)
	if err != nil {
		return nil, err
	}

	var out []class.Class
	if err := datastore.Decode(rows, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ClassesRepo) ListByIDs(ctx context.Context, ids []string) ([]class.Class, error) {
	rows, err := r.store.Table("classes").Select("*").In("id", ids).Get(ctx)
	if err != nil {
		return nil, err
	}

	var out []class.Class
	if err := datastore.Decode(rows, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// Insert returns the stored row so the caller learns the generated id.
func (r *ClassesRepo) Insert(ctx context.Context, row datastore.Record) (class.Class, error) {
	rows, err := r.store.Table("classes").Insert(ctx, row)
	if err != nil {
		return class.Class{}, err
	}
	if len(rows) == 0 {
		return class.Class{}, class.ErrNotFound
	}

	var c class.Class
	if err := datastore.DecodeOne(rows[0], &c); err != nil {
		return class.Class{}, err
	}

	return c, nil
}

func (r *ClassesRepo) Update(ctx context.Context, id string, fields datastore.Record) error {
	_, err := r.store.Table("classes").Eq("id", id).Update(ctx, fields)
	return err
}

func (r *ClassesRepo) Delete(ctx context.Context, id string) error {
	_, err := r.store.Table("classes").Eq("id", id).Delete(ctx)
	return err
}
