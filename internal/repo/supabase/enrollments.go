package supabase

import (
	"context"

	"github.com/launchpadhq/schoolhub/internal/datastore"
	"github.com/launchpadhq/schoolhub/internal/roster"
)

type EnrollmentsRepo struct {
	store *datastore.Client
}

func NewEnrollmentsRepo(store *datastore.Client) *EnrollmentsRepo {
	return &EnrollmentsRepo{store: store}
}

func (r *EnrollmentsRepo) ListStudentIDs(ctx context.Context, classID string) ([]string, error) {
	rows, err := r.store.Table("class_enrollments").
		Select("student_id").
		Eq("class_id", classID).
		Get(ctx)
	if err != nil {
		return nil, err
	}

	return pluck(rows, "student_id"), nil
}

func (r *EnrollmentsRepo) ListClassIDs(ctx context.Context, studentID string) ([]string, error) {
	rows, err := r.store.Table("class_enrollments").
		Select("class_id").
		Eq("student_id", studentID).
		Get(ctx)
	if err != nil {
		return nil, err
	}

	return pluck(rows, "class_id"), nil
}

// ListByStudentIDs returns the raw link rows for a set of students, used when
// grouping whole-school listings by class membership.
func (r *EnrollmentsRepo) ListByStudentIDs(ctx context.Context, studentIDs []string) ([]roster.Enrollment, error) {
	rows, err := r.store.Table("class_enrollments").
		Select("student_id,class_id").
		In("student_id", studentIDs).
		Get(ctx)
	if err != nil {
		return nil, err
	}

	var out []roster.Enrollment
	if err := datastore.Decode(rows, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// Add inserts one link row per student in a single request.
func (r *EnrollmentsRepo) Add(ctx context.Context, classID string, studentIDs []string) error {
	rows := make([]datastore.Record, 0, len(studentIDs))
	for _, id := range studentIDs {
		rows = append(rows, datastore.Record{"class_id": classID, "student_id": id})
	}

	_, err := r.store.Table("class_enrollments").Insert(ctx, rows)
	return err
}

func (r *EnrollmentsRepo) Remove(ctx context.Context, classID string, studentIDs []string) error {
	_, err := r.store.Table("class_enrollments").
		Eq("class_id", classID).
		In("student_id", studentIDs).
		Delete(ctx)
	return err
}

func (r *EnrollmentsRepo) RemoveByClass(ctx context.Context, classID string) error {
	_, err := r.store.Table("class_enrollments").Eq("class_id", classID).Delete(ctx)
	return err
}

func (r *EnrollmentsRepo) RemoveByStudent(ctx context.Context, studentID string) error {
	_, err := r.store.Table("class_enrollments").Eq("student_id", studentID).Delete(ctx)
	return err
}

func pluck(rows []datastore.Record, key string) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if v, ok := row[key].(string); ok {
			out = append(out, v)
		}
	}

	return out
}
