package supabase

import (
	"context"

	"github.com/launchpadhq/schoolhub/internal/datastore"
	"github.com/launchpadhq/schoolhub/internal/domain/comment"
)

type CommentsRepo struct {
	store *datastore.Client
}

func NewCommentsRepo(store *datastore.Client) *CommentsRepo {
	return &CommentsRepo{store: store}
}

// Find looks up the single comment for a (teacher, student, class) triple.
func (r *CommentsRepo) Find(ctx context.Context, teacherID, studentID, classID string) (comment.Comment, error) {
	rows, err := r.store.Table("teacher_comments").
		Select("*").
		Eq("teacher_id", teacherID).
		Eq("student_id", studentID).
		Eq("class_id", classID).
		Get(ctx)
	if err != nil {
		return comment.Comment{}, err
	}
	if len(rows) == 0 {
		return comment.Comment{}, comment.ErrNotFound
	}

	var c comment.Comment
	if err := datastore.DecodeOne(rows[0], &c); err != nil {
		return comment.Comment{}, err
	}

	return c, nil
}

func (r *CommentsRepo) ListByStudent(ctx context.Context, studentID string) ([]comment.Comment, error) {
	rows, err := r.store.Table("teacher_comments").
		Select("*").
		Eq("student_id", studentID).
		Get(ctx)
	if err != nil {
		return nil, err
	}

	var out []comment.Comment
	if err := datastore.Decode(rows, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *CommentsRepo) ListByStudentIDs(ctx context.Context, studentIDs []string) ([]comment.Comment, error) {
	rows, err := r.store.Table("teacher_comments").
		Select("*").
		In("student_id", studentIDs).
		Get(ctx)
	if err != nil {
		return nil, err
	}

	var out []comment.Comment
	if err := datastore.Decode(rows, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *CommentsRepo) Insert(ctx context.Context, row datastore.Record) (comment.Comment, error) {
	rows, err := r.store.Table("teacher_comments").Insert(ctx, row)
	if err != nil {
		return comment.Comment{}, err
	}
	if len(rows) == 0 {
		return comment.Comment{}, comment.ErrNotFound
	}

	var c comment.Comment
	if err := datastore.DecodeOne(rows[0], &c); err != nil {
		return comment.Comment{}, err
	}

	return c, nil
}

func (r *CommentsRepo) Update(ctx context.Context, id string, fields datastore.Record) error {
	_, err := r.store.Table("teacher_comments").Eq("id", id).Update(ctx, fields)
	return err
}

func (r *CommentsRepo) Delete(ctx context.Context, id string) error {
	_, err := r.store.Table("teacher_comments").Eq("id", id).Delete(ctx)
	return err
}
