package supabase

import (
	"context"

	"github.com/launchpadhq/schoolhub/internal/datastore"
	"github.com/launchpadhq/schoolhub/internal/domain/assessment"
)

type AssessmentsRepo struct {
	store *datastore.Client
}

func NewAssessmentsRepo(store *datastore.Client) *AssessmentsRepo {
	return &AssessmentsRepo{store: store}
}

func (r *AssessmentsRepo) GetByUser(ctx context.Context, userID string) (assessment.Result, error) {
	rows, err := r.store.Table("assessment_results").
		Select("*").
		Eq("user_id", userID).
		Get(ctx)
	if err != nil {
		return assessment.Result{}, err
	}
	if len(rows) == 0 {
		return assessment.Result{}, assessment.ErrNotFound
	}

	var res assessment.Result
	if err := datastore.DecodeOne(rows[0], &res); err != nil {
		return assessment.Result{}, err
	}

	return res, nil
}

func (r *AssessmentsRepo) ListBySchool(ctx context.Context, schoolID string) ([]assessment.Result, error) {
	rows, err := r.store.Table("assessment_results").
		Select("*").
		Eq("school_id", schoolID).
		Get(ctx)
	if err != nil {
		return nil, err
	}

	var out []assessment.Result
	if err := datastore.Decode(rows, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *AssessmentsRepo) ListByUserIDs(ctx context.Context, userIDs []string) ([]assessment.Result, error) {
	rows, err := r.store.Table("assessment_results").
		Select("*").
		In("user_id", userIDs).
		Get(ctx)
	if err != nil {
		return nil, err
	}

	var out []assessment.Result
	if err := datastore.Decode(rows, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// Upsert stores a result under the student's own token so row-level security
// applies to the write. Conflicting on user_id makes re-submission replace the
// previous result.
func (r *AssessmentsRepo) Upsert(ctx context.Context, callerToken string, row datastore.Record) error {
	_, err := r.store.Table("assessment_results").
		AsCaller(callerToken).
		Upsert(ctx, row, "user_id")
	return err
}
