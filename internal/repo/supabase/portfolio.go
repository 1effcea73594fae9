package supabase

import (
	"context"

	"github.com/launchpadhq/schoolhub/internal/datastore"
)

// PortfolioRepo covers the loosely-shaped student portfolio tables. Rows pass
// through as records; the handlers only aggregate them.
type PortfolioRepo struct {
	store *datastore.Client
}

func NewPortfolioRepo(store *datastore.Client) *PortfolioRepo {
	return &PortfolioRepo{store: store}
}

func (r *PortfolioRepo) ListAttributes(ctx context.Context, userID string) ([]datastore.Record, error) {
	return r.store.Table("user_attributes").Select("*").Eq("user_id", userID).Get(ctx)
}

func (r *PortfolioRepo) ListExperiences(ctx context.Context, userID string) ([]datastore.Record, error) {
	return r.store.Table("work_experiences").Select("*").Eq("user_id", userID).Get(ctx)
}

func (r *PortfolioRepo) ListProjects(ctx context.Context, userID string) ([]datastore.Record, error) {
	return r.store.Table("projects").Select("*").Eq("user_id", userID).Get(ctx)
}

// AddExperience writes under the student's own token.
func (r *PortfolioRepo) AddExperience(ctx context.Context, callerToken string, row datastore.Record) ([]datastore.Record, error) {
	return r.store.Table("work_experiences").AsCaller(callerToken).Insert(ctx, row)
}
