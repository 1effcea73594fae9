package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/launchpadhq/schoolhub/internal/domain/profile"
)

var ErrForbidden = errors.New("forbidden")

// ProfileSource resolves a verified subject id to its tenant profile. The
// lookup runs under the service credential; "no profile" must surface as
// profile.ErrNotFound, never as a permission error, because the recovery
// paths differ (provisioning vs access).
type ProfileSource interface {
	GetBySubject(ctx context.Context, subjectID string) (profile.Profile, error)
}

type Resolver struct {
	profiles ProfileSource
}

func NewResolver(profiles ProfileSource) *Resolver {
	return &Resolver{profiles: profiles}
}

func (r *Resolver) Resolve(ctx context.Context, subjectID string) (profile.Profile, error) {
	return r.profiles.GetBySubject(ctx, subjectID)
}

// RequireRole is the role gate: one membership check against the whole
// allowed set. An empty set admits nobody. Callers must have already
// resolved the profile — the two checks stay sequential on purpose.
func RequireRole(p profile.Profile, allowed ...profile.Role) error {
	for _, role := range allowed {
		if p.Role == role {
			return nil
		}
	}

	return fmt.Errorf("%w: requires %s role", ErrForbidden, describeRoles(allowed))
}

func describeRoles(roles []profile.Role) string {
	if len(roles) == 0 {
		return "no permitted"
	}

	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}

	return strings.Join(names, " or ")
}
