package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/launchpadhq/schoolhub/internal/domain/profile"
	"github.com/launchpadhq/schoolhub/internal/http/middlewares"
	"github.com/launchpadhq/schoolhub/internal/identity"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verifyFn func(ctx context.Context, token string) (identity.Identity, error)
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (identity.Identity, error) {
	if f.verifyFn != nil {
		return f.verifyFn(ctx, token)
	}
	return identity.Identity{}, identity.ErrInvalidToken
}

type fakeResolver struct {
	resolveFn func(ctx context.Context, subjectID string) (profile.Profile, error)
}

func (f *fakeResolver) Resolve(ctx context.Context, subjectID string) (profile.Profile, error) {
	if f.resolveFn != nil {
		return f.resolveFn(ctx, subjectID)
	}
	return profile.Profile{}, profile.ErrNotFound
}

func runChain(t *testing.T, m *middlewares.AuthMiddleware, authHeader string, extra ...gin.HandlerFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	w := httptest.NewRecorder()
	r := gin.New()

	reached := false
	chain := append([]gin.HandlerFunc{m.RequireAuth()}, extra...)
	chain = append(chain, func(c *gin.Context) {
		reached = true
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/protected", chain...)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)

	return w, reached
}

func TestRequireAuth(t *testing.T) {
	valid := &fakeVerifier{verifyFn: func(ctx context.Context, token string) (identity.Identity, error) {
		return identity.Identity{SubjectID: "u-1", Email: "u@example.com", Token: token}, nil
	}}
	resolved := &fakeResolver{resolveFn: func(ctx context.Context, subjectID string) (profile.Profile, error) {
		return profile.Profile{ID: subjectID, SchoolID: "school-1", Role: profile.RoleTeacher}, nil
	}}

	tests := []struct {
		name       string
		verifier   middlewares.TokenVerifier
		resolver   middlewares.ProfileResolver
		header     string
		wantStatus int
	}{
		{
			name:       "missing_header",
			verifier:   valid,
			resolver:   resolved,
			header:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not_bearer",
			verifier:   valid,
			resolver:   resolved,
			header:     "Basic abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:     "invalid_token",
			verifier: &fakeVerifier{},
			resolver: resolved,
			header:   "Bearer bad",

			wantStatus: http.StatusUnauthorized,
		},
		{
			// valid token, no tenant profile: a distinct outcome from both
			// unauthorized and forbidden
			name:       "no_profile",
			verifier:   valid,
			resolver:   &fakeResolver{},
			header:     "Bearer good",
			wantStatus: http.StatusNotFound,
		},
		{
			name:     "resolver_store_error",
			verifier: valid,
			resolver: &fakeResolver{resolveFn: func(ctx context.Context, subjectID string) (profile.Profile, error) {
				return profile.Profile{}, errors.New("store unavailable")
			}},
			header:     "Bearer good",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "authorized",
			verifier:   valid,
			resolver:   resolved,
			header:     "Bearer good",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			m := middlewares.NewAuthMiddleware(tt.verifier, tt.resolver)

			w, reached := runChain(t, m, tt.header)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK && !reached {
				t.Fatalf("handler should have run")
			}
			if tt.wantStatus != http.StatusOK && reached {
				t.Fatalf("handler must not run after an aborted chain")
			}
		})
	}
}

func TestRequireRoleGatesBySet(t *testing.T) {
	verifier := &fakeVerifier{verifyFn: func(ctx context.Context, token string) (identity.Identity, error) {
		return identity.Identity{SubjectID: "u-1", Token: token}, nil
	}}
	asTeacher := &fakeResolver{resolveFn: func(ctx context.Context, subjectID string) (profile.Profile, error) {
		return profile.Profile{ID: subjectID, Role: profile.RoleTeacher}, nil
	}}

	m := middlewares.NewAuthMiddleware(verifier, asTeacher)

	w, reached := runChain(t, m, "Bearer good", m.RequireRole(profile.RoleTeacher, profile.RoleAdmin))
	if w.Code != http.StatusOK || !reached {
		t.Fatalf("teacher should pass a teacher-or-admin gate, status = %d", w.Code)
	}

	w, reached = runChain(t, m, "Bearer good", m.RequireRole(profile.RoleAdmin))
	if w.Code != http.StatusForbidden || reached {
		t.Fatalf("teacher must not pass an admin-only gate, status = %d", w.Code)
	}

	// empty allowed set admits nobody
	w, reached = runChain(t, m, "Bearer good", m.RequireRole())
	if w.Code != http.StatusForbidden || reached {
		t.Fatalf("empty role set must reject, status = %d", w.Code)
	}
}
