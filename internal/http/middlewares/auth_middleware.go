package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/launchpadhq/schoolhub/internal/domain/profile"
	"github.com/launchpadhq/schoolhub/internal/identity"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (identity.Identity, error)
}

type ProfileResolver interface {
	Resolve(ctx context.Context, subjectID string) (profile.Profile, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	profiles ProfileResolver
}

func NewAuthMiddleware(verifier TokenVerifier, profiles ProfileResolver) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, profiles: profiles}
}

const (
	ctxIdentityKey = "auth.identity"
	ctxProfileKey  = "auth.profile"
)

// RequireAuth runs the full chain: bearer extraction, remote token
// verification, then tenant profile resolution. A valid token without a
// profile is "not found", never "forbidden" — the caller is who they claim to
// be, they just have no standing here yet.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing or invalid Authorization header",
				},
			})
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing or invalid access token",
				},
			})
			return
		}

		ident, err := m.verifier.Verify(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Invalid or expired access token",
				},
			})
			return
		}

		p, err := m.profiles.Resolve(c.Request.Context(), ident.SubjectID)
		if err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"error": gin.H{
						"code":    "profile_not_found",
						"message": "No profile exists for this account",
					},
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "internal_error",
					"message": "Could not resolve profile",
				},
			})
			return
		}

		SetIdentity(c, ident)
		SetProfile(c, p)

		c.Next()
	}
}

// Helpers so handlers don't need to know the magic keys. The setters also let
// handler tests inject an authenticated context without a live verifier.

func SetIdentity(c *gin.Context, ident identity.Identity) {
	c.Set(ctxIdentityKey, ident)
}

func SetProfile(c *gin.Context, p profile.Profile) {
	c.Set(ctxProfileKey, p)
}

func IdentityFromContext(c *gin.Context) (identity.Identity, bool) {
	v, ok := c.Get(ctxIdentityKey)
	if !ok {
		return identity.Identity{}, false
	}
	ident, ok := v.(identity.Identity)
	return ident, ok
}

func ProfileFromContext(c *gin.Context) (profile.Profile, bool) {
	v, ok := c.Get(ctxProfileKey)
	if !ok {
		return profile.Profile{}, false
	}
	p, ok := v.(profile.Profile)
	return p, ok
}
