package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrInvalidToken: the provider answered but the token is no good (or the
	// answer carried no stable subject id, which is just as useless).
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrAuthFailed: we could not get a usable answer out of the provider.
	ErrAuthFailed = errors.New("authentication failed")
)

// Identity is what a verified bearer token resolves to. The raw token rides
// along so downstream data-store calls can run under the caller's row-level
// security context instead of the service credential.
type Identity struct {
	SubjectID string
	Email     string
	Token     string
}

// Verifier delegates token validation to the identity provider; no local
// decoding, no caching — every request re-verifies.
type Verifier struct {
	http   *resty.Client
	apiKey string
}

func NewVerifier(baseURL, apiKey string, timeout time.Duration) *Verifier {
	hc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0)

	return &Verifier{http: hc, apiKey: apiKey}
}

func (v *Verifier) Verify(ctx context.Context, token string) (Identity, error) {
	resp, err := v.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("apikey", v.apiKey).
		Get("/auth/v1/user")

	if err != nil {
		return Identity{}, ErrAuthFailed
	}
	if resp.StatusCode() != http.StatusOK {
		return Identity{}, ErrAuthFailed
	}

	var body struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}

	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return Identity{}, ErrAuthFailed
	}
	if body.ID == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{SubjectID: body.ID, Email: body.Email, Token: token}, nil
}
