package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Provisioner drives the identity provider's admin API with the service
// credential: account creation when an admin adds a student or teacher, and
// account removal after the matching profile row is gone.
type Provisioner struct {
	http       *resty.Client
	serviceKey string
}

func NewProvisioner(baseURL, serviceKey string, timeout time.Duration) *Provisioner {
	hc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0)

	return &Provisioner{http: hc, serviceKey: serviceKey}
}

func (p *Provisioner) CreateUser(ctx context.Context, email, password string) (string, error) {
	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("apikey", p.serviceKey).
		SetHeader("Authorization", "Bearer "+p.serviceKey).
		SetBody(map[string]any{
			"email":         email,
			"password":      password,
			"email_confirm": true,
		}).
		Post("/auth/v1/admin/users")

	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("create user: %s", strings.TrimSpace(resp.String()))
	}

	var body struct {
		ID string `json:"id"`
	}

	if err := json.Unmarshal(resp.Body(), &body); err != nil || body.ID == "" {
		return "", fmt.Errorf("create user: provider returned no user id")
	}

	return body.ID, nil
}

func (p *Provisioner) DeleteUser(ctx context.Context, userID string) error {
	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("apikey", p.serviceKey).
		SetHeader("Authorization", "Bearer "+p.serviceKey).
		Delete("/auth/v1/admin/users/" + userID)

	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("delete user: %s", resp.Status())
	}

	return nil
}
