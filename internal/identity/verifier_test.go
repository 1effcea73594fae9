package identity

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantID  string
	}{
		{
			name:   "valid_token",
			status: http.StatusOK,
			body:   `{"id":"u-1","email":"kid@school.test"}`,
			wantID: "u-1",
		},
		{
			name:    "ok_but_no_subject_id",
			status:  http.StatusOK,
			body:    `{"email":"kid@school.test"}`,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "provider_rejects",
			status:  http.StatusUnauthorized,
			body:    `{"message":"bad token"}`,
			wantErr: ErrAuthFailed,
		},
		{
			name:    "malformed_body",
			status:  http.StatusOK,
			body:    `{{{`,
			wantErr: ErrAuthFailed,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/auth/v1/user" {
					t.Errorf("unexpected path %q", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
					t.Errorf("caller token not forwarded, got %q", got)
				}
				if got := r.Header.Get("apikey"); got != "api-key" {
					t.Errorf("apikey header missing, got %q", got)
				}

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			v := NewVerifier(srv.URL, "api-key", 0)
			id, err := v.Verify(t.Context(), "tok-123")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got err %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id.SubjectID != tt.wantID {
				t.Fatalf("got subject %q, want %q", id.SubjectID, tt.wantID)
			}
			if id.Token != "tok-123" {
				t.Fatalf("identity must carry the original token, got %q", id.Token)
			}
		})
	}
}

func TestVerifyTransportFailure(t *testing.T) {
	v := NewVerifier("http://127.0.0.1:1", "api-key", 0)

	_, err := v.Verify(t.Context(), "tok-123")

	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("got %v, want ErrAuthFailed", err)
	}
}
