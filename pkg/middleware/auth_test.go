package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkamel/groupshare/pkg/auth"
)

func TestAuth(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	tests := []struct {
		name       string
		setupAuth  func(*http.Request)
		wantStatus int
	}{
		{
			name: "valid token",
			setupAuth: func(r *http.Request) {
				token, err := issuer.Generate(42)
				require.NoError(t, err)
				r.Header.Set("Authorization", "Bearer "+token)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing auth header",
			setupAuth:  func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "invalid auth format",
			setupAuth: func(r *http.Request) {
				r.Header.Set("Authorization", "Token abc")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "invalid token",
			setupAuth: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer invalid.token.here")
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "token signed with another secret",
			setupAuth: func(r *http.Request) {
				other := auth.NewTokenIssuer("other-secret", time.Hour)
				token, err := other.Generate(42)
				require.NoError(t, err)
				r.Header.Set("Authorization", "Bearer "+token)
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Use(Auth(issuer))
			r.Get("/test", func(w http.ResponseWriter, req *http.Request) {
				userID, ok := GetUserID(req.Context())
				if !ok {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				assert.Equal(t, int64(42), userID)
				w.WriteHeader(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/test", nil)
			tt.setupAuth(req)

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestGetUserIDMissing(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	_, ok := GetUserID(req.Context())
	assert.False(t, ok)
}
