package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/gatehouse/internal/api/errorhandler"
	"github.com/phrazzld/gatehouse/internal/api/middleware"
	"github.com/phrazzld/gatehouse/internal/apperr"
	"github.com/phrazzld/gatehouse/internal/config"
	"github.com/phrazzld/gatehouse/internal/mocks"
	"github.com/phrazzld/gatehouse/internal/platform/logger"
	"github.com/phrazzld/gatehouse/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-that-is-32-chars-long"

func newJWTService(t *testing.T) auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   testSecret,
		TokenLifetimeMinutes:        15,
		RefreshTokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)
	return svc
}

// protected returns a guarded handler that records the identity it sees and
// answers 200 {"ok":true}.
func protected(t *testing.T, svc auth.JWTService) (http.Handler, *auth.Identity) {
	t.Helper()
	log, _ := logger.NewTestLogger()
	funnel := errorhandler.New(log, nil)
	guard := middleware.NewAuthMiddleware(svc, funnel.Handle)

	seen := &auth.Identity{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.GetIdentity(r)
		require.True(t, ok)
		*seen = id
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	return errorhandler.Track(guard.Authenticate(next)), seen
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthenticateRejections(t *testing.T) {
	t.Parallel()

	svc := newJWTService(t)
	refresh, err := svc.GenerateRefreshToken(context.Background(), "user123")
	require.NoError(t, err)
	valid, err := svc.GenerateToken(context.Background(), auth.Identity{ID: "user123"})
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantMessage string
	}{
		{name: "missing header", header: "", wantMessage: middleware.MsgMissingHeader},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantMessage: middleware.MsgInvalidFormat},
		{name: "lowercase bearer", header: "bearer " + valid, wantMessage: middleware.MsgInvalidFormat},
		{name: "bearer without space", header: "Bearer" + valid, wantMessage: middleware.MsgInvalidFormat},
		{name: "garbage token", header: "Bearer not-a-jwt", wantMessage: middleware.MsgInvalidToken},
		{name: "empty token", header: "Bearer ", wantMessage: middleware.MsgInvalidToken},
		{name: "double space", header: "Bearer  " + valid, wantMessage: middleware.MsgInvalidToken},
		{name: "refresh token", header: "Bearer " + refresh, wantMessage: middleware.MsgInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := protected(t, svc)

			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, float64(401), body["statusCode"])
			assert.Equal(t, "Unauthorized", body["error"])
			assert.Equal(t, tt.wantMessage, body["message"])
		})
	}
}

func TestAuthenticateDoesNotLeakVerificationDetail(t *testing.T) {
	t.Parallel()

	reasons := []error{auth.ErrExpiredToken, auth.ErrInvalidToken, auth.ErrTokenNotYetValid, errors.New("crypto/hmac: signature mismatch")}

	for _, reason := range reasons {
		t.Run(reason.Error(), func(t *testing.T) {
			handler, _ := protected(t, &mocks.MockJWTService{ValidateErr: reason})

			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			req.Header.Set("Authorization", "Bearer whatever")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, middleware.MsgInvalidToken, decodeError(t, rec)["message"])
			assert.NotContains(t, rec.Body.String(), reason.Error())
		})
	}
}

func TestAuthenticatePassesStructuredErrorsThrough(t *testing.T) {
	t.Parallel()

	structured := apperr.ServiceUnavailable("Token revocation list unavailable")
	handler, _ := protected(t, &mocks.MockJWTService{ValidateErr: structured})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Service Unavailable", body["error"])
	assert.Equal(t, "Token revocation list unavailable", body["message"])
}

func TestAuthenticateValidToken(t *testing.T) {
	t.Parallel()

	svc := newJWTService(t)
	token, err := svc.GenerateToken(context.Background(), auth.Identity{ID: "user123", Name: "Test User"})
	require.NoError(t, err)

	handler, seen := protected(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String(), "the guard must not alter a successful response")
	assert.Equal(t, auth.Identity{ID: "user123", Name: "Test User"}, *seen)
}

func TestAuthenticateRejectsClaimsWithoutSubject(t *testing.T) {
	t.Parallel()

	handler, _ := protected(t, &mocks.MockJWTService{Claims: &auth.Claims{}})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetIdentityWithoutGuard(t *testing.T) {
	t.Parallel()

	_, ok := middleware.GetIdentity(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}
