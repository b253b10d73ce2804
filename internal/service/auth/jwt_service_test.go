package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/gatehouse/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func testAuthConfig(secret string) config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   secret,
		TokenLifetimeMinutes:        15,
		RefreshTokenLifetimeMinutes: 7 * 24 * 60,
	}
}

// newTestService creates a service whose clock is fixed at now.
func newTestService(t *testing.T, secret string, now time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(testAuthConfig(secret), func() time.Time { return now })
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(testAuthConfig("short"))
	assert.Error(t, err, "secrets under 32 characters must be rejected")

	cfg := testAuthConfig(testSecret)
	cfg.TokenLifetimeMinutes = 0
	_, err = NewJWTService(cfg)
	assert.Error(t, err)

	svc, err := NewJWTService(testAuthConfig(testSecret))
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, testSecret, fixedTime)

	token, err := svc.GenerateToken(context.Background(), Identity{ID: "user123", Name: "Test User"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "user123", claims.UserID)
	assert.Equal(t, "user123", claims.Subject)
	assert.Equal(t, "Test User", claims.Name)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(15*time.Minute).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, Identity{ID: "user123", Name: "Test User"}, claims.Identity())
}

func TestGenerateTokenRequiresSubject(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, testSecret, fixedTime)

	_, err := svc.GenerateToken(context.Background(), Identity{})
	assert.ErrorIs(t, err, ErrMissingSubject)

	_, err = svc.GenerateRefreshToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestTokenIDsAreUnique(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, testSecret, fixedTime)
	ctx := context.Background()

	first, err := svc.GenerateToken(ctx, Identity{ID: "user123"})
	require.NoError(t, err)
	second, err := svc.GenerateToken(ctx, Identity{ID: "user123"})
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "tokens issued in the same second must differ by jti")
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	issuer := newTestService(t, testSecret, fixedTime)

	valid, err := issuer.GenerateToken(ctx, Identity{ID: "user123"})
	require.NoError(t, err)
	refresh, err := issuer.GenerateRefreshToken(ctx, "user123")
	require.NoError(t, err)
	foreign, err := newTestService(t, wrongSecret, fixedTime).GenerateToken(ctx, Identity{ID: "user123"})
	require.NoError(t, err)
	future, err := newTestService(t, testSecret, fixedTime.Add(time.Hour)).GenerateToken(ctx, Identity{ID: "user123"})
	require.NoError(t, err)
	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwtCustomClaims{
		UserID: "user123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		now     time.Time
		wantErr error
	}{
		{name: "valid token", token: valid, now: fixedTime},
		{name: "within clock skew after expiry", token: valid, now: fixedTime.Add(16 * time.Minute)},
		{name: "expired token", token: valid, now: fixedTime.Add(20 * time.Minute), wantErr: ErrExpiredToken},
		{name: "issued in the future", token: future, now: fixedTime, wantErr: ErrTokenNotYetValid},
		{name: "wrong signature", token: foreign, now: fixedTime, wantErr: ErrInvalidToken},
		{name: "malformed token", token: "not.a.token", now: fixedTime, wantErr: ErrInvalidToken},
		{name: "empty token", token: "", now: fixedTime, wantErr: ErrInvalidToken},
		{name: "unsigned token", token: noneAlg, now: fixedTime, wantErr: ErrInvalidToken},
		{name: "refresh token", token: refresh, now: fixedTime, wantErr: ErrWrongTokenType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, testSecret, tt.now)

			claims, err := svc.ValidateToken(ctx, tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user123", claims.UserID)
		})
	}
}

func TestValidateTokenAcceptsUntypedTokens(t *testing.T) {
	t.Parallel()

	// Tokens minted before the type claim existed carry only id and name.
	untyped, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtCustomClaims{
		UserID: "legacy",
		Name:   "Old Client",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	claims, err := newTestService(t, testSecret, fixedTime).ValidateToken(context.Background(), untyped)
	require.NoError(t, err)
	assert.Equal(t, "legacy", claims.UserID)
	assert.Equal(t, "Old Client", claims.Name)
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	issuer := newTestService(t, testSecret, fixedTime)

	refresh, err := issuer.GenerateRefreshToken(ctx, "user123")
	require.NoError(t, err)
	access, err := issuer.GenerateToken(ctx, Identity{ID: "user123", Name: "Test User"})
	require.NoError(t, err)
	foreign, err := newTestService(t, wrongSecret, fixedTime).GenerateRefreshToken(ctx, "user123")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		now     time.Time
		wantErr error
	}{
		{name: "valid refresh token", token: refresh, now: fixedTime.Add(6 * 24 * time.Hour)},
		{name: "expired refresh token", token: refresh, now: fixedTime.Add(8 * 24 * time.Hour), wantErr: ErrExpiredRefreshToken},
		{name: "wrong signature", token: foreign, now: fixedTime, wantErr: ErrInvalidRefreshToken},
		{name: "malformed", token: "garbage", now: fixedTime, wantErr: ErrInvalidRefreshToken},
		{name: "access token", token: access, now: fixedTime, wantErr: ErrWrongTokenType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, testSecret, tt.now)

			claims, err := svc.ValidateRefreshToken(ctx, tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user123", claims.UserID)
			assert.Equal(t, TokenTypeRefresh, claims.TokenType)
			assert.Empty(t, claims.Name, "refresh tokens do not carry a display name")
		})
	}
}
