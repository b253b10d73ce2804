package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/phrazzld/gatehouse/internal/api/shared"
	"github.com/phrazzld/gatehouse/internal/apperr"
	"github.com/phrazzld/gatehouse/internal/platform/logger"
	"github.com/phrazzld/gatehouse/internal/redact"
	"github.com/phrazzld/gatehouse/internal/service/auth"
)

// bearerPrefix is matched case-sensitively, with exactly one space.
const bearerPrefix = "Bearer "

// Messages returned to clients for rejected credentials.
const (
	MsgMissingHeader = "Authorization header required"
	MsgInvalidFormat = "Invalid authorization format"
	MsgInvalidToken  = "Invalid or expired token"
)

// ErrorFunc writes the response for a failure. In the server it is the error
// funnel's Handle method.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
	onError    ErrorFunc
}

// NewAuthMiddleware creates a new AuthMiddleware. Rejections are passed to onError
// and never written directly.
func NewAuthMiddleware(jwtService auth.JWTService, onError ErrorFunc) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		onError:    onError,
	}
}

// Authenticate validates the bearer token in the Authorization header and adds the
// caller's identity to the request context. On success the request reaches next
// unchanged apart from its context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.verify(r)
		if err != nil {
			m.onError(w, r, err)
			return
		}

		ctx := WithIdentity(r.Context(), identity)
		ctx = logger.WithLogger(ctx, logger.FromContext(ctx).With("user_id", identity.ID))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// verify returns the identity carried by the request's bearer token. Every
// verification failure collapses into one Unauthorized error, except failures that
// are already structured errors, which pass through unchanged.
func (m *AuthMiddleware) verify(r *http.Request) (auth.Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Identity{}, apperr.Unauthorized(MsgMissingHeader)
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return auth.Identity{}, apperr.Unauthorized(MsgInvalidFormat)
	}

	claims, err := m.jwtService.ValidateToken(r.Context(), header[len(bearerPrefix):])
	if err != nil {
		if apperr.IsStructured(err) {
			return auth.Identity{}, err
		}
		logger.FromContext(r.Context()).Debug("bearer token rejected",
			"error", redact.Error(err))
		return auth.Identity{}, apperr.Unauthorized(MsgInvalidToken).WithCause(err)
	}
	if claims == nil || claims.UserID == "" {
		return auth.Identity{}, apperr.Unauthorized(MsgInvalidToken)
	}

	return claims.Identity(), nil
}

// WithIdentity adds the caller's identity to the context.
func WithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, shared.IdentityContextKey, identity)
}

// GetIdentity extracts the caller's identity from the request context.
// Returns the identity and a boolean indicating if it was found.
func GetIdentity(r *http.Request) (auth.Identity, bool) {
	identity, ok := r.Context().Value(shared.IdentityContextKey).(auth.Identity)
	return identity, ok
}
