// Package auth issues and verifies the signed tokens that identify API callers.
package auth

import (
	"context"
	"time"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Identity is the caller a token is issued for.
type Identity struct {
	// ID is the subject identifier. Required.
	ID string

	// Name is the display name. Optional; refresh tokens never carry it.
	Name string
}

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token carrying the identity's id and name.
	GenerateToken(ctx context.Context, identity Identity) (string, error)

	// ValidateToken verifies an access token and returns its claims. Refresh tokens
	// are rejected with ErrWrongTokenType.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed refresh token for the subject. Refresh
	// tokens have a longer lifetime and are only accepted by ValidateRefreshToken.
	GenerateRefreshToken(ctx context.Context, subjectID string) (string, error)

	// ValidateRefreshToken verifies a refresh token and returns its claims.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the decoded content of a verified token.
type Claims struct {
	// UserID is the subject identifier the token was issued for.
	UserID string `json:"id,omitempty"`

	// Name is the display name, empty when the token does not carry one.
	Name string `json:"name,omitempty"`

	// TokenType indicates the purpose of the token ("access" or "refresh").
	TokenType string `json:"type,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// Identity returns the caller identity described by the claims.
func (c *Claims) Identity() Identity {
	return Identity{ID: c.UserID, Name: c.Name}
}
