package api

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	// ID is the user id. It becomes the token subject, so it may not be empty.
	ID       string `json:"id"       validate:"required"       example:"user123"`
	Password string `json:"password" validate:"required,min=6" example:"password123" minLength:"6"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	// RefreshToken is the refresh token issued by a previous login or refresh
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenPairResponse defines the successful response for login and refresh.
type TokenPairResponse struct {
	// AccessToken is the short-lived token used for API authorization
	AccessToken string `json:"accessToken"`

	// RefreshToken is the long-lived token used to obtain a new pair
	RefreshToken string `json:"refreshToken"`
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HealthResponse reports liveness and the state of optional dependencies.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
