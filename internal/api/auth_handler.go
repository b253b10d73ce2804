package api

import (
	"net/http"

	"github.com/phrazzld/gatehouse/internal/api/middleware"
	"github.com/phrazzld/gatehouse/internal/api/shared"
	"github.com/phrazzld/gatehouse/internal/apperr"
	"github.com/phrazzld/gatehouse/internal/platform/logger"
	"github.com/phrazzld/gatehouse/internal/service/auth"
)

const (
	// placeholderDisplayName is issued for every login until users are looked up
	// from a store.
	placeholderDisplayName = "Test User"

	// unknownDisplayName is reported by Me when the token carries no name.
	unknownDisplayName = "Unknown User"

	logoutMessage = "logout endpoint"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	jwtService auth.JWTService
	bodyLimit  int64
}

// NewAuthHandler creates a new AuthHandler. bodyLimit caps request body size in bytes.
func NewAuthHandler(jwtService auth.JWTService, bodyLimit int64) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		bodyLimit:  bodyLimit,
	}
}

// Login handles POST /auth/login.
//
// The password is validated for shape only. No credential store exists yet, so
// any id is accepted and issued a token pair.
//
// @Summary      Login
// @Description  User Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Credentials"
// @Success      200      {object}  TokenPairResponse
// @Failure      400      {object}  shared.ErrorResponse
// @Failure      413      {object}  shared.ErrorResponse
// @Failure      500      {object}  shared.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := shared.DecodeJSON(w, r, &req, h.bodyLimit); err != nil {
		return err
	}
	if err := shared.ValidateRequest(&req); err != nil {
		return err
	}

	// TODO: verify req.Password against the user store once credential storage exists.
	identity := auth.Identity{ID: req.ID, Name: placeholderDisplayName}

	logger.FromContext(r.Context()).Info("login succeeded", "user_id", identity.ID)
	return h.issueTokens(w, r, identity)
}

// Refresh handles POST /auth/refresh, exchanging a refresh token for a new pair.
//
// @Summary      Refresh
// @Description  Exchange a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RefreshTokenRequest  true  "Refresh token"
// @Success      200      {object}  TokenPairResponse
// @Failure      400      {object}  shared.ErrorResponse
// @Failure      401      {object}  shared.ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) error {
	var req RefreshTokenRequest
	if err := shared.DecodeJSON(w, r, &req, h.bodyLimit); err != nil {
		return err
	}
	if err := shared.ValidateRequest(&req); err != nil {
		return err
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		if apperr.IsStructured(err) {
			return err
		}
		return apperr.Unauthorized("Invalid or expired refresh token").WithCause(err)
	}

	return h.issueTokens(w, r, auth.Identity{ID: claims.UserID, Name: placeholderDisplayName})
}

// Logout handles POST /auth/logout. Tokens are stateless, so there is nothing to revoke.
//
// @Summary      Logout
// @Description  User Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  shared.MessageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{Message: logoutMessage})
	return nil
}

// Me handles GET /auth/me. It must be mounted behind the auth middleware.
//
// @Summary      Me
// @Description  Get Current User Information
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MeResponse
// @Failure      401  {object}  shared.ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) error {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}

	name := identity.Name
	if name == "" {
		name = unknownDisplayName
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MeResponse{ID: identity.ID, Name: name})
	return nil
}

func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, identity auth.Identity) error {
	accessToken, err := h.jwtService.GenerateToken(r.Context(), identity)
	if err != nil {
		return apperr.InternalServerError("Failed to generate authentication token").WithCause(err)
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), identity.ID)
	if err != nil {
		return apperr.InternalServerError("Failed to generate refresh token").WithCause(err)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
	return nil
}
