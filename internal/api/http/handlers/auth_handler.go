package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gp-maquinas/maintenance-service/internal/api/dto"
	"github.com/gp-maquinas/maintenance-service/internal/auth"
	"github.com/gp-maquinas/maintenance-service/internal/domain"
	"github.com/gp-maquinas/maintenance-service/internal/service"
	apperrors "github.com/gp-maquinas/maintenance-service/pkg/util"
)

// AuthHandler exposes the login/verify/logout/profile endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	result, err := h.auth.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Success: true,
		Token:   result.Token,
		User:    userView(result.Identity, result.Username),
	})
}

// Verify handles GET /auth/verify. Token decoding happens here rather than
// behind the shared middleware so the username claim survives into the view.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}
	identity, claims, err := h.auth.Verify(token)
	if err != nil {
		return auth.MapTokenError(err)
	}
	return c.JSON(dto.VerifyResponse{
		Valid: true,
		User:  userView(identity, claims.Username),
	})
}

// Logout handles POST /auth/logout. Stateless tokens cannot be revoked; the
// call succeeds when the token was valid and the client discards its copy.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(token); err != nil {
		return auth.MapTokenError(err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	store, err := h.auth.Profile(c.Context(), identity)
	if err != nil {
		return err
	}

	resp := dto.ProfileResponse{UserView: userView(identity, "")}
	if store != nil {
		resp.StoreName = store.Name
		resp.Region = store.Region
	}
	return c.JSON(resp)
}

// ChangePassword handles POST /auth/password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current and new password required", nil)
	}

	if err := h.auth.ChangePassword(c.Context(), identity, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// DeactivateUser handles POST /auth/users/:id/deactivate.
func (h *AuthHandler) DeactivateUser(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if err := h.auth.DeactivateUser(c.Context(), identity, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func bearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", apperrors.NewUnauthenticated("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.NewUnauthenticated("invalid authorization header")
	}
	return parts[1], nil
}

func userView(identity domain.Identity, username string) dto.UserView {
	view := dto.UserView{
		ID:       identity.SubjectID,
		Username: username,
		Role:     string(identity.Role),
		FullName: identity.DisplayName,
	}
	if storeID, ok := identity.StoreAffiliation(); ok {
		view.Store = &storeID
		if view.Username == "" {
			view.Username = storeID
		}
	}
	return view
}
