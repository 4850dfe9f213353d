package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gp-maquinas/maintenance-service/internal/domain"
	apperrors "github.com/gp-maquinas/maintenance-service/pkg/util"
)

const identityKey = "auth_identity"

// Middleware validates bearer tokens and stores the resulting identity on
// the request. Verification is a pure computation; no storage is consulted.
type Middleware struct {
	codec *TokenCodec
}

// NewMiddleware constructs the middleware around a codec.
func NewMiddleware(codec *TokenCodec) *Middleware {
	return &Middleware{codec: codec}
}

// Handle enforces authentication for protected routes. Absent, malformed and
// expired tokens are 401; a signature mismatch is 403.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	claims, err := m.codec.Decode(parts[1])
	if err != nil {
		return MapTokenError(err)
	}

	c.Locals(identityKey, claims.Identity())
	return c.Next()
}

// MapTokenError translates codec failures into the response taxonomy.
func MapTokenError(err error) error {
	switch {
	case errors.Is(err, ErrTokenSignature):
		return apperrors.NewForbidden("token signature invalid")
	case errors.Is(err, ErrTokenExpired):
		return apperrors.NewUnauthenticated("token expired")
	default:
		return apperrors.NewUnauthenticated("invalid token")
	}
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return domain.Identity{}, false
	}
	identity, ok := val.(domain.Identity)
	return identity, ok
}

// RequireAdmin gates a route to admin identities.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if !identity.IsAdmin() {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}

// RequireStoreAccess gates a route on the store code found in the request
// path. Routes whose store comes from the body call Authorize in the handler
// instead.
func RequireStoreAccess(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if Authorize(identity, c.Params(param)) != Allow {
			return apperrors.NewForbidden("access to this store denied")
		}
		return c.Next()
	}
}
