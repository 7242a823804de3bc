package middleware

import (
	"strings"

	"amfb-directdebit/internal/config"
	"amfb-directdebit/internal/core/domain"
	"amfb-directdebit/internal/pkg/jwt"
	"amfb-directdebit/internal/pkg/policy"
	"amfb-directdebit/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Set user info in context
		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("fullName", claims.FullName)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// RequireRoles creates role-based authorization middleware. Must run after
// AuthMiddleware. An empty role list only requires authentication.
func RequireRoles(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := Principal(c)
		if !principal.Authenticated() {
			return response.Unauthorized(c, "Unauthorized")
		}

		if !policy.Authorize(principal, allowedRoles...) {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// Principal builds the caller identity from the request context. A zero
// principal means the request never passed AuthMiddleware.
func Principal(c *fiber.Ctx) domain.Principal {
	id, _ := c.Locals("userID").(string)
	email, _ := c.Locals("email").(string)
	fullName, _ := c.Locals("fullName").(string)
	role, _ := c.Locals("role").(string)

	return domain.Principal{
		ID:       id,
		Email:    email,
		FullName: fullName,
		Role:     domain.Role(role),
	}
}
