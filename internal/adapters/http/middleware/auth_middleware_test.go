package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"amfb-directdebit/internal/config"
	"amfb-directdebit/internal/core/domain"
	"amfb-directdebit/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

func testApp(cfg *config.Config, roles ...domain.Role) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		AuthMiddleware(cfg),
		RequireRoles(roles...),
		func(c *fiber.Ctx) error {
			p := Principal(c)
			return c.JSON(fiber.Map{"email": p.Email, "role": string(p.Role)})
		})
	return app
}

func bearerToken(t *testing.T, cfg *config.Config, role string) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken("user-1", "user@dap-alertgroup.com.ng", "Test User", role, cfg.JWT.Secret, cfg.JWT.AccessTokenMins)
	require.NoError(t, err)
	return token
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	cfg := testConfig()
	app := testApp(cfg, domain.RoleIT)

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	cfg := testConfig()
	app := testApp(cfg, domain.RoleIT)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRolesForbidden(t *testing.T) {
	cfg := testConfig()
	app := testApp(cfg, domain.RoleCredit, domain.RoleIT)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, cfg, "CSO"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRolesAllowed(t *testing.T) {
	cfg := testConfig()
	app := testApp(cfg, domain.RoleCredit, domain.RoleIT)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, cfg, "IT"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRolesEmptyListAllowsAnyAuthenticated(t *testing.T) {
	cfg := testConfig()
	app := testApp(cfg)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, cfg, "OTHERS"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareReadsCookie(t *testing.T) {
	cfg := testConfig()
	app := testApp(cfg, domain.RoleIT)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: bearerToken(t, cfg, "IT")})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
