package handlers

import (
	"amfb-directdebit/internal/core/services"
	"amfb-directdebit/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TokenHandler exposes the cached upstream credential for diagnostics
type TokenHandler struct {
	tokenService *services.TokenService
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(tokenService *services.TokenService) *TokenHandler {
	return &TokenHandler{tokenService: tokenService}
}

// Token handles credential retrieval
// @Summary Get API token
// @Description Acquire the current mandate service bearer token
// @Tags Token
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /token [get]
func (h *TokenHandler) Token(c *fiber.Ctx) error {
	token, err := h.tokenService.Acquire(c.Context())
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Token retrieved successfully", fiber.Map{
		"access_token": token,
	})
}
