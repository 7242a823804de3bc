package handlers

import (
	"errors"

	"amfb-directdebit/internal/core/domain"
	"amfb-directdebit/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// upstreamError maps mandate service call failures to the response envelope.
// Upstream 4xx and 5xx carry the status and message the processor returned;
// everything else collapses to the gateway-failure family.
func upstreamError(c *fiber.Ctx, err error) error {
	var ue *domain.UpstreamError
	switch {
	case errors.As(err, &ue):
		return response.Error(c, ue.StatusCode, ue.Message)
	case errors.Is(err, domain.ErrInvalidUpstreamResponse):
		return response.BadGateway(c, "Invalid response from mandate service")
	case errors.Is(err, domain.ErrLocalPersistenceFailure):
		return response.InternalServerError(c, "Mandate was created upstream but could not be saved locally, contact support")
	case errors.Is(err, domain.ErrCredentialUnavailable):
		return response.BadGateway(c, "Unable to authenticate with mandate service")
	default:
		return response.InternalServerError(c, "Request failed")
	}
}
