package handlers

import (
	"amfb-directdebit/internal/core/domain"
	"amfb-directdebit/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ChoicesHandler serves the closed value sets the frontend builds its
// dropdowns from
type ChoicesHandler struct{}

// NewChoicesHandler creates a new choices handler
func NewChoicesHandler() *ChoicesHandler {
	return &ChoicesHandler{}
}

// Choices handles the value set listing
// @Summary List choices
// @Description List the closed value sets used across mandate forms
// @Tags Choices
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /choices [get]
func (h *ChoicesHandler) Choices(c *fiber.Ctx) error {
	return response.Success(c, "Choices retrieved successfully", fiber.Map{
		"roles":             domain.Roles,
		"branches":          domain.Branches,
		"bank_codes":        domain.BankCodes,
		"mandate_types":     domain.MandateTypes,
		"frequencies":       domain.Frequencies,
		"mandate_statuses":  domain.MandateStatuses,
		"biller_statuses":   domain.BillerStatuses,
		"workflow_statuses": domain.WorkflowStatuses,
	})
}
