package handlers

import (
	"strings"

	"amfb-directdebit/internal/adapters/http/middleware"
	"amfb-directdebit/internal/core/domain"
	"amfb-directdebit/internal/core/services"
	"amfb-directdebit/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BillerHandler handles biller and product endpoints
type BillerHandler struct {
	billerService *services.BillerService
}

// NewBillerHandler creates a new biller handler
func NewBillerHandler(billerService *services.BillerService) *BillerHandler {
	return &BillerHandler{billerService: billerService}
}

// CreateProductRequest represents a product creation request body
type CreateProductRequest struct {
	ProductName string `json:"product_name"`
}

// DisableProductRequest represents a product disable request body
type DisableProductRequest struct {
	ProductID string `json:"product_id"`
}

// CreateBiller handles biller registration
// @Summary Create biller
// @Description Register the biller with the mandate service
// @Tags Billers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BillerInput true "Biller data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /billers [post]
func (h *BillerHandler) CreateBiller(c *fiber.Ctx) error {
	var req services.BillerInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name == "" {
		return response.BadRequest(c, "Biller name is required")
	}
	if len(req.AccountNumber) != 10 {
		return response.BadRequest(c, "Account number must be 10 digits")
	}
	if !domain.ValidBankCode(req.BankCode) {
		return response.BadRequest(c, "Invalid bank code")
	}

	data, err := h.billerService.CreateBiller(c.Context(), middleware.Principal(c), req)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Created(c, "Biller created successfully", data)
}

// UpdateBiller handles biller update
// @Summary Update biller
// @Description Update biller details upstream
// @Tags Billers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateBillerInput true "Biller data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /billers [put]
func (h *BillerHandler) UpdateBiller(c *fiber.Ctx) error {
	var req services.UpdateBillerInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.ID <= 0 {
		return response.BadRequest(c, "Biller ID is required")
	}
	if req.Status != "" && !domain.ValidBillerStatus(req.Status) {
		return response.BadRequest(c, "Invalid biller status")
	}

	data, err := h.billerService.UpdateBiller(c.Context(), middleware.Principal(c), req)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Biller updated successfully", data)
}

// CreateProduct handles product creation
// @Summary Create product
// @Description Create a product under the biller
// @Tags Billers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateProductRequest true "Product data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /products [post]
func (h *BillerHandler) CreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	productName := strings.TrimSpace(req.ProductName)
	if productName == "" {
		return response.BadRequest(c, "Product name is required")
	}

	data, err := h.billerService.CreateProduct(c.Context(), middleware.Principal(c), productName)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Created(c, "Product created successfully", data)
}

// GetProducts handles product listing
// @Summary List products
// @Description List the biller's products
// @Tags Billers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /products [get]
func (h *BillerHandler) GetProducts(c *fiber.Ctx) error {
	data, err := h.billerService.GetProducts(c.Context())
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Products retrieved successfully", data)
}

// DisableProduct handles product disabling
// @Summary Disable product
// @Description Disable a product under the biller
// @Tags Billers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DisableProductRequest true "Product to disable"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /products/disable [post]
func (h *BillerHandler) DisableProduct(c *fiber.Ctx) error {
	var req DisableProductRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return response.BadRequest(c, "Product ID is required")
	}

	data, err := h.billerService.DisableProduct(c.Context(), middleware.Principal(c), productID)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Product disabled successfully", data)
}
