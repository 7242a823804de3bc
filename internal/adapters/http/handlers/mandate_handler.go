package handlers

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"amfb-directdebit/internal/adapters/http/middleware"
	"amfb-directdebit/internal/core/domain"
	"amfb-directdebit/internal/core/services"
	"amfb-directdebit/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// maxImageSize caps the mandate image upload at 1MB
const maxImageSize = 1 << 20

// dateLayout is the date format accepted on mandate requests
const dateLayout = "2006-01-02"

// MandateHandler handles mandate endpoints
type MandateHandler struct {
	mandateService *services.MandateService
}

// NewMandateHandler creates a new mandate handler
func NewMandateHandler(mandateService *services.MandateService) *MandateHandler {
	return &MandateHandler{mandateService: mandateService}
}

// EMandateRequest represents an e-mandate creation request body
type EMandateRequest struct {
	Branch         string `json:"branch"`
	ProductID      int    `json:"product_id"`
	AccountNumber  string `json:"account_number"`
	BankCode       string `json:"bank_code"`
	PayerName      string `json:"payer_name"`
	PayerEmail     string `json:"payer_email"`
	PayerAddress   string `json:"payer_address"`
	AccountName    string `json:"account_name"`
	Amount         int    `json:"amount"`
	MandateType    string `json:"mandate_type"`
	Frequency      string `json:"frequency"`
	Narration      string `json:"narration"`
	PhoneNumber    string `json:"phone_number"`
	SubscriberCode string `json:"subscriber_code"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
}

// UpdateMandateStatusRequest represents a status update request body
type UpdateMandateStatusRequest struct {
	MandateCode   string `json:"mandate_code"`
	ProductID     int    `json:"product_id"`
	AccountNumber string `json:"account_number"`
	MandateStatus string `json:"mandate_status"`
}

// ProcessMandateRequest represents a workflow processing request body
type ProcessMandateRequest struct {
	MandateCode    string `json:"mandate_code"`
	WorkflowStatus string `json:"workflow_status"`
}

// MandateStatusRequest represents a status enquiry request body
type MandateStatusRequest struct {
	MandateCode string `json:"mandate_code"`
}

// FetchMandatesRequest represents an upstream mandate list request body
type FetchMandatesRequest struct {
	AccountNumber string `json:"account_number"`
	Page          int    `json:"page"`
	PageSize      int    `json:"page_size"`
}

// CreatePaperMandate handles paper mandate submission
// @Summary Create paper mandate
// @Description Submit a paper direct-debit mandate with its scanned image
// @Tags Mandates
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /mandates/paper [post]
func (h *MandateHandler) CreatePaperMandate(c *fiber.Ctx) error {
	input, image, errMsg := h.parsePaperForm(c)
	if errMsg != "" {
		return response.BadRequest(c, errMsg)
	}

	data, err := h.mandateService.CreatePaperMandate(c.Context(), middleware.Principal(c), *input, *image)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Created(c, "Mandate created successfully", data)
}

// CreateBalanceEnquiry handles balance-enquiry mandate submission
// @Summary Create balance enquiry mandate
// @Description Submit a paper balance-enquiry mandate with its scanned image
// @Tags Mandates
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /mandates/balance-enquiry [post]
func (h *MandateHandler) CreateBalanceEnquiry(c *fiber.Ctx) error {
	input, image, errMsg := h.parsePaperForm(c)
	if errMsg != "" {
		return response.BadRequest(c, errMsg)
	}

	data, err := h.mandateService.CreateBalanceEnquiry(c.Context(), middleware.Principal(c), *input, *image)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Created(c, "Balance enquiry mandate created successfully", data)
}

// CreateEMandate handles electronic mandate submission
// @Summary Create e-mandate
// @Description Submit an electronic mandate (no image upload)
// @Tags Mandates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EMandateRequest true "E-mandate data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /mandates/e-mandate [post]
func (h *MandateHandler) CreateEMandate(c *fiber.Ctx) error {
	var req EMandateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.MandateType == "" {
		return response.BadRequest(c, "Mandate type is required")
	}
	if req.Frequency == "" {
		return response.BadRequest(c, "Frequency is required")
	}

	input, errMsg := req.toInput()
	if errMsg != "" {
		return response.BadRequest(c, errMsg)
	}

	data, err := h.mandateService.CreateEMandate(c.Context(), middleware.Principal(c), *input)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Created(c, "E-mandate created successfully", data)
}

// MandateStatus handles mandate status enquiry
// @Summary Mandate status
// @Description Query the current upstream status of a mandate
// @Tags Mandates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MandateStatusRequest true "Mandate code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /mandates/status [post]
func (h *MandateHandler) MandateStatus(c *fiber.Ctx) error {
	var req MandateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	mandateCode := strings.TrimSpace(req.MandateCode)
	if mandateCode == "" {
		return response.BadRequest(c, "Mandate code is required")
	}

	data, err := h.mandateService.MandateStatus(c.Context(), mandateCode)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Mandate status retrieved successfully", data)
}

// UpdateMandateStatus handles mandate status update
// @Summary Update mandate status
// @Description Update a mandate's status upstream
// @Tags Mandates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateMandateStatusRequest true "Status update data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /mandates/status/update [post]
func (h *MandateHandler) UpdateMandateStatus(c *fiber.Ctx) error {
	var req UpdateMandateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.MandateCode == "" {
		return response.BadRequest(c, "Mandate code is required")
	}
	if req.AccountNumber == "" {
		return response.BadRequest(c, "Account number is required")
	}
	if !domain.ValidMandateStatus(req.MandateStatus) {
		return response.BadRequest(c, "Invalid mandate status")
	}

	input := services.UpdateMandateStatusInput{
		MandateCode:   req.MandateCode,
		ProductID:     req.ProductID,
		AccountNumber: req.AccountNumber,
		MandateStatus: req.MandateStatus,
	}

	data, err := h.mandateService.UpdateMandateStatus(c.Context(), middleware.Principal(c), input)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Mandate status updated successfully", data)
}

// ProcessMandate handles biller workflow processing
// @Summary Process mandate
// @Description Move a mandate through the biller approval workflow
// @Tags Mandates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ProcessMandateRequest true "Workflow data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /mandates/process [post]
func (h *MandateHandler) ProcessMandate(c *fiber.Ctx) error {
	var req ProcessMandateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.MandateCode == "" {
		return response.BadRequest(c, "Mandate code is required")
	}
	if !domain.ValidWorkflowStatus(req.WorkflowStatus) {
		return response.BadRequest(c, "Invalid workflow status")
	}

	input := services.ProcessMandateInput{
		MandateCode:    req.MandateCode,
		WorkflowStatus: req.WorkflowStatus,
	}

	data, err := h.mandateService.ProcessMandate(c.Context(), middleware.Principal(c), input)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Mandate processed successfully", data)
}

// FetchMandates handles upstream mandate listing
// @Summary Fetch mandates
// @Description Query the upstream mandate list for an account
// @Tags Mandates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body FetchMandatesRequest true "Fetch parameters"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /mandates/fetch [post]
func (h *MandateHandler) FetchMandates(c *fiber.Ctx) error {
	var req FetchMandatesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	accountNumber := strings.TrimSpace(req.AccountNumber)
	if accountNumber == "" {
		return response.BadRequest(c, "Account number is required")
	}

	data, err := h.mandateService.FetchMandates(c.Context(), accountNumber, req.Page, req.PageSize)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Mandates retrieved successfully", data)
}

// ListLocal handles local mandate listing
// @Summary List local mandates
// @Description List the locally persisted mandate projections
// @Tags Mandates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /mandates [get]
func (h *MandateHandler) ListLocal(c *fiber.Ctx) error {
	mandates, err := h.mandateService.ListLocal(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list mandates")
	}

	return response.Success(c, "Mandates retrieved successfully", fiber.Map{
		"mandates": mandates,
	})
}

// parsePaperForm reads and validates the multipart form shared by the paper
// mandate and balance enquiry endpoints. Returns a human-readable error
// message on validation failure.
func (h *MandateHandler) parsePaperForm(c *fiber.Ctx) (*services.MandateInput, *services.FileUpload, string) {
	req := EMandateRequest{
		Branch:         c.FormValue("branch"),
		AccountNumber:  c.FormValue("account_number"),
		BankCode:       c.FormValue("bank_code"),
		PayerName:      c.FormValue("payer_name"),
		PayerEmail:     c.FormValue("payer_email"),
		PayerAddress:   c.FormValue("payer_address"),
		AccountName:    c.FormValue("account_name"),
		Narration:      c.FormValue("narration"),
		PhoneNumber:    c.FormValue("phone_number"),
		SubscriberCode: c.FormValue("subscriber_code"),
		StartDate:      c.FormValue("start_date"),
		EndDate:        c.FormValue("end_date"),
	}
	req.ProductID, _ = strconv.Atoi(c.FormValue("product_id"))
	req.Amount, _ = strconv.Atoi(c.FormValue("amount"))

	// Paper forms carry no mandate type or frequency, skip those checks
	input, errMsg := req.toInput()
	if errMsg != "" {
		return nil, nil, errMsg
	}

	fileHeader, err := c.FormFile("mandateImageFile")
	if err != nil {
		return nil, nil, "Mandate image is required"
	}
	image, errMsg := readImage(fileHeader)
	if errMsg != "" {
		return nil, nil, errMsg
	}

	return input, image, ""
}

// readImage loads the uploaded mandate image into memory
func readImage(fileHeader *multipart.FileHeader) (*services.FileUpload, string) {
	if fileHeader.Size > maxImageSize {
		return nil, "Mandate image must not exceed 1MB"
	}

	contentType := fileHeader.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/png":
	default:
		return nil, "Mandate image must be a JPEG or PNG file"
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "Failed to read mandate image"
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		return nil, "Failed to read mandate image"
	}

	return &services.FileUpload{
		Field:       "mandateImageFile",
		Name:        fileHeader.Filename,
		ContentType: contentType,
		Content:     content,
	}, ""
}

// toInput validates the request and converts it to a service input.
// MandateType and Frequency are only validated when present (e-mandate).
func (r EMandateRequest) toInput() (*services.MandateInput, string) {
	if !domain.ValidBranch(r.Branch) {
		return nil, "Invalid branch"
	}
	if r.ProductID <= 0 {
		return nil, "Product ID is required"
	}
	if len(r.AccountNumber) != 10 {
		return nil, "Account number must be 10 digits"
	}
	if !domain.ValidBankCode(r.BankCode) {
		return nil, "Invalid bank code"
	}
	if r.PayerName == "" {
		return nil, "Payer name is required"
	}
	if r.AccountName == "" {
		return nil, "Account name is required"
	}
	if r.Amount <= 0 {
		return nil, "Amount must be greater than zero"
	}
	if r.MandateType != "" && !domain.ValidMandateType(r.MandateType) {
		return nil, "Invalid mandate type"
	}
	if r.Frequency != "" && !domain.ValidFrequency(r.Frequency) {
		return nil, "Invalid frequency"
	}

	startDate, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return nil, "Start date must be in YYYY-MM-DD format"
	}
	endDate, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return nil, "End date must be in YYYY-MM-DD format"
	}
	if !endDate.After(startDate) {
		return nil, "End date must be after start date"
	}

	return &services.MandateInput{
		Branch:         r.Branch,
		ProductID:      r.ProductID,
		AccountNumber:  r.AccountNumber,
		BankCode:       r.BankCode,
		PayerName:      strings.TrimSpace(r.PayerName),
		PayerEmail:     strings.TrimSpace(r.PayerEmail),
		PayerAddress:   strings.TrimSpace(r.PayerAddress),
		AccountName:    strings.TrimSpace(r.AccountName),
		Amount:         r.Amount,
		Narration:      r.Narration,
		PhoneNumber:    r.PhoneNumber,
		SubscriberCode: r.SubscriberCode,
		StartDate:      startDate,
		EndDate:        endDate,
		MandateType:    r.MandateType,
		Frequency:      r.Frequency,
	}, ""
}
