package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"amfb-directdebit/internal/adapters/persistence/models"
	"amfb-directdebit/internal/adapters/persistence/repositories"
	"amfb-directdebit/internal/core/domain"
)

// dateLayout is the textual date format the NIBSS API expects
const dateLayout = "2006-01-02"

// MandateService orchestrates mandate operations: authorize (middleware),
// normalize, call NIBSS, interpret the outcome, persist the local projection
// and emit the audit event. NIBSS is the source of truth: the local row is
// written only after NIBSS confirms and returns a mandate code. If the local
// write then fails, the upstream mandate stands while the caller is told the
// operation failed; the divergence is logged, never rolled back.
type MandateService struct {
	gateway  Gateway
	mandates repositories.MandateRepository
	audit    AuditRecorder
}

// NewMandateService creates a new mandate service
func NewMandateService(gateway Gateway, mandates repositories.MandateRepository, audit AuditRecorder) *MandateService {
	return &MandateService{
		gateway:  gateway,
		mandates: mandates,
		audit:    audit,
	}
}

// MandateInput carries a validated mandate creation request
type MandateInput struct {
	Branch         string
	ProductID      int
	AccountNumber  string
	BankCode       string
	PayerName      string
	PayerEmail     string
	PayerAddress   string
	AccountName    string
	Amount         int
	Narration      string
	PhoneNumber    string
	SubscriberCode string
	StartDate      time.Time
	EndDate        time.Time

	// E-mandate only
	MandateType string
	Frequency   string
}

// UpdateMandateStatusInput carries a mandate status update request
type UpdateMandateStatusInput struct {
	MandateCode   string
	ProductID     int
	AccountNumber string
	MandateStatus string
}

// ProcessMandateInput carries a biller workflow processing request
type ProcessMandateInput struct {
	MandateCode    string
	WorkflowStatus string
}

// CreatePaperMandate submits a paper direct-debit mandate with its scanned
// image and persists the local projection on upstream confirmation.
func (s *MandateService) CreatePaperMandate(ctx context.Context, principal domain.Principal, input MandateInput, image FileUpload) (map[string]any, error) {
	payload := input.formPayload()
	return s.submitCreate(ctx, principal, submitParams{
		endpoint: "ndd/api/MandateRequest/CreateMandateDirectDebit",
		payload:  payload,
		files:    []FileUpload{image},
		action:   ActionCreatePaperMandate,
		details:  fmt.Sprintf("Created paper mandate for %s - %s", input.AccountNumber, input.PayerName),
		input:    input,
	})
}

// CreateBalanceEnquiry submits a paper balance-enquiry mandate
func (s *MandateService) CreateBalanceEnquiry(ctx context.Context, principal domain.Principal, input MandateInput, image FileUpload) (map[string]any, error) {
	payload := input.formPayload()
	return s.submitCreate(ctx, principal, submitParams{
		endpoint: "ndd/api/MandateRequest/CreateMandateBalanceEnquiry",
		payload:  payload,
		files:    []FileUpload{image},
		action:   ActionCreateBalanceEnquiry,
		details:  fmt.Sprintf("Initiated balance enquiry mandate for %s - %s", input.AccountNumber, input.PayerName),
		input:    input,
	})
}

// CreateEMandate submits an electronic mandate (no image upload)
func (s *MandateService) CreateEMandate(ctx context.Context, principal domain.Principal, input MandateInput) (map[string]any, error) {
	payload := input.jsonPayload()
	return s.submitCreate(ctx, principal, submitParams{
		endpoint: "ndd/api/MandateRequest/CreateEmandate",
		payload:  payload,
		action:   ActionCreateEMandate,
		details:  fmt.Sprintf("Created e-mandate for %s - %s", input.AccountNumber, input.PayerName),
		input:    input,
	})
}

type submitParams struct {
	endpoint string
	payload  any
	files    []FileUpload
	action   string
	details  string
	input    MandateInput
}

// submitCreate runs the creating-operation sequence: external call, outcome
// interpretation, mandate-code extraction, local persistence, audit.
func (s *MandateService) submitCreate(ctx context.Context, principal domain.Principal, p submitParams) (map[string]any, error) {
	result := s.gateway.Call(ctx, http.MethodPost, p.endpoint, p.payload, nil, p.files)
	if err := resultError(result); err != nil {
		return nil, err
	}

	// A success without a mandate code would corrupt the local projection;
	// treat it as an upstream contract violation.
	data, err := parseDataObject(result.Body)
	if err != nil {
		log.Printf("❌ Invalid API response: %s", string(result.Body))
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamResponse, err)
	}
	mandateCode, _ := data["mandateCode"].(string)
	if mandateCode == "" {
		log.Printf("❌ Invalid API response, no mandateCode: %s", string(result.Body))
		return nil, fmt.Errorf("%w: missing mandateCode", domain.ErrInvalidUpstreamResponse)
	}

	record := p.input.localProjection(mandateCode)
	if err := s.mandates.Create(ctx, record); err != nil {
		// The upstream mandate exists but the local copy does not. Make the
		// divergence observable; reconciliation is manual or via the sweep.
		log.Printf("❌ Database error saving mandate %s (exists upstream, missing locally): %v", mandateCode, err)
		return nil, fmt.Errorf("%w: mandate %s", domain.ErrLocalPersistenceFailure, mandateCode)
	}

	s.audit.Record(principal.Email, p.action, p.details)
	return data, nil
}

// MandateStatus queries the current upstream status of a mandate
func (s *MandateService) MandateStatus(ctx context.Context, mandateCode string) (any, error) {
	params := url.Values{}
	params.Set("MandateCode", mandateCode)

	result := s.gateway.Call(ctx, http.MethodPost, "ndd/api/MandateRequest/MandateStatus", nil, params, nil)
	if err := resultError(result); err != nil {
		return nil, err
	}
	data, err := parseData(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamResponse, err)
	}
	return data, nil
}

// UpdateMandateStatus updates a mandate's status upstream. The local
// projection is intentionally left untouched (read-through behavior of the
// source system).
func (s *MandateService) UpdateMandateStatus(ctx context.Context, principal domain.Principal, input UpdateMandateStatusInput) (any, error) {
	payload := map[string]any{
		"mandateCode":   input.MandateCode,
		"billerId":      domain.BillerID,
		"productId":     input.ProductID,
		"accountNumber": input.AccountNumber,
		"mandateStatus": input.MandateStatus,
	}

	result := s.gateway.Call(ctx, http.MethodPost, "ndd/api/MandateRequest/UpdateMandateStatus", payload, nil, nil)
	if err := resultError(result); err != nil {
		return nil, err
	}
	data, err := parseData(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamResponse, err)
	}

	s.audit.Record(principal.Email, ActionUpdateMandateStatus,
		fmt.Sprintf("Updated mandate for %s - %s to %s", input.MandateCode, input.AccountNumber, input.MandateStatus))
	return data, nil
}

// ProcessMandate moves a mandate through the biller workflow upstream
func (s *MandateService) ProcessMandate(ctx context.Context, principal domain.Principal, input ProcessMandateInput) (any, error) {
	payload := map[string]any{
		"billerId":       domain.BillerID,
		"mandateCode":    input.MandateCode,
		"workflowStatus": input.WorkflowStatus,
	}

	result := s.gateway.Call(ctx, http.MethodPost, "ndd/api/MandateRequest/BillerProcesMandate", payload, nil, nil)
	if err := resultError(result); err != nil {
		return nil, err
	}
	data, err := parseData(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamResponse, err)
	}

	s.audit.Record(principal.Email, ActionProcessMandate,
		fmt.Sprintf("Mandate code %s processed to %s", input.MandateCode, input.WorkflowStatus))
	return data, nil
}

// FetchMandates queries the upstream mandate list for an account
func (s *MandateService) FetchMandates(ctx context.Context, accountNumber string, page, pageSize int) (any, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	payload := map[string]any{
		"billerId":      domain.BillerID,
		"accountNumber": accountNumber,
	}
	endpoint := fmt.Sprintf("ndd/api/MandateRequest/FetchMandate/%d/%d", page, pageSize)

	result := s.gateway.Call(ctx, http.MethodPost, endpoint, payload, nil, nil)
	if err := resultError(result); err != nil {
		return nil, err
	}
	data, err := parseData(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamResponse, err)
	}
	return data, nil
}

// ListLocal lists the locally persisted mandate projections
func (s *MandateService) ListLocal(ctx context.Context) ([]*models.Mandate, error) {
	return s.mandates.List(ctx)
}

// formPayload builds the multipart form fields for paper mandate submission.
// Dates are normalized to the NIBSS textual format and routing metadata the
// API does not accept (branch) is omitted.
func (in MandateInput) formPayload() map[string]string {
	return map[string]string{
		"billerId":       domain.BillerID,
		"productId":      strconv.Itoa(in.ProductID),
		"accountNumber":  in.AccountNumber,
		"bankCode":       in.BankCode,
		"payerName":      in.PayerName,
		"payerEmail":     in.PayerEmail,
		"payerAddress":   in.PayerAddress,
		"accountName":    in.AccountName,
		"amount":         strconv.Itoa(in.Amount),
		"narration":      in.Narration,
		"phoneNumber":    in.PhoneNumber,
		"subscriberCode": in.SubscriberCode,
		"startDate":      in.StartDate.Format(dateLayout),
		"endDate":        in.EndDate.Format(dateLayout),
	}
}

// jsonPayload builds the e-mandate JSON body
func (in MandateInput) jsonPayload() map[string]any {
	return map[string]any{
		"billerId":       domain.BillerID,
		"productId":      in.ProductID,
		"accountNumber":  in.AccountNumber,
		"bankCode":       in.BankCode,
		"payerName":      in.PayerName,
		"payerEmail":     in.PayerEmail,
		"payerAddress":   in.PayerAddress,
		"accountName":    in.AccountName,
		"amount":         in.Amount,
		"mandateType":    in.MandateType,
		"frequency":      in.Frequency,
		"narration":      in.Narration,
		"phoneNumber":    in.PhoneNumber,
		"subscriberCode": in.SubscriberCode,
		"startDate":      in.StartDate.Format(dateLayout),
		"endDate":        in.EndDate.Format(dateLayout),
	}
}

// localProjection builds the local mandate row. Processor-only fields
// (billerId, bankCode, mandateType, payerAddress, frequency, narration and
// the image) are excluded from the projection.
func (in MandateInput) localProjection(mandateCode string) *models.Mandate {
	return &models.Mandate{
		MandateCode:    mandateCode,
		Branch:         in.Branch,
		ProductID:      in.ProductID,
		AccountNumber:  in.AccountNumber,
		AccountName:    in.AccountName,
		PayerName:      in.PayerName,
		PayerEmail:     in.PayerEmail,
		Amount:         in.Amount,
		PhoneNumber:    in.PhoneNumber,
		SubscriberCode: in.SubscriberCode,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
	}
}

// resultError maps a gateway outcome to a domain error, nil on success
func resultError(r APIResult) error {
	switch r.Kind {
	case ResultSuccess:
		return nil
	case ResultClientError:
		return domain.NewUpstreamClientError(r.StatusCode, r.Message)
	case ResultTimeout:
		return domain.NewUpstreamTimeoutError(r.Message)
	default:
		return domain.NewUpstreamUnavailableError(r.StatusCode, r.Message)
	}
}

// parseDataObject extracts the "data" object from a NIBSS success body.
// Creating operations require an object because the mandate code must be read
// out of it; any other shape is a contract violation.
func parseDataObject(body []byte) (map[string]any, error) {
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse response body: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("response has no data object")
	}
	return envelope.Data, nil
}

// parseData extracts the "data" value from a NIBSS success body without
// constraining its shape. Non-creating operations relay whatever NIBSS
// returned: object, array or absent (reported as an empty object).
func parseData(body []byte) (any, error) {
	var envelope struct {
		Data any `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse response body: %w", err)
	}
	if envelope.Data == nil {
		return map[string]any{}, nil
	}
	return envelope.Data, nil
}
