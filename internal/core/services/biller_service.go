package services

import (
	"context"
	"fmt"
	"net/http"

	"amfb-directdebit/internal/core/domain"
)

// BillerService handles biller and product management. These operations live
// entirely upstream; nothing is persisted locally.
type BillerService struct {
	gateway Gateway
	audit   AuditRecorder
}

// NewBillerService creates a new biller service
func NewBillerService(gateway Gateway, audit AuditRecorder) *BillerService {
	return &BillerService{gateway: gateway, audit: audit}
}

// BillerInput carries a biller create request
type BillerInput struct {
	RCNumber                     string `json:"rcNumber"`
	Name                         string `json:"name"`
	Address                      string `json:"address"`
	Email                        string `json:"email"`
	PhoneNumber                  string `json:"phoneNumber"`
	AccountNumber                string `json:"accountNumber"`
	AccountName                  string `json:"accountName"`
	BankCode                     string `json:"bankCode"`
	MandateStatusNotificationURL string `json:"mandateStatusNotificationUrl"`
}

// UpdateBillerInput carries a biller update request
type UpdateBillerInput struct {
	ID                           int    `json:"id"`
	BillerName                   string `json:"billerName"`
	AccountName                  string `json:"accountName"`
	Address                      string `json:"address"`
	Email                        string `json:"email"`
	PhoneNumber                  string `json:"phoneNumber"`
	AccountNumber                string `json:"accountNumber"`
	BankCode                     string `json:"bankCode"`
	MandateStatusNotificationURL string `json:"mandateStatusNotificationUrl"`
	Status                       string `json:"status"`
}

// CreateBiller registers the biller with NIBSS
func (s *BillerService) CreateBiller(ctx context.Context, principal domain.Principal, input BillerInput) (any, error) {
	result := s.gateway.Call(ctx, http.MethodPost, "ndd/api/Biller/CreateBiller", input, nil, nil)
	if err := resultError(result); err != nil {
		return nil, err
	}
	data, err := parseData(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamResponse, err)
	}

	s.audit.Record(principal.Email, ActionCreateBiller,
		fmt.Sprintf("Created biller named %s", input.Name))
	return data, nil
}

// UpdateBiller updates biller details upstream
func (s *BillerService) UpdateBiller(ctx context.Context, principal domain.Principal, input UpdateBillerInput) (any, error) {
	result := s.gateway.Call(ctx, http.MethodPut, "ndd/api/Biller/UpdateBillerDetails", input, nil, nil)
	if err := resultError(result); err != nil {
		return nil, err
	}
	data, err := parseData(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamResponse, err)
	}

	s.audit.Record(principal.Email, ActionUpdateBiller,
		fmt.Sprintf("Updated biller details for %s", input.BillerName))
	return data, nil
}

// CreateProduct creates a product under the biller
func (s *BillerService) CreateProduct(ctx context.Context, principal domain.Principal, productName string) (any, error) {
	payload := map[string]any{
		"billerId":    domain.BillerID,
		"productName": productName,
	}

	result := s.gateway.Call(ctx, http.MethodPost, "ndd/api/Biller/CreateProduct", payload, nil, nil)
	if err := resultError(result); err != nil {
		return nil, err
	}
	data, err := parseData(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamResponse, err)
	}

	s.audit.Record(principal.Email, ActionCreateProduct,
		fmt.Sprintf("Created product named %s", productName))
	return data, nil
}

// GetProducts lists the biller's products. NIBSS returns the list as a bare
// array in data, relayed as is.
func (s *BillerService) GetProducts(ctx context.Context) (any, error) {
	endpoint := fmt.Sprintf("ndd/api/Biller/GetProduct/%s", domain.BillerID)

	result := s.gateway.Call(ctx, http.MethodGet, endpoint, nil, nil, nil)
	if err := resultError(result); err != nil {
		return nil, err
	}
	data, err := parseData(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamResponse, err)
	}
	return data, nil
}

// DisableProduct disables a product under the biller
func (s *BillerService) DisableProduct(ctx context.Context, principal domain.Principal, productID string) (any, error) {
	endpoint := fmt.Sprintf("ndd/api/Biller/DisableProduct/%s/%s", domain.BillerID, productID)

	result := s.gateway.Call(ctx, http.MethodPost, endpoint, nil, nil, nil)
	if err := resultError(result); err != nil {
		return nil, err
	}
	data, err := parseData(result.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamResponse, err)
	}

	s.audit.Record(principal.Email, ActionDisableProduct,
		fmt.Sprintf("Disabled product %s", productID))
	return data, nil
}
