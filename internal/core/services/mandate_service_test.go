package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"amfb-directdebit/internal/adapters/persistence/models"
	"amfb-directdebit/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway returns a canned result and records the call it received
type fakeGateway struct {
	result APIResult

	method   string
	endpoint string
	payload  any
	params   url.Values
	files    []FileUpload
}

func (g *fakeGateway) Call(ctx context.Context, method, endpoint string, payload any, params url.Values, files []FileUpload) APIResult {
	g.method = method
	g.endpoint = endpoint
	g.payload = payload
	g.params = params
	g.files = files
	return g.result
}

// fakeMandateRepo is an in-memory mandate store
type fakeMandateRepo struct {
	createErr error
	records   []*models.Mandate
}

func (r *fakeMandateRepo) Create(ctx context.Context, mandate *models.Mandate) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.records = append(r.records, mandate)
	return nil
}

func (r *fakeMandateRepo) GetByCode(ctx context.Context, mandateCode string) (*models.Mandate, error) {
	for _, m := range r.records {
		if m.MandateCode == mandateCode {
			return m, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeMandateRepo) List(ctx context.Context) ([]*models.Mandate, error) {
	return r.records, nil
}

func (r *fakeMandateRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]*models.Mandate, error) {
	return r.records, nil
}

// fakeAudit captures recorded events
type fakeAudit struct {
	mu     sync.Mutex
	events []models.AuditLog
}

func (a *fakeAudit) Record(user, action, details string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, models.AuditLog{User: user, Action: action, Details: details})
}

func (a *fakeAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Action)
	}
	return out
}

func testPrincipal() domain.Principal {
	return domain.Principal{
		ID:       "user-1",
		Email:    "cso@dap-alertgroup.com.ng",
		FullName: "Test CSO",
		Role:     domain.RoleCSO,
	}
}

func testMandateInput() MandateInput {
	return MandateInput{
		Branch:         "IKEJA",
		ProductID:      7,
		AccountNumber:  "0123456789",
		BankCode:       "058",
		PayerName:      "Ada Obi",
		PayerEmail:     "ada@example.com",
		PayerAddress:   "12 Allen Avenue",
		AccountName:    "Ada Obi",
		Amount:         50000,
		Narration:      "Loan repayment",
		PhoneNumber:    "08030000000",
		SubscriberCode: "SUB-1",
		StartDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func testImage() FileUpload {
	return FileUpload{
		Field:       "mandateImageFile",
		Name:        "mandate.jpg",
		ContentType: "image/jpeg",
		Content:     []byte("jpeg-bytes"),
	}
}

func successResult(body string) APIResult {
	return APIResult{Kind: ResultSuccess, StatusCode: http.StatusOK, Body: []byte(body)}
}

func TestCreatePaperMandateSuccess(t *testing.T) {
	gateway := &fakeGateway{result: successResult(`{"data":{"mandateCode":"RC/2024/001","mandateStatus":"1"}}`)}
	repo := &fakeMandateRepo{}
	audit := &fakeAudit{}
	svc := NewMandateService(gateway, repo, audit)

	data, err := svc.CreatePaperMandate(context.Background(), testPrincipal(), testMandateInput(), testImage())
	require.NoError(t, err)
	assert.Equal(t, "RC/2024/001", data["mandateCode"])

	// Call shape
	assert.Equal(t, http.MethodPost, gateway.method)
	assert.Equal(t, "ndd/api/MandateRequest/CreateMandateDirectDebit", gateway.endpoint)
	require.Len(t, gateway.files, 1)
	assert.Equal(t, "mandateImageFile", gateway.files[0].Field)

	fields, ok := gateway.payload.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "455", fields["billerId"])
	assert.Equal(t, "2026-01-01", fields["startDate"])
	assert.NotContains(t, fields, "branch")

	// Local projection written only after upstream confirmation
	require.Len(t, repo.records, 1)
	record := repo.records[0]
	assert.Equal(t, "RC/2024/001", record.MandateCode)
	assert.Equal(t, "IKEJA", record.Branch)
	assert.Equal(t, "0123456789", record.AccountNumber)

	// Audit event
	assert.Equal(t, []string{ActionCreatePaperMandate}, audit.actions())
	assert.Equal(t, "cso@dap-alertgroup.com.ng", audit.events[0].User)
}

func TestCreatePaperMandateUpstreamRejection(t *testing.T) {
	gateway := &fakeGateway{result: APIResult{
		Kind:       ResultClientError,
		StatusCode: http.StatusBadRequest,
		Body:       []byte(`{"message":"Invalid account number"}`),
		Message:    "Invalid account number",
	}}
	repo := &fakeMandateRepo{}
	audit := &fakeAudit{}
	svc := NewMandateService(gateway, repo, audit)

	_, err := svc.CreatePaperMandate(context.Background(), testPrincipal(), testMandateInput(), testImage())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamClient)

	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusBadRequest, ue.StatusCode)
	assert.Equal(t, "Invalid account number", ue.Message)

	// Nothing persisted, nothing audited
	assert.Empty(t, repo.records)
	assert.Empty(t, audit.actions())
}

func TestCreatePaperMandateUpstreamTimeout(t *testing.T) {
	gateway := &fakeGateway{result: APIResult{
		Kind:       ResultTimeout,
		StatusCode: http.StatusGatewayTimeout,
		Message:    "Request timed out",
	}}
	repo := &fakeMandateRepo{}
	svc := NewMandateService(gateway, repo, &fakeAudit{})

	_, err := svc.CreatePaperMandate(context.Background(), testPrincipal(), testMandateInput(), testImage())
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)

	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusGatewayTimeout, ue.StatusCode)
	assert.Empty(t, repo.records)
}

func TestCreatePaperMandateMissingMandateCode(t *testing.T) {
	gateway := &fakeGateway{result: successResult(`{"data":{"status":"ok"}}`)}
	repo := &fakeMandateRepo{}
	audit := &fakeAudit{}
	svc := NewMandateService(gateway, repo, audit)

	_, err := svc.CreatePaperMandate(context.Background(), testPrincipal(), testMandateInput(), testImage())
	assert.ErrorIs(t, err, domain.ErrInvalidUpstreamResponse)
	assert.Empty(t, repo.records)
	assert.Empty(t, audit.actions())
}

func TestCreatePaperMandateLocalPersistenceFailure(t *testing.T) {
	gateway := &fakeGateway{result: successResult(`{"data":{"mandateCode":"RC/2024/003"}}`)}
	repo := &fakeMandateRepo{createErr: errors.New("connection lost")}
	audit := &fakeAudit{}
	svc := NewMandateService(gateway, repo, audit)

	_, err := svc.CreatePaperMandate(context.Background(), testPrincipal(), testMandateInput(), testImage())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLocalPersistenceFailure)
	assert.Contains(t, err.Error(), "RC/2024/003")

	// The failed operation must not appear in the audit trail
	assert.Empty(t, audit.actions())
}

func TestCreateBalanceEnquiryEndpointAndAction(t *testing.T) {
	gateway := &fakeGateway{result: successResult(`{"data":{"mandateCode":"RC/2024/004"}}`)}
	repo := &fakeMandateRepo{}
	audit := &fakeAudit{}
	svc := NewMandateService(gateway, repo, audit)

	_, err := svc.CreateBalanceEnquiry(context.Background(), testPrincipal(), testMandateInput(), testImage())
	require.NoError(t, err)

	assert.Equal(t, "ndd/api/MandateRequest/CreateMandateBalanceEnquiry", gateway.endpoint)
	assert.Equal(t, []string{ActionCreateBalanceEnquiry}, audit.actions())
}

func TestCreateEMandateJSONPayload(t *testing.T) {
	gateway := &fakeGateway{result: successResult(`{"data":{"mandateCode":"RC/2024/005"}}`)}
	repo := &fakeMandateRepo{}
	audit := &fakeAudit{}
	svc := NewMandateService(gateway, repo, audit)

	input := testMandateInput()
	input.MandateType = "1"
	input.Frequency = "4"

	_, err := svc.CreateEMandate(context.Background(), testPrincipal(), input)
	require.NoError(t, err)

	assert.Equal(t, "ndd/api/MandateRequest/CreateEmandate", gateway.endpoint)
	assert.Empty(t, gateway.files)

	payload, ok := gateway.payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "455", payload["billerId"])
	assert.Equal(t, "1", payload["mandateType"])
	assert.Equal(t, "4", payload["frequency"])

	require.Len(t, repo.records, 1)
	assert.Equal(t, []string{ActionCreateEMandate}, audit.actions())
}

func TestMandateStatusSendsCodeAsParam(t *testing.T) {
	gateway := &fakeGateway{result: successResult(`{"data":{"mandateStatus":"1"}}`)}
	svc := NewMandateService(gateway, &fakeMandateRepo{}, &fakeAudit{})

	data, err := svc.MandateStatus(context.Background(), "RC/2024/001")
	require.NoError(t, err)
	obj, ok := data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1", obj["mandateStatus"])

	assert.Equal(t, "ndd/api/MandateRequest/MandateStatus", gateway.endpoint)
	assert.Equal(t, "RC/2024/001", gateway.params.Get("MandateCode"))
	assert.Nil(t, gateway.payload)
}

func TestUpdateMandateStatusPayloadAndAudit(t *testing.T) {
	gateway := &fakeGateway{result: successResult(`{"data":{"mandateStatus":"2"}}`)}
	repo := &fakeMandateRepo{}
	audit := &fakeAudit{}
	svc := NewMandateService(gateway, repo, audit)

	input := UpdateMandateStatusInput{
		MandateCode:   "RC/2024/001",
		ProductID:     7,
		AccountNumber: "0123456789",
		MandateStatus: "2",
	}

	_, err := svc.UpdateMandateStatus(context.Background(), testPrincipal(), input)
	require.NoError(t, err)

	payload, ok := gateway.payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "455", payload["billerId"])
	assert.Equal(t, "2", payload["mandateStatus"])

	// Status updates never touch the local projection
	assert.Empty(t, repo.records)
	assert.Equal(t, []string{ActionUpdateMandateStatus}, audit.actions())
}

func TestProcessMandateEndpointAndAudit(t *testing.T) {
	gateway := &fakeGateway{result: successResult(`{"data":{"workflowStatus":"2"}}`)}
	audit := &fakeAudit{}
	svc := NewMandateService(gateway, &fakeMandateRepo{}, audit)

	input := ProcessMandateInput{MandateCode: "RC/2024/001", WorkflowStatus: "2"}

	_, err := svc.ProcessMandate(context.Background(), testPrincipal(), input)
	require.NoError(t, err)

	assert.Equal(t, "ndd/api/MandateRequest/BillerProcesMandate", gateway.endpoint)
	assert.Equal(t, []string{ActionProcessMandate}, audit.actions())
}

func TestFetchMandatesDefaultPaging(t *testing.T) {
	gateway := &fakeGateway{result: successResult(`{"data":{"mandates":[]}}`)}
	svc := NewMandateService(gateway, &fakeMandateRepo{}, &fakeAudit{})

	_, err := svc.FetchMandates(context.Background(), "0123456789", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "ndd/api/MandateRequest/FetchMandate/1/20", gateway.endpoint)

	payload, ok := gateway.payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "0123456789", payload["accountNumber"])
}

func TestFetchMandatesExplicitPaging(t *testing.T) {
	gateway := &fakeGateway{result: successResult(`{"data":{"mandates":[]}}`)}
	svc := NewMandateService(gateway, &fakeMandateRepo{}, &fakeAudit{})

	_, err := svc.FetchMandates(context.Background(), "0123456789", 3, 50)
	require.NoError(t, err)
	assert.Equal(t, "ndd/api/MandateRequest/FetchMandate/3/50", gateway.endpoint)
}

func TestFetchMandatesRelaysArrayData(t *testing.T) {
	gateway := &fakeGateway{result: successResult(`{"data":[{"mandateCode":"RC/2024/001"},{"mandateCode":"RC/2024/002"}]}`)}
	svc := NewMandateService(gateway, &fakeMandateRepo{}, &fakeAudit{})

	data, err := svc.FetchMandates(context.Background(), "0123456789", 1, 20)
	require.NoError(t, err)

	// Non-creating operations relay whatever shape NIBSS returns
	list, ok := data.([]any)
	require.True(t, ok)
	assert.Len(t, list, 2)
}

func TestMandateStatusDefaultsMissingData(t *testing.T) {
	gateway := &fakeGateway{result: successResult(`{"status":"success"}`)}
	svc := NewMandateService(gateway, &fakeMandateRepo{}, &fakeAudit{})

	data, err := svc.MandateStatus(context.Background(), "RC/2024/001")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, data)
}

func TestCreatePaperMandateRejectsNonObjectData(t *testing.T) {
	gateway := &fakeGateway{result: successResult(`{"data":["RC/2024/001"]}`)}
	repo := &fakeMandateRepo{}
	audit := &fakeAudit{}
	svc := NewMandateService(gateway, repo, audit)

	// Creating operations still demand an object carrying the mandate code
	_, err := svc.CreatePaperMandate(context.Background(), testPrincipal(), testMandateInput(), testImage())
	assert.ErrorIs(t, err, domain.ErrInvalidUpstreamResponse)
	assert.Empty(t, repo.records)
	assert.Empty(t, audit.actions())
}
