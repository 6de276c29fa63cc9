package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neweco/claims-orchestrator/internal/claims"
	"github.com/neweco/claims-orchestrator/internal/refdata"
	"github.com/neweco/claims-orchestrator/internal/upstream"
)

type stubService struct {
	createFNOL    func(ctx context.Context, req claims.FNOLRequest) (upstream.Document, error)
	createPayment func(ctx context.Context, req claims.PaymentRequest) (*claims.PaymentResult, error)
}

func (s *stubService) CreateFNOL(ctx context.Context, req claims.FNOLRequest) (upstream.Document, error) {
	return s.createFNOL(ctx, req)
}

func (s *stubService) CreatePayment(ctx context.Context, req claims.PaymentRequest) (*claims.PaymentResult, error) {
	return s.createPayment(ctx, req)
}

func newTestRouter(service ClaimService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandlers(service, zap.NewNop()).Register(router)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const validFNOLBody = `{
	"newEcoFnolId": "NE123",
	"currHouseClaimId": "CH456",
	"policyNo": "P1",
	"dateOfLoss": "2024-01-01",
	"dateOfNotification": "2024-01-02",
	"policyholderName": "Jane Doe",
	"contact": {"name": "Jane Doe", "telephone": "555-1234"},
	"accidentDescription": "Fire damage",
	"accidentAddress": {"city": "Austin", "state": "TX", "addressLine1": "1 Main St", "postCode": "78701"}
}`

const validPaymentBody = `{
	"newEcoFnolId": "NE123",
	"causeOfLoss": "Fire",
	"damageType": "Property",
	"subclaimType": "Structure",
	"estimatedLoss": 2500,
	"claimOwner": "Alice Smith",
	"coverageName": "Dwelling",
	"paymentMethod": "Check",
	"paymentType": "Indemnity",
	"settleAmount": 1800
}`

func TestCreateFNOLEndpoint(t *testing.T) {
	service := &stubService{
		createFNOL: func(ctx context.Context, req claims.FNOLRequest) (upstream.Document, error) {
			assert.Equal(t, "NE123", req.NewEcoFnolID)
			assert.Equal(t, "Jane Doe", req.Contact.Name)
			return upstream.Document{"ClaimNo": "C-100"}, nil
		},
	}

	w := doRequest(newTestRouter(service), http.MethodPost, "/travelers/claim/api-orch/v1/fnol", validFNOLBody)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "C-100", resp["ClaimNo"])
}

func TestCreateFNOLInvalidJSON(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := doRequest(router, http.MethodPost, "/travelers/claim/api-orch/v1/fnol", "{not json")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, w.Body.String())
}

func TestCreateFNOLMissingRequiredField(t *testing.T) {
	router := newTestRouter(&stubService{})

	body := `{"newEcoFnolId": "NE123"}`
	w := doRequest(router, http.MethodPost, "/travelers/claim/api-orch/v1/fnol", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, w.Body.String())
}

func TestCreateFNOLDuplicateIsConflict(t *testing.T) {
	service := &stubService{
		createFNOL: func(ctx context.Context, req claims.FNOLRequest) (upstream.Document, error) {
			return nil, fmt.Errorf("lookup: %w", &claims.UnexpectedResultCountError{
				ExternalID: req.NewEcoFnolID, Want: 0, Got: 1,
			})
		},
	}

	w := doRequest(newTestRouter(service), http.MethodPost, "/travelers/claim/api-orch/v1/fnol", validFNOLBody)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"Conflict"}`, w.Body.String())
}

func TestCreatePaymentEndpoint(t *testing.T) {
	service := &stubService{
		createPayment: func(ctx context.Context, req claims.PaymentRequest) (*claims.PaymentResult, error) {
			assert.Equal(t, "Dwelling", req.CoverageName)
			return &claims.PaymentResult{
				ClaimCase:      upstream.Document{"ClaimNo": "C-100"},
				SettlementInfo: upstream.Document{"SettleId": 501},
			}, nil
		},
	}

	w := doRequest(newTestRouter(service), http.MethodPost, "/travelers/claim/api-orch/v1/payment", validPaymentBody)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "claimCase")
	assert.Contains(t, resp, "settlementInfo")
}

func TestCreatePaymentUnknownCodeIsUnprocessable(t *testing.T) {
	service := &stubService{
		createPayment: func(ctx context.Context, req claims.PaymentRequest) (*claims.PaymentResult, error) {
			return nil, fmt.Errorf("compose: %w", &refdata.CodeLookupError{
				Table: "CoverageList", Description: req.CoverageName,
			})
		},
	}

	w := doRequest(newTestRouter(service), http.MethodPost, "/travelers/claim/api-orch/v1/payment", validPaymentBody)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"Unprocessable Entity"}`, w.Body.String())
}

func TestCreatePaymentUpstreamFailureIsInternal(t *testing.T) {
	service := &stubService{
		createPayment: func(ctx context.Context, req claims.PaymentRequest) (*claims.PaymentResult, error) {
			return nil, fmt.Errorf("load settlement: %w", &upstream.HTTPError{
				Method: http.MethodGet, Path: "/settlement/load/9002", Status: http.StatusBadGateway,
			})
		},
	}

	w := doRequest(newTestRouter(service), http.MethodPost, "/travelers/claim/api-orch/v1/payment", validPaymentBody)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())

	// Diagnostic detail stays out of the response body.
	assert.NotContains(t, w.Body.String(), "settlement")
}

func TestListRoutes(t *testing.T) {
	router := newTestRouter(&stubService{})

	w := doRequest(router, http.MethodGet, "/api", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Status string  `json:"status"`
		Data   []gin.H `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "200", resp.Status)
	assert.Len(t, resp.Data, 3)
}
