package claims

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neweco/claims-orchestrator/internal/upstream"
)

func fnolRequest() FNOLRequest {
	return FNOLRequest{
		NewEcoFnolID:        "NE123",
		CurrHouseClaimID:    "CH456",
		PolicyNo:            "P1",
		DateOfLoss:          "2024-01-01",
		DateOfNotification:  "2024-01-02",
		PolicyholderName:    "Jane Doe",
		Contact:             FNOLContact{Name: "Jane Doe", Telephone: "555-1234"},
		AccidentDescription: "Fire damage",
		AccidentAddress: AccidentAddress{
			City:         "Austin",
			State:        "TX",
			AddressLine1: "1 Main St",
			PostCode:     "78701",
		},
	}
}

func setupFNOLPlatform(t *testing.T) *fakePlatform {
	t.Helper()
	p := newFakePlatform(t)

	p.handle("POST /public/ap00/query/entity", searchHandler(nil))
	p.handle("GET /productTree/productLineTree", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"Model": []any{
			map[string]any{"id": "PRD1"},
			map[string]any{"id": "PRD2"},
			map[string]any{"id": "PRD3"},
		}})
	})
	p.handle("GET /product/productDetailByProductCode/PRD3", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"Model": map[string]any{
			"ProductTypeCode":    "PT1",
			"ProductDescription": "Homeowners",
		}})
	})
	p.handle("GET /public/codetable/data/list/1026", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{
			map[string]any{"Description": "Insured", "Code": "05"},
			map[string]any{"Description": "Third Party", "Code": "06"},
		})
	})
	p.handle("POST /notice/creation", func(w http.ResponseWriter, r *http.Request) {
		var notice map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&notice))
		assert.Equal(t, "ClaimNotice-ClaimNotice", notice["@type"])
		assert.Equal(t, "PT1", notice["ProductTypeCode"])
		assert.Equal(t, "05", notice["ContactType"])
		assert.Equal(t, "CLOSED", notice["NoticeStatus"])
		writeJSON(w, map[string]any{"Model": map[string]any{
			"CaseIds":  []any{4001},
			"NoticeNo": "N-1",
		}})
	})
	p.handle("GET /workflow/claimTasks/4001/false", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, okEnvelope(map[string]any{
			"loadClaimTasks": []any{map[string]any{"id": 9001}},
		}))
	})
	p.handle("POST /workflow/workOnAssignForPool", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pool", body["AssignTo"])
		writeJSON(w, okEnvelope(nil))
	})
	p.handle("GET /claimhandling/caseForm/9001/0", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"ClaimEntity": map[string]any{"ClaimNo": "C-100"},
			"ClaimData":   map[string]any{},
		})
	})
	p.handle("POST /registration/saveClaim", func(w http.ResponseWriter, r *http.Request) {
		var doc map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		writeJSON(w, map[string]any{"Model": doc})
	})

	return p
}

func TestCreateFNOL(t *testing.T) {
	p := setupFNOLPlatform(t)
	service := newTestService(t, p, "")

	claim, err := service.CreateFNOL(context.Background(), fnolRequest())
	require.NoError(t, err)

	extClaimNo, err := claim.String("ExtClaimNo")
	require.NoError(t, err)
	assert.Equal(t, "NE:NE123;CH:CH456", extClaimNo)

	claimNo, err := claim.String("ClaimNo")
	require.NoError(t, err)
	assert.Equal(t, "C-100", claimNo)

	assert.Equal(t, []string{
		"POST /public/ap00/query/entity",
		"GET /productTree/productLineTree",
		"GET /product/productDetailByProductCode/PRD3",
		"GET /public/codetable/data/list/1026",
		"POST /notice/creation",
		"GET /workflow/claimTasks/4001/false",
		"POST /workflow/workOnAssignForPool",
		"GET /claimhandling/caseForm/9001/0",
		"POST /registration/saveClaim",
	}, p.callList())
}

func TestCreateFNOLDuplicateCorrelationID(t *testing.T) {
	p := setupFNOLPlatform(t)
	p.handle("POST /public/ap00/query/entity", searchHandler([]map[string]any{
		{"ExtClaimNo": "NE:NE123;CH:CH456", "CaseId": 4001},
	}))
	service := newTestService(t, p, "")

	_, err := service.CreateFNOL(context.Background(), fnolRequest())
	var countErr *UnexpectedResultCountError
	require.ErrorAs(t, err, &countErr)
	assert.Equal(t, 0, countErr.Want)
	assert.Equal(t, 1, countErr.Got)

	// The duplicate check aborts before any other upstream call.
	assert.Equal(t, []string{"POST /public/ap00/query/entity"}, p.callList())
}

func TestCreateFNOLAbortsOnUpstreamFailure(t *testing.T) {
	p := setupFNOLPlatform(t)
	p.handle("POST /notice/creation", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})
	service := newTestService(t, p, "")

	_, err := service.CreateFNOL(context.Background(), fnolRequest())
	var httpErr *upstream.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Status)

	assert.False(t, p.called("GET /workflow/claimTasks/4001/false"))
	assert.False(t, p.called("POST /registration/saveClaim"))
}

func TestCreateFNOLUnknownContactType(t *testing.T) {
	p := setupFNOLPlatform(t)
	p.handle("GET /public/codetable/data/list/1026", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{map[string]any{"Description": "Third Party", "Code": "06"}})
	})
	service := newTestService(t, p, "")

	_, err := service.CreateFNOL(context.Background(), fnolRequest())
	require.Error(t, err)
	assert.False(t, p.called("POST /notice/creation"))
}

func TestCreateFNOLProductTreeTooShort(t *testing.T) {
	p := setupFNOLPlatform(t)
	p.handle("GET /productTree/productLineTree", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"Model": []any{map[string]any{"id": "PRD1"}}})
	})
	service := newTestService(t, p, "")

	_, err := service.CreateFNOL(context.Background(), fnolRequest())
	var logicalErr *upstream.LogicalError
	require.ErrorAs(t, err, &logicalErr)
	assert.False(t, p.called("POST /notice/creation"))
}
