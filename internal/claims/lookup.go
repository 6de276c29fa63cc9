package claims

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/neweco/claims-orchestrator/internal/upstream"
)

// searchRequest is the fixed fuzzy-search body for the entity query. The
// search matches on the external claim number field, which carries the
// composite correlation ids.
type searchRequest struct {
	Conditions      map[string]string `json:"Conditions"`
	PageNo          int               `json:"PageNo"`
	PageSize        int               `json:"PageSize"`
	FuzzyConditions map[string]string `json:"FuzzyConditions"`
	Module          string            `json:"Module"`
	SortField       string            `json:"SortField"`
	SortType        string            `json:"SortType"`
	SearchType      int               `json:"SearchType"`
}

// claimRef is a located upstream claim with its decomposed correlation ids.
type claimRef struct {
	CaseID           json.Number
	NewEcoFnolID     string
	CurrHouseClaimID string
}

// findByExternalID searches the platform for a claim carrying the given
// correlation id and enforces the expected match count: 0 asserts the claim
// does not exist yet, 1 asserts it does. On a count-1 match the composite
// external claim number is decomposed into its constituent ids.
func (s *Service) findByExternalID(ctx context.Context, externalID string, expectedCount int) (*claimRef, error) {
	s.logger.Info("Searching claim", zap.String("external_id", externalID))

	body := searchRequest{
		Conditions:      map[string]string{},
		PageNo:          1,
		PageSize:        10,
		FuzzyConditions: map[string]string{"ExtClaimNo": externalID},
		Module:          "ClaimCase",
		SortField:       "LastReviewDate",
		SortType:        "DESC",
		SearchType:      0,
	}

	var resp upstream.SearchResponse
	if err := s.client.Post(ctx, "/public/ap00/query/entity", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to search claim %s: %w", externalID, err)
	}

	count := 0
	if len(resp.Results) > 0 {
		count = len(resp.Results[0].SolrDocs)
	}
	s.logger.Info("Claim search finished",
		zap.String("external_id", externalID),
		zap.Int("count", count))

	if count != expectedCount {
		s.logger.Error("Unexpected claim search result count",
			zap.String("external_id", externalID),
			zap.Int("want", expectedCount),
			zap.Int("got", count))
		return nil, &UnexpectedResultCountError{ExternalID: externalID, Want: expectedCount, Got: count}
	}
	if count == 0 {
		return nil, nil
	}

	doc := resp.Results[0].SolrDocs[0]
	newEcoID, currHouseID, err := DecodeExtClaimNo(doc.ExtClaimNo)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Claim located",
		zap.String("case_id", doc.CaseID.String()),
		zap.String("new_eco_fnol_id", newEcoID),
		zap.String("curr_house_claim_id", currHouseID))

	return &claimRef{
		CaseID:           doc.CaseID,
		NewEcoFnolID:     newEcoID,
		CurrHouseClaimID: currHouseID,
	}, nil
}
