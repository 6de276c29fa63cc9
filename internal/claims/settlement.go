package claims

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/neweco/claims-orchestrator/internal/refdata"
	"github.com/neweco/claims-orchestrator/internal/upstream"
)

// PartyRole code for the claimant; the payee of a settlement.
const partyRoleClaimant = "01"

// settlementItemFields is the reserve-structure field subset carried over
// into the settlement item.
var settlementItemFields = []string{
	"OutstandingAmount",
	"ReserveType",
	"ReserveId",
	"ItemId",
	"CoverageName",
	"ReserveSign",
	"OurShareAmount",
	"SubclaimType",
	"CoverageTypeCode",
	"SeqNo",
}

// submitSettlement loads the settlement structure for the claimed task,
// builds the settlement item and payee, and submits the final settlement.
func (s *Service) submitSettlement(ctx context.Context, req PaymentRequest, ref *claimRef, claimCase upstream.Document, taskID json.Number) error {
	// Settlement structure for the task.
	s.logger.Info("Loading claim settlement", zap.String("task_id", taskID.String()))
	raw, err := s.client.GetEnvelope(ctx, "/settlement/load/"+taskID.String())
	if err != nil {
		return fmt.Errorf("failed to load claim settlement: %w", err)
	}
	settlement, err := upstream.DecodeDocument(raw)
	if err != nil {
		return err
	}

	// Payment method and partial/final code tables.
	paymentMethods, err := s.refdata.List(ctx, refdata.TablePaymentMethod)
	if err != nil {
		return err
	}
	payMode, err := refdata.Resolve(refdata.TablePaymentMethod, req.PaymentMethod, paymentMethods)
	if err != nil {
		return err
	}
	partialFinalOptions, err := s.refdata.List(ctx, refdata.TablePartialFinal)
	if err != nil {
		return err
	}
	option := req.PartialFinalOption
	if option == "" {
		option = "Final"
	}
	payFinal, err := refdata.Resolve(refdata.TablePartialFinal, option, partialFinalOptions)
	if err != nil {
		return err
	}

	// The payee is the claimant party.
	parties, err := claimCase.Docs("ClaimEntity", "ClaimPartyList")
	if err != nil {
		return err
	}
	var payee upstream.Document
	for _, party := range parties {
		if role, err := party.String("PartyRole"); err == nil && role == partyRoleClaimant {
			payee = party
			break
		}
	}
	if payee == nil {
		return &upstream.LogicalError{Detail: "no claim party with role " + partyRoleClaimant}
	}
	payeeID, err := payee.Value("@pk")
	if err != nil {
		return err
	}
	payeeName, err := payee.String("PartyName")
	if err != nil {
		return err
	}

	// Settlement item: reserve-structure subset plus settlement overlays.
	reserve, err := settlement.FirstDoc("ReserveStructure")
	if err != nil {
		return err
	}
	reserveCurrency, err := reserve.Value("CurrencyCode")
	if err != nil {
		return err
	}
	item := reserve.Pick(settlementItemFields...)
	item["ReserveCurrency"] = reserveCurrency
	item["SettleAmount"] = req.SettleAmount
	item["@type"] = "ClaimSettlementItem-ClaimSettlementItem"
	item["Index"] = 0
	item["PayeeIndex"] = 0
	item["OurShareAmount"] = 0
	item["PayFinal"] = payFinal

	// Payment type comes from the settlement's own code table, keyed by text.
	paymentTypes, err := settlement.Docs("PaymentTypeCodeTable")
	if err != nil {
		return err
	}
	var paymentType any
	for _, pt := range paymentTypes {
		if text, err := pt.String("text"); err == nil && text == req.PaymentType {
			if paymentType, err = pt.Value("id"); err != nil {
				return err
			}
			break
		}
	}
	if paymentType == nil {
		return &refdata.CodeLookupError{Table: "PaymentTypeCodeTable", Description: req.PaymentType}
	}
	item["PaymentType"] = paymentType

	claimType, err := settlement.Value("SettlementInfo", "ClaimType")
	if err != nil {
		return err
	}
	policyNo, err := claimCase.String("ClaimEntity", "PolicyNo")
	if err != nil {
		return err
	}

	body := upstream.Document{
		"SettlementEntity": upstream.Document{
			"@type":     "ClaimSettlement-ClaimSettlement",
			"CaseId":    ref.CaseID,
			"ClaimType": claimType,
			"SettlementPayee": []any{
				upstream.Document{
					"@pk":                 nil,
					"@type":               "ClaimSettlementPayee-ClaimSettlementPayee",
					"SettlementItem":      []any{item},
					"PayeeId":             payeeID,
					"PayeeName":           payeeName,
					"PayMode":             payMode,
					"SettleCurrency":      "USD",
					"ReserveExchangeRate": 1,
				},
			},
		},
		"TaskInstanceId": taskID,
		"PolicyNo":       policyNo,
	}

	s.logger.Info("Submitting final settlement")
	if _, err := s.client.PostEnvelope(ctx, "/settlement/submit/", body); err != nil {
		return fmt.Errorf("failed to submit final settlement: %w", err)
	}
	return nil
}

// querySettlementInfo fetches the canonical settlement info for a case by
// walking settlement history to the latest settlement id and loading its
// detail.
func (s *Service) querySettlementInfo(ctx context.Context, caseID json.Number) (upstream.Document, error) {
	s.logger.Info("Querying claim settlement history", zap.String("case_id", caseID.String()))
	raw, err := s.client.GetEnvelope(ctx,
		"/settlement/history?caseId="+caseID.String()+"&taskCode=ClaimSettlementTask")
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement history: %w", err)
	}
	var history []upstream.SettlementHistoryEntry
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, &upstream.LogicalError{Path: "/settlement/history", Detail: "undecodable history: " + err.Error()}
	}
	if len(history) == 0 {
		return nil, &upstream.LogicalError{Path: "/settlement/history", Detail: "no settlement for case " + caseID.String()}
	}
	settleID := history[0].SettleID
	s.logger.Info("Found settlement", zap.String("settle_id", settleID.String()))

	detailRaw, err := s.client.GetEnvelope(ctx, "/settlement/load/bySettlementId/"+settleID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement detail: %w", err)
	}
	detail, err := upstream.DecodeDocument(detailRaw)
	if err != nil {
		return nil, err
	}
	return detail.Doc("SettlementInfo")
}
