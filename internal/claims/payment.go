package claims

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/neweco/claims-orchestrator/internal/refdata"
	"github.com/neweco/claims-orchestrator/internal/upstream"
)

// resolvedCodes carries the code-table translations a payment needs.
type resolvedCodes struct {
	causeOfLoss  string
	subclaimType string
	damageType   string
	severity     string
}

// CreatePayment settles an existing claim: it re-locates the claim by the
// caller's correlation id, attaches the policy, registers a subclaim with
// the selected coverage, submits the final settlement, and notifies the
// downstream consumer. The chain is strictly sequential and aborts on the
// first failure; there is no guard against re-running after a late failure,
// so a partially settled case must be resolved upstream.
func (s *Service) CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	// Step 1: the claim must already exist upstream.
	ref, err := s.findByExternalID(ctx, req.NewEcoFnolID, 1)
	if err != nil {
		return nil, err
	}

	// Steps 2-3: claim the registration task and fetch the claim document.
	taskID, err := s.nextClaimTask(ctx, ref.CaseID)
	if err != nil {
		return nil, err
	}
	if err := s.workOnTask(ctx, taskID); err != nil {
		return nil, err
	}
	claimCase, err := s.retrieveClaimByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	// Step 4: attach the policy skeleton and let the platform resolve it.
	s.logger.Info("Adding policy to the claim")
	if err := claimCase.Set(policyTemplate(ref.CaseID), "ClaimEntity", "PolicyEntity"); err != nil {
		return nil, err
	}
	model, err := s.client.PostEnvelope(ctx, "/claimhandling/retrievePolicy/", claimCase)
	if err != nil {
		return nil, fmt.Errorf("failed to add policy to the claim: %w", err)
	}
	entity, err := upstream.DecodeDocument(model)
	if err != nil {
		return nil, err
	}
	if err := claimCase.Set(map[string]any(entity), "ClaimEntity"); err != nil {
		return nil, err
	}

	// Steps 5-7: translate the caller's descriptions into platform codes.
	var codes resolvedCodes
	if codes.causeOfLoss, err = s.refdata.ResolveByProductLine(ctx, refdata.TableCauseOfLoss, req.CauseOfLoss); err != nil {
		return nil, err
	}
	if codes.subclaimType, err = s.refdata.ResolveByProductLine(ctx, refdata.TableSubclaimType, req.SubclaimType); err != nil {
		return nil, err
	}
	if codes.damageType, err = s.refdata.ResolveByProductLine(ctx, refdata.TableDamageType, req.DamageType); err != nil {
		return nil, err
	}

	// Steps 8-9: bucket the estimated loss into a severity code.
	if codes.severity, err = s.refdata.ResolveSeverity(ctx, req.EstimatedLoss); err != nil {
		return nil, err
	}

	// Step 10: selectable coverages for subclaim type, product and insured.
	s.logger.Info("Fetching selectable coverage list")
	insured, err := claimCase.FirstDoc("ClaimEntity", "PolicyEntity", "InsuredList")
	if err != nil {
		return nil, err
	}
	insuredID, err := insured.Value("@pk")
	if err != nil {
		return nil, err
	}
	productCode, err := claimCase.String("ClaimEntity", "ProductCode")
	if err != nil {
		return nil, err
	}
	coverageRaw, err := s.client.GetEnvelope(ctx,
		fmt.Sprintf("/claimhandling/subclaim/coverageList/%s/%s/%v", codes.subclaimType, productCode, insuredID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch coverage list: %w", err)
	}
	coverages, err := upstream.DecodeDocuments(coverageRaw)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Coverage list fetched", zap.Int("count", len(coverages)))

	// Step 11: compose the subclaim and submit claim registration.
	claimCase, err = s.submitRegistration(ctx, req, claimCase, codes, coverages)
	if err != nil {
		return nil, err
	}

	// Steps 12-13: claim the settlement task from the pool.
	settleTaskID, err := s.nextClaimTask(ctx, ref.CaseID)
	if err != nil {
		return nil, err
	}
	if err := s.workOnTask(ctx, settleTaskID); err != nil {
		return nil, err
	}

	// Step 14: fresh claim document for the settlement task.
	claimCase, err = s.retrieveClaimByTask(ctx, settleTaskID)
	if err != nil {
		return nil, err
	}

	// Steps 15-18: load the settlement structure and submit the settlement.
	if err := s.submitSettlement(ctx, req, ref, claimCase, settleTaskID); err != nil {
		return nil, err
	}

	// Step 19: tell the downstream consumer the payment is done.
	return s.notifyPaymentDone(ctx, ref)
}

// submitRegistration composes the subclaim, amends the claim document and
// submits claim registration, returning the platform's updated document.
func (s *Service) submitRegistration(ctx context.Context, req PaymentRequest, claimCase upstream.Document, codes resolvedCodes, coverages []upstream.Document) (upstream.Document, error) {
	s.logger.Info("Submitting claim registration")

	subclaim, err := s.composeSubclaim(req, claimCase, codes, coverages)
	if err != nil {
		return nil, err
	}

	// Tell the platform which object changed.
	if err := claimCase.Set([]any{
		upstream.Document{"IsActive": "Y", "Name": "001", "newSubclaim": true},
	}, "ClaimData", "ObjectDatas"); err != nil {
		return nil, err
	}

	// Denormalized claim-level fields.
	holderID, err := claimCase.Value("ClaimEntity", "PolicyHolderParty", "PtyPartyId")
	if err != nil {
		return nil, err
	}
	holderName, err := claimCase.String("ClaimEntity", "PolicyHolderParty", "PartyName")
	if err != nil {
		return nil, err
	}
	claimEntity, err := claimCase.Doc("ClaimEntity")
	if err != nil {
		return nil, err
	}
	claimEntity["PolicyholderId"] = holderID
	claimEntity["PolicyholderName"] = holderName
	claimEntity["TotalAmount"] = 0
	claimEntity["LossCause"] = codes.causeOfLoss
	claimEntity["ObjectList"] = []any{subclaim}

	model, err := s.client.PostEnvelope(ctx, "/registration/submitClaim", claimCase)
	if err != nil {
		return nil, fmt.Errorf("failed to submit claim registration: %w", err)
	}
	updated, err := upstream.DecodeDocument(model)
	if err != nil {
		return nil, err
	}
	if claimNo, err := updated.String("ClaimEntity", "ClaimNo"); err == nil {
		s.logger.Info("Claim registered", zap.String("claim_no", claimNo))
	}
	return updated, nil
}

// composeSubclaim builds the subclaim record from the request, the claim
// document's party lists and the resolved codes, with the caller's coverage
// selected and given its initial reserve.
func (s *Service) composeSubclaim(req PaymentRequest, claimCase upstream.Document, codes resolvedCodes, coverages []upstream.Document) (upstream.Document, error) {
	subclaim := upstream.Document{
		"@type":                 "ClaimObject-ClaimObject",
		"SeqNo":                 "001",
		"LitigationFlag":        defaultFlag(req.Litigation),
		"TotalLossFlag":         defaultFlag(req.TotalLoss),
		"IsSubrogation":         defaultFlag(req.HasSubrogation),
		"IsSalvage":             defaultFlag(req.HasSalvage),
		"EstimatedLossCurrency": "USD",
		"SubclaimType":          codes.subclaimType,
		"DamageType":            codes.damageType,
		"damageParty":           req.DamageParty,
		"RiskName":              req.DamageObject,
		"EstimatedLossAmount":   req.EstimatedLoss,
		"DamageSeverity":        codes.severity,
	}

	claimant, err := claimCase.FirstDoc("ClaimEntity", "ClaimPartyList")
	if err != nil {
		return nil, err
	}
	claimantID, err := claimant.Value("@pk")
	if err != nil {
		return nil, err
	}
	insured, err := claimCase.FirstDoc("ClaimEntity", "PolicyEntity", "InsuredList")
	if err != nil {
		return nil, err
	}
	insuredID, err := insured.Value("@pk")
	if err != nil {
		return nil, err
	}
	subclaim["ClaimParty"] = claimant
	subclaim["ClaimantId"] = claimantID
	subclaim["InsuredId"] = insuredID

	// Subclaim owner is matched by display name against the owner list.
	owners, err := claimCase.Docs("ClaimEntity", "OwnerList")
	if err != nil {
		return nil, err
	}
	var ownerID any
	for _, owner := range owners {
		if name, err := owner.String("RealName"); err == nil && name == req.ClaimOwner {
			if ownerID, err = owner.Value("UserId"); err != nil {
				return nil, err
			}
			break
		}
	}
	if ownerID == nil {
		return nil, &refdata.CodeLookupError{Table: "OwnerList", Description: req.ClaimOwner}
	}
	subclaim["OwnerId"] = ownerID

	addr, err := claimCase.Doc("ClaimEntity", "AddressVo")
	if err != nil {
		return nil, err
	}
	line1, _ := addr.String("AddressLine1")
	city, _ := addr.String("City")
	state, _ := addr.String("State")
	postCode, _ := addr.String("PostCode")
	subclaim["AccidentAddress1"] = fmt.Sprintf("%s, %s, %s %s", line1, city, state, postCode)

	// Select the requested coverage and seed its initial reserve.
	var selected upstream.Document
	for _, coverage := range coverages {
		if name, err := coverage.String("CoverageName"); err == nil && name == req.CoverageName {
			selected = coverage
			break
		}
	}
	if selected == nil {
		return nil, &refdata.CodeLookupError{Table: "CoverageList", Description: req.CoverageName}
	}
	selected["Selected"] = "1"
	selected["InitLossIndemnity"] = req.InitLossIndemnity
	selected["ItemCurrencyCode"] = "USD"
	coverageList := make([]any, len(coverages))
	for i, coverage := range coverages {
		coverageList[i] = coverage
	}
	subclaim["PolicyCoverageList"] = coverageList

	return subclaim, nil
}

// defaultFlag falls back to "N" for the optional loss flags.
func defaultFlag(v string) string {
	if v == "" {
		return "N"
	}
	return v
}

// notifyPaymentDone re-queries the canonical settlement and claim, attaches
// the caller's correlation ids and posts the composite payload to iHub.
func (s *Service) notifyPaymentDone(ctx context.Context, ref *claimRef) (*PaymentResult, error) {
	s.logger.Info("Notifying payment done")

	settleInfo, err := s.querySettlementInfo(ctx, ref.CaseID)
	if err != nil {
		return nil, err
	}
	settleInfo["newEcoFnolId"] = ref.NewEcoFnolID
	settleInfo["currHouseClaimId"] = ref.CurrHouseClaimID

	claimEntity, err := s.queryClaimByID(ctx, ref.CaseID)
	if err != nil {
		return nil, err
	}

	result := &PaymentResult{
		ClaimCase:      claimEntity,
		SettlementInfo: settleInfo,
	}
	if err := s.notifier.NotifyPaymentDone(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// queryClaimByID fetches a claim document directly by case id.
func (s *Service) queryClaimByID(ctx context.Context, caseID json.Number) (upstream.Document, error) {
	s.logger.Info("Querying claim by case ID", zap.String("case_id", caseID.String()))
	var doc upstream.Document
	if err := s.client.Get(ctx, "/claimhandling/caseForm/0/"+caseID.String(), &doc); err != nil {
		return nil, fmt.Errorf("failed to query claim %s: %w", caseID.String(), err)
	}
	return doc.Doc("ClaimEntity")
}
