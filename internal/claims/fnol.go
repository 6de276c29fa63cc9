package claims

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/neweco/claims-orchestrator/internal/refdata"
	"github.com/neweco/claims-orchestrator/internal/upstream"
)

// noticeCreateRequest is the notice submission payload.
type noticeCreateRequest struct {
	Type                string        `json:"@type"`
	AccidentTime        string        `json:"AccidentTime"`
	NoticeTime          string        `json:"NoticeTime"`
	ProductTypeCode     string        `json:"ProductTypeCode"`
	ProductCode         string        `json:"ProductCode"`
	ProductName         string        `json:"ProductName"`
	PolicyNo            string        `json:"PolicyNo"`
	PolicyBranch        int64         `json:"PolicyBranch"`
	PolicyHolderName    string        `json:"PolicyHolderName"`
	ContactPerson       string        `json:"ContactPerson"`
	ContactTelephone    string        `json:"ContactTelephone"`
	AccidentDescription string        `json:"AccidentDescription"`
	NoticeStatus        string        `json:"NoticeStatus"`
	ContactType         string        `json:"ContactType"`
	AddressVo           noticeAddress `json:"AddressVo"`
}

type noticeAddress struct {
	Country      string `json:"Country"`
	City         string `json:"City"`
	State        string `json:"State"`
	AddressLine1 string `json:"AddressLine1"`
	PostCode     string `json:"PostCode"`
}

// CreateFNOL files a first notice of loss and drives the resulting claim
// through registration, linking it to the caller's correlation ids via the
// composite external claim number. The step chain is strictly sequential
// and aborts on the first failure.
func (s *Service) CreateFNOL(ctx context.Context, req FNOLRequest) (upstream.Document, error) {
	// The correlation id must not already exist upstream.
	if _, err := s.findByExternalID(ctx, req.NewEcoFnolID, 0); err != nil {
		return nil, err
	}

	// Step 1: product line tree; the active product is picked by position.
	s.logger.Info("Fetching product tree")
	var tree upstream.ProductTreeResponse
	if err := s.client.Get(ctx, "/productTree/productLineTree", &tree); err != nil {
		return nil, fmt.Errorf("failed to fetch product tree: %w", err)
	}
	if s.cfg.ProductTreeIndex >= len(tree.Model) {
		return nil, &upstream.LogicalError{
			Path:   "/productTree/productLineTree",
			Detail: fmt.Sprintf("product tree has %d nodes, need index %d", len(tree.Model), s.cfg.ProductTreeIndex),
		}
	}
	productCode := tree.Model[s.cfg.ProductTreeIndex].ID
	s.logger.Info("Selected product", zap.String("product_code", productCode))

	// Step 2: product detail.
	s.logger.Info("Fetching product detail")
	var detail upstream.ProductDetailResponse
	if err := s.client.Get(ctx, "/product/productDetailByProductCode/"+productCode, &detail); err != nil {
		return nil, fmt.Errorf("failed to fetch product detail: %w", err)
	}
	s.logger.Info("Product detail fetched",
		zap.String("product_type_code", detail.Model.ProductTypeCode),
		zap.String("product_description", detail.Model.ProductDescription))

	// Step 3: contact type code for "Insured".
	s.logger.Info("Fetching contact types")
	contactTypes, err := s.refdata.List(ctx, refdata.TableContactType)
	if err != nil {
		return nil, err
	}
	contactType, err := refdata.Resolve(refdata.TableContactType, "Insured", contactTypes)
	if err != nil {
		return nil, err
	}

	// Step 4: submit the notice.
	s.logger.Info("Submitting FNOL")
	notice := noticeCreateRequest{
		Type:                "ClaimNotice-ClaimNotice",
		AccidentTime:        req.DateOfLoss,
		NoticeTime:          req.DateOfNotification,
		ProductTypeCode:     detail.Model.ProductTypeCode,
		ProductCode:         productCode,
		ProductName:         detail.Model.ProductDescription,
		PolicyNo:            req.PolicyNo,
		PolicyBranch:        s.cfg.OrganID,
		PolicyHolderName:    req.PolicyholderName,
		ContactPerson:       req.Contact.Name,
		ContactTelephone:    req.Contact.Telephone,
		AccidentDescription: req.AccidentDescription,
		NoticeStatus:        "CLOSED",
		ContactType:         contactType,
		AddressVo: noticeAddress{
			Country:      "US",
			City:         req.AccidentAddress.City,
			State:        req.AccidentAddress.State,
			AddressLine1: req.AccidentAddress.AddressLine1,
			PostCode:     req.AccidentAddress.PostCode,
		},
	}
	var noticeResp upstream.NoticeResponse
	if err := s.client.Post(ctx, "/notice/creation", notice, &noticeResp); err != nil {
		return nil, fmt.Errorf("failed to submit FNOL: %w", err)
	}
	if len(noticeResp.Model.CaseIds) == 0 {
		return nil, &upstream.LogicalError{Path: "/notice/creation", Detail: "no case id in notice response"}
	}
	caseID := noticeResp.Model.CaseIds[0]
	s.logger.Info("FNOL submitted",
		zap.String("case_id", caseID.String()),
		zap.String("notice_no", noticeResp.Model.NoticeNo))

	// Steps 5-6: take the claim registration task and claim it from the pool.
	taskID, err := s.nextClaimTask(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := s.workOnTask(ctx, taskID); err != nil {
		return nil, err
	}

	// Step 7: retrieve the full claim document.
	claimCase, err := s.retrieveClaimByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	// Steps 8-9: link the caller's correlation ids and save the claim.
	extClaimNo := EncodeExtClaimNo(req.NewEcoFnolID, req.CurrHouseClaimID)
	if err := claimCase.Set(extClaimNo, "ClaimEntity", "ExtClaimNo"); err != nil {
		return nil, err
	}
	s.logger.Info("Updating claim registration", zap.String("ext_claim_no", extClaimNo))

	var saveResp struct {
		Model upstream.Document `json:"Model"`
	}
	if err := s.client.Post(ctx, "/registration/saveClaim", claimCase, &saveResp); err != nil {
		return nil, fmt.Errorf("failed to update claim registration: %w", err)
	}
	claimEntity, err := saveResp.Model.Doc("ClaimEntity")
	if err != nil {
		return nil, err
	}
	return claimEntity, nil
}
