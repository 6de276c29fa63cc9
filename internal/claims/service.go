// Package claims implements the two orchestration workflows against the
// claims platform: first notice of loss and payment/settlement. Each
// workflow is a strictly ordered chain of upstream calls that threads the
// claim case document from step to step and aborts on the first failure.
// There is no compensation: a failed chain may leave the upstream claim
// partially created.
package claims

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/neweco/claims-orchestrator/internal/ihub"
	"github.com/neweco/claims-orchestrator/internal/refdata"
	"github.com/neweco/claims-orchestrator/internal/upstream"
)

// Config holds the business constants the workflows depend on.
type Config struct {
	// OrganID is the organizational branch the notice is filed under.
	OrganID int64
	// ProductTreeIndex is the position of the active product in the product
	// line tree. Positional selection is the tenant's current business
	// configuration; do not replace with a lookup by name.
	ProductTreeIndex int
}

// Service orchestrates the FNOL and payment workflows.
type Service struct {
	client   *upstream.Client
	refdata  *refdata.Resolver
	notifier *ihub.Notifier
	cfg      Config
	logger   *zap.Logger
}

// NewService creates a new claims workflow service
func NewService(client *upstream.Client, resolver *refdata.Resolver, notifier *ihub.Notifier, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		client:   client,
		refdata:  resolver,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// FNOLRequest is the caller-facing shape of a first notice of loss.
type FNOLRequest struct {
	NewEcoFnolID        string          `json:"newEcoFnolId" binding:"required"`
	CurrHouseClaimID    string          `json:"currHouseClaimId" binding:"required"`
	PolicyNo            string          `json:"policyNo" binding:"required"`
	DateOfLoss          string          `json:"dateOfLoss" binding:"required"`
	DateOfNotification  string          `json:"dateOfNotification" binding:"required"`
	PolicyholderName    string          `json:"policyholderName" binding:"required"`
	Contact             FNOLContact     `json:"contact" binding:"required"`
	AccidentDescription string          `json:"accidentDescription"`
	AccidentAddress     AccidentAddress `json:"accidentAddress" binding:"required"`
}

// FNOLContact identifies the person reporting the loss.
type FNOLContact struct {
	Name      string `json:"name" binding:"required"`
	Telephone string `json:"telephone"`
}

// AccidentAddress is the structured location of the loss.
type AccidentAddress struct {
	City         string `json:"city"`
	State        string `json:"state"`
	AddressLine1 string `json:"addressLine1"`
	PostCode     string `json:"postCode"`
}

// PaymentRequest is the caller-facing shape of a payment/settlement.
type PaymentRequest struct {
	NewEcoFnolID       string  `json:"newEcoFnolId" binding:"required"`
	CauseOfLoss        string  `json:"causeOfLoss" binding:"required"`
	DamageType         string  `json:"damageType" binding:"required"`
	SubclaimType       string  `json:"subclaimType" binding:"required"`
	EstimatedLoss      float64 `json:"estimatedLoss"`
	Litigation         string  `json:"litigation"`
	TotalLoss          string  `json:"totalLoss"`
	HasSubrogation     string  `json:"hasSubrogation"`
	HasSalvage         string  `json:"hasSalvage"`
	DamageParty        string  `json:"damageParty"`
	DamageObject       string  `json:"damageObject"`
	ClaimOwner         string  `json:"claimOwner" binding:"required"`
	CoverageName       string  `json:"coverageName" binding:"required"`
	InitLossIndemnity  float64 `json:"initLossIndemnity"`
	PaymentMethod      string  `json:"paymentMethod" binding:"required"`
	PaymentType        string  `json:"paymentType" binding:"required"`
	PartialFinalOption string  `json:"partialFinalOption"`
	SettleAmount       float64 `json:"settleAmount"`
}

// PaymentResult is the composite payload returned by the payment workflow
// and posted to the downstream notification endpoint.
type PaymentResult struct {
	ClaimCase      upstream.Document `json:"claimCase"`
	SettlementInfo upstream.Document `json:"settlementInfo"`
}

type workOnTaskRequest struct {
	TaskInstanceID json.Number `json:"TaskInstanceId"`
	AssignTo       string      `json:"AssignTo"`
}

// nextClaimTask queries the pending workflow tasks for a case and returns
// the first one.
func (s *Service) nextClaimTask(ctx context.Context, caseID json.Number) (json.Number, error) {
	s.logger.Info("Querying claim tasks", zap.String("case_id", caseID.String()))
	var resp upstream.ClaimTasksResponse
	if err := s.client.Get(ctx, "/workflow/claimTasks/"+caseID.String()+"/false", &resp); err != nil {
		return "", fmt.Errorf("failed to query claim tasks: %w", err)
	}
	if resp.Status != "OK" {
		return "", &upstream.LogicalError{
			Path:   "/workflow/claimTasks",
			Detail: fmt.Sprintf("status %q", resp.Status),
		}
	}
	if len(resp.Model.LoadClaimTasks) == 0 {
		return "", &upstream.LogicalError{
			Path:   "/workflow/claimTasks",
			Detail: "no pending task for case " + caseID.String(),
		}
	}
	taskID := resp.Model.LoadClaimTasks[0].ID
	s.logger.Info("Found claim task", zap.String("task_id", taskID.String()))
	return taskID, nil
}

// workOnTask claims a task from the shared pool. The task must be claimed
// before its claim document becomes retrievable.
func (s *Service) workOnTask(ctx context.Context, taskID json.Number) error {
	s.logger.Info("Working on claim task", zap.String("task_id", taskID.String()))
	payload := workOnTaskRequest{TaskInstanceID: taskID, AssignTo: "pool"}
	if err := s.client.Post(ctx, "/workflow/workOnAssignForPool", payload, nil); err != nil {
		return fmt.Errorf("failed to work on claim task %s: %w", taskID.String(), err)
	}
	return nil
}

// retrieveClaimByTask fetches the full claim case document for a claimed task.
func (s *Service) retrieveClaimByTask(ctx context.Context, taskID json.Number) (upstream.Document, error) {
	s.logger.Info("Retrieving claim by task ID", zap.String("task_id", taskID.String()))
	var doc upstream.Document
	if err := s.client.Get(ctx, "/claimhandling/caseForm/"+taskID.String()+"/0", &doc); err != nil {
		return nil, fmt.Errorf("failed to retrieve claim by task %s: %w", taskID.String(), err)
	}
	if claimNo, err := doc.String("ClaimEntity", "ClaimNo"); err == nil {
		s.logger.Info("Claim retrieved", zap.String("claim_no", claimNo))
	}
	return doc, nil
}
