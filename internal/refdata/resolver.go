// Package refdata fetches the platform's code tables and translates
// human-readable descriptions into the internal codes the platform accepts.
package refdata

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/neweco/claims-orchestrator/internal/upstream"
)

// Code table identifiers on the claims platform.
const (
	TableCauseOfLoss       = "1006"
	TableSubclaimType      = "1007"
	TableContactType       = "1026"
	TableDamageType        = "1027"
	TableDamageSeverity    = "1050"
	TableSeverityThreshold = "74915434"
	TablePaymentMethod     = "75283381"
	TablePartialFinal      = "1000"
)

// CodeLookupError is returned when no code table entry's description equals
// the requested description exactly.
type CodeLookupError struct {
	Table       string
	Description string
}

func (e *CodeLookupError) Error() string {
	return fmt.Sprintf("no entry in code table %s matches description %q", e.Table, e.Description)
}

// Resolver fetches code tables and resolves descriptions to codes.
type Resolver struct {
	client          *upstream.Client
	productLineCode string
	logger          *zap.Logger
}

// NewResolver creates a new code table resolver
func NewResolver(client *upstream.Client, productLineCode string, logger *zap.Logger) *Resolver {
	return &Resolver{
		client:          client,
		productLineCode: productLineCode,
		logger:          logger,
	}
}

// List fetches an unfiltered code table.
func (r *Resolver) List(ctx context.Context, tableID string) ([]upstream.CodeItem, error) {
	var items []upstream.CodeItem
	if err := r.client.Get(ctx, "/public/codetable/data/list/"+tableID, &items); err != nil {
		return nil, fmt.Errorf("failed to fetch code table %s: %w", tableID, err)
	}
	r.logger.Debug("Fetched code table",
		zap.String("table", tableID),
		zap.Int("entries", len(items)))
	return items, nil
}

// ListByProductLine fetches a code table filtered by the configured product
// line code.
func (r *Resolver) ListByProductLine(ctx context.Context, tableID string) ([]upstream.CodeItem, error) {
	body := map[string]string{"PRODUCT_LINE_CODE": r.productLineCode}
	var items []upstream.CodeItem
	if err := r.client.Post(ctx, "/public/codetable/data/condition/"+tableID, body, &items); err != nil {
		return nil, fmt.Errorf("failed to fetch code table %s: %w", tableID, err)
	}
	r.logger.Debug("Fetched code table",
		zap.String("table", tableID),
		zap.String("product_line", r.productLineCode),
		zap.Int("entries", len(items)))
	return items, nil
}

// Resolve returns the code whose description equals description exactly.
// Matching is case-sensitive; there is no fuzzy fallback.
func Resolve(table, description string, items []upstream.CodeItem) (string, error) {
	for _, item := range items {
		if item.Description == description {
			return item.Code, nil
		}
	}
	return "", &CodeLookupError{Table: table, Description: description}
}

// ResolveByProductLine fetches a product-line-filtered table and resolves a
// description against it in one step.
func (r *Resolver) ResolveByProductLine(ctx context.Context, tableID, description string) (string, error) {
	items, err := r.ListByProductLine(ctx, tableID)
	if err != nil {
		return "", err
	}
	return Resolve(tableID, description, items)
}
