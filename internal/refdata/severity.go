package refdata

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/neweco/claims-orchestrator/internal/upstream"
)

// Damage severity labels as they appear in the severity code table.
const (
	SeveritySmall  = "Small"
	SeverityMedium = "Medium"
	SeverityHigh   = "High"
)

// ClassifySeverity buckets an estimated loss against the two thresholds.
// Comparisons are strict less-than: a loss exactly equal to a threshold
// falls into the higher bucket.
func ClassifySeverity(estimatedLoss, mediumLoss, highLoss float64) string {
	switch {
	case estimatedLoss < mediumLoss:
		return SeveritySmall
	case estimatedLoss < highLoss:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// ResolveSeverity fetches the severity code list and the threshold table,
// classifies the estimated loss and returns the severity code.
func (r *Resolver) ResolveSeverity(ctx context.Context, estimatedLoss float64) (string, error) {
	severities, err := r.ListByProductLine(ctx, TableDamageSeverity)
	if err != nil {
		return "", err
	}

	thresholds, err := r.ListByProductLine(ctx, TableSeverityThreshold)
	if err != nil {
		return "", err
	}

	mediumLoss, err := thresholdValue(thresholds, "MediumLoss")
	if err != nil {
		return "", err
	}
	highLoss, err := thresholdValue(thresholds, "HighLoss")
	if err != nil {
		return "", err
	}

	label := ClassifySeverity(estimatedLoss, mediumLoss, highLoss)
	r.logger.Info("Classified damage severity",
		zap.Float64("estimated_loss", estimatedLoss),
		zap.String("severity", label))

	return Resolve(TableDamageSeverity, label, severities)
}

// thresholdValue resolves a threshold entry and parses its code, which the
// platform stores as a numeric string.
func thresholdValue(items []upstream.CodeItem, description string) (float64, error) {
	code, err := Resolve(TableSeverityThreshold, description, items)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(code, 64)
	if err != nil {
		return 0, &upstream.LogicalError{
			Detail: fmt.Sprintf("threshold %s has non-numeric code %q", description, code),
		}
	}
	return value, nil
}
