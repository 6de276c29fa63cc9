package claims

import (
	"fmt"
	"strings"

	"github.com/neweco/claims-orchestrator/internal/upstream"
)

// The platform's external-claim-number field carries both caller-side
// identifiers as a composite "NE:<newEcoFnolId>;CH:<currHouseClaimId>"
// string. This is the only link between the caller's records and the
// upstream case, so encoding and decoding must round-trip exactly.

// EncodeExtClaimNo builds the composite external claim number.
func EncodeExtClaimNo(newEcoFnolID, currHouseClaimID string) string {
	return fmt.Sprintf("NE:%s;CH:%s", newEcoFnolID, currHouseClaimID)
}

// DecodeExtClaimNo splits a composite external claim number into its two
// constituent identifiers.
func DecodeExtClaimNo(extClaimNo string) (newEcoFnolID, currHouseClaimID string, err error) {
	parts := strings.Split(extClaimNo, ";")
	if len(parts) != 2 {
		return "", "", &upstream.LogicalError{
			Detail: fmt.Sprintf("malformed external claim number %q", extClaimNo),
		}
	}
	ne, okNE := strings.CutPrefix(parts[0], "NE:")
	ch, okCH := strings.CutPrefix(parts[1], "CH:")
	if !okNE || !okCH {
		return "", "", &upstream.LogicalError{
			Detail: fmt.Sprintf("malformed external claim number %q", extClaimNo),
		}
	}
	return ne, ch, nil
}
