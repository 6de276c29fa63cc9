package claims

import (
	"encoding/json"

	"github.com/neweco/claims-orchestrator/internal/upstream"
)

// policyTemplate builds the fixed policy skeleton attached to a claim before
// registration. The platform fills in the real policy data when the claim is
// resubmitted through the retrievePolicy call; only the case id varies per
// invocation. Built fresh on every call so no two workflows share state.
func policyTemplate(caseID json.Number) upstream.Document {
	return upstream.Document{
		"@type":      "ClaimPolicy-ClaimPolicy",
		"caseId":     caseID,
		"PolicyType": "1",
		"InsuredList": []any{
			upstream.Document{
				"@type":       "ClaimPolicyInsured-ClaimPolicyInsured",
				"InsuredType": "1",
				"SeqNo":       1,
			},
		},
	}
}
