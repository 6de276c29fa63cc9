package upstream

import "encoding/json"

// CodeItem is one entry of a platform code table: a human-readable
// description paired with the internal code the platform accepts.
type CodeItem struct {
	Description string `json:"Description"`
	Code        string `json:"Code"`
}

// ProductTreeNode is one node of the product line tree.
type ProductTreeNode struct {
	ID string `json:"id"`
}

// ProductTreeResponse wraps the product line tree listing.
type ProductTreeResponse struct {
	Model []ProductTreeNode `json:"Model"`
}

// ProductDetailResponse wraps the product detail lookup.
type ProductDetailResponse struct {
	Model struct {
		ProductTypeCode    string `json:"ProductTypeCode"`
		ProductDescription string `json:"ProductDescription"`
	} `json:"Model"`
}

// NoticeResponse wraps the result of a notice creation.
type NoticeResponse struct {
	Model struct {
		CaseIds  []json.Number `json:"CaseIds"`
		NoticeNo string        `json:"NoticeNo"`
	} `json:"Model"`
}

// ClaimTask is one pending workflow task for a claim case.
type ClaimTask struct {
	ID json.Number `json:"id"`
}

// ClaimTasksModel is the Model of a claim task query.
type ClaimTasksModel struct {
	LoadClaimTasks []ClaimTask `json:"loadClaimTasks"`
}

// ClaimTasksResponse wraps a claim task query.
type ClaimTasksResponse struct {
	Status string          `json:"Status"`
	Model  ClaimTasksModel `json:"Model"`
}

// SearchDoc is one indexed claim returned by the entity search.
type SearchDoc struct {
	ExtClaimNo string      `json:"ExtClaimNo"`
	CaseID     json.Number `json:"CaseId"`
}

// SearchResponse wraps the entity search result pages.
type SearchResponse struct {
	Results []struct {
		SolrDocs []SearchDoc `json:"SolrDocs"`
	} `json:"Results"`
}

// SettlementHistoryEntry is one record of a settlement history query.
type SettlementHistoryEntry struct {
	SettleID json.Number `json:"SettleId"`
}
