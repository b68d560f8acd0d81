package dto

import (
	"encoding/json"
	"visionreporter/internal/model"
)

// CaseInfo is a Case as shown on the dashboard.
type CaseInfo struct {
	model.Case
}

// MarshalJSON adds a human readable creation time next to the raw timestamp.
func (c CaseInfo) MarshalJSON() ([]byte, error) {
	type Alias model.Case
	return json.Marshal(&struct {
		Reported string `json:"reported"`
		Alias
	}{
		Reported: c.CreatedAt.Local().Format("02-01-2006 15:04"),
		Alias:    (Alias)(c.Case),
	})
}

// CasesData is a paginated response payload for the case listing.
type CasesData struct {
	Cases       []CaseInfo `json:"cases"`
	Length      int        `json:"length"`
	TotalPages  int        `json:"totalPages"`
	CurrentPage int        `json:"currentPage"`
	Limit       int        `json:"pageSize"`
}

// StatusUpdate is the operator request to move a case forward.
type StatusUpdate struct {
	ID     string       `json:"id"`
	Status model.Status `json:"status"`
}

// ReportRequest is the body accepted by the report drafting endpoint.
type ReportRequest struct {
	ObjectName string `json:"objectName"`
}

// ReportResponse is the body returned by the report drafting endpoint.
type ReportResponse struct {
	Report string `json:"report"`
}
