package model

import "time"

// Status is the lifecycle state of a Case.
type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
)

var statusRank = map[Status]int{
	StatusNew:        0,
	StatusInProgress: 1,
	StatusResolved:   2,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next goes strictly forward.
func (s Status) CanTransitionTo(next Status) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Coordinates is a device position. Both fields stay nil until a fix is obtained.
type Coordinates struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// Known reports whether both latitude and longitude are set.
func (c Coordinates) Known() bool {
	return c.Lat != nil && c.Lng != nil
}

// Case is a persisted incident record.
type Case struct {
	ID           string    `json:"id"`
	DetectedType *string   `json:"detectedType"`
	Description  string    `json:"description"`
	AISummary    *string   `json:"aiSummary"`
	GPSLat       *float64  `json:"gpsLat"`
	GPSLng       *float64  `json:"gpsLng"`
	LocationName *string   `json:"locationName"`
	Photo        *string   `json:"photo"` // data URL of the evidence snapshot
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	ReporterName *string   `json:"reporterName,omitempty"`
}

// CaseFilter contains filtering options for querying cases.
type CaseFilter struct {
	Status Status
	Limit  int
	Offset int
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
