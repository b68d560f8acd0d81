package dto

// DescriptionUpdate is the body of a description edit.
type DescriptionUpdate struct {
	Description string `json:"description"`
}

// SubmitResponse is returned when a case was stored.
type SubmitResponse struct {
	ID string `json:"id"`
}

// ShellMessage is an inbound message from the UI shell over the view socket.
type ShellMessage struct {
	Type   string   `json:"type"`
	Lat    *float64 `json:"lat,omitempty"`
	Lng    *float64 `json:"lng,omitempty"`
	Denied bool     `json:"denied,omitempty"`
	Reason string   `json:"reason,omitempty"`
}
