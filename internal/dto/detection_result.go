package dto

import "fmt"

// Box is a bounding box in frame pixels.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DetectionResult is one labeled box produced by a single inference cycle.
type DetectionResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"` // 0-1
	Box        Box     `json:"box"`
}

// Caption renders the annotation text, e.g. "pothole (87.5%)".
func (d DetectionResult) Caption() string {
	return fmt.Sprintf("%s (%.1f%%)", d.Label, d.Confidence*100)
}
