package model

import "testing"

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     Status
		to       Status
		expected bool
	}{
		{StatusNew, StatusInProgress, true},
		{StatusNew, StatusResolved, true},
		{StatusInProgress, StatusResolved, true},
		{StatusInProgress, StatusNew, false},
		{StatusResolved, StatusInProgress, false},
		{StatusResolved, StatusResolved, false},
		{StatusNew, Status("CLOSED"), false},
		{Status(""), StatusNew, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
			t.Errorf("%q.CanTransitionTo(%q) = %v, expected %v", tt.from, tt.to, got, tt.expected)
		}
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusInProgress, StatusResolved} {
		if !s.Valid() {
			t.Errorf("Expected %q to be valid", s)
		}
	}
	if Status("new").Valid() {
		t.Error("Status values are case sensitive")
	}
}

func TestCoordinates_Known(t *testing.T) {
	lat, lng := -23.9, 29.4
	if (Coordinates{}).Known() {
		t.Error("Empty coordinates should not be known")
	}
	if (Coordinates{Lat: &lat}).Known() {
		t.Error("Coordinates without longitude should not be known")
	}
	if !(Coordinates{Lat: &lat, Lng: &lng}).Known() {
		t.Error("Expected coordinates to be known")
	}
}

func TestStringPtr(t *testing.T) {
	if StringPtr("") != nil {
		t.Error("Expected nil for empty string")
	}
	if p := StringPtr("pothole"); p == nil || *p != "pothole" {
		t.Errorf("Expected pointer to pothole, got %v", p)
	}
}
