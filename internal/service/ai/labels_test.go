package ai

import (
	"testing"
	"visionreporter/internal/dto"
)

func TestClassLabel(t *testing.T) {
	cases := map[int]string{
		1:  "person",
		10: "traffic light",
		13: "stop sign",
		90: "toothbrush",
		12: "unknown_12",
		0:  "unknown_0",
	}
	for id, want := range cases {
		if got := ClassLabel(id); got != want {
			t.Errorf("ClassLabel(%d) = %q, want %q", id, got, want)
		}
	}
}

func TestClampBox(t *testing.T) {
	got := clampBox(-10, -5, 50, 40, 100, 100)
	want := dto.Box{X: 0, Y: 0, Width: 40, Height: 35}
	if got != want {
		t.Errorf("clampBox negative origin = %+v, want %+v", got, want)
	}

	got = clampBox(80, 90, 50, 50, 100, 100)
	want = dto.Box{X: 80, Y: 90, Width: 20, Height: 10}
	if got != want {
		t.Errorf("clampBox overflow = %+v, want %+v", got, want)
	}

	got = clampBox(120, 0, 10, 10, 100, 100)
	if got.Width != 0 {
		t.Errorf("clampBox outside frame width = %d, want 0", got.Width)
	}
}
