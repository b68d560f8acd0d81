package location

import (
	"context"
	"fmt"
	"sync"

	"visionreporter/internal/model"
)

// ShellLocator waits for the UI shell to report the browser's position.
type ShellLocator struct {
	once sync.Once
	ch   chan fix
}

type fix struct {
	lat, lng float64
	err      error
}

// NewShellLocator creates a locator fed by Report or Deny.
func NewShellLocator() *ShellLocator {
	return &ShellLocator{ch: make(chan fix, 1)}
}

// Report delivers the position. Only the first Report or Deny counts.
func (l *ShellLocator) Report(lat, lng float64) {
	l.deliver(fix{lat: lat, lng: lng})
}

// Deny records that permission was refused or geolocation is missing.
func (l *ShellLocator) Deny(reason string) {
	l.deliver(fix{err: fmt.Errorf("geolocation denied (%s): %w", reason, model.ErrCapabilityUnavailable)})
}

func (l *ShellLocator) deliver(f fix) {
	l.once.Do(func() {
		l.ch <- f
	})
}

// Locate implements Locator. It blocks until the shell answers or ctx ends.
func (l *ShellLocator) Locate(ctx context.Context) (float64, float64, error) {
	select {
	case f := <-l.ch:
		return f.lat, f.lng, f.err
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	}
}
