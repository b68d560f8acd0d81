package location

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"visionreporter/internal/logger"
	"visionreporter/internal/model"
)

// Sentinel place names.
const (
	NotAvailable = "Location not available" // coordinates known, lookup failed
	Unavailable  = "Location unavailable"   // no coordinates at all
	Pending      = "Locating..."
)

// Locator performs a one-shot device position request.
type Locator interface {
	Locate(ctx context.Context) (lat, lng float64, err error)
}

// Geocoder resolves coordinates into a human readable place name.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

// Result is the evidence produced by the location service.
type Result struct {
	Coordinates model.Coordinates `json:"coordinates"`
	Name        string            `json:"name"`
	Done        bool              `json:"done"`
}

// Service acquires the position once per session, best effort.
type Service struct {
	locator  Locator
	geocoder Geocoder
	logger   *logger.Logger

	once   sync.Once
	mu     sync.RWMutex
	result Result
	done   chan struct{}
	notify func(Result)
}

// NewService creates a Service. geocoder may be nil.
func NewService(locator Locator, geocoder Geocoder, logger *logger.Logger) *Service {
	return &Service{
		locator:  locator,
		geocoder: geocoder,
		logger:   logger,
		result:   Result{Name: Pending},
		done:     make(chan struct{}),
	}
}

// OnResolved registers a callback invoked once with the final result.
// Must be called before Start.
func (s *Service) OnResolved(fn func(Result)) {
	s.notify = fn
}

// Start launches the lookup in the background. Only the first call has an effect.
func (s *Service) Start(ctx context.Context) {
	s.once.Do(func() {
		go s.resolve(ctx)
	})
}

// Done is closed when the lookup finished, whatever the outcome.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Current returns what is known right now. Never blocks.
func (s *Service) Current() Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

func (s *Service) resolve(ctx context.Context) {
	defer close(s.done)

	result := s.lookup(ctx)
	result.Done = true

	s.mu.Lock()
	s.result = result
	s.mu.Unlock()

	if s.notify != nil {
		s.notify(result)
	}
}

func (s *Service) lookup(ctx context.Context) Result {
	if s.locator == nil {
		return Result{Name: Unavailable}
	}

	lat, lng, err := s.locator.Locate(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warning("📍 Geolocation unavailable: %v", err)
		}
		return Result{Name: Unavailable}
	}

	coords := model.Coordinates{Lat: &lat, Lng: &lng}

	s.mu.Lock()
	s.result = Result{Coordinates: coords, Name: Pending}
	s.mu.Unlock()

	if s.geocoder == nil {
		return Result{Coordinates: coords, Name: NotAvailable}
	}

	name, err := s.geocoder.Reverse(ctx, lat, lng)
	if err != nil || name == "" {
		s.logger.Warning("📍 Reverse geocoding failed for %.5f,%.5f: %v", lat, lng, err)
		return Result{Coordinates: coords, Name: NotAvailable}
	}

	s.logger.Info("📍 Located at %s", name)
	return Result{Coordinates: coords, Name: name}
}

// StaticLocator reports a fixed position, typically from configuration.
type StaticLocator struct {
	Lat, Lng *float64
}

// Locate implements Locator.
func (l StaticLocator) Locate(ctx context.Context) (float64, float64, error) {
	if l.Lat == nil || l.Lng == nil {
		return 0, 0, fmt.Errorf("no device position configured: %w", model.ErrCapabilityUnavailable)
	}
	return *l.Lat, *l.Lng, nil
}
