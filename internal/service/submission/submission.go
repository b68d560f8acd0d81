package submission

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"visionreporter/internal/logger"
	"visionreporter/internal/model"
	"visionreporter/internal/repository"
)

// ErrBusy is returned while another submission of the same session is pending.
var ErrBusy = errors.New("a submission is already in progress")

// Request is the evidence bundle of one user submission.
type Request struct {
	DetectedType string
	Description  string
	AISummary    string
	Coordinates  model.Coordinates
	LocationName string
	Photo        *string
	ReporterName string
}

// Service persists cases, one at a time.
type Service struct {
	repo    repository.CaseRepository
	logger  *logger.Logger
	pending atomic.Bool
}

// NewService creates a submission service on top of a case repository.
func NewService(repo repository.CaseRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Submit performs one durable write with status NEW and returns the case ID.
// A call made while another is in flight fails fast with ErrBusy. Failures are
// not retried.
func (s *Service) Submit(ctx context.Context, req Request) (string, error) {
	if !s.pending.CompareAndSwap(false, true) {
		s.logger.Warning("Submission rejected: %v", ErrBusy)
		return "", ErrBusy
	}
	defer s.pending.Store(false)

	c := &model.Case{
		DetectedType: model.StringPtr(req.DetectedType),
		Description:  req.Description,
		AISummary:    model.StringPtr(req.AISummary),
		GPSLat:       req.Coordinates.Lat,
		GPSLng:       req.Coordinates.Lng,
		LocationName: model.StringPtr(req.LocationName),
		Photo:        req.Photo,
		Status:       model.StatusNew,
		ReporterName: model.StringPtr(req.ReporterName),
	}

	id, err := s.repo.Insert(ctx, c)
	if err != nil {
		s.logger.Error("Failed to store case: %v", err)
		return "", fmt.Errorf("%w: %v", model.ErrTransientService, err)
	}

	s.logger.Info("📝 Case %s stored (type=%q, photo=%t, gps=%t)",
		id, req.DetectedType, req.Photo != nil, req.Coordinates.Known())
	return id, nil
}

// Pending reports whether a submission is in flight.
func (s *Service) Pending() bool {
	return s.pending.Load()
}
