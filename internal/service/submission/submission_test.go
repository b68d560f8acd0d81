package submission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"visionreporter/internal/logger"
	"visionreporter/internal/model"
)

type fakeRepo struct {
	mu      sync.Mutex
	cases   []model.Case
	err     error
	started chan struct{}
	release chan struct{}
}

func (r *fakeRepo) Insert(ctx context.Context, c *model.Case) (string, error) {
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.release != nil {
		<-r.release
	}
	if r.err != nil {
		return "", r.err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = "case-" + string(rune('a'+len(r.cases)))
	c.CreatedAt = time.Now()
	r.cases = append(r.cases, *c)
	return c.ID, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*model.Case, error) {
	return nil, model.ErrNotFound
}

func (r *fakeRepo) GetAll(ctx context.Context, filter *model.CaseFilter) ([]model.Case, error) {
	return r.cases, nil
}

func (r *fakeRepo) GetTotalCount(ctx context.Context, filter *model.CaseFilter) (int, error) {
	return len(r.cases), nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	return nil
}

func TestSubmit_WithoutEvidence(t *testing.T) {
	repo := &fakeRepo{}
	s := NewService(repo, logger.Discard())

	id, err := s.Submit(context.Background(), Request{Description: "Broken streetlight"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if id == "" {
		t.Fatal("Expected a case ID")
	}
	if len(repo.cases) != 1 {
		t.Fatalf("Expected 1 case, got %d", len(repo.cases))
	}

	c := repo.cases[0]
	if c.Status != model.StatusNew {
		t.Errorf("Expected status NEW, got %s", c.Status)
	}
	if c.Photo != nil || c.GPSLat != nil || c.GPSLng != nil {
		t.Errorf("Expected absent evidence, got %+v", c)
	}
	if c.DetectedType != nil || c.AISummary != nil || c.ReporterName != nil {
		t.Errorf("Expected nil optional fields, got %+v", c)
	}
}

func TestSubmit_MapsEvidence(t *testing.T) {
	repo := &fakeRepo{}
	s := NewService(repo, logger.Discard())

	lat, lng := -23.9, 29.4
	photo := "data:image/jpeg;base64,AA=="
	_, err := s.Submit(context.Background(), Request{
		DetectedType: "pothole",
		Description:  "Deep hole",
		AISummary:    "Formal text",
		Coordinates:  model.Coordinates{Lat: &lat, Lng: &lng},
		LocationName: "Polokwane",
		Photo:        &photo,
		ReporterName: "Thabo",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	c := repo.cases[0]
	if *c.DetectedType != "pothole" || *c.AISummary != "Formal text" || *c.LocationName != "Polokwane" {
		t.Errorf("Unexpected text fields %+v", c)
	}
	if *c.GPSLat != lat || *c.GPSLng != lng || *c.Photo != photo || *c.ReporterName != "Thabo" {
		t.Errorf("Unexpected evidence %+v", c)
	}
}

func TestSubmit_BusyWhilePending(t *testing.T) {
	repo := &fakeRepo{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := NewService(repo, logger.Discard())

	first := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), Request{Description: "first tap"})
		first <- err
	}()
	<-repo.started

	if !s.Pending() {
		t.Error("Expected a pending submission")
	}

	for i := 0; i < 3; i++ {
		if _, err := s.Submit(context.Background(), Request{Description: "rapid tap"}); !errors.Is(err, ErrBusy) {
			t.Errorf("Expected ErrBusy, got %v", err)
		}
	}

	close(repo.release)
	if err := <-first; err != nil {
		t.Fatalf("First submission failed: %v", err)
	}

	if len(repo.cases) != 1 {
		t.Errorf("Expected exactly one case, got %d", len(repo.cases))
	}
	if s.Pending() {
		t.Error("Expected no pending submission after completion")
	}
}

func TestSubmit_StoreFailure(t *testing.T) {
	repo := &fakeRepo{err: errors.New("database is locked")}
	s := NewService(repo, logger.Discard())

	_, err := s.Submit(context.Background(), Request{Description: "leak"})
	if !errors.Is(err, model.ErrTransientService) {
		t.Errorf("Expected ErrTransientService, got %v", err)
	}

	// Manual retry is possible once the store recovers.
	repo.err = nil
	if _, err := s.Submit(context.Background(), Request{Description: "leak"}); err != nil {
		t.Errorf("Expected retry to succeed, got %v", err)
	}
}
