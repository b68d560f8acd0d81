package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"visionreporter/internal/model"
)

// ========================================
// Test Setup Helpers
// ========================================

func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "cases_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	db, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to create test database: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.RemoveAll(tempDir)
	}

	return db, cleanup
}

func ptr[T any](v T) *T { return &v }

// ========================================
// Case Repository Tests
// ========================================

func TestCaseRepository_Insert_AssignsIDStatusAndTime(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCaseRepository(db)
	ctx := context.Background()

	c := &model.Case{
		DetectedType: ptr("pothole"),
		Description:  "Large pothole near taxi rank",
		AISummary:    ptr("A pothole was observed."),
		GPSLat:       ptr(-23.9045),
		GPSLng:       ptr(29.4689),
		LocationName: ptr("Polokwane"),
		Photo:        ptr("data:image/jpeg;base64,AAAA"),
		ReporterName: ptr("Thabo"),
	}

	id, err := repo.Insert(ctx, c)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if id == "" || c.ID != id {
		t.Fatalf("Expected assigned ID, got %q (case %q)", id, c.ID)
	}
	if c.Status != model.StatusNew {
		t.Errorf("Expected status NEW, got %s", c.Status)
	}
	if c.CreatedAt.IsZero() {
		t.Error("Expected creation time to be assigned")
	}

	stored, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.DetectedType == nil || *stored.DetectedType != "pothole" {
		t.Errorf("Expected detected type pothole, got %v", stored.DetectedType)
	}
	if stored.GPSLat == nil || *stored.GPSLat != -23.9045 {
		t.Errorf("Expected latitude -23.9045, got %v", stored.GPSLat)
	}
	if stored.ReporterName == nil || *stored.ReporterName != "Thabo" {
		t.Errorf("Expected reporter Thabo, got %v", stored.ReporterName)
	}
	if stored.Status != model.StatusNew {
		t.Errorf("Expected stored status NEW, got %s", stored.Status)
	}
}

func TestCaseRepository_Insert_NullableFields(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCaseRepository(db)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &model.Case{})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	stored, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if stored.DetectedType != nil || stored.AISummary != nil || stored.Photo != nil {
		t.Errorf("Expected nil text fields, got %+v", stored)
	}
	if stored.GPSLat != nil || stored.GPSLng != nil {
		t.Errorf("Expected nil coordinates, got %v/%v", stored.GPSLat, stored.GPSLng)
	}
	if stored.Description != "" {
		t.Errorf("Expected empty description, got %q", stored.Description)
	}
}

func TestCaseRepository_GetAll_NewestFirst(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCaseRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, label := range []string{"pothole", "streetlight", "garbage"} {
		at := base.Add(time.Duration(i) * time.Minute)
		repo.now = func() time.Time { return at }
		if _, err := repo.Insert(ctx, &model.Case{DetectedType: ptr(label)}); err != nil {
			t.Fatalf("Insert %s failed: %v", label, err)
		}
	}

	cases, err := repo.GetAll(ctx, &model.CaseFilter{})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(cases) != 3 {
		t.Fatalf("Expected 3 cases, got %d", len(cases))
	}

	expected := []string{"garbage", "streetlight", "pothole"}
	for i, c := range cases {
		if *c.DetectedType != expected[i] {
			t.Errorf("Position %d: expected %s, got %s", i, expected[i], *c.DetectedType)
		}
	}
}

func TestCaseRepository_GetAll_Pagination(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCaseRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := repo.Insert(ctx, &model.Case{Description: "case"}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	page, err := repo.GetAll(ctx, &model.CaseFilter{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(page) != 1 {
		t.Errorf("Expected 1 case on last page, got %d", len(page))
	}

	count, err := repo.GetTotalCount(ctx, &model.CaseFilter{})
	if err != nil {
		t.Fatalf("GetTotalCount failed: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected 5 cases, got %d", count)
	}
}

func TestCaseRepository_UpdateStatus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCaseRepository(db)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &model.Case{Description: "leak"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := repo.UpdateStatus(ctx, id, model.StatusInProgress); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	inProgress, err := repo.GetAll(ctx, &model.CaseFilter{Status: model.StatusInProgress})
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(inProgress) != 1 || inProgress[0].ID != id {
		t.Errorf("Expected the case to be IN_PROGRESS, got %+v", inProgress)
	}

	err = repo.UpdateStatus(ctx, "missing", model.StatusResolved)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCaseRepository_GetByID_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCaseRepository(db)

	_, err := repo.GetByID(context.Background(), "does-not-exist")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCaseRepository_ConcurrentInserts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCaseRepository(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if _, err := repo.Insert(ctx, &model.Case{Description: "concurrent"}); err != nil {
				t.Errorf("Concurrent insert %d failed: %v", idx, err)
			}
		}(i)
	}
	wg.Wait()

	count, err := repo.GetTotalCount(ctx, nil)
	if err != nil {
		t.Fatalf("GetTotalCount failed: %v", err)
	}
	if count != 10 {
		t.Errorf("Expected 10 cases, got %d", count)
	}
}

// ========================================
// Import & Statistics Tests
// ========================================

func TestCaseRepository_Import_KeepsIDsAndTimes(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewCaseRepository(db)
	ctx := context.Background()

	older := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	newer := time.Date(2024, 3, 2, 14, 0, 0, 0, time.UTC)

	exported := []model.Case{
		{ID: "legacy-1", DetectedType: ptr("pothole"), Status: model.StatusResolved, CreatedAt: older},
		{ID: "legacy-2", Description: "Water leak", CreatedAt: newer},
		{Description: "No id, no time", Status: "bogus"},
	}

	inserted, err := repo.Import(ctx, exported)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if inserted != 3 {
		t.Errorf("Expected 3 inserted, got %d", inserted)
	}

	c, err := repo.GetByID(ctx, "legacy-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if c.Status != model.StatusResolved || !c.CreatedAt.Equal(older) {
		t.Errorf("Expected imported status and time kept, got %s at %v", c.Status, c.CreatedAt)
	}

	c, err = repo.GetByID(ctx, "legacy-2")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if c.Status != model.StatusNew {
		t.Errorf("Expected blank status imported as NEW, got %s", c.Status)
	}

	again, err := repo.Import(ctx, exported[:2])
	if err != nil {
		t.Fatalf("Second import failed: %v", err)
	}
	if again != 0 {
		t.Errorf("Expected duplicates skipped, got %d inserted", again)
	}

	total, err := repo.GetTotalCount(ctx, nil)
	if err != nil {
		t.Fatalf("GetTotalCount failed: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected 3 cases, got %d", total)
	}
}

func TestCaseRepository_CountByStatus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewCaseRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.Insert(ctx, &model.Case{Description: "case"}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	id, err := repo.Insert(ctx, &model.Case{Description: "in progress"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := repo.UpdateStatus(ctx, id, model.StatusInProgress); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts[model.StatusNew] != 3 || counts[model.StatusInProgress] != 1 || counts[model.StatusResolved] != 0 {
		t.Errorf("Unexpected counts %v", counts)
	}
}
