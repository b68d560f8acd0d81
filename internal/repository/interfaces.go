package repository

import (
	"context"
	"visionreporter/internal/model"
)

// CaseRepository defines the interface for case data operations.
type CaseRepository interface {
	// Create operations
	Insert(ctx context.Context, c *model.Case) (string, error)

	// Read operations
	GetByID(ctx context.Context, id string) (*model.Case, error)
	GetAll(ctx context.Context, filter *model.CaseFilter) ([]model.Case, error)
	GetTotalCount(ctx context.Context, filter *model.CaseFilter) (int, error)

	// Update operations
	UpdateStatus(ctx context.Context, id string, status model.Status) error
}
