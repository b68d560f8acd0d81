package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"visionreporter/internal/model"

	"github.com/google/uuid"
)

const caseColumns = `id, detected_type, description, ai_summary, gps_lat, gps_lng,
	location_name, photo, status, reporter_name, created_at`

// CaseRepository implements repository.CaseRepository for SQLite.
type CaseRepository struct {
	db  *DB
	now func() time.Time
}

// NewCaseRepository creates a new SQLite case repository.
func NewCaseRepository(db *DB) *CaseRepository {
	return &CaseRepository{db: db, now: time.Now}
}

// Insert stores a new case. The ID and creation time are assigned here; a blank
// status becomes NEW.
func (r *CaseRepository) Insert(ctx context.Context, c *model.Case) (string, error) {
	r.db.Lock()
	defer r.db.Unlock()

	id := uuid.NewString()
	createdAt := r.now().UTC()
	status := c.Status
	if status == "" {
		status = model.StatusNew
	}

	_, err := r.db.Conn().ExecContext(ctx, `
		INSERT INTO cases (`+caseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, nullString(c.DetectedType), c.Description, nullString(c.AISummary),
		nullFloat(c.GPSLat), nullFloat(c.GPSLng), nullString(c.LocationName),
		nullString(c.Photo), string(status), nullString(c.ReporterName), createdAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert case: %w", err)
	}

	c.ID = id
	c.Status = status
	c.CreatedAt = createdAt
	return id, nil
}

// GetByID retrieves a case by its ID.
func (r *CaseRepository) GetByID(ctx context.Context, id string) (*model.Case, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	row := r.db.Conn().QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = ?`, id)
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("case %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return c, nil
}

// GetAll retrieves cases newest first.
func (r *CaseRepository) GetAll(ctx context.Context, filter *model.CaseFilter) ([]model.Case, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `SELECT ` + caseColumns + ` FROM cases WHERE 1=1`
	args := []interface{}{}

	if filter != nil && filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}

	query += " ORDER BY created_at DESC, seq DESC"

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)

		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cases: %w", err)
	}
	defer rows.Close()

	var cases []model.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, *c)
	}

	return cases, rows.Err()
}

// GetTotalCount returns the number of cases matching the filter.
func (r *CaseRepository) GetTotalCount(ctx context.Context, filter *model.CaseFilter) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `SELECT COUNT(*) FROM cases WHERE 1=1`
	args := []interface{}{}

	if filter != nil && filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}

	var count int
	if err := r.db.Conn().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cases: %w", err)
	}
	return count, nil
}

// UpdateStatus sets the status of a case. Transition rules are the caller's concern.
func (r *CaseRepository) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().ExecContext(ctx, `UPDATE cases SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update case status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update case status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("case %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// Import inserts previously exported cases in one transaction. Cases keep
// their ID and creation time when set; duplicates by ID are skipped. It
// returns the number of rows inserted.
func (r *CaseRepository) Import(ctx context.Context, cases []model.Case) (int, error) {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO cases (`+caseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range cases {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		createdAt := c.CreatedAt.UTC()
		if c.CreatedAt.IsZero() {
			createdAt = r.now().UTC()
		}
		status := c.Status
		if !status.Valid() {
			status = model.StatusNew
		}

		result, err := stmt.ExecContext(ctx, id, nullString(c.DetectedType), c.Description,
			nullString(c.AISummary), nullFloat(c.GPSLat), nullFloat(c.GPSLng),
			nullString(c.LocationName), nullString(c.Photo), string(status),
			nullString(c.ReporterName), createdAt)
		if err != nil {
			return 0, fmt.Errorf("failed to import case %s: %w", id, err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return inserted, nil
}

// CountByStatus returns how many cases are in each status.
func (r *CaseRepository) CountByStatus(ctx context.Context) (map[model.Status]int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, `SELECT status, COUNT(*) FROM cases GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count cases by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[model.Status(status)] = count
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCase(s scanner) (*model.Case, error) {
	var (
		c            model.Case
		detectedType sql.NullString
		aiSummary    sql.NullString
		locationName sql.NullString
		photo        sql.NullString
		reporter     sql.NullString
		lat, lng     sql.NullFloat64
		status       string
	)

	err := s.Scan(&c.ID, &detectedType, &c.Description, &aiSummary, &lat, &lng,
		&locationName, &photo, &status, &reporter, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	c.DetectedType = fromNullString(detectedType)
	c.AISummary = fromNullString(aiSummary)
	c.LocationName = fromNullString(locationName)
	c.Photo = fromNullString(photo)
	c.ReporterName = fromNullString(reporter)
	c.GPSLat = fromNullFloat(lat)
	c.GPSLng = fromNullFloat(lng)
	c.Status = model.Status(status)

	return &c, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func fromNullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}
