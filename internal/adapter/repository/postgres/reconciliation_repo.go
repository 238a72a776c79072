package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/infrastructure/postgres/generated"
)

// ReconciliationRepository implements usecase.ReconciliationRepository.
type ReconciliationRepository struct {
	queries *generated.Queries
}

// NewReconciliationRepository creates a new ReconciliationRepository.
func NewReconciliationRepository(db generated.DBTX) *ReconciliationRepository {
	return &ReconciliationRepository{queries: generated.New(db)}
}

// Create stores a new case.
func (r *ReconciliationRepository) Create(ctx context.Context, c *domain.ReconciliationCase) error {
	payload, err := json.Marshal(c.Payload)
	if err != nil {
		return fmt.Errorf("encode case payload: %w", err)
	}
	if c.Payload == nil {
		payload = []byte("{}")
	}

	return r.queries.CreateReconciliationCase(ctx, generated.CreateReconciliationCaseParams{
		ID:         c.ID,
		Kind:       string(c.Kind),
		Reference:  c.Reference,
		ResourceID: c.ResourceID,
		Payload:    payload,
		Status:     string(c.Status),
		CreatedAt:  timeToPgTimestamptz(c.CreatedAt),
	})
}

// GetByID retrieves a case by ID.
func (r *ReconciliationRepository) GetByID(ctx context.Context, id string) (*domain.ReconciliationCase, error) {
	row, err := r.queries.GetReconciliationCase(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, err
	}

	return rowToCase(row)
}

// HasOpenForResource reports whether any open case names the resource.
func (r *ReconciliationRepository) HasOpenForResource(ctx context.Context, resourceID string) (bool, error) {
	return r.queries.HasOpenReconciliationCase(ctx, resourceID)
}

// ListOpen lists unresolved cases, oldest first.
func (r *ReconciliationRepository) ListOpen(ctx context.Context, limit, offset int) ([]*domain.ReconciliationCase, error) {
	rows, err := r.queries.ListOpenReconciliationCases(ctx, generated.ListOpenReconciliationCasesParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToCases(rows)
}

// ListUnnotified lists open cases no operator has been told about yet.
func (r *ReconciliationRepository) ListUnnotified(ctx context.Context, limit int) ([]*domain.ReconciliationCase, error) {
	rows, err := r.queries.ListUnnotifiedReconciliationCases(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	return rowsToCases(rows)
}

// MarkNotified records that the case was escalated.
func (r *ReconciliationRepository) MarkNotified(ctx context.Context, id string, notifiedAt time.Time) error {
	return r.queries.MarkReconciliationCaseNotified(ctx, generated.MarkReconciliationCaseNotifiedParams{
		ID:         id,
		NotifiedAt: timeToPgTimestamptz(notifiedAt),
	})
}

// Resolve closes an open case.
func (r *ReconciliationRepository) Resolve(ctx context.Context, c *domain.ReconciliationCase) error {
	n, err := r.queries.ResolveReconciliationCase(ctx, generated.ResolveReconciliationCaseParams{
		ID:         c.ID,
		ResolvedAt: timePtrToPgTimestamptz(c.ResolvedAt),
		ResolvedBy: c.ResolvedBy,
		Note:       c.Note,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, c.ID); err != nil {
			return err
		}
		return domain.ErrCaseAlreadyResolved
	}

	return nil
}

func rowsToCases(rows []generated.ReconciliationCase) ([]*domain.ReconciliationCase, error) {
	cases := make([]*domain.ReconciliationCase, 0, len(rows))
	for _, row := range rows {
		c, err := rowToCase(row)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func rowToCase(row generated.ReconciliationCase) (*domain.ReconciliationCase, error) {
	var payload map[string]any
	if len(row.Payload) > 0 {
		if err := json.Unmarshal(row.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode case %s payload: %w", row.ID, err)
		}
	}

	return &domain.ReconciliationCase{
		ID:         row.ID,
		Kind:       domain.CaseKind(row.Kind),
		Reference:  row.Reference,
		ResourceID: row.ResourceID,
		Payload:    payload,
		Status:     domain.CaseStatus(row.Status),
		NotifiedAt: pgTimestamptzToTimePtr(row.NotifiedAt),
		ResolvedAt: pgTimestamptzToTimePtr(row.ResolvedAt),
		ResolvedBy: row.ResolvedBy,
		Note:       row.Note,
		CreatedAt:  row.CreatedAt.Time,
	}, nil
}
