package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

var _ repository.ReconciliationRepository = (*ReconciliationRepo)(nil)

// ReconciliationRepo hallazgos de conciliación sobre PostgreSQL.
type ReconciliationRepo struct {
	pool *pgxpool.Pool
}

// NewReconciliationRepository construye el adaptador.
func NewReconciliationRepository(pool *pgxpool.Pool) *ReconciliationRepo {
	return &ReconciliationRepo{pool: pool}
}

// SaveFindings inserta los hallazgos de una corrida en un solo batch.
func (r *ReconciliationRepo) SaveFindings(ctx context.Context, findings []entity.ReconciliationFinding) error {
	if len(findings) == 0 {
		return nil
	}
	query := `
		INSERT INTO stock_reconciliation_findings (id, run_id, check_type, location_kind, location_id, product_id,
			expected, actual, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	batch := &pgx.Batch{}
	for _, f := range findings {
		batch.Queue(query, f.ID, f.RunID, f.CheckType, f.Location.Kind, f.Location.ID, f.ProductID,
			f.Expected, f.Actual, f.Details, f.CreatedAt)
	}
	br := r.pool.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()
	for range findings {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert finding: %w", err)
		}
	}
	return nil
}

// ListByRun hallazgos de una corrida.
func (r *ReconciliationRepo) ListByRun(ctx context.Context, runID string) ([]entity.ReconciliationFinding, error) {
	query := `
		SELECT id, run_id, check_type, location_kind, location_id, product_id, expected, actual, details, created_at
		FROM stock_reconciliation_findings WHERE run_id = $1 ORDER BY check_type, location_kind, location_id`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	defer rows.Close()
	var list []entity.ReconciliationFinding
	for rows.Next() {
		var f entity.ReconciliationFinding
		if err := rows.Scan(&f.ID, &f.RunID, &f.CheckType, &f.Location.Kind, &f.Location.ID, &f.ProductID,
			&f.Expected, &f.Actual, &f.Details, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		list = append(list, f)
	}
	return list, rows.Err()
}
