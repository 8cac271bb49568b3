package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo kardex de stock sobre PostgreSQL (usable con pool o tx). Sólo inserta.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `id, seq, transaction_id, location_kind, location_id, category_id, product_id, user_id,
	previous_quantity, quantity, balance_quantity, direction, type, counterpart_kind, counterpart_id,
	taken_by, remarks, time, created_at`

// Append persiste un asiento. Rechaza asientos que no cumplan previo ± cantidad = saldo.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	if !e.Consistent() {
		return fmt.Errorf("%w: %s %s previo %s cantidad %s saldo %s", domain.ErrLedgerMismatch,
			e.Type, e.Direction, e.PreviousQuantity, e.Quantity, e.BalanceQuantity)
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	var cpKind, cpID *string
	if e.Counterpart != nil {
		k := string(e.Counterpart.Kind)
		cpKind, cpID = &k, &e.Counterpart.ID
	}
	query := `
		INSERT INTO stock_ledger_entries (id, transaction_id, location_kind, location_id, category_id, product_id,
			user_id, previous_quantity, quantity, balance_quantity, direction, type, counterpart_kind, counterpart_id,
			taken_by, remarks, time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		e.ID, e.TransactionID, e.Location.Kind, e.Location.ID, e.CategoryID, e.ProductID,
		e.UserID, e.PreviousQuantity, e.Quantity, e.BalanceQuantity, e.Direction, e.Type, cpKind, cpID,
		nullable(e.TakenBy), nullable(e.Remarks), e.Time, e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// List asientos filtrados, más recientes primero. Limit 0 no limita.
func (r *LedgerRepo) List(ctx context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger_entries WHERE 1=1`
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(cond, len(args))
	}
	if f.Location != nil {
		add(" AND location_kind = $%d", f.Location.Kind)
		add(" AND location_id = $%d", f.Location.ID)
	}
	if f.CategoryID != "" {
		add(" AND category_id = $%d", f.CategoryID)
	}
	if f.ProductID != "" {
		add(" AND product_id = $%d", f.ProductID)
	}
	if f.UserID != "" {
		add(" AND user_id = $%d", f.UserID)
	}
	if len(f.Types) > 0 {
		add(" AND type = ANY($%d)", f.Types)
	}
	if f.From != nil {
		add(" AND time >= $%d", *f.From)
	}
	if f.To != nil {
		add(" AND time < $%d", *f.To)
	}
	query += " ORDER BY time DESC, seq DESC"
	if f.Limit > 0 {
		add(" LIMIT $%d", f.Limit)
		add(" OFFSET $%d", f.Offset)
	}
	return r.list(ctx, query, args...)
}

// ListActivityDates días (UTC) con movimientos en la ubicación, más recientes primero.
func (r *LedgerRepo) ListActivityDates(ctx context.Context, loc entity.LocationRef, limit, offset int) ([]time.Time, error) {
	query := `
		SELECT DISTINCT (time AT TIME ZONE 'UTC')::date AS day
		FROM stock_ledger_entries
		WHERE location_kind = $1 AND location_id = $2
		ORDER BY day DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, loc.Kind, loc.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list activity dates: %w", err)
	}
	defer rows.Close()
	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan activity date: %w", err)
		}
		days = append(days, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC))
	}
	return days, rows.Err()
}

// ListAll todos los asientos en orden de inserción.
func (r *LedgerRepo) ListAll(ctx context.Context) ([]*entity.LedgerEntry, error) {
	return r.list(ctx, `SELECT `+ledgerColumns+` FROM stock_ledger_entries ORDER BY seq`)
}

func (r *LedgerRepo) list(ctx context.Context, query string, args ...any) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanLedgerEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	var cpKind, cpID, takenBy, remarks *string
	err := row.Scan(
		&e.ID, &e.Seq, &e.TransactionID, &e.Location.Kind, &e.Location.ID, &e.CategoryID, &e.ProductID, &e.UserID,
		&e.PreviousQuantity, &e.Quantity, &e.BalanceQuantity, &e.Direction, &e.Type, &cpKind, &cpID,
		&takenBy, &remarks, &e.Time, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if cpKind != nil && cpID != nil {
		e.Counterpart = &entity.LocationRef{Kind: entity.LocationKind(*cpKind), ID: *cpID}
	}
	e.TakenBy = deref(takenBy)
	e.Remarks = deref(remarks)
	return &e, nil
}
