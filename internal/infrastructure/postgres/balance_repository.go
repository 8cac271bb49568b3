package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación de BalanceRepository sobre PostgreSQL (usable con pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

const balanceColumns = `location_kind, location_id, product_id, category_id, quantity,
	last_updated_by, last_transaction_type, created_at, updated_at`

func scanBalance(row pgx.Row) (*entity.Balance, error) {
	var b entity.Balance
	err := row.Scan(
		&b.Location.Kind, &b.Location.ID, &b.ProductID, &b.CategoryID, &b.Quantity,
		&b.LastUpdatedBy, &b.LastTransactionType, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Get obtiene el saldo de un producto en una ubicación. nil, nil si no hay fila.
func (r *BalanceRepo) Get(ctx context.Context, loc entity.LocationRef, productID string) (*entity.Balance, error) {
	query := `SELECT ` + balanceColumns + `
		FROM stock_balances WHERE location_kind = $1 AND location_id = $2 AND product_id = $3`
	b, err := scanBalance(r.q.QueryRow(ctx, query, loc.Kind, loc.ID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE). nil, nil si no hay fila.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, loc entity.LocationRef, productID string) (*entity.Balance, error) {
	query := `SELECT ` + balanceColumns + `
		FROM stock_balances WHERE location_kind = $1 AND location_id = $2 AND product_id = $3
		FOR UPDATE`
	b, err := scanBalance(r.q.QueryRow(ctx, query, loc.Kind, loc.ID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isLockTimeout(err) {
			return nil, fmt.Errorf("saldo %s/%s bloqueado: %w", loc, productID, domain.ErrConflict)
		}
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return b, nil
}

// Credit suma la cantidad en una sola sentencia, creando la fila si no existe.
func (r *BalanceRepo) Credit(ctx context.Context, ch entity.BalanceChange) (*entity.Balance, error) {
	query := `
		INSERT INTO stock_balances (location_kind, location_id, product_id, category_id, quantity,
			last_updated_by, last_transaction_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (location_kind, location_id, product_id)
		DO UPDATE SET quantity = stock_balances.quantity + EXCLUDED.quantity,
			last_updated_by = EXCLUDED.last_updated_by,
			last_transaction_type = EXCLUDED.last_transaction_type,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + balanceColumns
	b, err := scanBalance(r.q.QueryRow(ctx, query,
		ch.Location.Kind, ch.Location.ID, ch.ProductID, ch.CategoryID, ch.Quantity,
		ch.ActorID, ch.Label, ch.At,
	))
	if err != nil {
		return nil, fmt.Errorf("credit balance: %w", err)
	}
	return b, nil
}

// Debit resta la cantidad sólo si el saldo alcanza; la condición y la resta son una sola sentencia,
// de modo que dos débitos concurrentes no pueden dejar el saldo negativo.
func (r *BalanceRepo) Debit(ctx context.Context, ch entity.BalanceChange) (*entity.Balance, error) {
	query := `
		UPDATE stock_balances
		SET quantity = quantity - $4, last_updated_by = $5, last_transaction_type = $6, updated_at = $7
		WHERE location_kind = $1 AND location_id = $2 AND product_id = $3 AND quantity >= $4
		RETURNING ` + balanceColumns
	b, err := scanBalance(r.q.QueryRow(ctx, query,
		ch.Location.Kind, ch.Location.ID, ch.ProductID, ch.Quantity,
		ch.ActorID, ch.Label, ch.At,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isCheckViolation(err) {
			return nil, domain.ErrInsufficientStock
		}
		return nil, fmt.Errorf("debit balance: %w", err)
	}
	return b, nil
}

// Set sobrescribe la cantidad creando la fila si no existe.
func (r *BalanceRepo) Set(ctx context.Context, ch entity.BalanceChange) (*entity.Balance, error) {
	query := `
		INSERT INTO stock_balances (location_kind, location_id, product_id, category_id, quantity,
			last_updated_by, last_transaction_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (location_kind, location_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity,
			last_updated_by = EXCLUDED.last_updated_by,
			last_transaction_type = EXCLUDED.last_transaction_type,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + balanceColumns
	b, err := scanBalance(r.q.QueryRow(ctx, query,
		ch.Location.Kind, ch.Location.ID, ch.ProductID, ch.CategoryID, ch.Quantity,
		ch.ActorID, ch.Label, ch.At,
	))
	if err != nil {
		if isCheckViolation(err) {
			return nil, domain.NewValidationError("quantity", "no puede ser negativa")
		}
		return nil, fmt.Errorf("set balance: %w", err)
	}
	return b, nil
}

// ListByLocation saldos de una ubicación ordenados por producto.
func (r *BalanceRepo) ListByLocation(ctx context.Context, loc entity.LocationRef, onlyPositive bool) ([]*entity.Balance, error) {
	query := `SELECT ` + balanceColumns + `
		FROM stock_balances WHERE location_kind = $1 AND location_id = $2`
	if onlyPositive {
		query += ` AND quantity > 0`
	}
	query += ` ORDER BY product_id`
	return r.list(ctx, query, loc.Kind, loc.ID)
}

// ListAll todos los saldos (conciliación).
func (r *BalanceRepo) ListAll(ctx context.Context) ([]*entity.Balance, error) {
	query := `SELECT ` + balanceColumns + `
		FROM stock_balances ORDER BY location_kind, location_id, product_id`
	return r.list(ctx, query)
}

func (r *BalanceRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Balance, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()
	var list []*entity.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}
