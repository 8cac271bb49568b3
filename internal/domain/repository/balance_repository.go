package repository

import (
	"context"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// BalanceRepository define el puerto para consultar/mutar el stock por (ubicación, producto).
// Las mutaciones son primitivas indivisibles; se usan dentro de transacciones (TxRunner).
type BalanceRepository interface {
	// Get devuelve nil, nil si no existe fila (equivale a stock cero).
	Get(ctx context.Context, loc entity.LocationRef, productID string) (*entity.Balance, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, loc entity.LocationRef, productID string) (*entity.Balance, error)
	// Credit suma ch.Quantity creando la fila si no existe.
	Credit(ctx context.Context, ch entity.BalanceChange) (*entity.Balance, error)
	// Debit resta ch.Quantity sólo si el saldo alcanza; si no, domain.ErrInsufficientStock.
	Debit(ctx context.Context, ch entity.BalanceChange) (*entity.Balance, error)
	// Set sobrescribe la cantidad con ch.Quantity creando la fila si no existe.
	Set(ctx context.Context, ch entity.BalanceChange) (*entity.Balance, error)
	ListByLocation(ctx context.Context, loc entity.LocationRef, onlyPositive bool) ([]*entity.Balance, error)
	ListAll(ctx context.Context) ([]*entity.Balance, error)
}
