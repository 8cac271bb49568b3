package stock

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback de saldos, kardex y órdenes juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		balances repository.BalanceRepository,
		ledger repository.LedgerRepository,
		orders repository.PurchaseOrderRepository,
	) error) error
}

// Recorder recibe métricas de las operaciones de stock.
type Recorder interface {
	Observe(operation string, started time.Time, err error)
	Moved(operation string, qty decimal.Decimal)
}

type nopRecorder struct{}

func (nopRecorder) Observe(string, time.Time, error) {}
func (nopRecorder) Moved(string, decimal.Decimal)    {}

// Deps dependencias compartidas por los casos de uso del kardex.
// Balances y Ledger (fuera de tx) se usan sólo para lecturas.
type Deps struct {
	Tx         TxRunner
	Balances   repository.BalanceRepository
	Ledger     repository.LedgerRepository
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Locations  repository.LocationRepository
	Metrics    Recorder
	Log        *zerolog.Logger
	Now        func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Metrics == nil {
		d.Metrics = nopRecorder{}
	}
	if d.Log == nil {
		nop := zerolog.Nop()
		d.Log = &nop
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}
