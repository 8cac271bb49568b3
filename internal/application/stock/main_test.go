package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jhoicas/Obras-api/internal/application/stock"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/infrastructure/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: store en memoria con una obra, una bodega y dos productos
// ──────────────────────────────────────────────────────────────────────────────

var (
	site  = entity.ProjectRef("obra-1")
	yard  = entity.WarehouseRef("bodega-1")
	clock = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
)

const actor = "u-ana"

type fixture struct {
	store *memory.Store
	deps  stock.Deps
	ctx   context.Context

	transfer *stock.TransferUseCase
	adjust   *stock.AdjustmentUseCase
	delivery *stock.DeliveryUseCase
	query    *stock.QueryUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	s.AddProject(entity.Project{ID: "obra-1", Name: "Torre Norte"})
	s.AddWarehouse(entity.Warehouse{ID: "bodega-1", Name: "Bodega Central"})
	s.AddCategory(entity.Category{ID: "agregados", Name: "Agregados"})
	s.AddCategory(entity.Category{ID: "acero", Name: "Acero"})
	s.AddProduct(entity.Product{ID: "cemento", CategoryID: "agregados", Name: "Cemento gris"})
	s.AddProduct(entity.Product{ID: "varilla", CategoryID: "acero", Name: "Varilla 1/2"})

	deps := stock.Deps{
		Tx:         s,
		Balances:   s.Balances(),
		Ledger:     s.Ledger(),
		Products:   s.Products(),
		Categories: s.Categories(),
		Locations:  s.Locations(),
		Now:        func() time.Time { return clock },
	}
	return &fixture{
		store:    s,
		deps:     deps,
		ctx:      context.Background(),
		transfer: stock.NewTransferUseCase(deps),
		adjust:   stock.NewAdjustmentUseCase(deps),
		delivery: stock.NewDeliveryUseCase(deps),
		query:    stock.NewQueryUseCase(deps),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// stockIn acredita material por el kardex (entrega).
func (f *fixture) stockIn(t *testing.T, loc entity.LocationRef, productID, qty string) {
	t.Helper()
	_, err := f.delivery.RecordDelivery(f.ctx, stock.DeliveryInput{
		Location: loc, ProductID: productID, Quantity: dec(qty), ActorID: actor,
	})
	require.NoError(t, err)
}

// qty saldo actual; sin fila devuelve cero.
func (f *fixture) qty(t *testing.T, loc entity.LocationRef, productID string) decimal.Decimal {
	t.Helper()
	b, err := f.store.Balances().Get(f.ctx, loc, productID)
	require.NoError(t, err)
	if b == nil {
		return decimal.Zero
	}
	return b.Quantity
}

func (f *fixture) entries(t *testing.T) []*entity.LedgerEntry {
	t.Helper()
	list, err := f.store.Ledger().ListAll(f.ctx)
	require.NoError(t, err)
	return list
}

func assertQty(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.Truef(t, got.Equal(dec(want)), "saldo esperado %s, obtenido %s %v", want, got, msgAndArgs)
}
