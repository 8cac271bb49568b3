package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/jhoicas/Obras-api/internal/infrastructure/memory"
)

var (
	site = entity.ProjectRef("obra-1")
	now  = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
)

func change(qty string) entity.BalanceChange {
	return entity.BalanceChange{
		Location:   site,
		ProductID:  "cemento",
		CategoryID: "agregados",
		Quantity:   decimal.RequireFromString(qty),
		ActorID:    "u-1",
		Label:      "test",
		At:         now,
	}
}

func TestRun_CommitKeepsWrites(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	err := s.Run(ctx, func(b repository.BalanceRepository, l repository.LedgerRepository, _ repository.PurchaseOrderRepository) error {
		if _, err := b.Credit(ctx, change("10")); err != nil {
			return err
		}
		return l.Append(ctx, &entity.LedgerEntry{
			Location: site, ProductID: "cemento", Type: entity.TxTypeManualAdjustmentIn,
			PreviousQuantity: decimal.Zero, Quantity: decimal.NewFromInt(10), BalanceQuantity: decimal.NewFromInt(10),
			Direction: entity.DirectionIn, Time: now,
		})
	})
	require.NoError(t, err)

	got, err := s.Balances().Get(ctx, site, "cemento")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(10)))

	entries, err := s.Ledger().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].Seq)
	assert.NotEmpty(t, entries[0].ID)
}

func TestRun_ErrorRollsBack(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	s.OverwriteBalance(entity.Balance{Location: site, ProductID: "cemento", Quantity: decimal.NewFromInt(5)})

	boom := errors.New("boom")
	err := s.Run(ctx, func(b repository.BalanceRepository, l repository.LedgerRepository, _ repository.PurchaseOrderRepository) error {
		if _, err := b.Credit(ctx, change("10")); err != nil {
			return err
		}
		if err := l.Append(ctx, &entity.LedgerEntry{
			Location: site, ProductID: "cemento", Type: entity.TxTypeManualAdjustmentIn,
			PreviousQuantity: decimal.NewFromInt(5), Quantity: decimal.NewFromInt(10), BalanceQuantity: decimal.NewFromInt(15),
			Direction: entity.DirectionIn, Time: now,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Balances().Get(ctx, site, "cemento")
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(5)), "el saldo vuelve al valor previo")

	entries, err := s.Ledger().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries, "el asiento se descarta")
}

func TestRun_CanceledContext(t *testing.T) {
	s := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Run(ctx, func(repository.BalanceRepository, repository.LedgerRepository, repository.PurchaseOrderRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestDebit_InsufficientAndMissingRow(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	_, err := s.Balances().Debit(ctx, change("1"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "sin fila equivale a saldo cero")

	_, err = s.Balances().Credit(ctx, change("2"))
	require.NoError(t, err)
	_, err = s.Balances().Debit(ctx, change("2.01"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	b, err := s.Balances().Debit(ctx, change("2"))
	require.NoError(t, err)
	assert.True(t, b.Quantity.IsZero())
}

func TestLedgerAppend_RejectsInconsistentEntry(t *testing.T) {
	s := memory.NewStore()
	err := s.Ledger().Append(context.Background(), &entity.LedgerEntry{
		Location: site, ProductID: "cemento",
		PreviousQuantity: decimal.NewFromInt(1), Quantity: decimal.NewFromInt(1), BalanceQuantity: decimal.NewFromInt(5),
		Direction: entity.DirectionIn,
	})
	assert.ErrorIs(t, err, domain.ErrLedgerMismatch)
}

func TestLedgerList_FiltersAndOrder(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	yard := entity.WarehouseRef("bodega-1")
	add := func(loc entity.LocationRef, typ string, at time.Time) {
		require.NoError(t, s.Ledger().Append(ctx, &entity.LedgerEntry{
			Location: loc, ProductID: "cemento", Type: typ, Direction: entity.DirectionIn,
			PreviousQuantity: decimal.Zero, Quantity: decimal.NewFromInt(1), BalanceQuantity: decimal.NewFromInt(1),
			Time: at,
		}))
	}
	add(site, entity.TxTypeManualAdjustmentIn, now.Add(-48*time.Hour))
	add(site, entity.TxTypeTransferIn, now)
	add(yard, entity.TxTypeTransferIn, now)
	add(site, entity.TxTypePOItemDelivered, now.Add(time.Hour))

	list, err := s.Ledger().List(ctx, repository.LedgerFilter{Location: &site})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, entity.TxTypePOItemDelivered, list[0].Type, "más reciente primero")

	list, err = s.Ledger().List(ctx, repository.LedgerFilter{Location: &site, Types: []string{entity.TxTypeTransferIn}})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	from := now.Add(-time.Hour)
	to := now.Add(time.Hour)
	list, err = s.Ledger().List(ctx, repository.LedgerFilter{Location: &site, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, list, 1, "To es exclusivo")
	assert.Equal(t, entity.TxTypeTransferIn, list[0].Type)

	list, err = s.Ledger().List(ctx, repository.LedgerFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	days, err := s.Ledger().ListActivityDates(ctx, site, 10, 0)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.True(t, days[0].After(days[1]))
}

func TestMarkDetailDelivered_Twice(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	s.AddPurchaseOrder(entity.PurchaseOrder{ID: "po-1", ProjectID: "obra-1", Status: entity.PurchaseOrderPending},
		entity.PurchaseOrderDetail{ID: "d-1", ProductID: "cemento", Quantity: decimal.NewFromInt(3)})

	n, err := s.Orders().CountPendingDetails(ctx, "po-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Orders().MarkDetailDelivered(ctx, "d-1", "ok", now))
	assert.ErrorIs(t, s.Orders().MarkDetailDelivered(ctx, "d-1", "", now), domain.ErrConflict)

	n, err = s.Orders().CountPendingDetails(ctx, "po-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
