package stock_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/stock"
)

var (
	site = entity.ProjectRef("obra-1")
	yard = entity.WarehouseRef("bodega-1")
)

// entry arma un asiento consistente con seq, previo y sentido dados.
func entry(seq int64, loc entity.LocationRef, typ string, dir entity.Direction, prev, qty string) *entity.LedgerEntry {
	p, q := d(prev), d(qty)
	bal := p.Add(q)
	if dir == entity.DirectionOut {
		bal = p.Sub(q)
	}
	return &entity.LedgerEntry{
		ID: typ, Seq: seq, Location: loc, ProductID: "cemento", Type: typ, Direction: dir,
		PreviousQuantity: p, Quantity: q, BalanceQuantity: bal,
	}
}

func balance(loc entity.LocationRef, qty string) *entity.Balance {
	return &entity.Balance{Location: loc, ProductID: "cemento", Quantity: d(qty)}
}

// historia limpia: entrega 100 en bodega, traslado 40 a obra, consumo 15 en obra.
func cleanHistory() []*entity.LedgerEntry {
	out := entry(2, yard, entity.TxTypeTransferOut, entity.DirectionOut, "100", "40")
	in := entry(3, site, entity.TxTypeTransferIn, entity.DirectionIn, "0", "40")
	out.TransactionID, in.TransactionID = "tx-1", "tx-1"
	return []*entity.LedgerEntry{
		entry(1, yard, entity.TxTypePOItemDelivered, entity.DirectionIn, "0", "100"),
		out, in,
		entry(4, site, entity.TxTypeTakenForConstruction, entity.DirectionOut, "40", "15"),
	}
}

func checkTypes(fs []entity.ReconciliationFinding) []string {
	var out []string
	for _, f := range fs {
		out = append(out, f.CheckType)
	}
	return out
}

func TestReplay_HistoriaLimpia(t *testing.T) {
	entries := cleanHistory()
	// El orden de entrada no importa: se ordena por Seq.
	entries[0], entries[3] = entries[3], entries[0]

	findings := stock.Replay(entries, []*entity.Balance{balance(yard, "60"), balance(site, "25")})
	assert.Empty(t, findings)
}

func TestReplay_SaldoDesviado(t *testing.T) {
	findings := stock.Replay(cleanHistory(), []*entity.Balance{balance(yard, "60"), balance(site, "30")})
	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, entity.CheckBalanceDrift, f.CheckType)
	assert.Equal(t, site, f.Location)
	assert.True(t, f.Expected.Equal(d("25")))
	assert.True(t, f.Actual.Equal(d("30")))
}

func TestReplay_SaldoFaltanteCuentaComoCero(t *testing.T) {
	findings := stock.Replay(cleanHistory(), []*entity.Balance{balance(yard, "60")})
	require.Len(t, findings, 1)
	assert.Equal(t, entity.CheckBalanceDrift, findings[0].CheckType)
	assert.True(t, findings[0].Actual.IsZero())
}

func TestReplay_SaldoHuerfano(t *testing.T) {
	findings := stock.Replay(nil, []*entity.Balance{balance(site, "5"), balance(yard, "0")})
	assert.Equal(t, []string{entity.CheckOrphanBalance}, checkTypes(findings))
}

func TestReplay_CadenaRotaYAsientoInconsistente(t *testing.T) {
	entries := cleanHistory()
	// El consumo parte de 45 en lugar de 40.
	entries[3] = entry(4, site, entity.TxTypeTakenForConstruction, entity.DirectionOut, "45", "15")
	// Asiento cuyo saldo no cuadra con previo - cantidad.
	bad := entry(5, site, entity.TxTypeManualAdjustmentOut, entity.DirectionOut, "30", "5")
	bad.BalanceQuantity = decimal.NewFromInt(20)
	entries = append(entries, bad)

	findings := stock.Replay(entries, []*entity.Balance{balance(yard, "60"), balance(site, "20")})
	assert.ElementsMatch(t, []string{entity.CheckChainBreak, entity.CheckEntryMismatch}, checkTypes(findings))
}

func TestReplay_TrasladoSinPareja(t *testing.T) {
	entries := cleanHistory()[:2] // entrega + salida, falta la entrada
	findings := stock.Replay(entries, []*entity.Balance{balance(yard, "60")})
	require.Equal(t, []string{entity.CheckTransferUnpaired}, checkTypes(findings))
	assert.True(t, findings[0].Actual.Equal(d("-40")))
}

func TestConservation(t *testing.T) {
	entries := cleanHistory()
	got := stock.Conservation(entries, []*entity.Balance{balance(yard, "60"), balance(site, "25")})
	require.Len(t, got, 1)
	pc := got[0]
	assert.Equal(t, "cemento", pc.ProductID)
	assert.True(t, pc.TotalBalance.Equal(d("85")))
	assert.True(t, pc.NetExternal.Equal(d("85")), "100 entregados - 15 consumidos")
	assert.True(t, pc.Consumed.Equal(d("15")))
	assert.True(t, pc.Balanced)

	got = stock.Conservation(entries, []*entity.Balance{balance(yard, "60"), balance(site, "26")})
	assert.False(t, got[0].Balanced)
}
