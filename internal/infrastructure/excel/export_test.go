package excel_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/infrastructure/excel"
)

func TestWriteLedger(t *testing.T) {
	items := []dto.LedgerEntryResponse{{
		TransactionID:    "tx-1",
		Location:         entity.ProjectRef("obra-1"),
		ProductName:      "Cemento",
		CategoryName:     "Agregados",
		UserID:           "u-1",
		PreviousQuantity: decimal.NewFromInt(100),
		Quantity:         decimal.NewFromInt(30),
		BalanceQuantity:  decimal.NewFromInt(70),
		Direction:        entity.DirectionOut,
		Type:             entity.TxTypeTransferOut,
		CounterpartName:  "Obra Norte",
		Time:             time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	require.NoError(t, excel.WriteLedger(&buf, items))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Kardex")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Fecha", rows[0][0])
	assert.Equal(t, "10/03/2026 09:30", rows[1][0])
	assert.Equal(t, "Cemento", rows[1][4])
	assert.Equal(t, entity.TxTypeTransferOut, rows[1][5])
	assert.Equal(t, "70", rows[1][9])
	assert.Equal(t, "Obra Norte", rows[1][10])
}

func TestWriteReconciliation(t *testing.T) {
	rep := &dto.ReconciliationReport{
		RunID: "run-1",
		Findings: []dto.ReconciliationFindingDTO{{
			CheckType: entity.CheckBalanceDrift,
			Location:  entity.WarehouseRef("bodega-1"),
			ProductID: "varilla",
			Expected:  decimal.NewFromInt(10),
			Actual:    decimal.NewFromInt(12),
			Details:   "drift",
		}},
		Products: []dto.ProductConservationDTO{
			{ProductID: "varilla", TotalBalance: decimal.NewFromInt(12), NetExternal: decimal.NewFromInt(10), Balanced: false},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, excel.WriteReconciliation(&buf, rep))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Hallazgos")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, entity.CheckBalanceDrift, rows[1][1])
	assert.Equal(t, "bodega-1", rows[1][3])

	rows, err = f.GetRows("Productos")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "NO", rows[1][4])
}
