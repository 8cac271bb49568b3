package metrics_test

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/infrastructure/metrics"
)

func TestRecorder_CountsByResult(t *testing.T) {
	r := metrics.NewRecorder("obras")

	r.Observe("transfer", time.Now(), nil)
	r.Observe("transfer", time.Now(), &domain.InsufficientStockError{})
	r.Observe("transfer", time.Now(), domain.NewValidationError("quantity", "x"))
	r.Observe("adjust_set", time.Now(), errors.New("db down"))
	r.Moved("transfer", decimal.RequireFromString("12.5"))

	expected := `
# HELP obras_stock_operations_total Operaciones de stock por tipo y resultado.
# TYPE obras_stock_operations_total counter
obras_stock_operations_total{operation="adjust_set",result="error"} 1
obras_stock_operations_total{operation="transfer",result="insufficient_stock"} 1
obras_stock_operations_total{operation="transfer",result="invalid"} 1
obras_stock_operations_total{operation="transfer",result="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "obras_stock_operations_total"))

	moved := `
# HELP obras_stock_quantity_moved_total Cantidad de material movida por tipo de operación.
# TYPE obras_stock_quantity_moved_total counter
obras_stock_quantity_moved_total{operation="transfer"} 12.5
`
	require.NoError(t, testutil.GatherAndCompare(r.Registry(), strings.NewReader(moved), "obras_stock_quantity_moved_total"))
}

func TestRecorder_Handler(t *testing.T) {
	r := metrics.NewRecorder("obras")
	r.Observe("consume", time.Now(), nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `obras_stock_operations_total{operation="consume",result="ok"} 1`)
}
