package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/application/stock"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/infrastructure/memory"
	"github.com/jhoicas/Obras-api/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/Obras-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Obras-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	obra   = entity.ProjectRef("obra-1")
	bodega = entity.WarehouseRef("bodega-1")
	today  = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
)

// buildAPI monta el router completo sobre un store en memoria con datos de referencia.
func buildAPI(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	s := memory.NewStore()
	s.AddProject(entity.Project{ID: "obra-1", Name: "Torre Norte"})
	s.AddWarehouse(entity.Warehouse{ID: "bodega-1", Name: "Bodega Central"})
	s.AddCategory(entity.Category{ID: "agregados", Name: "Agregados"})
	s.AddProduct(entity.Product{ID: "cemento", CategoryID: "agregados", Name: "Cemento gris"})

	deps := stock.Deps{
		Tx:         s,
		Balances:   s.Balances(),
		Ledger:     s.Ledger(),
		Products:   s.Products(),
		Categories: s.Categories(),
		Locations:  s.Locations(),
		Now:        func() time.Time { return today },
	}
	// Inventario inicial por el kardex, para que la conciliación parta limpia.
	_, err := stock.NewAdjustmentUseCase(deps).Adjust(t.Context(), stock.AdjustInput{
		Location: bodega, ProductID: "cemento", Quantity: decimal.NewFromInt(100),
		Mode: entity.AdjustAdd, ActorID: "seed", Reason: "inventario inicial",
	})
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Transfer:  stock.NewTransferUseCase(deps),
		Adjust:    stock.NewAdjustmentUseCase(deps),
		Delivery:  stock.NewDeliveryUseCase(deps),
		Query:     stock.NewQueryUseCase(deps),
		Reconcile: stock.NewReconcileUseCase(deps, s.Findings()),
		JWTSecret: testJWTSecret,
		Metrics:   metrics.NewRecorder("obras_test").Handler(),
	})
	return app, s
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func transferBody(qty string) dto.TransferRequest {
	return dto.TransferRequest{
		From: bodega, To: obra, ProductID: "cemento", CategoryID: "agregados",
		Quantity: decimal.RequireFromString(qty),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestHealthAndMetrics(t *testing.T) {
	app, _ := buildAPI(t)

	resp := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/metrics", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "go_goroutines")
}

func TestTransfer_MueveSaldoYConsulta(t *testing.T) {
	app, _ := buildAPI(t)

	resp := call(t, app, http.MethodPost, "/api/stock/transfers", pkgjwt.RoleSupervisor, transferBody("40"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[dto.TransferResponse](t, resp)
	assert.NotEmpty(t, out.TransactionID)
	assert.True(t, out.From.Quantity.Equal(decimal.NewFromInt(60)))
	assert.True(t, out.To.Quantity.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, "received from Bodega Central by "+testUserName, out.To.LastTransactionType)

	resp = call(t, app, http.MethodGet, "/api/stock/balance?location_kind=project&location_id=obra-1&product_id=cemento", pkgjwt.RoleEngineer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bal := decode[dto.BalanceResponse](t, resp)
	assert.True(t, bal.Quantity.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, "Cemento gris", bal.ProductName)

	resp = call(t, app, http.MethodGet, "/api/stock/ledger?location_kind=warehouse&location_id=bodega-1", pkgjwt.RoleEngineer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hist := decode[dto.LedgerListResponse](t, resp)
	require.Len(t, hist.Items, 2)
	assert.Equal(t, entity.TxTypeTransferOut, hist.Items[0].Type)
	assert.Equal(t, "Torre Norte", hist.Items[0].CounterpartName)
}

func TestTransfer_StockInsuficiente_409(t *testing.T) {
	app, _ := buildAPI(t)

	resp := call(t, app, http.MethodPost, "/api/stock/transfers", pkgjwt.RoleAdmin, transferBody("100.01"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
}

func TestTransfer_MismaUbicacion_400(t *testing.T) {
	app, _ := buildAPI(t)
	in := transferBody("1")
	in.To = bodega

	resp := call(t, app, http.MethodPost, "/api/stock/transfers", pkgjwt.RoleAdmin, in)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
}

func TestTransfer_EngineerNoPuede_403(t *testing.T) {
	app, _ := buildAPI(t)
	resp := call(t, app, http.MethodPost, "/api/stock/transfers", pkgjwt.RoleEngineer, transferBody("1"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdjust_Validaciones(t *testing.T) {
	app, _ := buildAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/stock/adjustments", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleAdmin))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "INVALID_BODY", decode[dto.ErrorResponse](t, resp).Code)

	resp = call(t, app, http.MethodPost, "/api/stock/adjustments", pkgjwt.RoleAdmin, dto.AdjustRequest{
		Location: obra, ProductID: "cemento", Quantity: decimal.NewFromInt(5), AdjustmentType: "add",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "reason", body.Field)

	resp = call(t, app, http.MethodPost, "/api/stock/adjustments", pkgjwt.RoleAdmin, dto.AdjustRequest{
		Location: obra, ProductID: "varilla", Quantity: decimal.NewFromInt(5), AdjustmentType: "add", Reason: "conteo",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "producto inexistente")
	body = decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, "product_id", body.Field)

	resp = call(t, app, http.MethodPost, "/api/stock/adjustments", pkgjwt.RoleAdmin, dto.AdjustRequest{
		Location: entity.ProjectRef("obra-x"), ProductID: "cemento", Quantity: decimal.NewFromInt(5), AdjustmentType: "add", Reason: "conteo",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "ubicación inexistente")
	assert.Equal(t, "location", decode[dto.ErrorResponse](t, resp).Field)
}

func TestAdjust_SetYConsumo(t *testing.T) {
	app, s := buildAPI(t)

	resp := call(t, app, http.MethodPost, "/api/stock/adjustments", pkgjwt.RoleAdmin, dto.AdjustRequest{
		Location: obra, ProductID: "cemento", Quantity: decimal.NewFromInt(12), AdjustmentType: "set", Reason: "conteo físico",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, decode[dto.BalanceResponse](t, resp).Quantity.Equal(decimal.NewFromInt(12)))

	resp = call(t, app, http.MethodPost, "/api/stock/consumptions", pkgjwt.RoleEngineer, dto.ConsumeRequest{
		Location: obra, ProductID: "cemento", Quantity: decimal.NewFromInt(5), TakenBy: "Maestro Luis",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	b := decode[dto.BalanceResponse](t, resp)
	assert.True(t, b.Quantity.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, "Taken for construction by Maestro Luis", b.LastTransactionType)

	resp = call(t, app, http.MethodPost, "/api/stock/consumptions", pkgjwt.RoleEngineer, dto.ConsumeRequest{
		Location: obra, ProductID: "cemento", Quantity: decimal.NewFromInt(8),
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	entries, err := s.Ledger().ListAll(t.Context())
	require.NoError(t, err)
	assert.Len(t, entries, 3, "el consumo fallido no deja asiento")
}

func TestDailyLogYFechas(t *testing.T) {
	app, _ := buildAPI(t)

	resp := call(t, app, http.MethodPost, "/api/stock/transfers", pkgjwt.RoleAdmin, transferBody("30"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = call(t, app, http.MethodPost, "/api/stock/consumptions", pkgjwt.RoleEngineer, dto.ConsumeRequest{
		Location: obra, ProductID: "cemento", Quantity: decimal.NewFromInt(10),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/stock/logs/dates?project_id=obra-1", pkgjwt.RoleEngineer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dates := decode[dto.ActivityDatesResponse](t, resp)
	assert.Equal(t, []string{"10/03/2026"}, dates.Dates)

	resp = call(t, app, http.MethodGet, "/api/stock/logs?project_id=obra-1&date=10/03/2026", pkgjwt.RoleEngineer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	log := decode[dto.DailyLogResponse](t, resp)
	require.Len(t, log.Used, 1)
	require.Len(t, log.Transferred, 1)
	assert.Equal(t, "Received", log.Transferred[0].TransferType)
	assert.Equal(t, "Bodega Central", log.Transferred[0].TransferLocation)

	resp = call(t, app, http.MethodGet, "/api/stock/logs?project_id=obra-1&date=2026-03-10", pkgjwt.RoleEngineer, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "date", decode[dto.ErrorResponse](t, resp).Field)
}

func TestMarkDetailDelivered(t *testing.T) {
	app, s := buildAPI(t)
	s.AddPurchaseOrder(entity.PurchaseOrder{ID: "po-1", ProjectID: "obra-1"},
		entity.PurchaseOrderDetail{ID: "d-1", CategoryID: "agregados", ProductID: "cemento", Quantity: decimal.NewFromInt(25)})

	resp := call(t, app, http.MethodPost, "/api/purchase-orders/details/d-1/deliver", pkgjwt.RoleEngineer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[apphttp.MarkDeliveredResponse](t, resp)
	assert.True(t, out.OrderCompleted)
	assert.Equal(t, "po-1", out.OrderID)
	assert.True(t, out.Balance.Quantity.Equal(decimal.NewFromInt(25)))

	resp = call(t, app, http.MethodPost, "/api/purchase-orders/details/d-1/deliver", pkgjwt.RoleEngineer, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decode[dto.ErrorResponse](t, resp).Code)

	resp = call(t, app, http.MethodPost, "/api/purchase-orders/details/nope/deliver", pkgjwt.RoleEngineer, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRecordDelivery(t *testing.T) {
	app, _ := buildAPI(t)

	resp := call(t, app, http.MethodPost, "/api/stock/deliveries", pkgjwt.RoleSupervisor, dto.DeliveryRequest{
		Location: obra, ProductID: "cemento", Quantity: decimal.RequireFromString("3.459"),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	b := decode[dto.BalanceResponse](t, resp)
	assert.True(t, b.Quantity.Equal(decimal.RequireFromString("3.45")), "se trunca a 2 decimales")
	assert.Equal(t, entity.TxTypePOItemDelivered, b.LastTransactionType)
}

func TestExportYConciliacion_Admin(t *testing.T) {
	app, s := buildAPI(t)

	resp := call(t, app, http.MethodPost, "/api/stock/transfers", pkgjwt.RoleAdmin, transferBody("10"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/stock/ledger/export", pkgjwt.RoleSupervisor, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/stock/ledger/export?from=01/03/2026&to=10/03/2026", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "kardex-")
	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	rows, err := f.GetRows("Kardex")
	require.NoError(t, err)
	assert.Len(t, rows, 4, "encabezado + inventario inicial + dos patas del traslado")
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/stock/reconcile", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rep := decode[dto.ReconciliationReport](t, resp)
	assert.Empty(t, rep.Findings)

	// Saldo alterado fuera del kardex.
	s.OverwriteBalance(entity.Balance{Location: obra, ProductID: "cemento", CategoryID: "agregados", Quantity: decimal.NewFromInt(99)})
	resp = call(t, app, http.MethodPost, "/api/stock/reconcile", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rep = decode[dto.ReconciliationReport](t, resp)
	assert.NotEmpty(t, rep.Findings)

	resp = call(t, app, http.MethodPost, "/api/stock/reconcile?format=xlsx", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
}
