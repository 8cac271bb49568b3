package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Obras-api/internal/application/stock"
	"github.com/jhoicas/Obras-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Transfer  *stock.TransferUseCase
	Adjust    *stock.AdjustmentUseCase
	Delivery  *stock.DeliveryUseCase
	Query     *stock.QueryUseCase
	Reconcile *stock.ReconcileUseCase
	JWTSecret string
	// Metrics handler de Prometheus; nil deshabilita /metrics.
	Metrics http.Handler
	Log     *zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	admin := RequireRole(jwt.RoleAdmin)
	supervisors := RequireRole(jwt.RoleAdmin, jwt.RoleSupervisor)
	field := RequireRole(jwt.RoleAdmin, jwt.RoleSupervisor, jwt.RoleEngineer)

	stockHandler := NewStockHandler(deps.Transfer, deps.Adjust, deps.Query, log)
	deliveryHandler := NewDeliveryHandler(deps.Delivery, log)
	ledgerHandler := NewLedgerHandler(deps.Query, deps.Reconcile, log)

	// Saldos y movimientos
	st := protected.Group("/stock")
	st.Get("/balances", stockHandler.ListBalances)
	st.Get("/balance", stockHandler.GetBalance)
	st.Post("/transfers", supervisors, stockHandler.Transfer)
	st.Post("/adjustments", admin, stockHandler.Adjust)
	st.Post("/consumptions", field, stockHandler.Consume)
	st.Post("/deliveries", supervisors, deliveryHandler.RecordDelivery)

	// Kardex, registro diario y conciliación
	st.Get("/ledger", ledgerHandler.History)
	st.Get("/ledger/export", admin, ledgerHandler.Export)
	st.Get("/logs/dates", ledgerHandler.ActivityDates)
	st.Get("/logs", ledgerHandler.DailyLog)
	st.Post("/reconcile", admin, ledgerHandler.Reconcile)

	// Órdenes de compra
	orders := protected.Group("/purchase-orders")
	orders.Post("/details/:id/deliver", field, deliveryHandler.MarkDetailDelivered)
}
