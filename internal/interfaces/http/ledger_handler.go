package http

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/application/stock"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/jhoicas/Obras-api/internal/infrastructure/excel"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LedgerHandler historial del kardex, registro diario y conciliación (protegido).
type LedgerHandler struct {
	query     *stock.QueryUseCase
	reconcile *stock.ReconcileUseCase
	log       *zerolog.Logger
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(query *stock.QueryUseCase, reconcile *stock.ReconcileUseCase, log *zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{query: query, reconcile: reconcile, log: log}
}

// History godoc
// @Summary      Historial del kardex
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        location_kind  query  string  false  "project | warehouse"
// @Param        location_id    query  string  false  "ID de la ubicación"
// @Param        category_id    query  string  false  "Categoría"
// @Param        product_id     query  string  false  "Producto"
// @Param        user_id        query  string  false  "Usuario"
// @Param        type           query  string  false  "Tipos separados por coma"
// @Param        from           query  string  false  "Desde (dd/mm/yyyy, inclusive)"
// @Param        to             query  string  false  "Hasta (dd/mm/yyyy, inclusive)"
// @Param        limit          query  int     false  "Máximo 100"
// @Param        offset         query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.LedgerListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/ledger [get]
func (h *LedgerHandler) History(c *fiber.Ctx) error {
	f, err := ledgerFilter(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	f.Limit = c.QueryInt("limit", 0)
	f.Offset = c.QueryInt("offset", 0)
	out, err := h.query.History(c.Context(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar kardex a Excel
// @Tags         ledger
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        location_kind  query  string  false  "project | warehouse"
// @Param        location_id    query  string  false  "ID de la ubicación"
// @Param        from           query  string  false  "Desde (dd/mm/yyyy)"
// @Param        to             query  string  false  "Hasta (dd/mm/yyyy)"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/ledger/export [get]
func (h *LedgerHandler) Export(c *fiber.Ctx) error {
	f, err := ledgerFilter(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items, err := h.query.Export(c.Context(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var buf bytes.Buffer
	if err := excel.WriteLedger(&buf, items); err != nil {
		return writeError(c, h.log, err)
	}
	return sendXLSX(c, "kardex", buf.Bytes())
}

// ActivityDates godoc
// @Summary      Días con movimientos de una obra
// @Tags         logs
// @Security     Bearer
// @Produce      json
// @Param        project_id  query  string  true   "ID de la obra (o location_kind/location_id)"
// @Param        limit       query  int     false  "Máximo 100"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.ActivityDatesResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/logs/dates [get]
func (h *LedgerHandler) ActivityDates(c *fiber.Ctx) error {
	loc, err := requiredLocation(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	out, err := h.query.ActivityDates(c.Context(), loc, page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// DailyLog godoc
// @Summary      Registro diario de una obra
// @Description  Material usado y trasladado en el día indicado.
// @Tags         logs
// @Security     Bearer
// @Produce      json
// @Param        project_id  query  string  true  "ID de la obra (o location_kind/location_id)"
// @Param        date        query  string  true  "Día (dd/mm/yyyy)"
// @Success      200  {object}  dto.DailyLogResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/logs [get]
func (h *LedgerHandler) DailyLog(c *fiber.Ctx) error {
	loc, err := requiredLocation(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	day, err := stock.ParseDay(c.Query("date"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.query.DailyLog(c.Context(), loc, day)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar kardex contra saldos
// @Description  Repite el kardex y compara con los saldos. format=xlsx descarga el informe.
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        format  query  string  false  "json (defecto) | xlsx"
// @Success      200  {object}  dto.ReconciliationReport
// @Router       /api/stock/reconcile [post]
func (h *LedgerHandler) Reconcile(c *fiber.Ctx) error {
	rep, err := h.reconcile.Run(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	if strings.EqualFold(c.Query("format"), "xlsx") {
		var buf bytes.Buffer
		if err := excel.WriteReconciliation(&buf, rep); err != nil {
			return writeError(c, h.log, err)
		}
		return sendXLSX(c, "conciliacion", buf.Bytes())
	}
	return c.JSON(rep)
}

// ledgerFilter arma el filtro desde la query; to es inclusive (se corre al día siguiente).
func ledgerFilter(c *fiber.Ctx) (repository.LedgerFilter, error) {
	var f repository.LedgerFilter
	loc, err := locationQuery(c)
	if err != nil {
		return f, err
	}
	f.Location = loc
	f.CategoryID = c.Query("category_id")
	f.ProductID = c.Query("product_id")
	f.UserID = c.Query("user_id")
	if t := c.Query("type"); t != "" {
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.Types = append(f.Types, s)
			}
		}
	}
	if s := c.Query("from"); s != "" {
		from, err := stock.ParseDay(s)
		if err != nil {
			return f, err
		}
		f.From = &from
	}
	if s := c.Query("to"); s != "" {
		to, err := stock.ParseDay(s)
		if err != nil {
			return f, err
		}
		to = to.AddDate(0, 0, 1)
		f.To = &to
	}
	return f, nil
}

func sendXLSX(c *fiber.Ctx, name string, body []byte) error {
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s-%s.xlsx"`, name, time.Now().UTC().Format("20060102")))
	return c.Send(body)
}
