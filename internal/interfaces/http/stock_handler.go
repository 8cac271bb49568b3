package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/application/stock"
	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// StockHandler maneja traslados, ajustes, consumos y consultas de saldo (protegido).
type StockHandler struct {
	transfer *stock.TransferUseCase
	adjust   *stock.AdjustmentUseCase
	query    *stock.QueryUseCase
	log      *zerolog.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(transfer *stock.TransferUseCase, adjust *stock.AdjustmentUseCase, query *stock.QueryUseCase, log *zerolog.Logger) *StockHandler {
	return &StockHandler{transfer: transfer, adjust: adjust, query: query, log: log}
}

// Transfer godoc
// @Summary      Trasladar material entre ubicaciones
// @Description  Debita el origen y acredita el destino en una sola transacción, con un asiento por lado.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "from, to, product_id, category_id, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transfers [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.transfer.Transfer(c.Context(), stock.TransferInput{
		From:       in.From,
		To:         in.To,
		ProductID:  in.ProductID,
		CategoryID: in.CategoryID,
		Quantity:   in.Quantity,
		ActorID:    GetUserID(c),
		ActorName:  GetUserName(c),
		Remarks:    in.Remarks,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		TransactionID: res.TransactionID,
		From:          dto.ToBalanceResponse(res.From),
		To:            dto.ToBalanceResponse(res.To),
	})
}

// Adjust godoc
// @Summary      Ajuste manual de saldo
// @Description  adjustment_type: add | subtract | set. El motivo es obligatorio.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustRequest  true  "location, product_id, category_id, quantity, adjustment_type, reason"
// @Success      201   {object}  dto.BalanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	b, err := h.adjust.Adjust(c.Context(), stock.AdjustInput{
		Location:   in.Location,
		ProductID:  in.ProductID,
		CategoryID: in.CategoryID,
		Quantity:   in.Quantity,
		Mode:       entity.AdjustmentMode(in.AdjustmentType),
		ActorID:    GetUserID(c),
		Reason:     in.Reason,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToBalanceResponse(b))
}

// Consume godoc
// @Summary      Registrar material tomado para obra
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsumeRequest  true  "location, product_id, category_id, quantity, taken_by (opcional)"
// @Success      201   {object}  dto.BalanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/consumptions [post]
func (h *StockHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	b, err := h.adjust.Consume(c.Context(), stock.ConsumeInput{
		Location:   in.Location,
		ProductID:  in.ProductID,
		CategoryID: in.CategoryID,
		Quantity:   in.Quantity,
		ActorID:    GetUserID(c),
		TakenBy:    in.TakenBy,
		Remarks:    in.Remarks,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToBalanceResponse(b))
}

// GetBalance godoc
// @Summary      Saldo de un producto en una ubicación
// @Description  Sin fila de saldo se responde cantidad 0.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location_kind  query  string  true  "project | warehouse"
// @Param        location_id    query  string  true  "ID de la ubicación"
// @Param        product_id     query  string  true  "ID del producto"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/balance [get]
func (h *StockHandler) GetBalance(c *fiber.Ctx) error {
	loc, err := requiredLocation(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	productID := c.Query("product_id")
	if productID == "" {
		return writeError(c, h.log, domain.NewValidationError("product_id", "requerido"))
	}
	out, err := h.query.GetBalance(c.Context(), loc, productID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListBalances godoc
// @Summary      Saldos de una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location_kind  query  string  true   "project | warehouse"
// @Param        location_id    query  string  true   "ID de la ubicación"
// @Param        only_positive  query  bool    false  "Omitir saldos en cero"
// @Success      200  {object}  dto.BalanceListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/balances [get]
func (h *StockHandler) ListBalances(c *fiber.Ctx) error {
	loc, err := requiredLocation(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.query.ListBalances(c.Context(), loc, c.QueryBool("only_positive", false))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// locationQuery lee location_kind/location_id; project_id sirve de atajo para obras.
// Sin parámetros devuelve nil.
func locationQuery(c *fiber.Ctx) (*entity.LocationRef, error) {
	kind, id := c.Query("location_kind"), c.Query("location_id")
	if kind == "" && id == "" {
		if p := c.Query("project_id"); p != "" {
			ref := entity.ProjectRef(p)
			return &ref, nil
		}
		return nil, nil
	}
	ref := entity.LocationRef{Kind: entity.LocationKind(kind), ID: id}
	if !ref.Valid() {
		return nil, domain.NewValidationError("location", "ubicación inválida (kind project|warehouse e id)")
	}
	return &ref, nil
}

func requiredLocation(c *fiber.Ctx) (entity.LocationRef, error) {
	ref, err := locationQuery(c)
	if err != nil {
		return entity.LocationRef{}, err
	}
	if ref == nil {
		return entity.LocationRef{}, domain.NewValidationError("location", "requerida")
	}
	return *ref, nil
}
