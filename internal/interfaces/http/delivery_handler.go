package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/application/stock"
)

// DeliveryHandler entregas de material y líneas de orden de compra (protegido).
type DeliveryHandler struct {
	uc  *stock.DeliveryUseCase
	log *zerolog.Logger
}

// NewDeliveryHandler construye el handler.
func NewDeliveryHandler(uc *stock.DeliveryUseCase, log *zerolog.Logger) *DeliveryHandler {
	return &DeliveryHandler{uc: uc, log: log}
}

// MarkDeliveredResponse resultado de entregar una línea de orden.
type MarkDeliveredResponse struct {
	DetailID       string              `json:"detail_id"`
	OrderID        string              `json:"purchase_order_id"`
	Balance        dto.BalanceResponse `json:"balance"`
	OrderCompleted bool                `json:"order_completed"`
}

// RecordDelivery godoc
// @Summary      Registrar entrega de material
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DeliveryRequest  true  "location, product_id, category_id, quantity"
// @Success      201   {object}  dto.BalanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/deliveries [post]
func (h *DeliveryHandler) RecordDelivery(c *fiber.Ctx) error {
	var in dto.DeliveryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	b, err := h.uc.RecordDelivery(c.Context(), stock.DeliveryInput{
		Location:   in.Location,
		ProductID:  in.ProductID,
		CategoryID: in.CategoryID,
		Quantity:   in.Quantity,
		ActorID:    GetUserID(c),
		Reason:     in.Reason,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToBalanceResponse(b))
}

// MarkDetailDelivered godoc
// @Summary      Marcar línea de orden de compra como entregada
// @Description  Acredita la cantidad en la obra de la orden y completa la orden si no quedan líneas pendientes.
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true   "ID de la línea"
// @Param        body  body  dto.MarkDeliveredRequest  false  "remarks"
// @Success      200   {object}  MarkDeliveredResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/details/{id}/deliver [post]
func (h *DeliveryHandler) MarkDetailDelivered(c *fiber.Ctx) error {
	var in dto.MarkDeliveredRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	res, err := h.uc.MarkDetailDelivered(c.Context(), c.Params("id"), GetUserID(c), in.Remarks)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(MarkDeliveredResponse{
		DetailID:       res.Detail.ID,
		OrderID:        res.Detail.PurchaseOrderID,
		Balance:        dto.ToBalanceResponse(res.Balance),
		OrderCompleted: res.OrderCompleted,
	})
}
