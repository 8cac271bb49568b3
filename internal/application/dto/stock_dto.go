package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// TransferRequest body para POST /api/stock/transfers.
type TransferRequest struct {
	From       entity.LocationRef `json:"from"`
	To         entity.LocationRef `json:"to"`
	CategoryID string             `json:"category_id"`
	ProductID  string             `json:"product_id"`
	Quantity   decimal.Decimal    `json:"quantity"`
	Remarks    string             `json:"remarks,omitempty"`
}

// AdjustRequest body para POST /api/stock/adjustments.
type AdjustRequest struct {
	Location       entity.LocationRef `json:"location"`
	CategoryID     string             `json:"category_id"`
	ProductID      string             `json:"product_id"`
	Quantity       decimal.Decimal    `json:"quantity"`
	AdjustmentType string             `json:"adjustment_type"` // add, subtract, set
	Reason         string             `json:"reason"`
}

// ConsumeRequest body para POST /api/stock/consumptions (material tomado para obra).
type ConsumeRequest struct {
	Location   entity.LocationRef `json:"location"`
	CategoryID string             `json:"category_id"`
	ProductID  string             `json:"product_id"`
	Quantity   decimal.Decimal    `json:"quantity"`
	TakenBy    string             `json:"taken_by,omitempty"` // vacío = usuario autenticado
	Remarks    string             `json:"remarks,omitempty"`
}

// DeliveryRequest body para POST /api/stock/deliveries.
type DeliveryRequest struct {
	Location   entity.LocationRef `json:"location"`
	CategoryID string             `json:"category_id"`
	ProductID  string             `json:"product_id"`
	Quantity   decimal.Decimal    `json:"quantity"`
	Reason     string             `json:"reason,omitempty"`
}

// MarkDeliveredRequest body para POST /api/purchase-orders/details/:id/deliver.
type MarkDeliveredRequest struct {
	Remarks string `json:"remarks,omitempty"`
}

// BalanceResponse salida de un saldo.
type BalanceResponse struct {
	Location            entity.LocationRef `json:"location"`
	LocationName        string             `json:"location_name,omitempty"`
	CategoryID          string             `json:"category_id"`
	CategoryName        string             `json:"category_name,omitempty"`
	ProductID           string             `json:"product_id"`
	ProductName         string             `json:"product_name,omitempty"`
	Quantity            decimal.Decimal    `json:"quantity"`
	LastUpdatedBy       string             `json:"last_updated_by,omitempty"`
	LastTransactionType string             `json:"last_transaction_type,omitempty"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// TransferResponse saldos resultantes de ambas ubicaciones.
type TransferResponse struct {
	TransactionID string          `json:"transaction_id"`
	From          BalanceResponse `json:"from"`
	To            BalanceResponse `json:"to"`
}

// BalanceListResponse saldos de una ubicación.
type BalanceListResponse struct {
	Location entity.LocationRef `json:"location"`
	Items    []BalanceResponse  `json:"items"`
}

// ToBalanceResponse convierte un Balance; b nil se interpreta como saldo cero.
func ToBalanceResponse(b *entity.Balance) BalanceResponse {
	if b == nil {
		return BalanceResponse{Quantity: decimal.Zero}
	}
	return BalanceResponse{
		Location:            b.Location,
		CategoryID:          b.CategoryID,
		ProductID:           b.ProductID,
		Quantity:            b.Quantity,
		LastUpdatedBy:       b.LastUpdatedBy,
		LastTransactionType: b.LastTransactionType,
		UpdatedAt:           b.UpdatedAt,
	}
}
