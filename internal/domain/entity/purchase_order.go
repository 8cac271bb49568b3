package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de órdenes de compra y de sus líneas.
const (
	PurchaseOrderPending   = "pending"
	PurchaseOrderCompleted = "Completed"
	OrderDetailPending     = "pending"
	OrderDetailDelivered   = "Delivered"
)

// PurchaseOrder orden de compra con destino a una obra.
type PurchaseOrder struct {
	ID        string
	ProjectID string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PurchaseOrderDetail línea de una orden de compra; al entregarse acredita stock en la obra.
type PurchaseOrderDetail struct {
	ID              string
	PurchaseOrderID string
	CategoryID      string
	ProductID       string
	Quantity        decimal.Decimal
	Status          string
	Remarks         string
	DeliveryDate    *time.Time
	UpdatedAt       time.Time
}
