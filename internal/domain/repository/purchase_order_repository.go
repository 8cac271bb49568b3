package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// PurchaseOrderRepository puerto de órdenes de compra usado por la entrega de líneas.
type PurchaseOrderRepository interface {
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// GetDetailForUpdate bloquea la línea; nil, nil si no existe.
	GetDetailForUpdate(ctx context.Context, detailID string) (*entity.PurchaseOrderDetail, error)
	MarkDetailDelivered(ctx context.Context, detailID, remarks string, at time.Time) error
	CountPendingDetails(ctx context.Context, orderID string) (int, error)
	UpdateStatus(ctx context.Context, orderID, status string, at time.Time) error
}
