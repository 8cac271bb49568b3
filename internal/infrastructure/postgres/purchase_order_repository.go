package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo órdenes de compra sobre PostgreSQL (usable con pool o tx).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// GetByID obtiene una orden. nil, nil si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	query := `SELECT id, project_id, status, created_at, updated_at FROM purchase_orders WHERE id = $1`
	var o entity.PurchaseOrder
	err := r.q.QueryRow(ctx, query, id).Scan(&o.ID, &o.ProjectID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	return &o, nil
}

// GetDetailForUpdate obtiene la línea bloqueándola (SELECT FOR UPDATE). nil, nil si no existe.
func (r *PurchaseOrderRepo) GetDetailForUpdate(ctx context.Context, detailID string) (*entity.PurchaseOrderDetail, error) {
	query := `
		SELECT id, purchase_order_id, category_id, product_id, quantity, status, remarks, delivery_date, updated_at
		FROM purchase_order_details WHERE id = $1
		FOR UPDATE`
	var d entity.PurchaseOrderDetail
	var remarks *string
	err := r.q.QueryRow(ctx, query, detailID).Scan(
		&d.ID, &d.PurchaseOrderID, &d.CategoryID, &d.ProductID, &d.Quantity, &d.Status,
		&remarks, &d.DeliveryDate, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order detail: %w", err)
	}
	d.Remarks = deref(remarks)
	return &d, nil
}

// MarkDetailDelivered cambia la línea a Delivered. Sólo actualiza líneas aún no entregadas.
func (r *PurchaseOrderRepo) MarkDetailDelivered(ctx context.Context, detailID, remarks string, at time.Time) error {
	query := `
		UPDATE purchase_order_details
		SET status = $2, remarks = COALESCE($3, remarks), delivery_date = $4, updated_at = $4
		WHERE id = $1 AND status <> $2`
	tag, err := r.q.Exec(ctx, query, detailID, entity.OrderDetailDelivered, nullable(remarks), at)
	if err != nil {
		return fmt.Errorf("mark detail delivered: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// CountPendingDetails líneas de la orden aún no entregadas.
func (r *PurchaseOrderRepo) CountPendingDetails(ctx context.Context, orderID string) (int, error) {
	query := `SELECT COUNT(*) FROM purchase_order_details WHERE purchase_order_id = $1 AND status <> $2`
	var n int
	if err := r.q.QueryRow(ctx, query, orderID, entity.OrderDetailDelivered).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending details: %w", err)
	}
	return n, nil
}

// UpdateStatus cambia el estado de la orden.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, orderID, status string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE purchase_orders SET status = $2, updated_at = $3 WHERE id = $1`, orderID, status, at)
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
