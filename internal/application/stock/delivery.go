package stock

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	domainstock "github.com/jhoicas/Obras-api/internal/domain/stock"
)

// DeliveryUseCase acredita en la obra el material entregado por órdenes de compra.
type DeliveryUseCase struct {
	deps Deps
}

// NewDeliveryUseCase construye el caso de uso.
func NewDeliveryUseCase(deps Deps) *DeliveryUseCase {
	return &DeliveryUseCase{deps: deps.withDefaults()}
}

// DeliveryInput entrega de material en una ubicación. Reason es opcional.
type DeliveryInput struct {
	Location   entity.LocationRef
	ProductID  string
	CategoryID string
	Quantity   decimal.Decimal
	ActorID    string
	Reason     string
}

// DeliveryResult resultado de marcar una línea de orden como entregada.
type DeliveryResult struct {
	Detail         *entity.PurchaseOrderDetail
	Balance        *entity.Balance
	OrderCompleted bool
}

// RecordDelivery acredita la cantidad entregada (ruta Add) con tipo "PO Item Delivered".
func (uc *DeliveryUseCase) RecordDelivery(ctx context.Context, in DeliveryInput) (b *entity.Balance, err error) {
	started := uc.deps.Now()
	defer func() { uc.deps.Metrics.Observe("delivery", started, err) }()

	ch, remarks, err := uc.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	err = uc.deps.Tx.Run(ctx, func(
		balances repository.BalanceRepository,
		ledger repository.LedgerRepository,
		_ repository.PurchaseOrderRepository,
	) error {
		var err error
		b, err = applySingle(ctx, balances, ledger, singleChange{
			change:  ch,
			mode:    entity.AdjustAdd,
			txType:  entity.TxTypePOItemDelivered,
			remarks: remarks,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.logDelivery(ch, b, "")
	return b, nil
}

// MarkDetailDelivered marca la línea como entregada y acredita su cantidad en la obra de la orden,
// todo en una transacción. Una línea ya entregada se rechaza con ErrConflict (evita doble crédito).
// Cuando no quedan líneas pendientes la orden pasa a Completed.
func (uc *DeliveryUseCase) MarkDetailDelivered(ctx context.Context, detailID, actorID, remarks string) (res *DeliveryResult, err error) {
	started := uc.deps.Now()
	defer func() { uc.deps.Metrics.Observe("mark_delivered", started, err) }()

	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}
	if detailID == "" {
		return nil, domain.NewValidationError("detail_id", "es requerido")
	}
	remarks, err = domainstock.Remarks("remarks", remarks, false)
	if err != nil {
		return nil, err
	}

	// Producto y obra se validan antes de abrir la transacción que escribe: los repositorios de
	// catálogo van por el pool y no deben pedir otra conexión mientras la tx retiene la suya.
	detail, order, err := uc.loadDetail(ctx, detailID)
	if err != nil {
		return nil, err
	}
	ch, note, err := uc.validate(ctx, DeliveryInput{
		Location:   entity.ProjectRef(order.ProjectID),
		ProductID:  detail.ProductID,
		CategoryID: detail.CategoryID,
		Quantity:   detail.Quantity,
		ActorID:    actorID,
		Reason:     remarks,
	})
	if err != nil {
		return nil, err
	}
	now := uc.deps.Now()
	ch.At = now

	err = uc.deps.Tx.Run(ctx, func(
		balances repository.BalanceRepository,
		ledger repository.LedgerRepository,
		orders repository.PurchaseOrderRepository,
	) error {
		current, err := orders.GetDetailForUpdate(ctx, detailID)
		if err != nil {
			return err
		}
		if err := checkPending(detailID, current); err != nil {
			return err
		}
		if !sameDetail(detail, current) {
			return fmt.Errorf("línea de orden %s modificada durante la entrega: %w", detailID, domain.ErrConflict)
		}

		b, err := applySingle(ctx, balances, ledger, singleChange{
			change:  ch,
			mode:    entity.AdjustAdd,
			txType:  entity.TxTypePOItemDelivered,
			remarks: note,
		})
		if err != nil {
			return err
		}
		if err := orders.MarkDetailDelivered(ctx, detailID, remarks, now); err != nil {
			return fmt.Errorf("mark detail delivered: %w", err)
		}
		pending, err := orders.CountPendingDetails(ctx, order.ID)
		if err != nil {
			return err
		}
		completed := pending == 0
		if completed {
			if err := orders.UpdateStatus(ctx, order.ID, entity.PurchaseOrderCompleted, now); err != nil {
				return fmt.Errorf("complete purchase order: %w", err)
			}
		}

		delivered := *current
		delivered.Status = entity.OrderDetailDelivered
		delivered.Remarks = remarks
		delivered.DeliveryDate = &now
		delivered.UpdatedAt = now
		res = &DeliveryResult{Detail: &delivered, Balance: b, OrderCompleted: completed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logDelivery(ch, res.Balance, detailID)
	return res, nil
}

// loadDetail lee la línea pendiente y su orden en una transacción corta.
func (uc *DeliveryUseCase) loadDetail(ctx context.Context, detailID string) (*entity.PurchaseOrderDetail, *entity.PurchaseOrder, error) {
	var detail *entity.PurchaseOrderDetail
	var order *entity.PurchaseOrder
	err := uc.deps.Tx.Run(ctx, func(
		_ repository.BalanceRepository,
		_ repository.LedgerRepository,
		orders repository.PurchaseOrderRepository,
	) error {
		var err error
		if detail, err = orders.GetDetailForUpdate(ctx, detailID); err != nil {
			return err
		}
		if err := checkPending(detailID, detail); err != nil {
			return err
		}
		if order, err = orders.GetByID(ctx, detail.PurchaseOrderID); err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("orden de compra %s: %w", detail.PurchaseOrderID, domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return detail, order, nil
}

func checkPending(detailID string, d *entity.PurchaseOrderDetail) error {
	if d == nil {
		return fmt.Errorf("línea de orden %s: %w", detailID, domain.ErrNotFound)
	}
	if d.Status == entity.OrderDetailDelivered {
		return fmt.Errorf("línea de orden %s ya entregada: %w", detailID, domain.ErrConflict)
	}
	return nil
}

func sameDetail(a, b *entity.PurchaseOrderDetail) bool {
	return a.PurchaseOrderID == b.PurchaseOrderID &&
		a.ProductID == b.ProductID &&
		a.CategoryID == b.CategoryID &&
		a.Quantity.Equal(b.Quantity)
}

func (uc *DeliveryUseCase) validate(ctx context.Context, in DeliveryInput) (entity.BalanceChange, string, error) {
	if in.ActorID == "" {
		return entity.BalanceChange{}, "", domain.ErrUnauthorized
	}
	qty, err := domainstock.PositiveQuantity("quantity", in.Quantity)
	if err != nil {
		return entity.BalanceChange{}, "", err
	}
	reason, err := domainstock.Remarks("reason", in.Reason, false)
	if err != nil {
		return entity.BalanceChange{}, "", err
	}
	_, categoryID, err := uc.deps.resolveProduct(ctx, in.ProductID, in.CategoryID)
	if err != nil {
		return entity.BalanceChange{}, "", err
	}
	if _, err := uc.deps.resolveLocation(ctx, "location", in.Location); err != nil {
		return entity.BalanceChange{}, "", err
	}
	return entity.BalanceChange{
		Location:   in.Location,
		ProductID:  in.ProductID,
		CategoryID: categoryID,
		Quantity:   qty,
		ActorID:    in.ActorID,
		Label:      entity.TxTypePOItemDelivered,
		At:         uc.deps.Now(),
	}, reason, nil
}

func (uc *DeliveryUseCase) logDelivery(ch entity.BalanceChange, b *entity.Balance, detailID string) {
	uc.deps.Metrics.Moved("delivery", ch.Quantity)
	ev := uc.deps.Log.Info().
		Str("location", ch.Location.String()).
		Str("product_id", ch.ProductID).
		Str("quantity", ch.Quantity.StringFixed(domainstock.Scale)).
		Str("balance", b.Quantity.StringFixed(domainstock.Scale)).
		Str("actor", ch.ActorID)
	if detailID != "" {
		ev = ev.Str("detail_id", detailID)
	}
	ev.Msg("entrega de material acreditada")
}
