package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	domainstock "github.com/jhoicas/Obras-api/internal/domain/stock"
)

// AdjustmentUseCase aplica correcciones manuales (add/subtract/set) y consumos de obra
// sobre el saldo de una sola ubicación, con exactamente un asiento por operación.
type AdjustmentUseCase struct {
	deps Deps
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(deps Deps) *AdjustmentUseCase {
	return &AdjustmentUseCase{deps: deps.withDefaults()}
}

// AdjustInput entrada de un ajuste manual. Reason es obligatorio.
type AdjustInput struct {
	Location   entity.LocationRef
	ProductID  string
	CategoryID string
	Quantity   decimal.Decimal
	Mode       entity.AdjustmentMode
	ActorID    string
	Reason     string
}

// ConsumeInput material tomado para construcción. TakenBy vacío = ActorID.
type ConsumeInput struct {
	Location   entity.LocationRef
	ProductID  string
	CategoryID string
	Quantity   decimal.Decimal
	ActorID    string
	TakenBy    string
	Remarks    string
}

// singleChange operación de un solo lado ya validada.
type singleChange struct {
	change  entity.BalanceChange
	mode    entity.AdjustmentMode
	txType  string
	takenBy string
	remarks string
}

// Adjust aplica el ajuste. Subtract sin fila o con saldo menor falla con stock insuficiente;
// Set crea la fila si falta y sobrescribe la cantidad (el asiento guarda el saldo previo).
func (uc *AdjustmentUseCase) Adjust(ctx context.Context, in AdjustInput) (b *entity.Balance, err error) {
	started := uc.deps.Now()
	defer func() { uc.deps.Metrics.Observe("adjust_"+string(in.Mode), started, err) }()

	if in.ActorID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !in.Mode.Valid() {
		return nil, domain.NewValidationError("adjustment_type", "debe ser add, subtract o set")
	}
	var qty decimal.Decimal
	if in.Mode == entity.AdjustSet {
		qty = domainstock.Normalize(in.Quantity)
		if qty.IsNegative() {
			return nil, domain.NewValidationError("quantity", "no puede ser negativa")
		}
	} else if qty, err = domainstock.PositiveQuantity("quantity", in.Quantity); err != nil {
		return nil, err
	}
	reason, err := domainstock.Remarks("reason", in.Reason, true)
	if err != nil {
		return nil, err
	}
	_, categoryID, err := uc.deps.resolveProduct(ctx, in.ProductID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.deps.resolveLocation(ctx, "location", in.Location); err != nil {
		return nil, err
	}

	return uc.apply(ctx, singleChange{
		change: entity.BalanceChange{
			Location:   in.Location,
			ProductID:  in.ProductID,
			CategoryID: categoryID,
			Quantity:   qty,
			ActorID:    in.ActorID,
			Label:      domainstock.AdjustmentLabel(reason),
			At:         uc.deps.Now(),
		},
		mode:    in.Mode,
		txType:  domainstock.AdjustmentType(in.Mode),
		remarks: reason,
	})
}

// Consume descuenta material tomado para construcción. Registra tanto el usuario autenticado
// (UserID) como la persona que retiró el material (TakenBy).
func (uc *AdjustmentUseCase) Consume(ctx context.Context, in ConsumeInput) (b *entity.Balance, err error) {
	started := uc.deps.Now()
	defer func() { uc.deps.Metrics.Observe("consume", started, err) }()

	if in.ActorID == "" {
		return nil, domain.ErrUnauthorized
	}
	qty, err := domainstock.PositiveQuantity("quantity", in.Quantity)
	if err != nil {
		return nil, err
	}
	remarks, err := domainstock.Remarks("remarks", in.Remarks, false)
	if err != nil {
		return nil, err
	}
	_, categoryID, err := uc.deps.resolveProduct(ctx, in.ProductID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.deps.resolveLocation(ctx, "location", in.Location); err != nil {
		return nil, err
	}
	takenBy := in.TakenBy
	if takenBy == "" {
		takenBy = in.ActorID
	}

	return uc.apply(ctx, singleChange{
		change: entity.BalanceChange{
			Location:   in.Location,
			ProductID:  in.ProductID,
			CategoryID: categoryID,
			Quantity:   qty,
			ActorID:    in.ActorID,
			Label:      domainstock.ConsumptionLabel(takenBy),
			At:         uc.deps.Now(),
		},
		mode:    entity.AdjustSubtract,
		txType:  entity.TxTypeTakenForConstruction,
		takenBy: takenBy,
		remarks: remarks,
	})
}

func (uc *AdjustmentUseCase) apply(ctx context.Context, sc singleChange) (*entity.Balance, error) {
	var out *entity.Balance
	err := uc.deps.Tx.Run(ctx, func(
		balances repository.BalanceRepository,
		ledger repository.LedgerRepository,
		_ repository.PurchaseOrderRepository,
	) error {
		b, err := applySingle(ctx, balances, ledger, sc)
		out = b
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.deps.Metrics.Moved(sc.txType, sc.change.Quantity)
	uc.deps.Log.Info().
		Str("location", sc.change.Location.String()).
		Str("product_id", sc.change.ProductID).
		Str("type", sc.txType).
		Str("quantity", sc.change.Quantity.StringFixed(domainstock.Scale)).
		Str("balance", out.Quantity.StringFixed(domainstock.Scale)).
		Str("actor", sc.change.ActorID).
		Msg("ajuste de stock registrado")
	return out, nil
}

// applySingle ejecuta una operación de un solo lado dentro de una transacción ya abierta.
func applySingle(
	ctx context.Context,
	balances repository.BalanceRepository,
	ledger repository.LedgerRepository,
	sc singleChange,
) (*entity.Balance, error) {
	entry := entity.LedgerEntry{
		TransactionID: uuid.New().String(),
		Type:          sc.txType,
		TakenBy:       sc.takenBy,
		Remarks:       sc.remarks,
	}
	switch sc.mode {
	case entity.AdjustAdd:
		return credit(ctx, balances, ledger, sc.change, entry)
	case entity.AdjustSubtract:
		return debit(ctx, balances, ledger, sc.change, entry)
	case entity.AdjustSet:
		current, err := balances.GetForUpdate(ctx, sc.change.Location, sc.change.ProductID)
		if err != nil {
			return nil, err
		}
		prev := decimal.Zero
		if current != nil {
			prev = current.Quantity
		}
		adj, err := domainstock.ApplyAdjustment(entity.AdjustSet, prev, sc.change.Quantity)
		if err != nil {
			return nil, err
		}
		b, err := balances.Set(ctx, sc.change)
		if err != nil {
			return nil, err
		}
		entry.PreviousQuantity = adj.Previous
		entry.Quantity = adj.Delta
		entry.BalanceQuantity = b.Quantity
		entry.Direction = adj.Direction
		if err := appendEntry(ctx, ledger, sc.change, &entry); err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, domain.NewValidationError("adjustment_type", "debe ser add, subtract o set")
}
