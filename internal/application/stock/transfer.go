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

// TransferUseCase traslada material entre dos ubicaciones (obra↔obra, obra↔bodega)
// debitando el origen y acreditando el destino en la misma transacción, con dos asientos.
type TransferUseCase struct {
	deps Deps
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(deps Deps) *TransferUseCase {
	return &TransferUseCase{deps: deps.withDefaults()}
}

// TransferInput entrada de un traslado. ActorName se usa sólo en las etiquetas del saldo.
type TransferInput struct {
	From       entity.LocationRef
	To         entity.LocationRef
	ProductID  string
	CategoryID string
	Quantity   decimal.Decimal
	ActorID    string
	ActorName  string
	Remarks    string
}

// TransferResult saldos de ambas ubicaciones tras el traslado.
type TransferResult struct {
	TransactionID string
	From          *entity.Balance
	To            *entity.Balance
}

// Transfer valida, bloquea ambas filas en orden determinista, debita el origen (falla con
// stock insuficiente sin efectos), acredita el destino y escribe los asientos Transfer-Out/Transfer-In.
func (uc *TransferUseCase) Transfer(ctx context.Context, in TransferInput) (res *TransferResult, err error) {
	started := uc.deps.Now()
	defer func() { uc.deps.Metrics.Observe("transfer", started, err) }()

	p, err := uc.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	qty := p.qty

	now := uc.deps.Now()
	txID := uuid.New().String()
	actor := actorLabel(in.ActorName, in.ActorID)

	res = &TransferResult{TransactionID: txID}
	err = uc.deps.Tx.Run(ctx, func(
		balances repository.BalanceRepository,
		ledger repository.LedgerRepository,
		_ repository.PurchaseOrderRepository,
	) error {
		if err := lockPair(ctx, balances, in.From, in.To, in.ProductID); err != nil {
			return err
		}

		to := in.To
		from, err := debit(ctx, balances, ledger, entity.BalanceChange{
			Location:   in.From,
			ProductID:  in.ProductID,
			CategoryID: p.categoryID,
			Quantity:   qty,
			ActorID:    in.ActorID,
			Label:      domainstock.SentLabel(p.toName, actor),
			At:         now,
		}, entity.LedgerEntry{
			TransactionID: txID,
			Type:          entity.TxTypeTransferOut,
			Counterpart:   &to,
			Remarks:       p.remarks,
		})
		if err != nil {
			return err
		}

		src := in.From
		dest, err := credit(ctx, balances, ledger, entity.BalanceChange{
			Location:   in.To,
			ProductID:  in.ProductID,
			CategoryID: p.categoryID,
			Quantity:   qty,
			ActorID:    in.ActorID,
			Label:      domainstock.ReceivedLabel(p.fromName, actor),
			At:         now,
		}, entity.LedgerEntry{
			TransactionID: txID,
			Type:          entity.TxTypeTransferIn,
			Counterpart:   &src,
			Remarks:       p.remarks,
		})
		if err != nil {
			return err
		}
		res.From, res.To = from, dest
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.deps.Metrics.Moved("transfer", qty)
	uc.deps.Log.Info().
		Str("transaction_id", txID).
		Str("from", in.From.String()).
		Str("to", in.To.String()).
		Str("product_id", in.ProductID).
		Str("quantity", qty.StringFixed(domainstock.Scale)).
		Str("actor", in.ActorID).
		Msg("traslado de stock registrado")
	return res, nil
}

type transferPlan struct {
	qty        decimal.Decimal
	remarks    string
	categoryID string
	fromName   string
	toName     string
}

func (uc *TransferUseCase) validate(ctx context.Context, in TransferInput) (p transferPlan, err error) {
	if in.ActorID == "" {
		return p, domain.ErrUnauthorized
	}
	if !in.From.Valid() {
		return p, domain.NewValidationError("from", "ubicación inválida")
	}
	if !in.To.Valid() {
		return p, domain.NewValidationError("to", "ubicación inválida")
	}
	if in.From == in.To {
		return p, domain.ErrSameLocation
	}
	if p.qty, err = domainstock.PositiveQuantity("quantity", in.Quantity); err != nil {
		return p, err
	}
	if p.remarks, err = domainstock.Remarks("remarks", in.Remarks, false); err != nil {
		return p, err
	}
	if _, p.categoryID, err = uc.deps.resolveProduct(ctx, in.ProductID, in.CategoryID); err != nil {
		return p, err
	}
	if p.fromName, err = uc.deps.resolveLocation(ctx, "from", in.From); err != nil {
		return p, err
	}
	if p.toName, err = uc.deps.resolveLocation(ctx, "to", in.To); err != nil {
		return p, err
	}
	return p, nil
}

// lockPair bloquea las filas de origen y destino siempre en el mismo orden para evitar
// interbloqueos entre traslados cruzados (A→B y B→A simultáneos).
func lockPair(ctx context.Context, balances repository.BalanceRepository, a, b entity.LocationRef, productID string) error {
	first, second := a, b
	if second.Less(first) {
		first, second = second, first
	}
	if _, err := balances.GetForUpdate(ctx, first, productID); err != nil {
		return err
	}
	_, err := balances.GetForUpdate(ctx, second, productID)
	return err
}

func actorLabel(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
