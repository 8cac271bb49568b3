package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

// credit suma al saldo (creándolo si no existe) y registra el asiento IN correspondiente.
// entry trae los campos descriptivos; cantidades y dirección se derivan del saldo resultante.
func credit(
	ctx context.Context,
	balances repository.BalanceRepository,
	ledger repository.LedgerRepository,
	ch entity.BalanceChange,
	entry entity.LedgerEntry,
) (*entity.Balance, error) {
	b, err := balances.Credit(ctx, ch)
	if err != nil {
		return nil, err
	}
	entry.PreviousQuantity = b.Quantity.Sub(ch.Quantity)
	entry.Quantity = ch.Quantity
	entry.BalanceQuantity = b.Quantity
	entry.Direction = entity.DirectionIn
	if err := appendEntry(ctx, ledger, ch, &entry); err != nil {
		return nil, err
	}
	return b, nil
}

// debit resta del saldo sólo si alcanza (primitiva atómica del repositorio) y registra el asiento OUT.
func debit(
	ctx context.Context,
	balances repository.BalanceRepository,
	ledger repository.LedgerRepository,
	ch entity.BalanceChange,
	entry entity.LedgerEntry,
) (*entity.Balance, error) {
	b, err := balances.Debit(ctx, ch)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, insufficient(ctx, balances, ch)
		}
		return nil, err
	}
	entry.PreviousQuantity = b.Quantity.Add(ch.Quantity)
	entry.Quantity = ch.Quantity
	entry.BalanceQuantity = b.Quantity
	entry.Direction = entity.DirectionOut
	if err := appendEntry(ctx, ledger, ch, &entry); err != nil {
		return nil, err
	}
	return b, nil
}

func appendEntry(ctx context.Context, ledger repository.LedgerRepository, ch entity.BalanceChange, entry *entity.LedgerEntry) error {
	entry.Location = ch.Location
	entry.ProductID = ch.ProductID
	entry.CategoryID = ch.CategoryID
	entry.UserID = ch.ActorID
	entry.Time = ch.At
	entry.CreatedAt = ch.At
	if err := ledger.Append(ctx, entry); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// insufficient construye el error detallado; la ausencia de fila se informa como disponible 0.
func insufficient(ctx context.Context, balances repository.BalanceRepository, ch entity.BalanceChange) error {
	available := decimal.Zero
	if b, err := balances.Get(ctx, ch.Location, ch.ProductID); err == nil && b != nil {
		available = b.Quantity
	}
	return &domain.InsufficientStockError{
		Location:  ch.Location.String(),
		ProductID: ch.ProductID,
		Available: available,
		Requested: ch.Quantity,
	}
}

// resolveProduct valida que el producto exista y que la categoría coincida.
// Si categoryID viene vacío se toma la del producto.
func (d Deps) resolveProduct(ctx context.Context, productID, categoryID string) (*entity.Product, string, error) {
	if productID == "" {
		return nil, "", domain.NewValidationError("product_id", "es requerido")
	}
	p, err := d.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, "", err
	}
	if p == nil {
		return nil, "", domain.NewValidationError("product_id", "no existe")
	}
	if categoryID == "" {
		return p, p.CategoryID, nil
	}
	if categoryID != p.CategoryID {
		return nil, "", domain.NewValidationError("category_id", "no corresponde a la categoría del producto")
	}
	return p, categoryID, nil
}

// resolveLocation valida una ubicación de origen o destino de un movimiento y devuelve su nombre.
// Una ubicación inexistente es un error de validación del campo.
func (d Deps) resolveLocation(ctx context.Context, field string, loc entity.LocationRef) (string, error) {
	name, err := d.lookupLocation(ctx, field, loc)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.NewValidationError(field, "no existe")
	}
	return name, err
}

// lookupLocation nombre de la ubicación consultada; inexistente es ErrNotFound.
func (d Deps) lookupLocation(ctx context.Context, field string, loc entity.LocationRef) (string, error) {
	if !loc.Valid() {
		return "", domain.NewValidationError(field, "ubicación inválida (kind project|warehouse e id)")
	}
	name, err := d.Locations.Name(ctx, loc)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", field, loc, err)
	}
	return name, nil
}
