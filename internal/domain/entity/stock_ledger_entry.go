package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction sentido de un asiento del kardex respecto a su ubicación.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// LedgerEntry es un asiento inmutable del kardex de stock: una fila por mutación de Balance.
// BalanceQuantity = PreviousQuantity ± Quantity según Direction.
type LedgerEntry struct {
	ID               string
	Seq              int64  // orden de inserción, asignado por el almacenamiento
	TransactionID    string // agrupa las dos patas de un traslado
	Location         LocationRef
	CategoryID       string
	ProductID        string
	UserID           string // actor autenticado
	PreviousQuantity decimal.Decimal
	Quantity         decimal.Decimal // delta aplicado, siempre >= 0
	BalanceQuantity  decimal.Decimal
	Direction        Direction
	Type             string
	Counterpart      *LocationRef // otra ubicación en traslados
	TakenBy          string       // quien retiró material para obra
	Remarks          string
	Time             time.Time
	CreatedAt        time.Time
}

// Consistent verifica el invariante del asiento.
func (e *LedgerEntry) Consistent() bool {
	if e.Quantity.IsNegative() {
		return false
	}
	switch e.Direction {
	case DirectionIn:
		return e.PreviousQuantity.Add(e.Quantity).Equal(e.BalanceQuantity)
	case DirectionOut:
		return e.PreviousQuantity.Sub(e.Quantity).Equal(e.BalanceQuantity)
	}
	return false
}

// SignedQuantity devuelve el delta con signo (+ entrada, - salida).
func (e *LedgerEntry) SignedQuantity() decimal.Decimal {
	if e.Direction == DirectionOut {
		return e.Quantity.Neg()
	}
	return e.Quantity
}
