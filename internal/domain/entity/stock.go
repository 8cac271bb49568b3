package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance es el stock actual de un producto en una ubicación (caché materializada del kardex).
// Se crea en el primer crédito y nunca se elimina.
type Balance struct {
	Location            LocationRef
	ProductID           string
	CategoryID          string
	Quantity            decimal.Decimal
	LastUpdatedBy       string
	LastTransactionType string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// BalanceChange describe una mutación atómica sobre un Balance.
// Quantity es el delta en Credit/Debit y el valor absoluto en Set.
type BalanceChange struct {
	Location   LocationRef
	ProductID  string
	CategoryID string
	Quantity   decimal.Decimal
	ActorID    string
	Label      string
	At         time.Time
}
