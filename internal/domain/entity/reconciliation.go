package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de hallazgo de la conciliación del kardex.
const (
	CheckChainBreak       = "CHAIN_BREAK"
	CheckEntryMismatch    = "ENTRY_MISMATCH"
	CheckBalanceDrift     = "BALANCE_DRIFT"
	CheckOrphanBalance    = "ORPHAN_BALANCE"
	CheckTransferUnpaired = "TRANSFER_UNPAIRED"
)

// ReconciliationFinding diferencia detectada al reconstruir saldos desde el kardex.
type ReconciliationFinding struct {
	ID        string
	RunID     string
	CheckType string
	Location  LocationRef
	ProductID string
	Expected  decimal.Decimal
	Actual    decimal.Decimal
	Details   string
	CreatedAt time.Time
}

// ProductConservation resumen global por producto:
// TotalBalance debe ser igual a NetExternal (créditos externos - bajas).
type ProductConservation struct {
	ProductID    string
	TotalBalance decimal.Decimal
	NetExternal  decimal.Decimal
	Consumed     decimal.Decimal
	Balanced     bool
}
