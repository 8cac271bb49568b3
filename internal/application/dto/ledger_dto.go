package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// LedgerEntryResponse asiento del kardex con nombres resueltos.
type LedgerEntryResponse struct {
	ID               string              `json:"id"`
	TransactionID    string              `json:"transaction_id"`
	Location         entity.LocationRef  `json:"location"`
	CategoryID       string              `json:"category_id"`
	CategoryName     string              `json:"category_name,omitempty"`
	ProductID        string              `json:"product_id"`
	ProductName      string              `json:"product_name,omitempty"`
	UserID           string              `json:"user_id"`
	PreviousQuantity decimal.Decimal     `json:"previous_quantity"`
	Quantity         decimal.Decimal     `json:"quantity"`
	BalanceQuantity  decimal.Decimal     `json:"balance_quantity"`
	Direction        entity.Direction    `json:"direction"`
	Type             string              `json:"type"`
	Counterpart      *entity.LocationRef `json:"counterpart,omitempty"`
	CounterpartName  string              `json:"counterpart_name,omitempty"`
	TakenBy          string              `json:"taken_by,omitempty"`
	Remarks          string              `json:"remarks,omitempty"`
	Time             time.Time           `json:"time"`
}

// LedgerListResponse página del historial del kardex.
type LedgerListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// ActivityDatesResponse días con movimientos (formato dd/mm/yyyy).
type ActivityDatesResponse struct {
	Dates []string     `json:"dates"`
	Page  PageResponse `json:"page"`
}

// DailyLogItem movimiento del día para la app móvil.
type DailyLogItem struct {
	Category string          `json:"category"`
	Product  string          `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
	Type     string          `json:"type"`
	// Sólo traslados: "Sent" o "Received" y la otra ubicación.
	TransferType     string `json:"transfer_type,omitempty"`
	TransferLocation string `json:"transfer_location,omitempty"`
	Remarks          string `json:"remarks,omitempty"`
}

// DailyLogResponse material usado y trasladado en un día.
type DailyLogResponse struct {
	Date        string         `json:"date"`
	Used        []DailyLogItem `json:"used_data"`
	Transferred []DailyLogItem `json:"transferred_data"`
}

// ReconciliationReport resultado de una corrida de conciliación.
type ReconciliationReport struct {
	RunID           string                     `json:"run_id"`
	StartedAt       time.Time                  `json:"started_at"`
	CheckedEntries  int                        `json:"checked_entries"`
	CheckedBalances int                        `json:"checked_balances"`
	Findings        []ReconciliationFindingDTO `json:"findings"`
	Products        []ProductConservationDTO   `json:"products"`
}

// ReconciliationFindingDTO hallazgo serializable.
type ReconciliationFindingDTO struct {
	CheckType string             `json:"check_type"`
	Location  entity.LocationRef `json:"location"`
	ProductID string             `json:"product_id"`
	Expected  decimal.Decimal    `json:"expected"`
	Actual    decimal.Decimal    `json:"actual"`
	Details   string             `json:"details"`
}

// ProductConservationDTO identidad global por producto.
type ProductConservationDTO struct {
	ProductID    string          `json:"product_id"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	NetExternal  decimal.Decimal `json:"net_external"`
	Consumed     decimal.Decimal `json:"consumed"`
	Balanced     bool            `json:"balanced"`
}
