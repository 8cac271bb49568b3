package entity

// Tipos de transacción del kardex (enum abierto: se persisten como texto).
const (
	TxTypeTransferOut          = "Transfer-Out"
	TxTypeTransferIn           = "Transfer-In"
	TxTypeManualAdjustmentIn   = "Manual Adjustment - In"
	TxTypeManualAdjustmentOut  = "Manual Adjustment - Out"
	TxTypeManualAdjustmentSet  = "Manual Adjustment - Set"
	TxTypeTakenForConstruction = "Taken for construction"
	TxTypePOItemDelivered      = "PO Item Delivered"
)

// AdjustmentMode modo de un ajuste manual.
type AdjustmentMode string

const (
	AdjustAdd      AdjustmentMode = "add"
	AdjustSubtract AdjustmentMode = "subtract"
	AdjustSet      AdjustmentMode = "set"
)

// Valid indica si el modo es conocido.
func (m AdjustmentMode) Valid() bool {
	switch m {
	case AdjustAdd, AdjustSubtract, AdjustSet:
		return true
	}
	return false
}

// IsTransfer indica si el tipo corresponde a una pata de traslado.
func IsTransfer(txType string) bool {
	return txType == TxTypeTransferOut || txType == TxTypeTransferIn
}

// IsUsage indica si el tipo representa material consumido o dado de baja en la ubicación.
func IsUsage(txType string) bool {
	return txType == TxTypeTakenForConstruction || txType == TxTypeManualAdjustmentOut
}
