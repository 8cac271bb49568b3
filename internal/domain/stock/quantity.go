// Package stock contiene la lógica pura del kardex de materiales: normalización de cantidades,
// cálculo de ajustes, etiquetas de auditoría y reconstrucción de saldos desde el kardex.
package stock

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// Scale decimales con que se almacenan las cantidades (NUMERIC(12,2)).
const Scale = 2

// MaxRemarksLength longitud máxima de observaciones y motivos.
const MaxRemarksLength = 255

// Normalize trunca la cantidad a la escala de almacenamiento, igual que la columna decimal.
func Normalize(q decimal.Decimal) decimal.Decimal {
	return q.Truncate(Scale)
}

// PositiveQuantity normaliza q y exige que sea > 0.
func PositiveQuantity(field string, q decimal.Decimal) (decimal.Decimal, error) {
	n := Normalize(q)
	if !n.IsPositive() {
		return decimal.Zero, domain.NewValidationError(field, "debe ser mayor que 0")
	}
	return n, nil
}

// Remarks valida un texto libre: obligatorio si required, máximo MaxRemarksLength caracteres.
func Remarks(field, s string, required bool) (string, error) {
	s = strings.TrimSpace(s)
	if required && s == "" {
		return "", domain.NewValidationError(field, "es requerido")
	}
	if utf8.RuneCountInString(s) > MaxRemarksLength {
		return "", domain.NewValidationError(field, "máximo 255 caracteres")
	}
	return s, nil
}

// Adjustment resultado de aplicar un ajuste a un saldo.
type Adjustment struct {
	Previous  decimal.Decimal
	Next      decimal.Decimal
	Delta     decimal.Decimal // siempre >= 0
	Direction entity.Direction
}

// ApplyAdjustment calcula el nuevo saldo para un modo de ajuste.
// Subtract exige current >= qty; Set sobrescribe sin validar el delta.
func ApplyAdjustment(mode entity.AdjustmentMode, current, qty decimal.Decimal) (Adjustment, error) {
	switch mode {
	case entity.AdjustAdd:
		return Adjustment{Previous: current, Next: current.Add(qty), Delta: qty, Direction: entity.DirectionIn}, nil
	case entity.AdjustSubtract:
		if current.LessThan(qty) {
			return Adjustment{}, domain.ErrInsufficientStock
		}
		return Adjustment{Previous: current, Next: current.Sub(qty), Delta: qty, Direction: entity.DirectionOut}, nil
	case entity.AdjustSet:
		diff := qty.Sub(current)
		dir := entity.DirectionIn
		if diff.IsNegative() {
			dir = entity.DirectionOut
		}
		return Adjustment{Previous: current, Next: qty, Delta: diff.Abs(), Direction: dir}, nil
	}
	return Adjustment{}, domain.NewValidationError("adjustment_type", "debe ser add, subtract o set")
}

// AdjustmentType tipo de kardex para un ajuste manual.
func AdjustmentType(mode entity.AdjustmentMode) string {
	switch mode {
	case entity.AdjustSubtract:
		return entity.TxTypeManualAdjustmentOut
	case entity.AdjustSet:
		return entity.TxTypeManualAdjustmentSet
	}
	return entity.TxTypeManualAdjustmentIn
}
