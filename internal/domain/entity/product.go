package entity

import "time"

// Product material de construcción (cemento, varilla, etc.). Dato de referencia para el kardex.
type Product struct {
	ID         string
	CategoryID string
	Name       string
	Unit       string // unidad de medida: bolsa, m3, kg...
	Status     string // Active, Inactive
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
