package entity

import "time"

// Category categoría de productos.
type Category struct {
	ID        string
	Name      string
	Status    string // Active, Inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
