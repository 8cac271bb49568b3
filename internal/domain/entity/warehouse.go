package entity

import "time"

// Warehouse representa una bodega central donde se almacena material fuera de obra.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
