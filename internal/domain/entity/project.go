package entity

import "time"

// Project representa una obra; cada obra mantiene su propio stock de materiales.
type Project struct {
	ID        string
	Name      string
	Status    string // In-progress, On-hold, Completed
	CreatedAt time.Time
	UpdatedAt time.Time
}
