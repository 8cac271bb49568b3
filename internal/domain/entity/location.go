package entity

import "fmt"

// LocationKind discrimina dónde se guarda stock: obra (proyecto) o bodega.
type LocationKind string

const (
	LocationProject   LocationKind = "project"
	LocationWarehouse LocationKind = "warehouse"
)

// Valid indica si el tipo de ubicación es conocido.
func (k LocationKind) Valid() bool {
	return k == LocationProject || k == LocationWarehouse
}

// LocationRef identifica una ubicación de stock (proyecto o bodega). El valor cero es inválido.
type LocationRef struct {
	Kind LocationKind `json:"kind"`
	ID   string       `json:"id"`
}

// ProjectRef construye la referencia a un proyecto.
func ProjectRef(id string) LocationRef { return LocationRef{Kind: LocationProject, ID: id} }

// WarehouseRef construye la referencia a una bodega.
func WarehouseRef(id string) LocationRef { return LocationRef{Kind: LocationWarehouse, ID: id} }

// Valid indica si la referencia tiene tipo conocido e ID.
func (r LocationRef) Valid() bool {
	return r.Kind.Valid() && r.ID != ""
}

// IsZero indica si la referencia no fue asignada.
func (r LocationRef) IsZero() bool {
	return r.Kind == "" && r.ID == ""
}

func (r LocationRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// Less ordena referencias por (kind, id); se usa para bloquear filas en orden determinista.
func (r LocationRef) Less(o LocationRef) bool {
	if r.Kind != o.Kind {
		return r.Kind < o.Kind
	}
	return r.ID < o.ID
}
