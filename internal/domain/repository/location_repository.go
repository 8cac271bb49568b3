package repository

import (
	"context"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// LocationRepository resuelve proyectos y bodegas (datos de referencia, sólo lectura).
type LocationRepository interface {
	GetProject(ctx context.Context, id string) (*entity.Project, error)
	GetWarehouse(ctx context.Context, id string) (*entity.Warehouse, error)
	// Name devuelve el nombre de la ubicación o domain.ErrNotFound.
	Name(ctx context.Context, loc entity.LocationRef) (string, error)
}
