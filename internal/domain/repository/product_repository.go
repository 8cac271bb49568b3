package repository

import (
	"context"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// ProductRepository catálogo de productos (sólo lectura para el kardex). nil, nil si no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
}
