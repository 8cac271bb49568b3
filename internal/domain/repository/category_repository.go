package repository

import (
	"context"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// CategoryRepository categorías de productos (sólo lectura). nil, nil si no existe.
type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Category, error)
}
