package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo resuelve obras y bodegas sobre PostgreSQL.
type LocationRepo struct {
	pool *pgxpool.Pool
}

// NewLocationRepository construye el adaptador de ubicaciones.
func NewLocationRepository(pool *pgxpool.Pool) *LocationRepo {
	return &LocationRepo{pool: pool}
}

// GetProject obtiene una obra por ID. nil, nil si no existe.
func (r *LocationRepo) GetProject(ctx context.Context, id string) (*entity.Project, error) {
	query := `SELECT id, name, status, created_at, updated_at FROM projects WHERE id = $1`
	var p entity.Project
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// GetWarehouse obtiene una bodega por ID. nil, nil si no existe.
func (r *LocationRepo) GetWarehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	query := `SELECT id, name, address, created_at, updated_at FROM warehouses WHERE id = $1`
	var w entity.Warehouse
	err := r.pool.QueryRow(ctx, query, id).Scan(&w.ID, &w.Name, &w.Address, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// Name nombre de la ubicación o domain.ErrNotFound.
func (r *LocationRepo) Name(ctx context.Context, loc entity.LocationRef) (string, error) {
	switch loc.Kind {
	case entity.LocationProject:
		p, err := r.GetProject(ctx, loc.ID)
		if err != nil {
			return "", err
		}
		if p != nil {
			return p.Name, nil
		}
	case entity.LocationWarehouse:
		w, err := r.GetWarehouse(ctx, loc.ID)
		if err != nil {
			return "", err
		}
		if w != nil {
			return w.Name, nil
		}
	}
	return "", domain.ErrNotFound
}
