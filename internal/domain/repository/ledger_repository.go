package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// LedgerFilter filtros para el historial del kardex. Campos vacíos no filtran.
type LedgerFilter struct {
	Location   *entity.LocationRef
	CategoryID string
	ProductID  string
	UserID     string
	Types      []string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// LedgerRepository define el puerto del kardex de stock. Sólo admite inserciones.
type LedgerRepository interface {
	// Append persiste un asiento; asigna ID si viene vacío y rechaza asientos inconsistentes.
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	// List devuelve asientos filtrados, más recientes primero.
	List(ctx context.Context, f LedgerFilter) ([]*entity.LedgerEntry, error)
	// ListActivityDates días (UTC, truncados) con movimientos en la ubicación, más recientes primero.
	ListActivityDates(ctx context.Context, loc entity.LocationRef, limit, offset int) ([]time.Time, error)
	// ListAll todos los asientos en orden de inserción (conciliación).
	ListAll(ctx context.Context) ([]*entity.LedgerEntry, error)
}
