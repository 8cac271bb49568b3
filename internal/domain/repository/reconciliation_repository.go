package repository

import (
	"context"

	"github.com/jhoicas/Obras-api/internal/domain/entity"
)

// ReconciliationRepository persiste los hallazgos de cada corrida de conciliación.
type ReconciliationRepository interface {
	SaveFindings(ctx context.Context, findings []entity.ReconciliationFinding) error
	ListByRun(ctx context.Context, runID string) ([]entity.ReconciliationFinding, error)
}
