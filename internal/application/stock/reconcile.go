package stock

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	domainstock "github.com/jhoicas/Obras-api/internal/domain/stock"
)

// ReconcileUseCase reconstruye los saldos desde el kardex, los compara con los almacenados
// y persiste los hallazgos de la corrida.
type ReconcileUseCase struct {
	deps     Deps
	findings repository.ReconciliationRepository
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(deps Deps, findings repository.ReconciliationRepository) *ReconcileUseCase {
	return &ReconcileUseCase{deps: deps.withDefaults(), findings: findings}
}

// Run ejecuta una corrida completa. Los hallazgos no son errores: el error sólo indica
// fallas de lectura o de persistencia.
func (uc *ReconcileUseCase) Run(ctx context.Context) (rep *dto.ReconciliationReport, err error) {
	started := uc.deps.Now()
	defer func() { uc.deps.Metrics.Observe("reconcile", started, err) }()

	entries, err := uc.deps.Ledger.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	balances, err := uc.deps.Balances.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}

	runID := uuid.New().String()
	findings := domainstock.Replay(entries, balances)
	for i := range findings {
		findings[i].ID = uuid.New().String()
		findings[i].RunID = runID
		findings[i].CreatedAt = started
	}
	if len(findings) > 0 && uc.findings != nil {
		if err := uc.findings.SaveFindings(ctx, findings); err != nil {
			return nil, fmt.Errorf("save findings: %w", err)
		}
	}

	rep = &dto.ReconciliationReport{
		RunID:           runID,
		StartedAt:       started,
		CheckedEntries:  len(entries),
		CheckedBalances: len(balances),
		Findings:        make([]dto.ReconciliationFindingDTO, 0, len(findings)),
	}
	for _, f := range findings {
		rep.Findings = append(rep.Findings, dto.ReconciliationFindingDTO{
			CheckType: f.CheckType,
			Location:  f.Location,
			ProductID: f.ProductID,
			Expected:  f.Expected,
			Actual:    f.Actual,
			Details:   f.Details,
		})
	}
	unbalanced := 0
	for _, pc := range domainstock.Conservation(entries, balances) {
		if !pc.Balanced {
			unbalanced++
		}
		rep.Products = append(rep.Products, dto.ProductConservationDTO{
			ProductID:    pc.ProductID,
			TotalBalance: pc.TotalBalance,
			NetExternal:  pc.NetExternal,
			Consumed:     pc.Consumed,
			Balanced:     pc.Balanced,
		})
	}

	ev := uc.deps.Log.Info()
	if len(findings) > 0 || unbalanced > 0 {
		ev = uc.deps.Log.Warn()
	}
	ev.Str("run_id", runID).
		Int("entries", len(entries)).
		Int("balances", len(balances)).
		Int("findings", len(findings)).
		Int("unbalanced_products", unbalanced).
		Msg("conciliación de kardex finalizada")
	return rep, nil
}
