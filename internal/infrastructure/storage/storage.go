// Package storage arma los repositorios del kardex según STORAGE_DRIVER (postgres o memory).
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Obras-api/internal/application/stock"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/jhoicas/Obras-api/internal/infrastructure/memory"
	"github.com/jhoicas/Obras-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Obras-api/pkg/config"
)

// Backend repositorios listos para inyectar en los casos de uso.
type Backend struct {
	Driver     string
	Tx         stock.TxRunner
	Balances   repository.BalanceRepository
	Ledger     repository.LedgerRepository
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Locations  repository.LocationRepository
	Findings   repository.ReconciliationRepository

	close func()
}

// Open conecta el almacenamiento configurado. Con postgres aplica migraciones si AutoMigrate.
func Open(ctx context.Context, cfg config.Config, log *zerolog.Logger) (*Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		s := memory.NewStore()
		s.SeedDemo()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &Backend{
			Driver:     config.DriverMemory,
			Tx:         s,
			Balances:   s.Balances(),
			Ledger:     s.Ledger(),
			Products:   s.Products(),
			Categories: s.Categories(),
			Locations:  s.Locations(),
			Findings:   s.Findings(),
			close:      func() {},
		}, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.Storage.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
			log.Info().Msg("migraciones aplicadas")
		}
		return &Backend{
			Driver:     config.DriverPostgres,
			Tx:         postgres.NewTxRunner(pool),
			Balances:   postgres.NewBalanceRepository(pool),
			Ledger:     postgres.NewLedgerRepository(pool),
			Products:   postgres.NewProductRepository(pool),
			Categories: postgres.NewCategoryRepository(pool),
			Locations:  postgres.NewLocationRepository(pool),
			Findings:   postgres.NewReconciliationRepository(pool),
			close:      pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("driver de almacenamiento desconocido: %q", cfg.Storage.Driver)
}

// Deps dependencias de los casos de uso sobre este backend.
func (b *Backend) Deps(metrics stock.Recorder, log *zerolog.Logger) stock.Deps {
	return stock.Deps{
		Tx:         b.Tx,
		Balances:   b.Balances,
		Ledger:     b.Ledger,
		Products:   b.Products,
		Categories: b.Categories,
		Locations:  b.Locations,
		Metrics:    metrics,
		Log:        log,
	}
}

// Close libera conexiones.
func (b *Backend) Close() { b.close() }
