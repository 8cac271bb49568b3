// reconcile repite el kardex completo, lo compara con los saldos almacenados y guarda los hallazgos.
//
// Uso: go run ./cmd/reconcile [ruta/informe.xlsx]
// Si se indica una ruta escribe el informe en Excel. Termina con código 2 si hay hallazgos.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/application/stock"
	"github.com/jhoicas/Obras-api/internal/infrastructure/excel"
	"github.com/jhoicas/Obras-api/internal/infrastructure/storage"
	"github.com/jhoicas/Obras-api/pkg/config"
	"github.com/jhoicas/Obras-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, *cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer backend.Close()

	uc := stock.NewReconcileUseCase(backend.Deps(nil, log.Component("reconcile")), backend.Findings)
	rep, err := uc.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("conciliación")
		backend.Close()
		os.Exit(1)
	}

	if len(os.Args) > 1 {
		if err := writeReport(os.Args[1], rep); err != nil {
			log.Error().Err(err).Str("path", os.Args[1]).Msg("escribir informe")
			backend.Close()
			os.Exit(1)
		}
		log.Info().Str("path", os.Args[1]).Msg("informe escrito")
	}

	log.Info().
		Str("run_id", rep.RunID).
		Int("entries", rep.CheckedEntries).
		Int("balances", rep.CheckedBalances).
		Int("findings", len(rep.Findings)).
		Msg("conciliación terminada")
	if len(rep.Findings) > 0 {
		backend.Close()
		os.Exit(2)
	}
}

func writeReport(path string, rep *dto.ReconciliationReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := excel.WriteReconciliation(f, rep); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
