package storage_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Obras-api/internal/application/stock"
	"github.com/jhoicas/Obras-api/internal/domain/entity"
	"github.com/jhoicas/Obras-api/internal/infrastructure/storage"
	"github.com/jhoicas/Obras-api/pkg/config"
)

func TestOpen_Memory(t *testing.T) {
	log := zerolog.Nop()
	cfg := config.Config{Storage: config.StorageConfig{Driver: config.DriverMemory}}

	b, err := storage.Open(context.Background(), cfg, &log)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, config.DriverMemory, b.Driver)

	name, err := b.Locations.Name(context.Background(), entity.ProjectRef("obra-demo"))
	require.NoError(t, err)
	assert.Equal(t, "Obra Demo", name)

	q := stock.NewQueryUseCase(b.Deps(nil, &log))
	out, err := q.GetBalance(context.Background(), entity.WarehouseRef("bodega-demo"), "prod-cemento")
	require.NoError(t, err)
	assert.True(t, out.Quantity.IsZero())
}

func TestOpen_DriverDesconocido(t *testing.T) {
	log := zerolog.Nop()
	_, err := storage.Open(context.Background(), config.Config{Storage: config.StorageConfig{Driver: "sqlite"}}, &log)
	assert.Error(t, err)
}
