package repository

// Repository tests run against a throwaway SQLite file; queries that rely on
// Postgres-only syntax (ILIKE search, nextval sequences) are covered by the
// integration suite instead.

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/dto"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "crm_test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Cliente{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func TestClienteRepo_CreateAsignaID(t *testing.T) {
	repo := NewClienteRepository(testDB(t))
	ctx := context.Background()

	c := &model.Cliente{Nombre: "Laura Gómez", Email: "laura@example.com", SitioWeb: "promopack", Activo: true}
	require.NoError(t, repo.Create(ctx, c))
	assert.NotEqual(t, uuid.Nil, c.ID)

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Laura Gómez", found.Nombre)
	assert.Equal(t, "promopack", found.SitioWeb)
}

func TestClienteRepo_FindByIDNoExiste(t *testing.T) {
	repo := NewClienteRepository(testDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestClienteRepo_SetActivoYListado(t *testing.T) {
	repo := NewClienteRepository(testDB(t))
	ctx := context.Background()

	a := &model.Cliente{Nombre: "Ana", Email: "ana@example.com", SitioWeb: "promopack", Activo: true}
	b := &model.Cliente{Nombre: "Berta", Email: "berta@example.com", SitioWeb: "regalopro", Activo: true}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	require.NoError(t, repo.SetActivo(ctx, b.ID, false))

	// Default listing hides inactive clientes
	activos, total, err := repo.List(ctx, dto.ClienteFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, activos, 1)
	assert.Equal(t, "Ana", activos[0].Nombre)

	// "all" includes them again
	todos, total, err := repo.List(ctx, dto.ClienteFilter{Activo: "all", Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, todos, 2)
}

func TestClienteRepo_ListadoPorSitio(t *testing.T) {
	repo := NewClienteRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Cliente{Nombre: "Ana", Email: "a@x.com", SitioWeb: "promopack", Activo: true}))
	require.NoError(t, repo.Create(ctx, &model.Cliente{Nombre: "Berta", Email: "b@x.com", SitioWeb: "textilcorp", Activo: true}))

	out, total, err := repo.List(ctx, dto.ClienteFilter{SitioWeb: "textilcorp", Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, out, 1)
	assert.Equal(t, "Berta", out[0].Nombre)
}

func TestClienteRepo_Update(t *testing.T) {
	repo := NewClienteRepository(testDB(t))
	ctx := context.Background()

	c := &model.Cliente{Nombre: "Carlos", Email: "carlos@example.com", Activo: true}
	require.NoError(t, repo.Create(ctx, c))

	empresa := "Eventos Norte"
	c.Empresa = &empresa
	require.NoError(t, repo.Update(ctx, c))

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Empresa)
	assert.Equal(t, "Eventos Norte", *found.Empresa)
}
