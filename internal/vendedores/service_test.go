package vendedores

import (
	"context"
	"testing"

	"github.com/agronegocio/agromercado-backend/internal/usuarios"
	"github.com/agronegocio/agromercado-backend/pkg/db/models"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func setupVendedoresTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS usuarios (
  cedula TEXT PRIMARY KEY,
  nombre TEXT NOT NULL,
  correo TEXT NOT NULL UNIQUE,
  telefono TEXT,
  password_hash TEXT NOT NULL,
  es_vendedor INTEGER NOT NULL DEFAULT 0,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS vendedores (
  id_vendedor INTEGER PRIMARY KEY AUTOINCREMENT,
  cedula TEXT NOT NULL UNIQUE,
  nombre TEXT NOT NULL,
  telefono TEXT,
  direccion TEXT NOT NULL,
  descripcion TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newConversionService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(usuarios.NewRepository(db), NewRepository(db), gormTxRunner{db: db})
	require.NoError(t, err)
	return svc
}

func seedUsuario(t *testing.T, db *gorm.DB, cedula string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Usuario{
		Cedula:       cedula,
		Nombre:       "Ana",
		Correo:       cedula + "@example.com",
		PasswordHash: "hash",
	}).Error)
}

func TestConvertCreatesVendedorAndFlipsFlag(t *testing.T) {
	db := setupVendedoresTestDB(t)
	seedUsuario(t, db, "001-123")
	svc := newConversionService(t, db)

	vendedor, err := svc.Convert(context.Background(), "001-123", ConvertInput{
		Nombre:    "Finca La Esperanza",
		Direccion: "Km 4 vía al mar",
	})
	require.NoError(t, err)
	assert.NotZero(t, vendedor.IDVendedor)

	var usuario models.Usuario
	require.NoError(t, db.First(&usuario, "cedula = ?", "001-123").Error)
	assert.True(t, usuario.EsVendedor)
}

func TestConvertRejectsDuplicate(t *testing.T) {
	db := setupVendedoresTestDB(t)
	seedUsuario(t, db, "001-123")
	svc := newConversionService(t, db)

	_, err := svc.Convert(context.Background(), "001-123", ConvertInput{
		Nombre: "Finca", Direccion: "Vereda",
	})
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), "001-123", ConvertInput{
		Nombre: "Finca", Direccion: "Vereda",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestConvertRequiresExistingUsuario(t *testing.T) {
	db := setupVendedoresTestDB(t)
	svc := newConversionService(t, db)

	_, err := svc.Convert(context.Background(), "999-999", ConvertInput{
		Nombre: "Finca", Direccion: "Vereda",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	var count int64
	require.NoError(t, db.Model(&models.Vendedor{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConvertValidatesInput(t *testing.T) {
	db := setupVendedoresTestDB(t)
	seedUsuario(t, db, "001-123")
	svc := newConversionService(t, db)

	_, err := svc.Convert(context.Background(), "001-123", ConvertInput{Direccion: "Vereda"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.Convert(context.Background(), "", ConvertInput{Nombre: "Finca", Direccion: "Vereda"})
	require.Error(t, err)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestGetByCedula(t *testing.T) {
	db := setupVendedoresTestDB(t)
	seedUsuario(t, db, "001-123")
	svc := newConversionService(t, db)

	_, err := svc.GetByCedula(context.Background(), "001-123")
	require.Error(t, err)

	_, err = svc.Convert(context.Background(), "001-123", ConvertInput{Nombre: "Finca", Direccion: "Vereda"})
	require.NoError(t, err)

	vendedor, err := svc.GetByCedula(context.Background(), "001-123")
	require.NoError(t, err)
	assert.Equal(t, "Finca", vendedor.Nombre)
}
