package vendedores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agronegocio/agromercado-backend/internal/usuarios"
	"github.com/agronegocio/agromercado-backend/pkg/db/models"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ConvertInput is the seller profile supplied at conversion time.
type ConvertInput struct {
	Nombre      string
	Telefono    *string
	Direccion   string
	Descripcion *string
}

// Service exposes the become-a-seller flow.
type Service interface {
	Convert(ctx context.Context, cedula string, input ConvertInput) (*models.Vendedor, error)
	GetByCedula(ctx context.Context, cedula string) (*models.Vendedor, error)
}

type service struct {
	usuarios   *usuarios.Repository
	vendedores *Repository
	tx         txRunner
}

// NewService builds the seller conversion service.
func NewService(usuarios *usuarios.Repository, vendedores *Repository, tx txRunner) (Service, error) {
	if usuarios == nil {
		return nil, fmt.Errorf("usuario repository required")
	}
	if vendedores == nil {
		return nil, fmt.Errorf("vendedor repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{usuarios: usuarios, vendedores: vendedores, tx: tx}, nil
}

// Convert inserts the Vendedor and flips es_vendedor in one transaction. One
// vendedor per cedula; the usuario must already exist.
func (s *service) Convert(ctx context.Context, cedula string, input ConvertInput) (*models.Vendedor, error) {
	cedula = strings.TrimSpace(cedula)
	if cedula == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "debe iniciar sesión")
	}
	if strings.TrimSpace(input.Nombre) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nombre es requerido")
	}
	if strings.TrimSpace(input.Direccion) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dirección es requerida")
	}

	var created *models.Vendedor
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		usuarios := s.usuarios.WithTx(tx)
		vendedores := s.vendedores.WithTx(tx)

		if _, err := usuarios.FindByCedula(ctx, cedula); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "usuario no encontrado")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load usuario")
		}

		if _, err := vendedores.FindByCedula(ctx, cedula); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "ya está registrado como vendedor")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check vendedor")
		}

		vendedor := &models.Vendedor{
			Cedula:      cedula,
			Nombre:      strings.TrimSpace(input.Nombre),
			Telefono:    input.Telefono,
			Direccion:   strings.TrimSpace(input.Direccion),
			Descripcion: input.Descripcion,
		}
		if _, err := vendedores.Create(ctx, vendedor); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert vendedor")
		}

		if err := usuarios.SetEsVendedor(ctx, cedula, true); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flip es_vendedor")
		}

		created = vendedor
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByCedula returns the seller profile for a cedula.
func (s *service) GetByCedula(ctx context.Context, cedula string) (*models.Vendedor, error) {
	vendedor, err := s.vendedores.FindByCedula(ctx, cedula)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendedor no encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendedor")
	}
	return vendedor, nil
}
