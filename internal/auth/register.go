package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/agronegocio/agromercado-backend/internal/usuarios"
	"github.com/agronegocio/agromercado-backend/pkg/config"
	"github.com/agronegocio/agromercado-backend/pkg/db"
	"github.com/agronegocio/agromercado-backend/pkg/db/models"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/agronegocio/agromercado-backend/pkg/security"
	"gorm.io/gorm"
)

// RegisterRequest contains the payload required to create an account.
type RegisterRequest struct {
	Cedula   string  `json:"cedula" validate:"required"`
	Nombre   string  `json:"nombre" validate:"required"`
	Correo   string  `json:"correo" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Telefono *string `json:"telefono,omitempty"`
}

// RegisterService handles the sign-up transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*usuarios.UsuarioDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByCedula(ctx context.Context, cedula string) (*models.Usuario, error)
	FindByCorreo(ctx context.Context, correo string) (*models.Usuario, error)
	Create(ctx context.Context, usuario *models.Usuario) (*models.Usuario, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
// TxRunner and UserRepoFactory default to the database client when unset.
type RegisterServiceParams struct {
	DB              *db.Client
	TxRunner        txRunner
	UserRepoFactory func(tx *gorm.DB) registerUserRepository
	PasswordConfig  config.PasswordConfig
}

type registerService struct {
	tx          txRunner
	userRepo    func(tx *gorm.DB) registerUserRepository
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		if params.DB == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
		}
		params.TxRunner = params.DB
	}
	if params.UserRepoFactory == nil {
		params.UserRepoFactory = func(tx *gorm.DB) registerUserRepository {
			return usuarios.NewRepository(tx)
		}
	}
	return &registerService{
		tx:          params.TxRunner,
		userRepo:    params.UserRepoFactory,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*usuarios.UsuarioDTO, error) {
	cedula := strings.TrimSpace(req.Cedula)
	if cedula == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cédula es requerida")
	}
	correo := strings.ToLower(strings.TrimSpace(req.Correo))
	if correo == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "correo es requerido")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.Usuario
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.userRepo(tx)

		if _, err := repo.FindByCedula(ctx, cedula); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "la cédula ya está registrada")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check cedula")
		}

		if _, err := repo.FindByCorreo(ctx, correo); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "el correo ya está registrado")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check correo")
		}

		usuario := &models.Usuario{
			Cedula:       cedula,
			Nombre:       strings.TrimSpace(req.Nombre),
			Correo:       correo,
			Telefono:     req.Telefono,
			PasswordHash: passwordHash,
		}
		if _, err := repo.Create(ctx, usuario); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create usuario")
		}

		created = usuario
		return nil
	})
	if err != nil {
		return nil, err
	}
	return usuarios.FromModel(created), nil
}
