package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agronegocio/agromercado-backend/internal/usuarios"
	pkgauth "github.com/agronegocio/agromercado-backend/pkg/auth"
	"github.com/agronegocio/agromercado-backend/pkg/auth/session"
	"github.com/agronegocio/agromercado-backend/pkg/config"
	"github.com/agronegocio/agromercado-backend/pkg/db/models"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/agronegocio/agromercado-backend/pkg/security"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "credenciales inválidas"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, accessID string) error
}

type userRepository interface {
	FindByCorreo(ctx context.Context, correo string) (*models.Usuario, error)
	TouchLastLogin(ctx context.Context, cedula string) error
}

type vendedorLoader interface {
	FindByCedula(ctx context.Context, cedula string) (*models.Vendedor, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type loginMetrics interface {
	IncLogin(result string)
}

type service struct {
	users      userRepository
	vendedores vendedorLoader
	session    sessionManager
	metrics    loginMetrics
	jwtCfg     config.JWTConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo     userRepository
	VendedorRepo vendedorLoader
	Session      sessionManager
	Metrics      loginMetrics
	JWTConfig    config.JWTConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.VendedorRepo == nil {
		return nil, fmt.Errorf("vendedor repository is required")
	}
	if params.Session == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		users:      params.UserRepo,
		vendedores: params.VendedorRepo,
		session:    params.Session,
		metrics:    params.Metrics,
		jwtCfg:     params.JWTConfig,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	usuario, err := s.authenticate(ctx, req.Correo, req.Password)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncLogin("rejected")
		}
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, usuario.Cedula); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	usuario.LastLoginAt = &now

	var vendedorID *int64
	if usuario.EsVendedor {
		vendedor, err := s.vendedores.FindByCedula(ctx, usuario.Cedula)
		if err == nil {
			vendedorID = &vendedor.IDVendedor
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load vendedor")
		}
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		Cedula:     usuario.Cedula,
		Nombre:     usuario.Nombre,
		EsVendedor: usuario.EsVendedor,
		IDVendedor: vendedorID,
		JTI:        accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	if s.metrics != nil {
		s.metrics.IncLogin("ok")
	}
	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Usuario:      usuarios.FromModel(usuario),
	}, nil
}

// Refresh rotates the refresh session and mints a new access token for the
// same identity carried by the expired token.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token inválido")
	}

	newAccessID, newRefresh, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sesión inválida")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		Cedula:     claims.Cedula,
		Nombre:     claims.Nombre,
		EsVendedor: claims.EsVendedor,
		IDVendedor: claims.IDVendedor,
		JTI:        newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &RefreshResponse{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

// Logout revokes the refresh session tied to the access token.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sesión inválida")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, correo, password string) (*models.Usuario, error) {
	input := strings.TrimSpace(correo)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	usuario, err := s.users.FindByCorreo(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup usuario")
	}

	valid, err := security.VerifyPassword(password, usuario.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return usuario, nil
}
