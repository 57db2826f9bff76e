package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/agronegocio/agromercado-backend/api/responses"
	"github.com/agronegocio/agromercado-backend/internal/cart"
	sessionproj "github.com/agronegocio/agromercado-backend/internal/session"
	"github.com/agronegocio/agromercado-backend/internal/usuarios"
	"github.com/agronegocio/agromercado-backend/internal/vendedores"
	pkgauth "github.com/agronegocio/agromercado-backend/pkg/auth"
	"github.com/agronegocio/agromercado-backend/pkg/auth/session"
	"github.com/agronegocio/agromercado-backend/pkg/config"
	"github.com/agronegocio/agromercado-backend/pkg/db/models"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/agronegocio/agromercado-backend/pkg/logger"
)

// SessionDeps bundles what the session projection needs per request.
type SessionDeps struct {
	JWTConfig  config.JWTConfig
	Sessions   session.AccessSessionChecker
	Usuarios   *usuarios.Repository
	Vendedores *vendedores.Repository
	Carts      cart.SnapshotStore
	Logg       *logger.Logger
}

// bearerIdentityResolver derives the identity from the request's bearer token.
// A missing token is anonymous, not an error.
type bearerIdentityResolver struct {
	cfg      config.JWTConfig
	sessions session.AccessSessionChecker
	header   string
}

func (b bearerIdentityResolver) Resolve(ctx context.Context) (*sessionproj.Identity, error) {
	token := strings.TrimSpace(b.header)
	if token == "" {
		return nil, nil
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return nil, nil
	}

	claims, err := pkgauth.ParseAccessToken(b.cfg, token)
	if err != nil {
		return nil, err
	}
	if b.sessions != nil {
		ok, err := b.sessions.HasSession(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}
	return &sessionproj.Identity{Cedula: claims.Cedula}, nil
}

type profileRepos struct {
	usuarios   *usuarios.Repository
	vendedores *vendedores.Repository
}

func (p profileRepos) GetUsuario(ctx context.Context, cedula string) (*models.Usuario, error) {
	return p.usuarios.FindByCedula(ctx, cedula)
}

func (p profileRepos) GetVendedorByCedula(ctx context.Context, cedula string) (*models.Vendedor, error) {
	return p.vendedores.FindByCedula(ctx, cedula)
}

type noopSignOut struct{}

func (noopSignOut) SignOut(ctx context.Context, cedula string) error { return nil }

type sessionView struct {
	State    string               `json:"state"`
	Usuario  *usuarios.UsuarioDTO `json:"usuario,omitempty"`
	Vendedor *models.Vendedor     `json:"vendedor,omitempty"`
}

func newSessionView(snap sessionproj.Snapshot) sessionView {
	return sessionView{
		State:    string(snap.State),
		Usuario:  usuarios.FromModel(snap.Usuario),
		Vendedor: snap.Vendedor,
	}
}

func newProjector(deps SessionDeps, authHeader string, signOut interface {
	SignOut(ctx context.Context, cedula string) error
}) (*sessionproj.Projector, error) {
	return sessionproj.NewProjector(
		bearerIdentityResolver{cfg: deps.JWTConfig, sessions: deps.Sessions, header: authHeader},
		profileRepos{usuarios: deps.Usuarios, vendedores: deps.Vendedores},
		signOut,
		deps.Carts,
		deps.Logg,
	)
}

// SessionShow projects the caller's session state: anonymous, buyer or seller.
func SessionShow(deps SessionDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		proj, err := newProjector(deps, r.Header.Get("Authorization"), noopSignOut{})
		if err != nil {
			responses.WriteError(r.Context(), deps.Logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "session projector"))
			return
		}
		snap := proj.Bootstrap(r.Context())
		responses.WriteSuccess(w, newSessionView(snap))
	}
}
