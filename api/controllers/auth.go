package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/agronegocio/agromercado-backend/api/responses"
	"github.com/agronegocio/agromercado-backend/api/validators"
	"github.com/agronegocio/agromercado-backend/internal/auth"
	sessionproj "github.com/agronegocio/agromercado-backend/internal/session"
	pkgauth "github.com/agronegocio/agromercado-backend/pkg/auth"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/agronegocio/agromercado-backend/pkg/logger"
)

func parseBearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return token, nil
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AuthRegister creates the account and logs it straight in.
func AuthRegister(reg auth.RegisterService, svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil || svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := reg.Register(r.Context(), body); err != nil {
			if logg != nil {
				logg.Error(r.Context(), "register failed", err)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginRequest{Correo: body.Correo, Password: body.Password})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AuthRefresh rotates the refresh token and issues a new access token.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Refresh(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// accessSignOut adapts the auth service to the projector's sign-out seam.
// The projector hands us a cedula but revocation needs the token's jti.
type accessSignOut struct {
	svc      auth.Service
	accessID string
}

func (a accessSignOut) SignOut(ctx context.Context, cedula string) error {
	return a.svc.Logout(ctx, a.accessID)
}

// AuthLogout revokes the session and drops the owner's cart snapshot.
func AuthLogout(svc auth.Service, deps SessionDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), deps.Logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		token, err := parseBearerToken(r)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logg, w, err)
			return
		}

		claims, err := pkgauth.ParseAccessTokenAllowExpired(deps.JWTConfig, token)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
			return
		}
		if claims.ID == "" {
			responses.WriteError(r.Context(), deps.Logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}

		proj, err := newProjector(deps, r.Header.Get("Authorization"), accessSignOut{svc: svc, accessID: claims.ID})
		if err != nil {
			responses.WriteError(r.Context(), deps.Logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "session projector"))
			return
		}
		proj.Login(r.Context(), sessionproj.Identity{Cedula: claims.Cedula})
		snap := proj.Logout(r.Context())

		responses.WriteSuccess(w, newSessionView(snap))
	}
}
