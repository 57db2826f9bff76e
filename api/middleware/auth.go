package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/agronegocio/agromercado-backend/api/responses"
	pkgauth "github.com/agronegocio/agromercado-backend/pkg/auth"
	"github.com/agronegocio/agromercado-backend/pkg/auth/session"
	"github.com/agronegocio/agromercado-backend/pkg/config"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/agronegocio/agromercado-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxCedula, claims.Cedula)
			ctx = context.WithValue(ctx, ctxEsVendedor, claims.EsVendedor)
			ctx = context.WithValue(ctx, ctxAccessID, claims.ID)
			if claims.IDVendedor != nil {
				ctx = context.WithValue(ctx, ctxVendedorID, *claims.IDVendedor)
			}

			if logg != nil {
				fields := map[string]any{
					"cedula":      claims.Cedula,
					"es_vendedor": claims.EsVendedor,
				}
				if claims.IDVendedor != nil {
					fields["id_vendedor"] = *claims.IDVendedor
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireVendedor gates seller-only routes. Run it after Auth.
func RequireVendedor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !EsVendedorFromContext(r.Context()) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "solo los vendedores pueden acceder a este recurso"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
