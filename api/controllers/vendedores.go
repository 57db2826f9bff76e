package controllers

import (
	"net/http"

	"github.com/agronegocio/agromercado-backend/api/middleware"
	"github.com/agronegocio/agromercado-backend/api/responses"
	"github.com/agronegocio/agromercado-backend/api/validators"
	"github.com/agronegocio/agromercado-backend/internal/vendedores"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/agronegocio/agromercado-backend/pkg/logger"
)

type becomeVendedorRequest struct {
	Nombre      string  `json:"nombre" validate:"required"`
	Telefono    *string `json:"telefono,omitempty"`
	Direccion   string  `json:"direccion" validate:"required"`
	Descripcion *string `json:"descripcion,omitempty"`
}

// BecomeVendedor converts the authenticated buyer into a seller.
func BecomeVendedor(svc vendedores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendedores service unavailable"))
			return
		}

		var body becomeVendedorRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cedula := middleware.CedulaFromContext(r.Context())
		vendedor, err := svc.Convert(r.Context(), cedula, vendedores.ConvertInput{
			Nombre:      body.Nombre,
			Telefono:    body.Telefono,
			Direccion:   body.Direccion,
			Descripcion: body.Descripcion,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, vendedor)
	}
}

// VendedorProfile returns the caller's seller record.
func VendedorProfile(svc vendedores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendedores service unavailable"))
			return
		}

		cedula := middleware.CedulaFromContext(r.Context())
		vendedor, err := svc.GetByCedula(r.Context(), cedula)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendedor)
	}
}
