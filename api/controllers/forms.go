package controllers

import (
	"net/http"

	"github.com/agronegocio/agromercado-backend/api/responses"
	"github.com/agronegocio/agromercado-backend/api/validators"
	"github.com/agronegocio/agromercado-backend/internal/forms"
	"github.com/agronegocio/agromercado-backend/pkg/enums"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/agronegocio/agromercado-backend/pkg/logger"
)

type formModeRequest struct {
	Mode string `json:"mode" validate:"required"`
}

// FormModeShow reports which shared form flow is active.
func FormModeShow(selector *forms.Selector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"mode": selector.Mode().String()})
	}
}

// FormModeSet switches the shared form flow; unknown modes are rejected.
func FormModeSet(selector *forms.Selector, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body formModeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode, err := enums.ParseFormMode(body.Mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "modo de formulario inválido"))
			return
		}
		if !selector.Set(mode) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "modo de formulario inválido"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"mode": selector.Mode().String()})
	}
}
