package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/agronegocio/agromercado-backend/api/responses"
	"github.com/agronegocio/agromercado-backend/api/validators"
	"github.com/agronegocio/agromercado-backend/internal/catalog"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/agronegocio/agromercado-backend/pkg/logger"
)

const maxCatalogLimit = 200

// CatalogList serves the public product feed, newest first.
func CatalogList(vm *catalog.ViewModel, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if vm == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		filters, err := catalogFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap := vm.Load(r.Context(), filters)
		if snap.State == catalog.StateError {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, snap.Message))
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// CatalogDetail serves one denormalized catalog row.
func CatalogDetail(repo *catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productoIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := repo.GetProducto(r.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "producto no encontrado"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load producto"))
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func catalogFiltersFromQuery(r *http.Request) (catalog.Filters, error) {
	vendedorID, err := validators.ParseQueryInt64(r, "vendedor")
	if err != nil {
		return catalog.Filters{}, err
	}
	precioMin, err := validators.ParseQueryDecimal(r, "precio_min")
	if err != nil {
		return catalog.Filters{}, err
	}
	precioMax, err := validators.ParseQueryDecimal(r, "precio_max")
	if err != nil {
		return catalog.Filters{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxCatalogLimit)
	if err != nil {
		return catalog.Filters{}, err
	}

	return catalog.Filters{
		VendedorID: vendedorID,
		PrecioMin:  precioMin,
		PrecioMax:  precioMax,
		SearchTerm: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:      limit,
	}, nil
}

func productoIDFromPath(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "productoID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "id de producto inválido")
	}
	return id, nil
}
