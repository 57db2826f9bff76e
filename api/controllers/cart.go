package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/agronegocio/agromercado-backend/api/middleware"
	"github.com/agronegocio/agromercado-backend/api/responses"
	"github.com/agronegocio/agromercado-backend/api/validators"
	"github.com/agronegocio/agromercado-backend/internal/cart"
	"github.com/agronegocio/agromercado-backend/internal/catalog"
	"github.com/agronegocio/agromercado-backend/internal/checkout"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/agronegocio/agromercado-backend/pkg/logger"
	"github.com/agronegocio/agromercado-backend/pkg/metrics"
	"github.com/shopspring/decimal"
)

// CartDeps bundles the collaborators the cart endpoints need.
type CartDeps struct {
	Snapshots cart.SnapshotStore
	Catalog   *catalog.Repository
	Metrics   *metrics.MarketplaceMetrics
	Logg      *logger.Logger
}

type cartView struct {
	Items   []cart.Item       `json:"items"`
	Total   decimal.Decimal   `json:"total"`
	Count   int               `json:"count"`
	Persist cart.PersistState `json:"persist,omitempty"`
}

func newCartView(store *cart.Store, persist cart.PersistState) cartView {
	return cartView{
		Items:   store.Items(),
		Total:   store.Total(),
		Count:   store.Count(),
		Persist: persist,
	}
}

func (d CartDeps) openCart(r *http.Request) (*cart.Store, error) {
	owner := middleware.CedulaFromContext(r.Context())
	if owner == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "debe iniciar sesión")
	}
	return cart.NewStore(r.Context(), owner, d.Snapshots, d.Logg, d.Metrics)
}

// CartShow returns the rehydrated cart for the authenticated owner.
func CartShow(deps CartDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := deps.openCart(r)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(store, ""))
	}
}

type cartAddRequest struct {
	ProductoID int64 `json:"producto_id" validate:"required,min=1"`
}

// CartAdd freezes the catalog row's price into a new line, or bumps the
// quantity when the producto is already in the cart.
func CartAdd(deps CartDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body cartAddRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), deps.Logg, w, err)
			return
		}

		view, err := deps.Catalog.GetProducto(r.Context(), body.ProductoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), deps.Logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "producto no encontrado"))
				return
			}
			responses.WriteError(r.Context(), deps.Logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load producto"))
			return
		}

		store, err := deps.openCart(r)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logg, w, err)
			return
		}

		persist := store.AddItem(r.Context(), cart.Item{
			ProductID:      view.IDProducto,
			Nombre:         view.Nombre,
			Descripcion:    view.Descripcion,
			PrecioUnitario: view.Precio,
			ImagenURL:      view.ImagenURL,
			IDVendedor:     view.IDVendedor,
		})
		responses.WriteSuccess(w, newCartView(store, persist))
	}
}

type cartQuantityRequest struct {
	Cantidad int `json:"cantidad" validate:"min=0"`
}

// CartUpdateQuantity sets a line's quantity; zero removes the line.
func CartUpdateQuantity(deps CartDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productoIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logg, w, err)
			return
		}

		var body cartQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), deps.Logg, w, err)
			return
		}

		store, err := deps.openCart(r)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logg, w, err)
			return
		}

		persist := store.UpdateQuantity(r.Context(), id, body.Cantidad)
		responses.WriteSuccess(w, newCartView(store, persist))
	}
}

// CartRemove drops a line; removing an absent producto is a no-op.
func CartRemove(deps CartDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productoIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logg, w, err)
			return
		}

		store, err := deps.openCart(r)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logg, w, err)
			return
		}

		persist := store.RemoveItem(r.Context(), id)
		responses.WriteSuccess(w, newCartView(store, persist))
	}
}

// CartClear empties the cart and drops its snapshot.
func CartClear(deps CartDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := deps.openCart(r)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logg, w, err)
			return
		}

		persist := store.Clear(r.Context())
		responses.WriteSuccess(w, newCartView(store, persist))
	}
}

// CheckoutConfirm acknowledges the purchase and empties the cart.
func CheckoutConfirm(deps CartDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := deps.openCart(r)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logg, w, err)
			return
		}

		receipt, err := checkout.Confirm(r.Context(), store)
		if err != nil {
			responses.WriteError(r.Context(), deps.Logg, w, err)
			return
		}
		responses.WriteSuccess(w, receipt)
	}
}
