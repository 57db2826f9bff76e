package controllers

import (
	"io"
	"net/http"
	"strings"

	"github.com/agronegocio/agromercado-backend/api/middleware"
	"github.com/agronegocio/agromercado-backend/api/responses"
	"github.com/agronegocio/agromercado-backend/api/validators"
	"github.com/agronegocio/agromercado-backend/internal/productos"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/agronegocio/agromercado-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

func actorFromContext(r *http.Request) productos.Actor {
	return productos.Actor{
		Cedula:     middleware.CedulaFromContext(r.Context()),
		VendedorID: middleware.VendedorIDFromContext(r.Context()),
	}
}

// PublishProducto accepts a multipart form: nombre, descripcion, precio and an
// optional imagen file. The row always lands before the image is attempted.
func PublishProducto(svc productos.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "productos service unavailable"))
			return
		}

		// Generous slack for the non-file fields.
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
		if err := r.ParseMultipartForm(maxUploadBytes + 1<<20); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "formulario inválido"))
			return
		}

		precio, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("precio")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "el precio debe ser un número"))
			return
		}

		input := productos.PublishInput{
			Nombre:      strings.TrimSpace(r.FormValue("nombre")),
			Descripcion: strings.TrimSpace(r.FormValue("descripcion")),
			Precio:      precio,
		}

		file, header, err := r.FormFile("imagen")
		switch {
		case err == nil:
			defer file.Close()
			data, readErr := io.ReadAll(file)
			if readErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, readErr, "leer imagen"))
				return
			}
			input.Image = &productos.ImageUpload{Data: data, Filename: header.Filename}
		case err == http.ErrMissingFile:
			// image is optional
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "leer imagen"))
			return
		}

		result, err := svc.Publish(r.Context(), actorFromContext(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type updateProductoRequest struct {
	Nombre      string `json:"nombre" validate:"required"`
	Descripcion string `json:"descripcion" validate:"required"`
	Precio      string `json:"precio" validate:"required"`
}

// UpdateProducto edits the caller's own producto.
func UpdateProducto(svc productos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productoIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductoRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		precio, err := decimal.NewFromString(strings.TrimSpace(body.Precio))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "el precio debe ser un número"))
			return
		}

		producto, err := svc.Update(r.Context(), actorFromContext(r), id, productos.UpdateInput{
			Nombre:      body.Nombre,
			Descripcion: body.Descripcion,
			Precio:      precio,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, producto)
	}
}

// DeleteProducto removes the caller's producto and its stored image.
func DeleteProducto(svc productos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productoIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actorFromContext(r), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListMisProductos returns the caller's own catalog entries.
func ListMisProductos(svc productos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListMine(r.Context(), actorFromContext(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
