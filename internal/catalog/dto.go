package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductoView is one denormalized catalog row: the product joined with its
// seller profile and the seller's user record.
type ProductoView struct {
	IDProducto        int64           `json:"id_producto"`
	Nombre            string          `json:"nombre"`
	Descripcion       string          `json:"descripcion"`
	Precio            decimal.Decimal `json:"precio"`
	ImagenURL         *string         `json:"imagen_url,omitempty"`
	IDVendedor        int64           `json:"id_vendedor"`
	VendedorNombre    string          `json:"vendedor_nombre"`
	VendedorDireccion string          `json:"vendedor_direccion"`
	VendedorCorreo    string          `json:"vendedor_correo"`
	CreatedAt         time.Time       `json:"created_at"`
}
