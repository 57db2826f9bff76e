package cart

import "github.com/shopspring/decimal"

// Item is one cart line: a denormalized copy of the catalog row, frozen at
// the moment the product is first added. Later adds of the same product only
// bump the quantity; catalog changes never propagate into existing lines.
type Item struct {
	ProductID      int64           `json:"id_producto"`
	Nombre         string          `json:"nombre"`
	Descripcion    string          `json:"descripcion"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	ImagenURL      *string         `json:"imagen_url,omitempty"`
	IDVendedor     int64           `json:"id_vendedor"`
	Cantidad       int             `json:"cantidad"`
}

// LineTotal returns unit price times quantity for this line.
func (i Item) LineTotal() decimal.Decimal {
	return i.PrecioUnitario.Mul(decimal.NewFromInt(int64(i.Cantidad)))
}
