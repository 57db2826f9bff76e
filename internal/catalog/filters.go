package catalog

import "github.com/shopspring/decimal"

// Filters narrow a catalog load. Every field defaults to "no filter"; set
// fields combine as a conjunction.
type Filters struct {
	VendedorID *int64           `json:"id_vendedor,omitempty"`
	PrecioMin  *decimal.Decimal `json:"precio_min,omitempty"`
	PrecioMax  *decimal.Decimal `json:"precio_max,omitempty"`
	SearchTerm string           `json:"q,omitempty"`
	Limit      int              `json:"limit,omitempty"`
}

// IsZero reports whether no filter field is set.
func (f Filters) IsZero() bool {
	return f.VendedorID == nil && f.PrecioMin == nil && f.PrecioMax == nil && f.SearchTerm == "" && f.Limit == 0
}
