package checkout

import (
	"context"
	"time"

	"github.com/agronegocio/agromercado-backend/internal/cart"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const thankYouMessage = "¡Gracias por su compra! Su pedido fue recibido."

type cartSource interface {
	Items() []cart.Item
	Total() decimal.Decimal
	Clear(ctx context.Context) cart.PersistState
}

// Receipt is the acknowledgment returned when a purchase is confirmed.
// No payment is collected; the flow ends here.
type Receipt struct {
	Message string          `json:"mensaje"`
	Items   []cart.Item     `json:"items"`
	Total   decimal.Decimal `json:"total"`
	At      time.Time       `json:"confirmado_at"`
}

// Confirm snapshots the cart into a receipt and empties it.
func Confirm(ctx context.Context, carrito cartSource) (*Receipt, error) {
	items := carrito.Items()
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "el carrito está vacío")
	}

	receipt := &Receipt{
		Message: thankYouMessage,
		Items:   items,
		Total:   carrito.Total(),
		At:      time.Now().UTC(),
	}
	carrito.Clear(ctx)
	return receipt, nil
}
