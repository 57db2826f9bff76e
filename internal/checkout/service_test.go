package checkout

import (
	"context"
	"testing"

	"github.com/agronegocio/agromercado-backend/internal/cart"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type stubCart struct {
	items   []cart.Item
	cleared bool
}

func (s *stubCart) Items() []cart.Item {
	return s.items
}

func (s *stubCart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (s *stubCart) Clear(ctx context.Context) cart.PersistState {
	s.items = nil
	s.cleared = true
	return cart.PersistStateOK
}

func TestConfirmReturnsReceiptAndClearsCart(t *testing.T) {
	carrito := &stubCart{items: []cart.Item{
		{ProductID: 1, Nombre: "Café", PrecioUnitario: decimal.NewFromInt(1000), Cantidad: 2},
		{ProductID: 2, Nombre: "Panela", PrecioUnitario: decimal.NewFromInt(500), Cantidad: 1},
	}}

	receipt, err := Confirm(context.Background(), carrito)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if receipt.Message == "" {
		t.Fatal("expected acknowledgment message")
	}
	if len(receipt.Items) != 2 {
		t.Fatalf("expected 2 receipt lines, got %d", len(receipt.Items))
	}
	if !receipt.Total.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("expected total 2500, got %s", receipt.Total)
	}
	if !carrito.cleared {
		t.Fatal("expected cart to be cleared")
	}
}

func TestConfirmRejectsEmptyCart(t *testing.T) {
	carrito := &stubCart{}

	_, err := Confirm(context.Background(), carrito)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if carrito.cleared {
		t.Fatal("empty cart must not be cleared")
	}
}
