package forms

import (
	"testing"

	"github.com/agronegocio/agromercado-backend/pkg/enums"
)

func TestSelectorDefaultsToLogin(t *testing.T) {
	t.Parallel()

	s := NewSelector()
	if s.Mode() != enums.FormModeLogin {
		t.Fatalf("expected login, got %s", s.Mode())
	}
}

func TestSelectorAnyModeReachableFromAnyMode(t *testing.T) {
	t.Parallel()

	s := NewSelector()
	sequence := []enums.FormMode{
		enums.FormModeProducto,
		enums.FormModeLogin,
		enums.FormModeVendedor,
		enums.FormModeProducto,
	}
	for _, mode := range sequence {
		if !s.Set(mode) {
			t.Fatalf("expected transition to %s to succeed", mode)
		}
		if s.Mode() != mode {
			t.Fatalf("expected mode %s, got %s", mode, s.Mode())
		}
	}
}

func TestSelectorRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	s := NewSelector()
	if s.Set(enums.FormMode("checkout")) {
		t.Fatal("expected unknown mode to be rejected")
	}
	if s.Mode() != enums.FormModeLogin {
		t.Fatalf("expected mode unchanged, got %s", s.Mode())
	}
}
