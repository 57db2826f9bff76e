package enums

import "fmt"

// FormMode selects which of the shared form flows is active.
type FormMode string

const (
	FormModeLogin    FormMode = "login"
	FormModeVendedor FormMode = "vendedor"
	FormModeProducto FormMode = "producto"
)

var validFormModes = []FormMode{
	FormModeLogin,
	FormModeVendedor,
	FormModeProducto,
}

// String implements fmt.Stringer.
func (f FormMode) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FormMode.
func (f FormMode) IsValid() bool {
	for _, candidate := range validFormModes {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFormMode converts raw input into a FormMode.
func ParseFormMode(value string) (FormMode, error) {
	for _, candidate := range validFormModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid form mode %q", value)
}
