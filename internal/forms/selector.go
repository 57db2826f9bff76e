package forms

import (
	"sync"

	"github.com/agronegocio/agromercado-backend/pkg/enums"
)

// Selector holds which of the shared form flows is currently active. Any mode
// can be reached from any other mode; there is no transition validation.
type Selector struct {
	mu   sync.Mutex
	mode enums.FormMode
}

// NewSelector starts on the login flow.
func NewSelector() *Selector {
	return &Selector{mode: enums.FormModeLogin}
}

// Mode returns the active form mode.
func (s *Selector) Mode() enums.FormMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Set switches to the given mode. Unknown modes are rejected.
func (s *Selector) Set(mode enums.FormMode) bool {
	if !mode.IsValid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	return true
}
