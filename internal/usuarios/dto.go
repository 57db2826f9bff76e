package usuarios

import (
	"time"

	"github.com/agronegocio/agromercado-backend/pkg/db/models"
)

// UsuarioDTO is the sanitized profile returned to clients.
type UsuarioDTO struct {
	Cedula      string     `json:"cedula"`
	Nombre      string     `json:"nombre"`
	Correo      string     `json:"correo"`
	Telefono    *string    `json:"telefono,omitempty"`
	EsVendedor  bool       `json:"es_vendedor"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FromModel strips the credential fields off the row.
func FromModel(usuario *models.Usuario) *UsuarioDTO {
	if usuario == nil {
		return nil
	}
	return &UsuarioDTO{
		Cedula:      usuario.Cedula,
		Nombre:      usuario.Nombre,
		Correo:      usuario.Correo,
		Telefono:    usuario.Telefono,
		EsVendedor:  usuario.EsVendedor,
		LastLoginAt: usuario.LastLoginAt,
		CreatedAt:   usuario.CreatedAt,
	}
}
