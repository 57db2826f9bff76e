package models

import "time"

// Usuario represents the canonical identity entity, keyed by national ID.
type Usuario struct {
	Cedula       string     `gorm:"column:cedula;primaryKey" json:"cedula"`
	Nombre       string     `gorm:"column:nombre;not null" json:"nombre"`
	Correo       string     `gorm:"column:correo;type:text;not null;uniqueIndex" json:"correo"`
	Telefono     *string    `gorm:"column:telefono" json:"telefono,omitempty"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	EsVendedor   bool       `gorm:"column:es_vendedor;not null;default:false" json:"es_vendedor"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName keeps the historical plural table name.
func (Usuario) TableName() string {
	return "usuarios"
}
