package models

import "time"

// Vendedor is the seller profile attached to a Usuario once it converts.
type Vendedor struct {
	IDVendedor  int64     `gorm:"column:id_vendedor;primaryKey;autoIncrement" json:"id_vendedor"`
	Cedula      string    `gorm:"column:cedula;not null;uniqueIndex" json:"cedula"`
	Nombre      string    `gorm:"column:nombre;not null" json:"nombre"`
	Telefono    *string   `gorm:"column:telefono" json:"telefono,omitempty"`
	Direccion   string    `gorm:"column:direccion;not null" json:"direccion"`
	Descripcion *string   `gorm:"column:descripcion" json:"descripcion,omitempty"`
	Usuario     *Usuario  `gorm:"foreignKey:Cedula;references:Cedula" json:"-"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName keeps the historical plural table name.
func (Vendedor) TableName() string {
	return "vendedores"
}
