package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto represents a published marketplace listing.
type Producto struct {
	IDProducto  int64           `gorm:"column:id_producto;primaryKey;autoIncrement" json:"id_producto"`
	IDVendedor  int64           `gorm:"column:id_vendedor;not null;index" json:"id_vendedor"`
	Nombre      string          `gorm:"column:nombre;not null" json:"nombre"`
	Descripcion string          `gorm:"column:descripcion;not null" json:"descripcion"`
	Precio      decimal.Decimal `gorm:"column:precio;type:numeric(12,2);not null" json:"precio"`
	ImagenURL   *string         `gorm:"column:imagen_url" json:"imagen_url,omitempty"`
	Vendedor    *Vendedor       `gorm:"foreignKey:IDVendedor;references:IDVendedor" json:"vendedor,omitempty"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName keeps the historical plural table name.
func (Producto) TableName() string {
	return "productos"
}
