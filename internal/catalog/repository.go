package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

const viewSelect = `p.id_producto,
p.nombre,
p.descripcion,
p.precio,
p.imagen_url,
p.id_vendedor,
v.nombre AS vendedor_nombre,
v.direccion AS vendedor_direccion,
u.correo AS vendedor_correo,
p.created_at`

// Repository reads denormalized catalog rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListProductos returns catalog rows newest first, narrowed by the filters.
func (r *Repository) ListProductos(ctx context.Context, filters Filters, defaultLimit int) ([]ProductoView, error) {
	query := r.baseQuery(ctx)

	if filters.VendedorID != nil {
		query = query.Where("p.id_vendedor = ?", *filters.VendedorID)
	}
	if filters.PrecioMin != nil {
		query = query.Where("p.precio >= ?", *filters.PrecioMin)
	}
	if filters.PrecioMax != nil {
		query = query.Where("p.precio <= ?", *filters.PrecioMax)
	}
	if term := strings.TrimSpace(filters.SearchTerm); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where("lower(p.nombre) LIKE ? OR lower(p.descripcion) LIKE ?", pattern, pattern)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []ProductoView
	if err := query.Order("p.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetProducto returns a single catalog row by product id.
func (r *Repository) GetProducto(ctx context.Context, id int64) (*ProductoView, error) {
	var row ProductoView
	err := r.baseQuery(ctx).
		Where("p.id_producto = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByVendedor returns all of one seller's products, newest first.
func (r *Repository) ListByVendedor(ctx context.Context, vendedorID int64) ([]ProductoView, error) {
	id := vendedorID
	return r.ListProductos(ctx, Filters{VendedorID: &id}, 0)
}

func (r *Repository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("productos AS p").
		Select(viewSelect).
		Joins("JOIN vendedores v ON v.id_vendedor = p.id_vendedor").
		Joins("JOIN usuarios u ON u.cedula = v.cedula")
}
