package productos

import (
	"context"

	"github.com/agronegocio/agromercado-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository owns Producto row persistence.
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

// Create inserts a new producto row.
func (r *Repository) Create(ctx context.Context, producto *models.Producto) (*models.Producto, error) {
	if err := r.db.WithContext(ctx).Create(producto).Error; err != nil {
		return nil, err
	}
	return producto, nil
}

// FindByID loads the producto without associations.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Producto, error) {
	var producto models.Producto
	if err := r.db.WithContext(ctx).First(&producto, "id_producto = ?", id).Error; err != nil {
		return nil, err
	}
	return &producto, nil
}

// Update saves the full producto row.
func (r *Repository) Update(ctx context.Context, producto *models.Producto) (*models.Producto, error) {
	if err := r.db.WithContext(ctx).Save(producto).Error; err != nil {
		return nil, err
	}
	return producto, nil
}

// SetImagenURL updates only the image URL column.
func (r *Repository) SetImagenURL(ctx context.Context, id int64, url *string) error {
	return r.db.WithContext(ctx).
		Model(&models.Producto{}).
		Where("id_producto = ?", id).
		Update("imagen_url", url).Error
}

// Delete removes the producto by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id_producto = ?", id).Delete(&models.Producto{}).Error
}

// ListByVendedor returns one seller's productos, newest first.
func (r *Repository) ListByVendedor(ctx context.Context, vendedorID int64) ([]models.Producto, error) {
	var productos []models.Producto
	err := r.db.WithContext(ctx).
		Where("id_vendedor = ?", vendedorID).
		Order("created_at DESC").
		Find(&productos).Error
	if err != nil {
		return nil, err
	}
	return productos, nil
}
