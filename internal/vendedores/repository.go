package vendedores

import (
	"context"

	"github.com/agronegocio/agromercado-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository owns Vendedor row persistence.
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

// Create inserts a new vendedor row.
func (r *Repository) Create(ctx context.Context, vendedor *models.Vendedor) (*models.Vendedor, error) {
	if err := r.db.WithContext(ctx).Create(vendedor).Error; err != nil {
		return nil, err
	}
	return vendedor, nil
}

// FindByCedula loads the vendedor attached to the given cedula.
func (r *Repository) FindByCedula(ctx context.Context, cedula string) (*models.Vendedor, error) {
	var vendedor models.Vendedor
	if err := r.db.WithContext(ctx).First(&vendedor, "cedula = ?", cedula).Error; err != nil {
		return nil, err
	}
	return &vendedor, nil
}

// FindByID loads the vendedor by surrogate id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Vendedor, error) {
	var vendedor models.Vendedor
	if err := r.db.WithContext(ctx).First(&vendedor, "id_vendedor = ?", id).Error; err != nil {
		return nil, err
	}
	return &vendedor, nil
}
