package usuarios

import (
	"context"

	"github.com/agronegocio/agromercado-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository owns Usuario row persistence.
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

// Create inserts a new usuario row.
func (r *Repository) Create(ctx context.Context, usuario *models.Usuario) (*models.Usuario, error) {
	if err := r.db.WithContext(ctx).Create(usuario).Error; err != nil {
		return nil, err
	}
	return usuario, nil
}

// FindByCedula loads the usuario by its natural key.
func (r *Repository) FindByCedula(ctx context.Context, cedula string) (*models.Usuario, error) {
	var usuario models.Usuario
	if err := r.db.WithContext(ctx).First(&usuario, "cedula = ?", cedula).Error; err != nil {
		return nil, err
	}
	return &usuario, nil
}

// FindByCorreo loads the usuario by email.
func (r *Repository) FindByCorreo(ctx context.Context, correo string) (*models.Usuario, error) {
	var usuario models.Usuario
	if err := r.db.WithContext(ctx).First(&usuario, "correo = ?", correo).Error; err != nil {
		return nil, err
	}
	return &usuario, nil
}

// SetEsVendedor flips the seller flag.
func (r *Repository) SetEsVendedor(ctx context.Context, cedula string, esVendedor bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Usuario{}).
		Where("cedula = ?", cedula).
		Update("es_vendedor", esVendedor).Error
}

// TouchLastLogin stamps the last successful login.
func (r *Repository) TouchLastLogin(ctx context.Context, cedula string) error {
	return r.db.WithContext(ctx).
		Model(&models.Usuario{}).
		Where("cedula = ?", cedula).
		Update("last_login_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}
