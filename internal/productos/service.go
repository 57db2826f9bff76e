package productos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agronegocio/agromercado-backend/pkg/db/models"
	"github.com/agronegocio/agromercado-backend/pkg/enums"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/agronegocio/agromercado-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

type productoRepository interface {
	Create(ctx context.Context, producto *models.Producto) (*models.Producto, error)
	FindByID(ctx context.Context, id int64) (*models.Producto, error)
	Update(ctx context.Context, producto *models.Producto) (*models.Producto, error)
	SetImagenURL(ctx context.Context, id int64, url *string) error
	Delete(ctx context.Context, id int64) error
	ListByVendedor(ctx context.Context, vendedorID int64) ([]models.Producto, error)
}

type objectStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
}

type changeNotifier interface {
	ProductoChanged(ctx context.Context, action string, productID int64)
}

type publishMetrics interface {
	IncPublish(outcome string)
}

// Actor is the caller's standing for publish-side operations.
type Actor struct {
	Cedula     string
	VendedorID *int64
}

// PublishInput is the payload for creating a producto.
type PublishInput struct {
	Nombre      string
	Descripcion string
	Precio      decimal.Decimal
	Image       *ImageUpload
}

// UpdateInput carries the mutable producto fields.
type UpdateInput struct {
	Nombre      string
	Descripcion string
	Precio      decimal.Decimal
}

// PublishResult distinguishes a full publish from one whose image never made
// it to storage. Partial success is an outcome, not an error: the producto row
// exists either way.
type PublishResult struct {
	Producto *models.Producto
	Outcome  enums.PublishOutcome
	// ImageIssue explains a partial outcome; empty on complete.
	ImageIssue string
}

// Service exposes the producto publish workflow.
type Service interface {
	Publish(ctx context.Context, actor Actor, input PublishInput) (*PublishResult, error)
	Update(ctx context.Context, actor Actor, id int64, input UpdateInput) (*models.Producto, error)
	Delete(ctx context.Context, actor Actor, id int64) error
	ListMine(ctx context.Context, actor Actor) ([]models.Producto, error)
}

type service struct {
	repo           productoRepository
	objects        objectStorage
	notifier       changeNotifier
	metrics        publishMetrics
	logg           *logger.Logger
	maxUploadBytes int64
}

// NewService builds the publish workflow service.
func NewService(repo productoRepository, objects objectStorage, notifier changeNotifier, metrics publishMetrics, logg *logger.Logger, maxUploadBytes int64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("producto repository required")
	}
	if objects == nil {
		return nil, fmt.Errorf("object storage required")
	}
	if maxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	return &service{
		repo:           repo,
		objects:        objects,
		notifier:       notifier,
		metrics:        metrics,
		logg:           logg,
		maxUploadBytes: maxUploadBytes,
	}, nil
}

// Publish inserts the producto first and only then attempts the image upload.
// A failed upload leaves the row in place with a NULL image and reports a
// partial outcome; a failed validation happens before any side effect.
func (s *service) Publish(ctx context.Context, actor Actor, input PublishInput) (*PublishResult, error) {
	vendedorID, err := s.requireVendedor(actor)
	if err != nil {
		return nil, err
	}
	if err := validatePublishFields(input.Nombre, input.Descripcion, input.Precio); err != nil {
		return nil, err
	}

	var contentType, ext string
	if input.Image != nil {
		contentType, ext, err = validateImage(*input.Image, s.maxUploadBytes)
		if err != nil {
			return nil, err
		}
	}

	producto := &models.Producto{
		IDVendedor:  vendedorID,
		Nombre:      strings.TrimSpace(input.Nombre),
		Descripcion: strings.TrimSpace(input.Descripcion),
		Precio:      input.Precio,
	}
	if _, err := s.repo.Create(ctx, producto); err != nil {
		if s.metrics != nil {
			s.metrics.IncPublish("failed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert producto")
	}

	result := &PublishResult{Producto: producto, Outcome: enums.PublishOutcomeComplete}

	if input.Image != nil {
		if issue := s.attachImage(ctx, producto, *input.Image, contentType, ext); issue != "" {
			result.Outcome = enums.PublishOutcomePartial
			result.ImageIssue = issue
		}
	}

	if s.metrics != nil {
		s.metrics.IncPublish(result.Outcome.String())
	}
	if s.notifier != nil {
		s.notifier.ProductoChanged(ctx, "created", producto.IDProducto)
	}
	return result, nil
}

// attachImage uploads the validated image and records its public URL. Returns
// a non-empty issue description when the image did not end up attached.
func (s *service) attachImage(ctx context.Context, producto *models.Producto, image ImageUpload, contentType, ext string) string {
	key := fmt.Sprintf("productos/%d/%d-%s.%s",
		producto.IDProducto, time.Now().UnixNano(), shortRandom(), ext)

	if err := s.objects.Upload(ctx, key, contentType, bytes.NewReader(image.Data)); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "image upload failed, producto kept without image", err)
		}
		return "no se pudo subir la imagen"
	}

	url := s.objects.PublicURL(key)
	if err := s.repo.SetImagenURL(ctx, producto.IDProducto, &url); err != nil {
		// roll the orphaned object back so storage does not leak
		err = multierr.Append(err, s.objects.Remove(ctx, key))
		if s.logg != nil {
			s.logg.Error(ctx, "recording image url failed", err)
		}
		return "no se pudo registrar la imagen"
	}

	producto.ImagenURL = &url
	return ""
}

// Update rewrites the mutable fields of an owned producto.
func (s *service) Update(ctx context.Context, actor Actor, id int64, input UpdateInput) (*models.Producto, error) {
	vendedorID, err := s.requireVendedor(actor)
	if err != nil {
		return nil, err
	}
	if err := validatePublishFields(input.Nombre, input.Descripcion, input.Precio); err != nil {
		return nil, err
	}

	producto, err := s.loadOwned(ctx, id, vendedorID)
	if err != nil {
		return nil, err
	}

	producto.Nombre = strings.TrimSpace(input.Nombre)
	producto.Descripcion = strings.TrimSpace(input.Descripcion)
	producto.Precio = input.Precio

	if _, err := s.repo.Update(ctx, producto); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update producto")
	}

	if s.notifier != nil {
		s.notifier.ProductoChanged(ctx, "updated", producto.IDProducto)
	}
	return producto, nil
}

// Delete removes an owned producto and best-effort removes its stored image.
func (s *service) Delete(ctx context.Context, actor Actor, id int64) error {
	vendedorID, err := s.requireVendedor(actor)
	if err != nil {
		return err
	}

	producto, err := s.loadOwned(ctx, id, vendedorID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete producto")
	}

	if producto.ImagenURL != nil {
		if key, ok := s.keyFromURL(*producto.ImagenURL); ok {
			if err := s.objects.Remove(ctx, key); err != nil && s.logg != nil {
				s.logg.Warn(ctx, "image object removal failed")
			}
		}
	}

	if s.notifier != nil {
		s.notifier.ProductoChanged(ctx, "deleted", id)
	}
	return nil
}

// ListMine returns the actor's own productos.
func (s *service) ListMine(ctx context.Context, actor Actor) ([]models.Producto, error) {
	vendedorID, err := s.requireVendedor(actor)
	if err != nil {
		return nil, err
	}
	productos, err := s.repo.ListByVendedor(ctx, vendedorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list productos")
	}
	return productos, nil
}

// requireVendedor distinguishes "not logged in" from "logged in, not a seller".
func (s *service) requireVendedor(actor Actor) (int64, error) {
	if strings.TrimSpace(actor.Cedula) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "debe iniciar sesión para publicar")
	}
	if actor.VendedorID == nil {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "debe registrarse como vendedor para publicar")
	}
	return *actor.VendedorID, nil
}

func (s *service) loadOwned(ctx context.Context, id, vendedorID int64) (*models.Producto, error) {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "producto no encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load producto")
	}
	if producto.IDVendedor != vendedorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "el producto pertenece a otro vendedor")
	}
	return producto, nil
}

func (s *service) keyFromURL(url string) (string, bool) {
	prefix := s.objects.PublicURL("")
	if prefix == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

func validatePublishFields(nombre, descripcion string, precio decimal.Decimal) error {
	if strings.TrimSpace(nombre) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "nombre es requerido")
	}
	if strings.TrimSpace(descripcion) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "descripción es requerida")
	}
	if !precio.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "precio debe ser mayor que cero")
	}
	return nil
}

func shortRandom() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
