package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agronegocio/agromercado-backend/api/controllers"
	"github.com/agronegocio/agromercado-backend/internal/auth"
	"github.com/agronegocio/agromercado-backend/internal/cart"
	"github.com/agronegocio/agromercado-backend/internal/catalog"
	"github.com/agronegocio/agromercado-backend/internal/forms"
	"github.com/agronegocio/agromercado-backend/internal/productos"
	"github.com/agronegocio/agromercado-backend/internal/usuarios"
	"github.com/agronegocio/agromercado-backend/internal/vendedores"
	pkgauth "github.com/agronegocio/agromercado-backend/pkg/auth"
	"github.com/agronegocio/agromercado-backend/pkg/auth/session"
	"github.com/agronegocio/agromercado-backend/pkg/config"
	"github.com/agronegocio/agromercado-backend/pkg/db/models"
	"github.com/agronegocio/agromercado-backend/pkg/logger"
	"github.com/agronegocio/agromercado-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*usuarios.UsuarioDTO, error) {
	return &usuarios.UsuarioDTO{Cedula: req.Cedula, Correo: req.Correo}, nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubVendedoresService struct{}

func (stubVendedoresService) Convert(ctx context.Context, cedula string, input vendedores.ConvertInput) (*models.Vendedor, error) {
	return &models.Vendedor{IDVendedor: 1, Cedula: cedula}, nil
}

func (stubVendedoresService) GetByCedula(ctx context.Context, cedula string) (*models.Vendedor, error) {
	return &models.Vendedor{IDVendedor: 1, Cedula: cedula}, nil
}

type stubProductosService struct{}

func (stubProductosService) Publish(ctx context.Context, actor productos.Actor, input productos.PublishInput) (*productos.PublishResult, error) {
	panic("unimplemented")
}

func (stubProductosService) Update(ctx context.Context, actor productos.Actor, id int64, input productos.UpdateInput) (*models.Producto, error) {
	panic("unimplemented")
}

func (stubProductosService) Delete(ctx context.Context, actor productos.Actor, id int64) error {
	panic("unimplemented")
}

func (stubProductosService) ListMine(ctx context.Context, actor productos.Actor) ([]models.Producto, error) {
	return []models.Producto{}, nil
}

type memorySnapshots struct {
	data map[string][]byte
}

func (m *memorySnapshots) Save(ctx context.Context, owner string, payload []byte) error {
	m.data[owner] = payload
	return nil
}

func (m *memorySnapshots) Load(ctx context.Context, owner string) ([]byte, error) {
	payload, ok := m.data[owner]
	if !ok {
		return nil, cart.ErrSnapshotNotFound
	}
	return payload, nil
}

func (m *memorySnapshots) Delete(ctx context.Context, owner string) error {
	delete(m.data, owner)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "agromercado",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
		Media:   config.MediaConfig{MaxUploadMB: 5},
		Catalog: config.CatalogConfig{DefaultLimit: 50},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS usuarios (
  cedula TEXT PRIMARY KEY, nombre TEXT NOT NULL, correo TEXT NOT NULL UNIQUE,
  telefono TEXT, password_hash TEXT NOT NULL, es_vendedor INTEGER NOT NULL DEFAULT 0,
  last_login_at DATETIME, created_at DATETIME, updated_at DATETIME);`,
		`CREATE TABLE IF NOT EXISTS vendedores (
  id_vendedor INTEGER PRIMARY KEY AUTOINCREMENT, cedula TEXT NOT NULL UNIQUE,
  nombre TEXT NOT NULL, telefono TEXT, direccion TEXT NOT NULL, descripcion TEXT,
  created_at DATETIME, updated_at DATETIME);`,
		`CREATE TABLE IF NOT EXISTS productos (
  id_producto INTEGER PRIMARY KEY AUTOINCREMENT, id_vendedor INTEGER NOT NULL,
  nombre TEXT NOT NULL, descripcion TEXT NOT NULL, precio NUMERIC NOT NULL,
  imagen_url TEXT, created_at DATETIME, updated_at DATETIME);`,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	catalogRepo := catalog.NewRepository(db)
	catalogVM, err := catalog.NewViewModel(catalogRepo, cfg.Catalog.DefaultLimit, logg, nil)
	if err != nil {
		t.Fatalf("catalog viewmodel: %v", err)
	}

	snapshots := &memorySnapshots{data: map[string][]byte{}}

	return NewRouter(RouterParams{
		Config:          cfg,
		Logg:            logg,
		Session:         stubSessionManager{},
		AuthService:     stubAuthService{},
		RegisterService: stubRegisterService{},
		Vendedores:      stubVendedoresService{},
		Productos:       stubProductosService{},
		CatalogVM:       catalogVM,
		CatalogRepo:     catalogRepo,
		FormMode:        forms.NewSelector(),
		SessionDeps: controllers.SessionDeps{
			JWTConfig:  cfg.JWT,
			Sessions:   stubSessionManager{},
			Usuarios:   usuarios.NewRepository(db),
			Vendedores: vendedores.NewRepository(db),
			Carts:      snapshots,
			Logg:       logg,
		},
		CartDeps: controllers.CartDeps{
			Snapshots: snapshots,
			Catalog:   catalogRepo,
			Logg:      logg,
		},
		HealthChecks: map[string]controllers.Pinger{
			"database": stubPinger{},
		},
		Gatherer: prometheus.NewRegistry(),
	})
}

func buildToken(t *testing.T, cfg *config.Config, esVendedor bool, vendedorID *int64) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		Cedula:     "001-1234567-8",
		Nombre:     "Ana Pérez",
		EsVendedor: esVendedor,
		IDVendedor: vendedorID,
		JTI:        session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCatalogIsPublic(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalogo/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public catalog got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestSessionAnonymousWithoutToken(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	view := envelope.Data.(map[string]any)
	if view["state"] != "anonymous" {
		t.Fatalf("expected anonymous state, got %v", view["state"])
	}
}

func TestCartRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/carrito/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestCartSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/carrito/", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestProductosRequireVendedorStanding(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	buyer := httptest.NewRequest(http.MethodGet, "/api/v1/productos/", nil)
	buyer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, buyer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for buyer got %d", resp.Code)
	}

	vendedorID := int64(1)
	seller := httptest.NewRequest(http.MethodGet, "/api/v1/productos/", nil)
	seller.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, true, &vendedorID))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, seller)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for vendedor got %d: %s", resp.Code, resp.Body.String())
	}
}
