package auth

import (
	"context"
	"testing"
	"time"

	pkgauth "github.com/agronegocio/agromercado-backend/pkg/auth"
	"github.com/agronegocio/agromercado-backend/pkg/auth/session"
	"github.com/agronegocio/agromercado-backend/pkg/config"
	"github.com/agronegocio/agromercado-backend/pkg/db/models"
	pkgerrors "github.com/agronegocio/agromercado-backend/pkg/errors"
	"github.com/agronegocio/agromercado-backend/pkg/security"
	"gorm.io/gorm"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "agromercado-test",
	ExpirationMinutes: 15,
}

type stubLoginRepository struct {
	byCorreo map[string]*models.Usuario
	touched  []string
	touchErr error
}

func newStubLoginRepository() *stubLoginRepository {
	return &stubLoginRepository{byCorreo: map[string]*models.Usuario{}}
}

func (s *stubLoginRepository) FindByCorreo(ctx context.Context, correo string) (*models.Usuario, error) {
	if usuario, ok := s.byCorreo[correo]; ok {
		return usuario, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubLoginRepository) TouchLastLogin(ctx context.Context, cedula string) error {
	if s.touchErr != nil {
		return s.touchErr
	}
	s.touched = append(s.touched, cedula)
	return nil
}

type stubVendedorLoader struct {
	byCedula map[string]*models.Vendedor
}

func (s *stubVendedorLoader) FindByCedula(ctx context.Context, cedula string) (*models.Vendedor, error) {
	if s.byCedula != nil {
		if vendedor, ok := s.byCedula[cedula]; ok {
			return vendedor, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubSessionManager struct {
	generated []string
	revoked   []string
	rotateErr error
	nextID    string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	id := s.nextID
	if id == "" {
		id = "rotated-id"
	}
	return id, "refresh-" + id, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type loginSetup struct {
	service    Service
	users      *stubLoginRepository
	vendedores *stubVendedorLoader
	sessions   *stubSessionManager
}

func newLoginSetup(t *testing.T) *loginSetup {
	t.Helper()
	users := newStubLoginRepository()
	vendedores := &stubVendedorLoader{byCedula: map[string]*models.Vendedor{}}
	sessions := &stubSessionManager{}
	svc, err := NewService(ServiceParams{
		UserRepo:     users,
		VendedorRepo: vendedores,
		Session:      sessions,
		JWTConfig:    testJWTConfig,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &loginSetup{service: svc, users: users, vendedores: vendedores, sessions: sessions}
}

func seedLoginUsuario(t *testing.T, setup *loginSetup, cedula, correo, password string, esVendedor bool) *models.Usuario {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	usuario := &models.Usuario{
		Cedula:       cedula,
		Nombre:       "Ana Pérez",
		Correo:       correo,
		PasswordHash: hash,
		EsVendedor:   esVendedor,
	}
	setup.users.byCorreo[correo] = usuario
	return usuario
}

func TestLoginReturnsTokenPair(t *testing.T) {
	setup := newLoginSetup(t)
	seedLoginUsuario(t, setup, "001-123", "ana@example.com", "Secreta123!", false)

	resp, err := setup.service.Login(context.Background(), LoginRequest{
		Correo:   "Ana@Example.com",
		Password: "Secreta123!",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens in the response")
	}
	if resp.Usuario == nil || resp.Usuario.Cedula != "001-123" {
		t.Fatalf("unexpected usuario in response: %+v", resp.Usuario)
	}
	if len(setup.users.touched) != 1 || setup.users.touched[0] != "001-123" {
		t.Fatalf("expected last login touch for 001-123, got %v", setup.users.touched)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("minted token does not parse: %v", err)
	}
	if claims.Cedula != "001-123" || claims.EsVendedor {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(setup.sessions.generated) != 1 || setup.sessions.generated[0] != claims.ID {
		t.Fatalf("refresh session not tied to jti: %v vs %s", setup.sessions.generated, claims.ID)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	setup := newLoginSetup(t)
	seedLoginUsuario(t, setup, "001-123", "ana@example.com", "Secreta123!", false)

	_, err := setup.service.Login(context.Background(), LoginRequest{
		Correo:   "ana@example.com",
		Password: "equivocada",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("credential errors must not leak detail, got %q", typed.Message())
	}
}

func TestLoginRejectsUnknownCorreo(t *testing.T) {
	setup := newLoginSetup(t)

	_, err := setup.service.Login(context.Background(), LoginRequest{
		Correo:   "nadie@example.com",
		Password: "Secreta123!",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("unknown-account errors must match wrong-password errors, got %q", typed.Message())
	}
}

func TestLoginIncludesVendedorClaim(t *testing.T) {
	setup := newLoginSetup(t)
	seedLoginUsuario(t, setup, "001-123", "ana@example.com", "Secreta123!", true)
	setup.vendedores.byCedula["001-123"] = &models.Vendedor{IDVendedor: 42, Cedula: "001-123"}

	resp, err := setup.service.Login(context.Background(), LoginRequest{
		Correo:   "ana@example.com",
		Password: "Secreta123!",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("minted token does not parse: %v", err)
	}
	if !claims.EsVendedor {
		t.Fatal("expected es_vendedor claim")
	}
	if claims.IDVendedor == nil || *claims.IDVendedor != 42 {
		t.Fatalf("expected id_vendedor 42, got %v", claims.IDVendedor)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	setup := newLoginSetup(t)
	setup.sessions.nextID = "new-jti"

	now := time.Now().UTC()
	expired, err := pkgauth.MintAccessToken(testJWTConfig, now.Add(-time.Hour), pkgauth.AccessTokenPayload{
		Cedula: "001-123",
		Nombre: "Ana Pérez",
		JTI:    "old-jti",
	})
	if err != nil {
		t.Fatalf("mint expired token: %v", err)
	}

	resp, err := setup.service.Refresh(context.Background(), RefreshRequest{
		AccessToken:  expired,
		RefreshToken: "refresh-old-jti",
	})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if resp.RefreshToken != "refresh-new-jti" {
		t.Fatalf("unexpected rotated refresh token: %q", resp.RefreshToken)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("rotated token does not parse: %v", err)
	}
	if claims.ID != "new-jti" || claims.Cedula != "001-123" {
		t.Fatalf("rotated claims mismatch: %+v", claims)
	}
}

func TestRefreshRejectsInvalidSession(t *testing.T) {
	setup := newLoginSetup(t)
	setup.sessions.rotateErr = session.ErrInvalidRefreshToken

	token, err := pkgauth.MintAccessToken(testJWTConfig, time.Now().UTC(), pkgauth.AccessTokenPayload{
		Cedula: "001-123",
		JTI:    "old-jti",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	_, err = setup.service.Refresh(context.Background(), RefreshRequest{
		AccessToken:  token,
		RefreshToken: "stolen",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRejectsTamperedToken(t *testing.T) {
	setup := newLoginSetup(t)

	other := testJWTConfig
	other.Secret = "otro-secreto"
	token, err := pkgauth.MintAccessToken(other, time.Now().UTC(), pkgauth.AccessTokenPayload{
		Cedula: "001-123",
		JTI:    "old-jti",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	_, err = setup.service.Refresh(context.Background(), RefreshRequest{
		AccessToken:  token,
		RefreshToken: "refresh-old-jti",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for tampered token, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	setup := newLoginSetup(t)

	if err := setup.service.Logout(context.Background(), "some-jti"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if len(setup.sessions.revoked) != 1 || setup.sessions.revoked[0] != "some-jti" {
		t.Fatalf("expected revoke of some-jti, got %v", setup.sessions.revoked)
	}

	err := setup.service.Logout(context.Background(), "  ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for blank session, got %v", err)
	}
}
