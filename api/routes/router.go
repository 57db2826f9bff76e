package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agronegocio/agromercado-backend/api/controllers"
	"github.com/agronegocio/agromercado-backend/api/middleware"
	"github.com/agronegocio/agromercado-backend/internal/auth"
	"github.com/agronegocio/agromercado-backend/internal/catalog"
	"github.com/agronegocio/agromercado-backend/internal/forms"
	"github.com/agronegocio/agromercado-backend/internal/productos"
	"github.com/agronegocio/agromercado-backend/internal/vendedores"
	"github.com/agronegocio/agromercado-backend/pkg/auth/session"
	"github.com/agronegocio/agromercado-backend/pkg/config"
	"github.com/agronegocio/agromercado-backend/pkg/logger"
	"github.com/agronegocio/agromercado-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// RouterParams carries everything the route tree mounts.
type RouterParams struct {
	Config  *config.Config
	Logg    *logger.Logger
	Redis   *redis.Client
	Session sessionManager

	AuthService     auth.Service
	RegisterService auth.RegisterService
	Vendedores      vendedores.Service
	Productos       productos.Service

	CatalogVM   *catalog.ViewModel
	CatalogRepo *catalog.Repository
	FormMode    *forms.Selector

	SessionDeps controllers.SessionDeps
	CartDeps    controllers.CartDeps

	HealthChecks map[string]controllers.Pinger

	Gatherer prometheus.Gatherer
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logg

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginCorreoLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterCorreoLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.HealthChecks))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.RegisterService, p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, p.SessionDeps))
	})

	// Public surfaces: the catalog feed and the session projection. The
	// session route reads the bearer itself so anonymous callers still get
	// a well-formed snapshot.
	r.Route("/api/v1/catalogo", func(r chi.Router) {
		r.Get("/", controllers.CatalogList(p.CatalogVM, logg))
		r.Get("/{productoID}", controllers.CatalogDetail(p.CatalogRepo, logg))
	})
	r.Get("/api/v1/session", controllers.SessionShow(p.SessionDeps))
	r.Route("/api/v1/forms", func(r chi.Router) {
		r.Get("/mode", controllers.FormModeShow(p.FormMode))
		r.Post("/mode", controllers.FormModeSet(p.FormMode, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Session, logg))

		r.Route("/carrito", func(r chi.Router) {
			r.Get("/", controllers.CartShow(p.CartDeps))
			r.Post("/items", controllers.CartAdd(p.CartDeps))
			r.Patch("/items/{productoID}", controllers.CartUpdateQuantity(p.CartDeps))
			r.Delete("/items/{productoID}", controllers.CartRemove(p.CartDeps))
			r.Delete("/", controllers.CartClear(p.CartDeps))
		})
		r.Post("/checkout", controllers.CheckoutConfirm(p.CartDeps))

		r.Post("/vendedores", controllers.BecomeVendedor(p.Vendedores, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireVendedor(logg))
			r.Get("/vendedores/me", controllers.VendedorProfile(p.Vendedores, logg))
			r.Route("/productos", func(r chi.Router) {
				r.Post("/", controllers.PublishProducto(p.Productos, cfg.Media.MaxUploadBytes(), logg))
				r.Get("/", controllers.ListMisProductos(p.Productos, logg))
				r.Put("/{productoID}", controllers.UpdateProducto(p.Productos, logg))
				r.Delete("/{productoID}", controllers.DeleteProducto(p.Productos, logg))
			})
		})
	})

	return r
}
