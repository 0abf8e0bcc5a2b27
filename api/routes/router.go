package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gocartshop/gocart-api/api/controllers"
	"github.com/gocartshop/gocart-api/api/middleware"
	"github.com/gocartshop/gocart-api/internal/cart"
	"github.com/gocartshop/gocart-api/internal/catalog"
	checkoutsvc "github.com/gocartshop/gocart-api/internal/checkout"
	"github.com/gocartshop/gocart-api/internal/session"
	"github.com/gocartshop/gocart-api/pkg/config"
	"github.com/gocartshop/gocart-api/pkg/currency"
	"github.com/gocartshop/gocart-api/pkg/kv"
	"github.com/gocartshop/gocart-api/pkg/logger"
	"github.com/gocartshop/gocart-api/pkg/metrics"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Storage   kv.Pinger
	Sessions  *session.Service
	Cart      *cart.Service
	Checkout  *checkoutsvc.Service
	Catalog   *catalog.Client
	Converter *currency.Converter
	Metrics   *metrics.StorefrontMetrics
	Gatherer  prometheus.Gatherer
}

// NewRouter assembles the storefront HTTP surface.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, d.Logger, d.Storage))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(d.Sessions, d.Metrics, d.Logger))
		r.Post("/login", controllers.AuthLogin(d.Sessions, d.Config.JWT, d.Metrics, d.Logger))
		r.Post("/logout", controllers.AuthLogout(d.Sessions, d.Logger))
		r.Get("/session", controllers.AuthSession(d.Sessions, d.Logger))
		r.With(middleware.RequireLogin(d.Config.JWT, d.Sessions, d.Logger)).
			Put("/profile", controllers.AuthUpdateProfile(d.Sessions, d.Logger))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(d.Catalog, d.Logger))
		r.Get("/categories", controllers.ProductsCategories(d.Catalog, d.Logger))
		r.Get("/{id}", controllers.ProductsGet(d.Catalog, d.Logger))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", controllers.CartGet(d.Cart, d.Converter, d.Logger))
		r.Post("/items", controllers.CartAdd(d.Cart, d.Converter, d.Logger))
		r.Patch("/items/{id}", controllers.CartUpdateQuantity(d.Cart, d.Converter, d.Logger))
		r.Delete("/items/{id}", controllers.CartRemove(d.Cart, d.Converter, d.Logger))
		r.Delete("/", controllers.CartClear(d.Cart, d.Converter, d.Logger))
	})

	// Checkout mirrors the cart page's redirect-to-login guard: the gate
	// lives at the routing layer, not inside the stores.
	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Use(middleware.RequireLogin(d.Config.JWT, d.Sessions, d.Logger))
		r.Post("/", controllers.CheckoutStart(d.Checkout, d.Logger))
		r.Post("/confirm", controllers.CheckoutConfirm(d.Checkout, d.Logger))
	})

	return r
}
