package httpapi

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/export"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/settings"
)

type Deps struct {
	Logger   *log.Logger
	Catalog  *catalog.Service
	Carts    *cart.Service
	Orders   *order.Service
	Settings *settings.Service
	Exporter *export.Exporter
	Auth     *auth.Authenticator
	// Live serves the admin order stream (websocket).
	Live     http.Handler
	Geocoder Geocoder

	// UploadDir is served under /uploads when set.
	UploadDir        string
	CORSAllowOrigins []string
	SessionTTL       time.Duration
	CookieSecure     bool
}

func NewRouter(d Deps) http.Handler {
	h := &Handler{
		logger:       d.Logger,
		catalog:      d.Catalog,
		carts:        d.Carts,
		orders:       d.Orders,
		settings:     d.Settings,
		exporter:     d.Exporter,
		auth:         d.Auth,
		geocoder:     d.Geocoder,
		cookieSecure: d.CookieSecure,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(CORS(d.CORSAllowOrigins))

	r.Get("/health", h.Health)

	if d.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", noDirListing(http.FileServer(http.Dir(d.UploadDir)))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(session.Middleware(session.Options{TTL: d.SessionTTL, Secure: d.CookieSecure}))

		r.Get("/products", h.ListProducts)
		r.Get("/products/{name}", h.GetProduct)

		r.Get("/cart", h.ViewCart)
		r.Delete("/cart", h.ClearCart)
		r.Post("/cart/items", h.AddCartItem)
		r.Delete("/cart/items/{name}", h.RemoveCartItem)

		r.Post("/checkout", h.Checkout)
		r.Get("/orders/{id}", h.GetOrder)

		r.Get("/settings/logo", h.GetLogo)
		r.Get("/geocode/reverse", h.ReverseGeocode)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin(d.Auth))

				r.Get("/orders", h.ListOrders)
				r.Get("/orders/count", h.CountOrders)
				r.Get("/orders/export", h.ExportOrders)
				if d.Live != nil {
					r.Handle("/orders/live", d.Live)
				}
				r.Get("/orders/{id}", h.AdminGetOrder)
				r.Post("/orders/{id}/confirm", h.ConfirmOrder)
				r.Post("/orders/{id}/cancel", h.CancelOrder)
				r.Get("/orders/{id}/invoice", h.Invoice)

				r.Post("/products", h.CreateProduct)
				r.Put("/products/{name}", h.UpdateProduct)
				r.Delete("/products/{name}", h.DeleteProduct)

				r.Post("/settings/logo", h.UploadLogo)
				r.Get("/settings/{key}", h.GetSetting)
				r.Put("/settings/{key}", h.PutSetting)
			})
		})
	})

	return r
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
