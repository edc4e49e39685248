// Package httpapi exposes the storefront and admin JSON API.
package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/export"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/geocode"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/settings"
)

const requestTimeout = 5 * time.Second

// Geocoder resolves coordinates to an address.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (geocode.Result, error)
}

type Handler struct {
	logger       *log.Logger
	catalog      *catalog.Service
	carts        *cart.Service
	orders       *order.Service
	settings     *settings.Service
	exporter     *export.Exporter
	auth         *auth.Authenticator
	geocoder     Geocoder
	cookieSecure bool
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
