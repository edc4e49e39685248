package httpapi

import (
	"context"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/geocode"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/session"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.Context(), pathParam(r, "name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) ViewCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.View(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type addItemRequest struct {
	Product  string `json:"product"`
	Quantity *int   `json:"quantity"`
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	view, err := h.carts.Add(r.Context(), session.FromContext(r.Context()), req.Product, qty)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.Remove(r.Context(), session.FromContext(r.Context()), pathParam(r, "name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), session.FromContext(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var d order.Delivery
	if err := decodeJSON(r, &d); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	o, err := h.orders.PlaceOrder(ctx, session.FromContext(r.Context()), d)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// GetOrder backs the order confirmation page.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) GetLogo(w http.ResponseWriter, r *http.Request) {
	logo, err := h.settings.Logo(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"logoUrl": logo})
}

// ReverseGeocode never fails the request once the coordinates are valid; lookup
// problems are reported as an unavailable address.
func (h *Handler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := geocode.ParseCoordinates(r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if h.geocoder == nil {
		writeJSON(w, http.StatusOK, geocode.Unavailable)
		return
	}

	res, err := h.geocoder.Reverse(r.Context(), lat, lon)
	if err != nil {
		h.logger.Printf("geocode %.5f,%.5f: %v", lat, lon, err)
		res = geocode.Unavailable
	}
	writeJSON(w, http.StatusOK, res)
}
