package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/export"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/settings"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/storage"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/validation"
)

const maxUploadBytes = 10 << 20

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login accepts JSON or a classic form post.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeJSON(r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
	} else {
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	}

	token, exp, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.fail(w, r, err)
		return
	}

	auth.SetCookie(w, token, exp, h.cookieSecure)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: exp})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(w, h.cookieSecure)
	w.WriteHeader(http.StatusNoContent)
}

// ListOrders returns all orders, newest first. ?status= narrows the list.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var filter order.Status
	if s := r.URL.Query().Get("status"); s != "" {
		filter = order.Status(strings.ToLower(s))
		if !filter.Valid() {
			h.fail(w, r, validation.Errorf("unknown status %q", s))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	orders, err := h.orders.List(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if filter != "" {
		kept := orders[:0]
		for _, o := range orders {
			if o.Status == filter {
				kept = append(kept, o)
			}
		}
		orders = kept
	}
	if orders == nil {
		orders = []order.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// CountOrders is the polling fallback for admins without a live connection.
func (h *Handler) CountOrders(w http.ResponseWriter, r *http.Request) {
	n, err := h.orders.Count(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *Handler) AdminGetOrder(w http.ResponseWriter, r *http.Request) {
	h.GetOrder(w, r)
}

func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Confirm(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Cancel(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) Invoice(w http.ResponseWriter, r *http.Request) {
	layout, err := export.ParseLayout(r.URL.Query().Get("layout"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	o, err := h.orders.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	doc, err := h.exporterFor(r.Context()).Invoice(*o, layout)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeDocument(w, doc)
}

func (h *Handler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	orders, err := h.orders.List(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	doc, err := h.exporter.History(orders)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeDocument(w, doc)
}

// exporterFor applies the shop_name setting to the configured exporter.
func (h *Handler) exporterFor(ctx context.Context) *export.Exporter {
	name, err := h.settings.ShopName(ctx, "")
	if err != nil {
		h.logger.Printf("http: read shop name: %v", err)
		return h.exporter
	}
	return h.exporter.Named(name)
}

func writeDocument(w http.ResponseWriter, doc export.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	in, img, cleanup, err := parseProductForm(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer cleanup()

	p, err := h.catalog.Create(r.Context(), in, img)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	in, img, cleanup, err := parseProductForm(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer cleanup()

	name := pathParam(r, "name")
	if in.Name == "" {
		in.Name = name
	}
	p, err := h.catalog.Update(r.Context(), name, in, img)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), pathParam(r, "name")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.fail(w, r, validation.Errorf("invalid upload: %v", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	img, closeFile, err := formUpload(r, "logo")
	if errors.Is(err, http.ErrMissingFile) {
		err = validation.Errorf("logo file is required")
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer closeFile()

	ref, err := h.settings.SetLogo(r.Context(), img)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"logoUrl": ref})
}

type settingValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "key")
	if !settings.Editable[key] {
		h.fail(w, r, validation.Errorf("unknown setting %q", key))
		return
	}
	fallback := ""
	if key == settings.KeyLogoURL {
		fallback = settings.DefaultLogoURL
	}
	v, err := h.settings.Get(r.Context(), key, fallback)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingValue{Key: key, Value: v})
}

func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "key")
	var req settingValue
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.settings.Set(r.Context(), key, req.Value); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingValue{Key: key, Value: req.Value})
}

// parseProductForm reads name, price, stock and an optional image from a multipart form.
// An empty stock field means the product does not track stock.
func parseProductForm(r *http.Request) (catalog.Input, *storage.Upload, func(), error) {
	noop := func() {}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return catalog.Input{}, nil, noop, validation.Errorf("invalid upload: %v", err)
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	in := catalog.Input{Name: strings.TrimSpace(r.FormValue("name"))}

	price, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("price")))
	if err != nil {
		cleanup()
		return catalog.Input{}, nil, noop, validation.Errorf("invalid price %q", r.FormValue("price"))
	}
	in.Price = price

	if s := strings.TrimSpace(r.FormValue("stock")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			cleanup()
			return catalog.Input{}, nil, noop, validation.Errorf("invalid stock %q", s)
		}
		in.Stock = &n
	}

	img, closeFile, err := formUpload(r, "image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, cleanup, nil
	}
	if err != nil {
		cleanup()
		return catalog.Input{}, nil, noop, err
	}
	return in, img, func() { closeFile(); cleanup() }, nil
}

// formUpload opens the multipart file under field. It returns http.ErrMissingFile when absent.
func formUpload(r *http.Request, field string) (*storage.Upload, func(), error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, http.ErrMissingFile
		}
		return nil, func() {}, validation.Errorf("invalid %s upload", field)
	}

	ct := hdr.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "image/") {
		_ = f.Close()
		return nil, func() {}, validation.Errorf("%s must be an image", field)
	}
	return &storage.Upload{Filename: hdr.Filename, ContentType: ct, Body: f}, func() { _ = f.Close() }, nil
}
