package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/clientiq-crm/bff/internal/crm"
	"github.com/clientiq-crm/bff/internal/derive"
	"github.com/clientiq-crm/bff/internal/ws"
)

// ProductStore defines the upstream methods needed by product handlers.
// Satisfied by *crm.API; narrow interface for testability.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]crm.Product, error)
	ActiveProducts(ctx context.Context) ([]crm.Product, error)
	GetProduct(ctx context.Context, id int) (crm.Product, error)
	CreateProduct(ctx context.Context, p crm.Product) (crm.Product, error)
	UpdateProduct(ctx context.Context, id int, p crm.Product) error
	DeleteProduct(ctx context.Context, id int) error
}

// ProductHandler handles the product catalog endpoints.
type ProductHandler struct {
	store  ProductStore
	notify Notifier
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store ProductStore, notify Notifier) *ProductHandler {
	return &ProductHandler{store: store, notify: notify}
}

// RegisterRoutes registers product endpoints on the given Chi router.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/active", h.Active)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

type productResponse struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

func toProductResponse(p crm.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       money(decimal.NewFromFloat(p.Price)),
		Description: p.Description,
		IsActive:    p.IsActive,
	}
}

// List returns the full catalog, narrowed by the optional ?search= filter
// over name and description.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	products = derive.Search(products, r.URL.Query().Get("search"),
		func(p crm.Product) string { return p.Name },
		func(p crm.Product) string { return p.Description },
	)

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Active returns only products available for new order lines.
func (h *ProductHandler) Active(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ActiveProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: list active products: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single product.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Create adds a product to the catalog.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProductRequest(w, r)
	if !ok {
		return
	}

	product, err := h.store.CreateProduct(r.Context(), req)
	if err != nil {
		log.Printf("ERROR: create product: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	h.notify.Broadcast(ws.EventProductsChanged)
	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

// Update modifies a product.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	req, ok := decodeProductRequest(w, r)
	if !ok {
		return
	}
	req.ID = id

	if err := h.store.UpdateProduct(r.Context(), id, req); err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: update product: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	h.notify.Broadcast(ws.EventProductsChanged)
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a product from the catalog.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: delete product: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	h.notify.Broadcast(ws.EventProductsChanged)
	w.WriteHeader(http.StatusNoContent)
}

func decodeProductRequest(w http.ResponseWriter, r *http.Request) (crm.Product, bool) {
	var req crm.Product
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return crm.Product{}, false
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return crm.Product{}, false
	}
	if req.Price < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must not be negative"})
		return crm.Product{}, false
	}
	return req, true
}
