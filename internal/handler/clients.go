package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/clientiq-crm/bff/internal/crm"
	"github.com/clientiq-crm/bff/internal/derive"
	"github.com/clientiq-crm/bff/internal/ws"
)

// ClientStore defines the upstream methods needed by client handlers.
// Satisfied by *crm.API; narrow interface for testability.
type ClientStore interface {
	ListClients(ctx context.Context, search string) ([]crm.Client, error)
	GetClient(ctx context.Context, id int) (crm.Client, error)
	CreateClient(ctx context.Context, c crm.Client) (crm.Client, error)
	UpdateClient(ctx context.Context, id int, c crm.Client) error
	DeleteClient(ctx context.Context, id int) error
	ListOrders(ctx context.Context) ([]crm.Order, error)
	OrdersByClient(ctx context.Context, clientID int) ([]crm.Order, error)
}

// ClientHandler handles client CRUD and list endpoints.
type ClientHandler struct {
	store  ClientStore
	notify Notifier
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(store ClientStore, notify Notifier) *ClientHandler {
	return &ClientHandler{store: store, notify: notify}
}

// RegisterRoutes registers client endpoints on the given Chi router.
func (h *ClientHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Get("/orders", h.Orders)
	})
}

// --- Request / Response types ---

type clientRequest struct {
	CompanyName string `json:"companyName"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

type clientResponse struct {
	ID          int        `json:"id"`
	CompanyName string     `json:"companyName"`
	ContactName string     `json:"contactName"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	OrderCount  int        `json:"orderCount"`
}

func toClientResponse(c crm.Client, orderCount int) clientResponse {
	return clientResponse{
		ID:          c.ID,
		CompanyName: c.CompanyName,
		ContactName: c.ContactName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		OrderCount:  orderCount,
	}
}

// --- Handlers ---

// List returns all clients with their derived order counts, optionally
// narrowed by a case-insensitive search over company, contact, and email.
// Filtering happens here, over the full snapshot, not upstream.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		clients []crm.Client
		orders  []crm.Order
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		clients, err = h.store.ListClients(ctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = h.store.ListOrders(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("ERROR: list clients: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	counts := derive.CountOrdersPerClient(clients, orders)

	filtered := derive.Search(clients, r.URL.Query().Get("search"),
		func(c crm.Client) string { return c.CompanyName },
		func(c crm.Client) string { return c.ContactName },
		func(c crm.Client) string { return c.Email },
	)

	resp := make([]clientResponse, len(filtered))
	for i, c := range filtered {
		resp[i] = toClientResponse(c, counts[c.ID])
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single client by ID.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid client ID"})
		return
	}

	client, err := h.store.GetClient(r.Context(), id)
	if err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "client not found"})
			return
		}
		log.Printf("ERROR: get client: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, toClientResponse(client, 0))
}

// Create adds a new client.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeClientRequest(w, r)
	if !ok {
		return
	}

	client, err := h.store.CreateClient(r.Context(), crm.Client{
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		Notes:       req.Notes,
	})
	if err != nil {
		log.Printf("ERROR: create client: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	h.notify.Broadcast(ws.EventClientsChanged)
	writeJSON(w, http.StatusCreated, toClientResponse(client, 0))
}

// Update modifies an existing client.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid client ID"})
		return
	}

	req, ok := decodeClientRequest(w, r)
	if !ok {
		return
	}

	err = h.store.UpdateClient(r.Context(), id, crm.Client{
		ID:          id,
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		Notes:       req.Notes,
	})
	if err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "client not found"})
			return
		}
		log.Printf("ERROR: update client: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	h.notify.Broadcast(ws.EventClientsChanged)
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a client.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid client ID"})
		return
	}

	if err := h.store.DeleteClient(r.Context(), id); err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "client not found"})
			return
		}
		log.Printf("ERROR: delete client: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	h.notify.Broadcast(ws.EventClientsChanged)
	w.WriteHeader(http.StatusNoContent)
}

// Orders returns the order history for a client. The upstream clientId
// filter does not reliably narrow results, so the response is re-filtered
// before use.
func (h *ClientHandler) Orders(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid client ID"})
		return
	}

	orders, err := h.store.OrdersByClient(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list client orders: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	own := derive.OrdersForClient(orders, id)

	resp := make([]orderResponse, len(own))
	for i, o := range own {
		resp[i] = toOrderResponse(o, "")
	}

	writeJSON(w, http.StatusOK, resp)
}

func decodeClientRequest(w http.ResponseWriter, r *http.Request) (clientRequest, bool) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return req, false
	}

	if req.CompanyName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "companyName is required"})
		return req, false
	}
	if req.ContactName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "contactName is required"})
		return req, false
	}

	return req, true
}
