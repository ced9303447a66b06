package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/clientiq-crm/bff/internal/crm"
	"github.com/clientiq-crm/bff/internal/derive"
	"github.com/clientiq-crm/bff/internal/enum"
	"github.com/clientiq-crm/bff/internal/middleware"
	"github.com/clientiq-crm/bff/internal/ws"
)

// OrderStore defines the upstream methods needed by order handlers.
// Satisfied by *crm.API; narrow interface for testability.
type OrderStore interface {
	ListOrders(ctx context.Context) ([]crm.Order, error)
	ListClients(ctx context.Context, search string) ([]crm.Client, error)
	GetOrder(ctx context.Context, id int) (crm.Order, error)
	GetClient(ctx context.Context, id int) (crm.Client, error)
	CreateOrder(ctx context.Context, o crm.Order) (crm.Order, error)
	UpdateOrder(ctx context.Context, id int, o crm.Order) error
	DeleteOrder(ctx context.Context, id int) error
	ListOrderItems(ctx context.Context, orderID int) ([]crm.OrderItem, error)
	CreateOrderItem(ctx context.Context, item crm.OrderItem) (crm.OrderItem, error)
	UpdateOrderItem(ctx context.Context, id int, item crm.OrderItem) error
	DeleteOrderItem(ctx context.Context, id int) error
}

// OrderHandler handles order and order-item endpoints.
type OrderHandler struct {
	store  OrderStore
	notify Notifier
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(store OrderStore, notify Notifier) *OrderHandler {
	return &OrderHandler{store: store, notify: notify}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Get("/items", h.Items)
	})
}

// RegisterItemRoutes registers the flat order-item endpoints (/orderitems).
func (h *OrderHandler) RegisterItemRoutes(r chi.Router) {
	r.Post("/", h.CreateItem)
	r.Put("/{id}", h.UpdateItem)
	r.Delete("/{id}", h.DeleteItem)
}

// --- Request / Response types ---

type orderRequest struct {
	ClientID      int                `json:"clientId"`
	OrderDate     string             `json:"orderDate"`
	DueDate       string             `json:"dueDate"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"paymentStatus"`
	AmountPaid    float64            `json:"amountPaid"`
	Notes         string             `json:"notes"`
	Items         []orderItemRequest `json:"orderItems"`
}

type orderItemRequest struct {
	ProductID   int     `json:"productId"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Description string  `json:"description"`
}

type orderResponse struct {
	ID            int                 `json:"id"`
	ClientID      int                 `json:"clientId"`
	ClientName    string              `json:"clientName,omitempty"`
	OrderNumber   string              `json:"orderNumber"`
	OrderDate     time.Time           `json:"orderDate"`
	DueDate       time.Time           `json:"dueDate"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"paymentStatus"`
	TotalAmount   string              `json:"totalAmount"`
	AmountPaid    string              `json:"amountPaid"`
	Notes         string              `json:"notes,omitempty"`
	OrderItems    []orderItemResponse `json:"orderItems,omitempty"`
}

type orderItemResponse struct {
	ID          int    `json:"id,omitempty"`
	ProductID   int    `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Subtotal    string `json:"subtotal"`
	Description string `json:"description,omitempty"`
}

func toOrderResponse(o crm.Order, clientName string) orderResponse {
	items := make([]orderItemResponse, len(o.OrderItems))
	for i, it := range o.OrderItems {
		items[i] = toOrderItemResponse(it)
	}

	return orderResponse{
		ID:            o.ID,
		ClientID:      o.ClientID,
		ClientName:    clientName,
		OrderNumber:   o.OrderNumber,
		OrderDate:     o.OrderDate,
		DueDate:       o.DueDate,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   money(derive.DisplayTotal(o)),
		AmountPaid:    money(decimal.NewFromFloat(o.AmountPaid)),
		Notes:         o.Notes,
		OrderItems:    items,
	}
}

func toOrderItemResponse(it crm.OrderItem) orderItemResponse {
	line := decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity)))
	return orderItemResponse{
		ID:          it.ID,
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		Quantity:    it.Quantity,
		UnitPrice:   money(decimal.NewFromFloat(it.UnitPrice)),
		Subtotal:    line.StringFixed(2),
		Description: it.Description,
	}
}

// --- Handlers ---

// List returns all orders enriched with client names, narrowed by the
// optional ?search= (order number or client name, case-insensitive) and
// ?status= (exact match, "All Statuses" disables) filters. Both filters
// run here over the fetched snapshot and compose with AND.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		orders  []crm.Order
		clients []crm.Client
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		orders, err = h.store.ListOrders(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		clients, err = h.store.ListClients(ctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	views := make([]orderResponse, len(orders))
	for i, o := range orders {
		views[i] = toOrderResponse(o, derive.ResolveClientName(o.ClientID, clients))
	}

	views = derive.Search(views, r.URL.Query().Get("search"),
		func(o orderResponse) string { return o.OrderNumber },
		func(o orderResponse) string { return o.ClientName },
	)
	views = derive.MatchField(views, r.URL.Query().Get("status"), enum.StatusAll,
		func(o orderResponse) string { return o.Status },
	)

	writeJSON(w, http.StatusOK, views)
}

// Get returns a single order with its line items and client name.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	// Detail endpoints sometimes omit items that /orders/{id}/items has.
	if len(order.OrderItems) == 0 {
		if items, err := h.store.ListOrderItems(r.Context(), id); err == nil {
			order.OrderItems = items
		}
	}

	clientName := derive.UnknownClient
	if c, err := h.store.GetClient(r.Context(), order.ClientID); err == nil {
		clientName = c.CompanyName
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order, clientName))
}

// Create validates the order form, generates the order number, computes the
// total from the line items, stamps the creating user from the session, and
// forwards the result upstream.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	profile := middleware.ProfileFromContext(r.Context())
	if profile == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, ok := h.buildOrder(w, req)
	if !ok {
		return
	}
	order.OrderNumber = generateOrderNumber(time.Now())
	order.CreatedByUserID = profile.UserID

	created, err := h.store.CreateOrder(r.Context(), order)
	if err != nil {
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	h.notify.Broadcast(ws.EventOrdersChanged)
	writeJSON(w, http.StatusCreated, toOrderResponse(created, ""))
}

// Update modifies an existing order. The order number is immutable: the
// stored one is carried over regardless of the request body.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	existing, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order for update: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, ok := h.buildOrder(w, req)
	if !ok {
		return
	}
	order.ID = id
	order.OrderNumber = existing.OrderNumber
	order.CreatedByUserID = existing.CreatedByUserID

	if err := h.store.UpdateOrder(r.Context(), id, order); err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: update order: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	h.notify.Broadcast(ws.EventOrdersChanged)
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes an order.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	if err := h.store.DeleteOrder(r.Context(), id); err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: delete order: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	h.notify.Broadcast(ws.EventOrdersChanged)
	w.WriteHeader(http.StatusNoContent)
}

// Items returns the line items of an order.
func (h *OrderHandler) Items(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	items, err := h.store.ListOrderItems(r.Context(), id)
	if err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	resp := make([]orderItemResponse, len(items))
	for i, it := range items {
		resp[i] = toOrderItemResponse(it)
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateItem adds a line item to an existing order.
func (h *OrderHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req crm.OrderItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if msg := validateItem(req.ProductID, req.Quantity, req.UnitPrice); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	req.Subtotal = float64(req.Quantity) * req.UnitPrice

	item, err := h.store.CreateOrderItem(r.Context(), req)
	if err != nil {
		log.Printf("ERROR: create order item: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	h.notify.Broadcast(ws.EventOrdersChanged)
	writeJSON(w, http.StatusCreated, toOrderItemResponse(item))
}

// UpdateItem modifies a line item.
func (h *OrderHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order item ID"})
		return
	}

	var req crm.OrderItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if msg := validateItem(req.ProductID, req.Quantity, req.UnitPrice); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	req.ID = id
	req.Subtotal = float64(req.Quantity) * req.UnitPrice

	if err := h.store.UpdateOrderItem(r.Context(), id, req); err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order item not found"})
			return
		}
		log.Printf("ERROR: update order item: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	h.notify.Broadcast(ws.EventOrdersChanged)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteItem removes a line item.
func (h *OrderHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order item ID"})
		return
	}

	if err := h.store.DeleteOrderItem(r.Context(), id); err != nil {
		if errors.Is(err, crm.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order item not found"})
			return
		}
		log.Printf("ERROR: delete order item: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	h.notify.Broadcast(ws.EventOrdersChanged)
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// buildOrder validates the request and assembles the upstream order payload:
// dates as UTC midnight, per-item subtotals, and the canonical total computed
// from the items. Writes the error response itself when validation fails.
func (h *OrderHandler) buildOrder(w http.ResponseWriter, req orderRequest) (crm.Order, bool) {
	if req.ClientID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "clientId is required"})
		return crm.Order{}, false
	}

	orderDate, err := parseDay(req.OrderDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid orderDate, use YYYY-MM-DD"})
		return crm.Order{}, false
	}
	dueDate, err := parseDay(req.DueDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dueDate, use YYYY-MM-DD"})
		return crm.Order{}, false
	}

	status := req.Status
	if status == "" {
		status = enum.OrderStatusNew
	}
	if !enum.ValidOrderStatus(status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return crm.Order{}, false
	}

	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = enum.PaymentStatusUnpaid
	}
	if !enum.ValidPaymentStatus(paymentStatus) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid paymentStatus"})
		return crm.Order{}, false
	}

	items := make([]crm.OrderItem, len(req.Items))
	for i, it := range req.Items {
		if msg := validateItem(it.ProductID, it.Quantity, it.UnitPrice); msg != "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("item %d: %s", i, msg),
			})
			return crm.Order{}, false
		}
		items[i] = crm.OrderItem{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Description: it.Description,
			Subtotal:    float64(it.Quantity) * it.UnitPrice,
		}
	}

	total, _ := derive.OrderTotal(items).Float64()

	return crm.Order{
		ClientID:      req.ClientID,
		OrderDate:     orderDate,
		DueDate:       dueDate,
		Status:        status,
		PaymentStatus: paymentStatus,
		TotalAmount:   total,
		AmountPaid:    req.AmountPaid,
		Notes:         req.Notes,
		OrderItems:    items,
	}, true
}

func validateItem(productID, quantity int, unitPrice float64) string {
	if productID == 0 {
		return "productId is required"
	}
	if quantity <= 0 {
		return "quantity must be greater than 0"
	}
	if unitPrice <= 0 {
		return "unitPrice must be greater than 0"
	}
	return ""
}

// parseDay parses a calendar date and pins it to UTC midnight, the storage
// form the upstream expects.
func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// generateOrderNumber builds the immutable order number assigned at
// creation: ORD-<yyyyMMdd>-<last six digits of the unix millisecond clock>.
func generateOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%06d", now.Format("20060102"), now.UnixMilli()%1000000)
}
