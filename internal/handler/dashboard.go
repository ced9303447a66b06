package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/clientiq-crm/bff/internal/crm"
	"github.com/clientiq-crm/bff/internal/derive"
)

// DashboardStore defines the upstream methods needed by the dashboard.
// Satisfied by *crm.API; narrow interface for testability.
type DashboardStore interface {
	ListClients(ctx context.Context, search string) ([]crm.Client, error)
	ListOrders(ctx context.Context) ([]crm.Order, error)
	GetClient(ctx context.Context, id int) (crm.Client, error)
}

// DashboardHandler serves the derived dashboard view model.
type DashboardHandler struct {
	store DashboardStore
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(store DashboardStore) *DashboardHandler {
	return &DashboardHandler{store: store}
}

// RegisterRoutes registers the dashboard endpoint.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Summary)
}

// --- Response types ---

type dashboardResponse struct {
	TotalClients     int                   `json:"totalClients"`
	ActiveOrders     int                   `json:"activeOrders"`
	OrdersThisMonth  int                   `json:"ordersThisMonth"`
	RevenueThisMonth string                `json:"revenueThisMonth"`
	Orders           []recentOrderResponse `json:"orders"`
}

type recentOrderResponse struct {
	ID            int       `json:"id"`
	OrderNumber   string    `json:"orderNumber"`
	ClientID      int       `json:"clientId"`
	ClientName    string    `json:"clientName"`
	OrderDate     time.Time `json:"orderDate"`
	DueDate       time.Time `json:"dueDate"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	TotalAmount   string    `json:"totalAmount"`
}

// --- Handlers ---

// Summary fetches the client and order snapshots concurrently and derives
// the dashboard statistics from them.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
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
		log.Printf("ERROR: fetch dashboard data: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
		return
	}

	// Recent-order enrichment resolves each client individually, degrading
	// to the "Unknown" placeholder on any failure.
	resolve := func(clientID int) string {
		c, err := h.store.GetClient(r.Context(), clientID)
		if err != nil {
			return ""
		}
		return c.CompanyName
	}

	sum := derive.Summarize(clients, orders, time.Now().UTC(), resolve)

	recent := make([]recentOrderResponse, len(sum.RecentOrders))
	for i, ro := range sum.RecentOrders {
		recent[i] = recentOrderResponse{
			ID:            ro.Order.ID,
			OrderNumber:   ro.Order.OrderNumber,
			ClientID:      ro.Order.ClientID,
			ClientName:    ro.ClientName,
			OrderDate:     ro.Order.OrderDate,
			DueDate:       ro.Order.DueDate,
			Status:        ro.Order.Status,
			PaymentStatus: ro.Order.PaymentStatus,
			TotalAmount:   money(derive.DisplayTotal(ro.Order)),
		}
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		TotalClients:     sum.TotalClients,
		ActiveOrders:     sum.ActiveOrders,
		OrdersThisMonth:  sum.OrdersThisMonth,
		RevenueThisMonth: money(sum.RevenueThisMonth),
		Orders:           recent,
	})
}
