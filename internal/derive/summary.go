package derive

import (
	"time"

	"github.com/clientiq-crm/bff/internal/crm"
	"github.com/clientiq-crm/bff/internal/enum"
	"github.com/shopspring/decimal"
)

// recentOrderLimit bounds the dashboard's recent-orders view.
const recentOrderLimit = 10

// NameResolver resolves a client id to a display name. Summarize calls it
// once per recent order; implementations degrade to "Unknown" themselves or
// return "" to let Summarize substitute the placeholder.
type NameResolver func(clientID int) string

// RecentOrder is an order enriched with its client's display name.
type RecentOrder struct {
	Order      crm.Order
	ClientName string
}

// DashboardSummary is the derived view model behind the dashboard screen.
type DashboardSummary struct {
	TotalClients     int
	ActiveOrders     int
	OrdersThisMonth  int
	RevenueThisMonth decimal.Decimal
	RecentOrders     []RecentOrder
}

// Summarize derives the dashboard statistics from client and order snapshots.
// "This month" means the calendar month and year of now; active means status
// New or InProgress, matched case-sensitively. Recent orders are the first
// ten in the snapshot's original sequence, not resorted.
func Summarize(clients []crm.Client, orders []crm.Order, now time.Time, resolve NameResolver) DashboardSummary {
	sum := DashboardSummary{
		TotalClients:     len(clients),
		RevenueThisMonth: decimal.Zero,
	}

	for _, o := range orders {
		if o.Status == enum.OrderStatusNew || o.Status == enum.OrderStatusInProgress {
			sum.ActiveOrders++
		}
		if sameMonth(o.OrderDate, now) {
			sum.OrdersThisMonth++
			sum.RevenueThisMonth = sum.RevenueThisMonth.Add(decimal.NewFromFloat(o.TotalAmount))
		}
	}

	limit := recentOrderLimit
	if len(orders) < limit {
		limit = len(orders)
	}
	sum.RecentOrders = make([]RecentOrder, limit)
	for i, o := range orders[:limit] {
		name := ""
		if resolve != nil {
			name = resolve(o.ClientID)
		}
		if name == "" {
			name = "Unknown"
		}
		sum.RecentOrders[i] = RecentOrder{Order: o, ClientName: name}
	}

	return sum
}

func sameMonth(t, now time.Time) bool {
	t, now = t.UTC(), now.UTC()
	return t.Year() == now.Year() && t.Month() == now.Month()
}
