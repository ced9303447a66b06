package derive

import (
	"github.com/clientiq-crm/bff/internal/crm"
	"github.com/shopspring/decimal"
)

// OrderTotal sums quantity × unitPrice across the line items. A missing
// quantity or unit price contributes zero. This is the canonical total used
// both when building order payloads and when rendering list rows that carry
// their items.
func OrderTotal(items []crm.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
	}
	return total
}

// DisplayTotal is the total shown for an order: computed from line items when
// the endpoint returned them, otherwise the persisted totalAmount. The two
// can disagree when list endpoints omit items; trusting the persisted value
// in that case is the documented behavior, not a bug.
func DisplayTotal(o crm.Order) decimal.Decimal {
	if len(o.OrderItems) > 0 {
		return OrderTotal(o.OrderItems)
	}
	return decimal.NewFromFloat(o.TotalAmount)
}
