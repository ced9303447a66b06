package enum

// ── Order lifecycle (matches the upstream CHECK constraint) ──

const (
	OrderStatusNew              = "New"
	OrderStatusInProgress       = "InProgress"
	OrderStatusReadyForDelivery = "ReadyForDelivery"
	OrderStatusCompleted        = "Completed"
	OrderStatusCancelled        = "Cancelled"
)

const (
	PaymentStatusUnpaid  = "Unpaid"
	PaymentStatusPartial = "Partial"
	PaymentStatusPaid    = "Paid"
)

// StatusAll is the sentinel the orders list uses for "no status filter".
const StatusAll = "All Statuses"

// OrderStatuses lists every valid order status, in lifecycle order.
var OrderStatuses = []string{
	OrderStatusNew,
	OrderStatusInProgress,
	OrderStatusReadyForDelivery,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// PaymentStatuses lists every valid payment status.
var PaymentStatuses = []string{
	PaymentStatusUnpaid,
	PaymentStatusPartial,
	PaymentStatusPaid,
}

// ValidOrderStatus reports whether s is a known order status.
// Comparison is case-sensitive; the upstream enum is too.
func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s string) bool {
	for _, v := range PaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}
