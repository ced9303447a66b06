// Package derive holds the pure derivation core: every function takes an
// in-memory snapshot of boundary records and returns a freshly allocated
// result. Nothing here performs I/O, holds state, or mutates its input, so
// every function is safe for concurrent use.
package derive

import "github.com/clientiq-crm/bff/internal/crm"

// CountOrdersPerClient returns the number of orders belonging to each client.
// Every client in the snapshot gets an entry, zero included. Orders pointing
// at clients outside the snapshot are ignored.
func CountOrdersPerClient(clients []crm.Client, orders []crm.Order) map[int]int {
	counts := make(map[int]int, len(clients))
	for _, c := range clients {
		counts[c.ID] = 0
	}
	for _, o := range orders {
		if _, ok := counts[o.ClientID]; ok {
			counts[o.ClientID]++
		}
	}
	return counts
}

// OrdersForClient returns the orders whose ClientID matches exactly.
// The upstream ?clientId= filter does not reliably narrow results, so every
// response fetched through it is re-filtered here before use.
func OrdersForClient(orders []crm.Order, clientID int) []crm.Order {
	out := make([]crm.Order, 0, len(orders))
	for _, o := range orders {
		if o.ClientID == clientID {
			out = append(out, o)
		}
	}
	return out
}
