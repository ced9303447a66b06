package derive

import "github.com/clientiq-crm/bff/internal/crm"

// UnknownClient is the placeholder for an order whose client reference
// cannot be resolved in the provided snapshot.
const UnknownClient = "Unknown Client"

// ResolveClientName returns the company name of the client with the given id,
// or UnknownClient when no such client exists. Total: never fails.
func ResolveClientName(clientID int, clients []crm.Client) string {
	for _, c := range clients {
		if c.ID == clientID {
			return c.CompanyName
		}
	}
	return UnknownClient
}
