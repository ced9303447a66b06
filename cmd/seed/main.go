package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/clientiq-crm/bff/internal/crm"
	"github.com/clientiq-crm/bff/internal/enum"
)

// Seeds the upstream CRM API with a demo user, a handful of clients and
// products, and one order per client. Useful for pointing a fresh UI at a
// fresh backend.
func main() {
	// CLI flags
	email := flag.String("email", "", "Demo user email address")
	password := flag.String("password", "", "Demo user password")
	apiURL := flag.String("api", "", "CRM API base URL")
	flag.Parse()

	// Fall back to environment variables
	if *email == "" {
		*email = os.Getenv("SEED_EMAIL")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *apiURL == "" {
		*apiURL = os.Getenv("CRM_API_BASE_URL")
	}

	// Fall back to defaults
	if *email == "" {
		*email = "demo@clientiq.local"
	}
	if *password == "" {
		*password = "password123"
		log.Println("WARNING: Using default password 'password123'. Change immediately in production!")
	}
	if *apiURL == "" {
		*apiURL = "http://localhost:5037/api"
	}

	ctx := context.Background()
	api := crm.New(*apiURL, nil)

	user, err := api.CreateUser(ctx, crm.User{
		Email:     *email,
		FirstName: "Demo",
		LastName:  "User",
		Password:  *password,
	})
	if err != nil {
		log.Fatalf("Failed to seed user: %v", err)
	}
	log.Printf("Seeded user %s (id %d)", user.Email, user.ID)

	products := seedProducts(ctx, api)
	clients := seedClients(ctx, api)
	seedOrders(ctx, api, clients, products, user.ID)

	log.Println("Seed complete")
}

func seedProducts(ctx context.Context, api *crm.API) []crm.Product {
	records := []crm.Product{
		{Name: "Consulting Hour", Price: 150.00, Description: "One hour of consulting", IsActive: true},
		{Name: "Support Plan", Price: 499.00, Description: "Monthly support retainer", IsActive: true},
		{Name: "Onboarding Package", Price: 1200.00, Description: "Fixed-scope onboarding", IsActive: true},
		{Name: "Legacy Audit", Price: 800.00, Description: "Discontinued offering", IsActive: false},
	}

	out := make([]crm.Product, 0, len(records))
	for _, p := range records {
		created, err := api.CreateProduct(ctx, p)
		if err != nil {
			log.Fatalf("Failed to seed product %q: %v", p.Name, err)
		}
		out = append(out, created)
	}
	log.Printf("Seeded %d products", len(out))
	return out
}

func seedClients(ctx context.Context, api *crm.API) []crm.Client {
	records := []crm.Client{
		{CompanyName: "Acme Corporation", ContactName: "Jane Doe", Email: "jane@acme.example", Phone: "555-0100", Address: "1 Acme Way"},
		{CompanyName: "Globex Inc", ContactName: "Hank Scorpio", Email: "hank@globex.example", Phone: "555-0101", Address: "2 Globex Plaza"},
		{CompanyName: "Initech", ContactName: "Bill Lumbergh", Email: "bill@initech.example", Phone: "555-0102", Address: "3 Initech Blvd"},
	}

	out := make([]crm.Client, 0, len(records))
	for _, c := range records {
		created, err := api.CreateClient(ctx, c)
		if err != nil {
			log.Fatalf("Failed to seed client %q: %v", c.CompanyName, err)
		}
		out = append(out, created)
	}
	log.Printf("Seeded %d clients", len(out))
	return out
}

func seedOrders(ctx context.Context, api *crm.API, clients []crm.Client, products []crm.Product, userID int) {
	now := time.Now()

	for i, c := range clients {
		p := products[i%len(products)]
		qty := i + 1
		order := crm.Order{
			ClientID:        c.ID,
			OrderNumber:     fmt.Sprintf("ORD-%s-%06d", now.Format("20060102"), now.UnixMilli()%1000000+int64(i)),
			OrderDate:       now.UTC().Truncate(24 * time.Hour),
			DueDate:         now.UTC().Truncate(24 * time.Hour).AddDate(0, 0, 14),
			Status:          enum.OrderStatusNew,
			PaymentStatus:   enum.PaymentStatusUnpaid,
			TotalAmount:     p.Price * float64(qty),
			CreatedByUserID: userID,
			OrderItems: []crm.OrderItem{
				{ProductID: p.ID, Quantity: qty, UnitPrice: p.Price, Subtotal: p.Price * float64(qty)},
			},
		}

		created, err := api.CreateOrder(ctx, order)
		if err != nil {
			log.Fatalf("Failed to seed order for %q: %v", c.CompanyName, err)
		}
		log.Printf("Seeded order %s for %s", created.OrderNumber, c.CompanyName)
	}
}
