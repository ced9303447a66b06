package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeUpstream spins up an httptest server and returns an API rooted at it.
func fakeUpstream(t *testing.T, handler http.HandlerFunc) *API {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, srv.Client())
}

func TestListClients_PassesSearchParam(t *testing.T) {
	api := fakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clients" {
			t.Errorf("path: got %q, want /clients", r.URL.Path)
		}
		if got := r.URL.Query().Get("search"); got != "acme" {
			t.Errorf("search: got %q, want %q", got, "acme")
		}
		json.NewEncoder(w).Encode([]Client{{ID: 1, CompanyName: "Acme Corporation"}})
	})

	clients, err := api.ListClients(context.Background(), "acme")
	if err != nil {
		t.Fatalf("list clients: %v", err)
	}
	if len(clients) != 1 || clients[0].CompanyName != "Acme Corporation" {
		t.Errorf("unexpected result: %v", clients)
	}
}

func TestListClients_NoSearchParamWhenEmpty(t *testing.T) {
	api := fakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("query: got %q, want empty", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode([]Client{})
	})

	if _, err := api.ListClients(context.Background(), ""); err != nil {
		t.Fatalf("list clients: %v", err)
	}
}

func TestGetClient_NotFound(t *testing.T) {
	api := fakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := api.GetClient(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error: got %v, want ErrNotFound", err)
	}
}

func TestCreateClient_SendsJSONBody(t *testing.T) {
	api := fakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: got %q", ct)
		}
		var c Client
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		c.ID = 5
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(c)
	})

	created, err := api.CreateClient(context.Background(), Client{CompanyName: "Globex Inc"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if created.ID != 5 || created.CompanyName != "Globex Inc" {
		t.Errorf("unexpected result: %+v", created)
	}
}

func TestUpdateClient_AcceptsNoContent(t *testing.T) {
	api := fakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/clients/3" {
			t.Errorf("got %s %s, want PUT /clients/3", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := api.UpdateClient(context.Background(), 3, Client{CompanyName: "Initech"}); err != nil {
		t.Fatalf("update client: %v", err)
	}
}

func TestOrdersByClient_QueryParam(t *testing.T) {
	api := fakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("clientId"); got != "7" {
			t.Errorf("clientId: got %q, want 7", got)
		}
		json.NewEncoder(w).Encode([]Order{{ID: 1, ClientID: 7}})
	})

	orders, err := api.OrdersByClient(context.Background(), 7)
	if err != nil {
		t.Fatalf("orders by client: %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("orders: got %d, want 1", len(orders))
	}
}

func TestListOrderItems_NestedPath(t *testing.T) {
	api := fakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/12/items" {
			t.Errorf("path: got %q, want /orders/12/items", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]OrderItem{{ProductID: 1, Quantity: 2, UnitPrice: 3.5}})
	})

	items, err := api.ListOrderItems(context.Background(), 12)
	if err != nil {
		t.Fatalf("list order items: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Errorf("unexpected result: %v", items)
	}
}

func TestActiveProducts_QueryParam(t *testing.T) {
	api := fakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("isActive"); got != "true" {
			t.Errorf("isActive: got %q, want true", got)
		}
		json.NewEncoder(w).Encode([]Product{{ID: 1, Name: "Consulting Hour", IsActive: true}})
	})

	products, err := api.ActiveProducts(context.Background())
	if err != nil {
		t.Fatalf("active products: %v", err)
	}
	if len(products) != 1 {
		t.Errorf("products: got %d, want 1", len(products))
	}
}

func TestDo_StatusErrorCarriesBody(t *testing.T) {
	api := fakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"email already registered"}`))
	})

	_, err := api.CreateUser(context.Background(), User{Email: "dup@example.com"})

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error: got %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusConflict {
		t.Errorf("status: got %d, want %d", se.StatusCode, http.StatusConflict)
	}
	if se.Body != `{"error":"email already registered"}` {
		t.Errorf("body: got %q", se.Body)
	}
}

func TestLogin(t *testing.T) {
	api := fakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/login" {
			t.Errorf("path: got %q, want /users/login", r.URL.Path)
		}
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if creds["email"] != "jane@acme.example" || creds["password"] != "pw" {
			t.Errorf("credentials not forwarded: %v", creds)
		}
		json.NewEncoder(w).Encode(User{ID: 9, Email: creds["email"], FirstName: "Jane"})
	})

	user, err := api.Login(context.Background(), "jane@acme.example", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != 9 || user.FirstName != "Jane" {
		t.Errorf("unexpected result: %+v", user)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	api := fakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid credentials"))
	})

	_, err := api.Login(context.Background(), "jane@acme.example", "wrong")

	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized {
		t.Errorf("error: got %v, want *StatusError 401", err)
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	api := fakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clients" {
			t.Errorf("path: got %q, want /clients", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Client{})
	})
	// Re-root with a trailing slash at the same server.
	api = New(api.baseURL+"/", nil)

	if _, err := api.ListClients(context.Background(), ""); err != nil {
		t.Fatalf("list clients: %v", err)
	}
}
