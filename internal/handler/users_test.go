package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/clientiq-crm/bff/internal/crm"
	"github.com/clientiq-crm/bff/internal/handler"
)

// --- Mock store ---

type mockUserStore struct {
	users map[int]crm.User
}

func (m *mockUserStore) ListUsers(_ context.Context) ([]crm.User, error) {
	out := make([]crm.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserStore) GetUser(_ context.Context, id int) (crm.User, error) {
	u, ok := m.users[id]
	if !ok {
		return crm.User{}, crm.ErrNotFound
	}
	return u, nil
}

func (m *mockUserStore) UpdateUser(_ context.Context, id int, u crm.User) error {
	if _, ok := m.users[id]; !ok {
		return crm.ErrNotFound
	}
	u.ID = id
	m.users[id] = u
	return nil
}

func (m *mockUserStore) DeleteUser(_ context.Context, id int) error {
	if _, ok := m.users[id]; !ok {
		return crm.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// --- Helpers ---

func setupUserRouter(store *mockUserStore) *chi.Mux {
	h := handler.NewUserHandler(store)
	r := chi.NewRouter()
	r.Route("/users", h.RegisterRoutes)
	return r
}

// --- Tests ---

func TestUserGet(t *testing.T) {
	store := &mockUserStore{users: map[int]crm.User{
		3: {ID: 3, Email: "jane@acme.example", FirstName: "Jane", LastName: "Doe"},
	}}
	router := setupUserRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/users/3", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["email"] != "jane@acme.example" {
		t.Errorf("email: got %v", resp["email"])
	}
	if _, ok := resp["password"]; ok {
		t.Error("password must never appear in a response")
	}
}

func TestUserGetNotFound(t *testing.T) {
	router := setupUserRouter(&mockUserStore{users: map[int]crm.User{}})

	req := httptest.NewRequest(http.MethodGet, "/users/999", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestUserUpdate(t *testing.T) {
	store := &mockUserStore{users: map[int]crm.User{
		3: {ID: 3, Email: "jane@acme.example", FirstName: "Jane", LastName: "Doe"},
	}}
	router := setupUserRouter(store)

	body := `{"email":"jane@acme.example","firstName":"Janet","lastName":"Doe"}`
	req := httptest.NewRequest(http.MethodPut, "/users/3", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if store.users[3].FirstName != "Janet" {
		t.Errorf("update not applied: %+v", store.users[3])
	}
}

func TestUserDelete(t *testing.T) {
	store := &mockUserStore{users: map[int]crm.User{3: {ID: 3}}}
	router := setupUserRouter(store)

	req := httptest.NewRequest(http.MethodDelete, "/users/3", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if len(store.users) != 0 {
		t.Error("user not deleted")
	}
}
