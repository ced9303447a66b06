package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when the upstream answers 404 for a record.
var ErrNotFound = errors.New("record not found")

// StatusError is a non-2xx upstream response. Body carries the upstream
// error text so handlers can forward a meaningful message.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// API is a typed client for the upstream CRM REST API.
// Handlers depend on narrow slices of it via per-feature interfaces.
type API struct {
	baseURL string
	http    *http.Client
}

// New creates an API client rooted at baseURL (e.g. http://localhost:5037/api).
// A nil httpClient falls back to a client with a 15s timeout.
func New(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// do issues a request and decodes the JSON response into out (when non-nil).
// 204 and empty bodies are accepted for any out; 404 maps to ErrNotFound.
func (a *API) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := a.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// ── Clients ──

// ListClients returns all clients; a non-empty search term is passed through
// as the upstream ?search= parameter.
func (a *API) ListClients(ctx context.Context, search string) ([]Client, error) {
	var q url.Values
	if search != "" {
		q = url.Values{"search": {search}}
	}
	var out []Client
	err := a.do(ctx, http.MethodGet, "/clients", q, nil, &out)
	return out, err
}

func (a *API) GetClient(ctx context.Context, id int) (Client, error) {
	var out Client
	err := a.do(ctx, http.MethodGet, "/clients/"+strconv.Itoa(id), nil, nil, &out)
	return out, err
}

func (a *API) CreateClient(ctx context.Context, c Client) (Client, error) {
	var out Client
	err := a.do(ctx, http.MethodPost, "/clients", nil, c, &out)
	return out, err
}

func (a *API) UpdateClient(ctx context.Context, id int, c Client) error {
	return a.do(ctx, http.MethodPut, "/clients/"+strconv.Itoa(id), nil, c, nil)
}

func (a *API) DeleteClient(ctx context.Context, id int) error {
	return a.do(ctx, http.MethodDelete, "/clients/"+strconv.Itoa(id), nil, nil, nil)
}

// ── Orders ──

func (a *API) ListOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	err := a.do(ctx, http.MethodGet, "/orders", nil, nil, &out)
	return out, err
}

// SearchOrders passes a search term through as the upstream ?search=
// parameter. The BFF list endpoints filter locally over the full snapshot
// instead; this exists for callers that want the upstream's own matching.
func (a *API) SearchOrders(ctx context.Context, query string) ([]Order, error) {
	q := url.Values{"search": {query}}
	var out []Order
	err := a.do(ctx, http.MethodGet, "/orders", q, nil, &out)
	return out, err
}

// OrdersByStatus filters orders by exact status upstream.
func (a *API) OrdersByStatus(ctx context.Context, status string) ([]Order, error) {
	q := url.Values{"status": {status}}
	var out []Order
	err := a.do(ctx, http.MethodGet, "/orders", q, nil, &out)
	return out, err
}

// OrdersByClient filters orders by client through the upstream query
// parameter. The filter upstream is known to be unreliable; callers must
// re-filter the result by ClientID (derive.OrdersForClient) before use.
func (a *API) OrdersByClient(ctx context.Context, clientID int) ([]Order, error) {
	q := url.Values{"clientId": {strconv.Itoa(clientID)}}
	var out []Order
	err := a.do(ctx, http.MethodGet, "/orders", q, nil, &out)
	return out, err
}

func (a *API) GetOrder(ctx context.Context, id int) (Order, error) {
	var out Order
	err := a.do(ctx, http.MethodGet, "/orders/"+strconv.Itoa(id), nil, nil, &out)
	return out, err
}

func (a *API) CreateOrder(ctx context.Context, o Order) (Order, error) {
	var out Order
	err := a.do(ctx, http.MethodPost, "/orders", nil, o, &out)
	return out, err
}

func (a *API) UpdateOrder(ctx context.Context, id int, o Order) error {
	return a.do(ctx, http.MethodPut, "/orders/"+strconv.Itoa(id), nil, o, nil)
}

func (a *API) DeleteOrder(ctx context.Context, id int) error {
	return a.do(ctx, http.MethodDelete, "/orders/"+strconv.Itoa(id), nil, nil, nil)
}

// ── Order items ──

func (a *API) ListOrderItems(ctx context.Context, orderID int) ([]OrderItem, error) {
	var out []OrderItem
	err := a.do(ctx, http.MethodGet, "/orders/"+strconv.Itoa(orderID)+"/items", nil, nil, &out)
	return out, err
}

func (a *API) CreateOrderItem(ctx context.Context, item OrderItem) (OrderItem, error) {
	var out OrderItem
	err := a.do(ctx, http.MethodPost, "/orderitems", nil, item, &out)
	return out, err
}

func (a *API) UpdateOrderItem(ctx context.Context, id int, item OrderItem) error {
	return a.do(ctx, http.MethodPut, "/orderitems/"+strconv.Itoa(id), nil, item, nil)
}

func (a *API) DeleteOrderItem(ctx context.Context, id int) error {
	return a.do(ctx, http.MethodDelete, "/orderitems/"+strconv.Itoa(id), nil, nil, nil)
}

// ── Products ──

func (a *API) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	err := a.do(ctx, http.MethodGet, "/products", nil, nil, &out)
	return out, err
}

// ActiveProducts returns only products selectable on new orders.
func (a *API) ActiveProducts(ctx context.Context) ([]Product, error) {
	q := url.Values{"isActive": {"true"}}
	var out []Product
	err := a.do(ctx, http.MethodGet, "/products", q, nil, &out)
	return out, err
}

func (a *API) GetProduct(ctx context.Context, id int) (Product, error) {
	var out Product
	err := a.do(ctx, http.MethodGet, "/products/"+strconv.Itoa(id), nil, nil, &out)
	return out, err
}

func (a *API) CreateProduct(ctx context.Context, p Product) (Product, error) {
	var out Product
	err := a.do(ctx, http.MethodPost, "/products", nil, p, &out)
	return out, err
}

func (a *API) UpdateProduct(ctx context.Context, id int, p Product) error {
	return a.do(ctx, http.MethodPut, "/products/"+strconv.Itoa(id), nil, p, nil)
}

func (a *API) DeleteProduct(ctx context.Context, id int) error {
	return a.do(ctx, http.MethodDelete, "/products/"+strconv.Itoa(id), nil, nil, nil)
}

// ── Users ──

func (a *API) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	err := a.do(ctx, http.MethodGet, "/users", nil, nil, &out)
	return out, err
}

func (a *API) GetUser(ctx context.Context, id int) (User, error) {
	var out User
	err := a.do(ctx, http.MethodGet, "/users/"+strconv.Itoa(id), nil, nil, &out)
	return out, err
}

func (a *API) CreateUser(ctx context.Context, u User) (User, error) {
	var out User
	err := a.do(ctx, http.MethodPost, "/users", nil, u, &out)
	return out, err
}

func (a *API) UpdateUser(ctx context.Context, id int, u User) error {
	return a.do(ctx, http.MethodPut, "/users/"+strconv.Itoa(id), nil, u, nil)
}

func (a *API) DeleteUser(ctx context.Context, id int) error {
	return a.do(ctx, http.MethodDelete, "/users/"+strconv.Itoa(id), nil, nil, nil)
}

// Login authenticates against the upstream and returns the user profile.
// No token is involved; the upstream scheme is credential-check plus profile.
func (a *API) Login(ctx context.Context, email, password string) (User, error) {
	in := map[string]string{"email": email, "password": password}
	var out User
	err := a.do(ctx, http.MethodPost, "/users/login", nil, in, &out)
	return out, err
}
