// Package crm is the adapter for the upstream CRM REST API. It owns the
// canonical record shapes: every normalization quirk of the upstream wire
// format (duck-typed line-item keys, clientId arriving as a numeric string)
// is resolved here at decode time so nothing downstream has to guess.
package crm

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Client is a CRM client record as served by /clients.
type Client struct {
	ID          int        `json:"id"`
	CompanyName string     `json:"companyName"`
	ContactName string     `json:"contactName"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// Order is a CRM order record as served by /orders. OrderItems is the
// canonical items field regardless of which key the upstream used; list
// endpoints may omit items entirely, in which case TotalAmount is the only
// source for the order total.
type Order struct {
	ID              int         `json:"id"`
	ClientID        int         `json:"clientId"`
	OrderNumber     string      `json:"orderNumber"`
	OrderDate       time.Time   `json:"orderDate"`
	DueDate         time.Time   `json:"dueDate"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"paymentStatus"`
	TotalAmount     float64     `json:"totalAmount"`
	AmountPaid      float64     `json:"amountPaid,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	CreatedByUserID int         `json:"createdByUserId,omitempty"`
	OrderItems      []OrderItem `json:"orderItems,omitempty"`
}

// UnmarshalJSON normalizes the two upstream quirks:
//   - line items arrive under "items", "orderItems" or "OrderItems"
//     depending on the endpoint;
//   - clientId is sometimes serialized as a numeric string.
func (o *Order) UnmarshalJSON(data []byte) error {
	type alias Order
	aux := struct {
		*alias
		ClientID   flexInt     `json:"clientId"`
		Items      []OrderItem `json:"items"`
		OrderItems []OrderItem `json:"orderItems"`
		ItemsUpper []OrderItem `json:"OrderItems"`
	}{alias: (*alias)(o)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	o.ClientID = int(aux.ClientID)
	switch {
	case aux.Items != nil:
		o.OrderItems = aux.Items
	case aux.OrderItems != nil:
		o.OrderItems = aux.OrderItems
	case aux.ItemsUpper != nil:
		o.OrderItems = aux.ItemsUpper
	}
	return nil
}

// OrderItem is a single order line. UnitPrice is a snapshot taken when the
// order was placed, not a live product price.
type OrderItem struct {
	ID          int     `json:"id,omitempty"`
	OrderID     int     `json:"orderId,omitempty"`
	ProductID   int     `json:"productId"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Description string  `json:"description,omitempty"`
	Subtotal    float64 `json:"subtotal,omitempty"`
	ProductName string  `json:"productName,omitempty"`
}

// UnmarshalJSON folds the upstream's alternate display-name key ("itemName")
// into ProductName.
func (it *OrderItem) UnmarshalJSON(data []byte) error {
	type alias OrderItem
	aux := struct {
		*alias
		ItemName string `json:"itemName"`
	}{alias: (*alias)(it)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if it.ProductName == "" {
		it.ProductName = aux.ItemName
	}
	return nil
}

// Product is a catalog product. Inactive products are kept for historical
// orders but excluded from new-order selection.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	IsActive    bool    `json:"isActive"`
}

// User is an application user. Password is only ever populated on the way
// upstream (registration); the upstream never returns it.
type User struct {
	ID        int    `json:"id,omitempty"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password,omitempty"`
}

// flexInt decodes a JSON number or a numeric string into an int.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(string(data)); err == nil {
		*f = flexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = flexInt(v)
	return nil
}
