package domain

import "time"

// ============================================================
// Orders (comandas)
// ============================================================

// Order statuses. An order is long-lived while open and is closed or
// canceled exactly once.
const (
	OrderStatusOpen     = "open"
	OrderStatusClosed   = "closed"
	OrderStatusCanceled = "canceled"
)

// Order is a comanda: the running tab of services and products for a
// client visit. Labels for the client and professional are resolved via
// join on fetch; they are display data, not authoritative fields.
type Order struct {
	ID               string      `json:"id"`
	ClientID         string      `json:"client_id"`
	ClientName       string      `json:"client_name,omitempty"`
	ProfessionalID   string      `json:"professional_id"`
	ProfessionalName string      `json:"professional_name,omitempty"`
	Status           string      `json:"status"`
	Discount         float64     `json:"discount"`
	PaymentMethod    string      `json:"payment_method,omitempty"`
	Items            []OrderItem `json:"items,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	ClosedAt         *time.Time  `json:"closed_at,omitempty"`
}

// Total computes the order total from its items minus the discount.
// Always derived from the fetched items, never persisted separately.
func (o *Order) Total() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.UnitPrice * float64(it.Quantity)
	}
	t := sum - o.Discount
	if t < 0 {
		t = 0
	}
	return t
}

// OrderItem is one line of an order: a service performed or a product sold.
type OrderItem struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Kind      string    `json:"kind"` // service | product
	RefID     string    `json:"ref_id"`
	RefName   string    `json:"ref_name,omitempty"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderInput holds the editable fields when opening or editing an order.
type OrderInput struct {
	ClientID       string  `json:"client_id"`
	ProfessionalID string  `json:"professional_id"`
	Discount       float64 `json:"discount,omitempty"`
	PaymentMethod  string  `json:"payment_method,omitempty"`
}

// OrderItemInput holds the editable fields of an order line.
type OrderItemInput struct {
	Kind      string  `json:"kind"`
	RefID     string  `json:"ref_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
