package domain

import "time"

// ============================================================
// Products & Inventory
// ============================================================

// Product is a retail or consumable stock item.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Category  string    `json:"category,omitempty"`
	Stock     int       `json:"stock"`
	MinStock  int       `json:"min_stock"`
	CostPrice float64   `json:"cost_price"`
	SalePrice float64   `json:"sale_price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LowStock reports whether the product is at or below its minimum level.
func (p *Product) LowStock() bool {
	return p.Stock <= p.MinStock
}

// ProductInput holds the editable fields of a product. Stock itself is
// never edited directly; it only moves through stock movements.
type ProductInput struct {
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Category  string  `json:"category,omitempty"`
	MinStock  int     `json:"min_stock"`
	CostPrice float64 `json:"cost_price"`
	SalePrice float64 `json:"sale_price"`
	Active    *bool   `json:"active,omitempty"`
}

// StockMovement records one stock adjustment. The balance change itself
// is applied by the update_product_stock database function; the movement
// row is the audit trail.
type StockMovement struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Delta     int       `json:"delta"` // positive = in, negative = out
	Reason    string    `json:"reason"`
	UserID    string    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StockAdjustment is the request to move stock.
type StockAdjustment struct {
	ProductID string `json:"product_id"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason"`
}
