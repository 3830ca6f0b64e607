package models

import "time"

// CartLine is one line of a user's cart. Price, stock and variants are
// denormalized from the CatalogItem at add-time so that quantity checks
// don't need a catalog round-trip on every click.
type CartLine struct {
	ProductID     string    `json:"productId"`
	Name          string    `json:"name"`
	Quantity      int       `json:"quantity"`
	SelectedSize  string    `json:"selectedSize"`
	SelectedColor string    `json:"selectedColor"`
	Price         int64     `json:"price"`
	MarketPrice   int64     `json:"marketPrice"`
	Stock         int       `json:"stock"`
	Variants      []Variant `json:"variants,omitempty"`
}

// CartState is the snapshot handed to the UI layer
type CartState struct {
	Lines         []CartLine `json:"lines"`
	TotalPrice    int64      `json:"totalPrice"`
	TotalQuantity int        `json:"totalQuantity"`
}

// CartRow is the persisted shape of a cart line.
// Unique on (user_id, product_id, selected_size, selected_color).
type CartRow struct {
	UserID        string `json:"userId"`
	ProductID     string `json:"productId"`
	Quantity      int    `json:"quantity"`
	SelectedSize  string `json:"selectedSize"`
	SelectedColor string `json:"selectedColor"`
}

// LimitEvent signals that a requested increment would exceed the stock
// ceiling. Purely observational - the rejecting mutation already happened.
type LimitEvent struct {
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Ceiling   int       `json:"ceiling"`
	At        time.Time `json:"at"`
}

// AddCartItemRequest is the body of POST /cart/items
type AddCartItemRequest struct {
	ProductID     string `json:"productId"`
	SelectedSize  string `json:"selectedSize"`
	SelectedColor string `json:"selectedColor"`
}

// UpdateCartItemRequest is the body of PATCH /cart/items
type UpdateCartItemRequest struct {
	ProductID     string `json:"productId"`
	SelectedSize  string `json:"selectedSize"`
	SelectedColor string `json:"selectedColor"`
	Delta         int    `json:"delta"`
}

// RemoveCartItemRequest is the body of DELETE /cart/items
type RemoveCartItemRequest struct {
	ProductID     string `json:"productId"`
	SelectedSize  string `json:"selectedSize"`
	SelectedColor string `json:"selectedColor"`
}
