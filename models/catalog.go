package models

// Variant represents a specific color/size combination of a product
// with its own stock count and imagery
type Variant struct {
	Color    string   `json:"color"`
	Size     string   `json:"size"`
	Quantity int      `json:"quantity"`
	Images   []string `json:"images,omitempty"`
}

// CatalogItem represents a single product in the catalog with its variants
// Owned by the catalog; read-only for the cart engine
type CatalogItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`       // in cents
	MarketPrice int64     `json:"marketPrice"` // list price, in cents
	Stock       int       `json:"stock"`       // base stock, used when no variant matches
	Variants    []Variant `json:"variants,omitempty"`
	IsActive    bool      `json:"isActive"`
}
