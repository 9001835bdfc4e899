package domain

// Provenance tags which id space a product belongs to. Remote ids are
// assigned by the catalog API; local ids are minted client-side, so the two
// spaces are not guaranteed disjoint and lookups must check local first.
const (
	ProvenanceLocal  = "local"
	ProvenanceRemote = "remote"
)

type Product struct {
	ID                 string   `json:"id"`
	Provenance         string   `json:"provenance"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	Category           string   `json:"category"`
	Brand              string   `json:"brand,omitempty"`
	Condition          string   `json:"condition"` // FIRST_HAND | SECOND_HAND
	DiscountPercentage float64  `json:"discountPercentage"`
	Stock              int      `json:"stock"`
	Active             bool     `json:"active"`
	Images             []string `json:"images"`
	Thumbnail          string   `json:"thumbnail"`
	Rating             float64  `json:"rating,omitempty"`
	Reviews            int      `json:"reviews"`
	UserID             string   `json:"userId,omitempty"`
	CreatedAt          string   `json:"createdAt,omitempty"`
	UpdatedAt          string   `json:"updatedAt,omitempty"`
}

type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// CartItem is one cart line: a product snapshot plus a positive quantity.
// At most one line exists per product id.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Purchase is an immutable snapshot of a completed checkout.
type Purchase struct {
	ID     string     `json:"id"`
	Items  []CartItem `json:"items"`
	Total  float64    `json:"total"`
	Date   string     `json:"date"`
	Status string     `json:"status"`
}

// Cursor tracks the remote pagination window.
type Cursor struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty,omitempty"`
}
