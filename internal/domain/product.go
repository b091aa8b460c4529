package domain

// Product is a catalog item as the backend reports it. Price and stock
// can change between fetches; anything that must not drift takes a copy.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int64  `json:"stock"`
	Image string `json:"image,omitempty"`
}
