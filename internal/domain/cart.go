package domain

// CartLine is one product in the cart together with its chosen quantity.
// It references a live catalog product, so price and stock are refreshed
// whenever the same product is added again.
type CartLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Stock     int64  `json:"stock"`
	Quantity  int64  `json:"quantity"`
}

func (l CartLine) LineTotal() int64 {
	return l.UnitPrice * l.Quantity
}
