package domain

// Address is a delivery address owned by the profile service. At most one
// address per user carries IsDefault; the server enforces that, the client
// consumes it as given.
type Address struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	Landmark  string `json:"landmark,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
	Type      string `json:"type"`
	IsDefault bool   `json:"isDefault"`
}

func (a Address) Empty() bool {
	return a.Line1 == "" && a.City == "" && a.Pincode == ""
}
