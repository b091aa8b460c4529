package domain

import (
	"errors"
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReady          OrderStatus = "ready"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// Terminal reports whether no further status transition can occur.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderLine is an immutable snapshot of a product taken at order-creation
// time. It must not follow later catalog changes.
type OrderLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int64  `json:"quantity"`
	LineTotal int64  `json:"lineTotal"`
}

// Order mirrors what the remote order service reports. Status transitions
// are never decided locally. LegacyStatus carries the old wire field some
// responses still use; Normalize folds it into OrderStatus.
type Order struct {
	OrderID         string      `json:"orderId"`
	OrderNumber     string      `json:"orderNumber"`
	Items           []OrderLine `json:"items"`
	DeliveryAddress Address     `json:"deliveryAddress"`
	Subtotal        int64       `json:"subtotal"`
	DeliveryFee     int64       `json:"deliveryFee"`
	Tax             int64       `json:"tax"`
	TotalAmount     int64       `json:"totalAmount"`
	PaymentMethod   string      `json:"paymentMethod"`
	OrderStatus     OrderStatus `json:"orderStatus"`
	LegacyStatus    OrderStatus `json:"status,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// Normalize makes OrderStatus authoritative, falling back to the legacy
// status field and then to pending so callers never see an empty status.
func (o *Order) Normalize() {
	if o.OrderStatus == "" {
		o.OrderStatus = o.LegacyStatus
	}
	if o.OrderStatus == "" {
		o.OrderStatus = StatusPending
	}
	o.LegacyStatus = ""
}

var ErrInvalidDraft = errors.New("invalid order draft")

// OrderDraft is what the client submits to create an order. ClientRequestID
// is generated once per draft so the server can deduplicate; the client never
// retries silently.
type OrderDraft struct {
	Items           []CartLine `json:"items"`
	DeliveryAddress Address    `json:"deliveryAddress"`
	PaymentMethod   string     `json:"paymentMethod"`
	Notes           string     `json:"notes,omitempty"`
	ClientRequestID string     `json:"clientRequestId"`
}

// Validate rejects malformed drafts before any network call.
func (d OrderDraft) Validate() error {
	if len(d.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidDraft)
	}
	for _, it := range d.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return fmt.Errorf("%w: bad line for product %q", ErrInvalidDraft, it.ProductID)
		}
	}
	if d.DeliveryAddress.Empty() {
		return fmt.Errorf("%w: missing delivery address", ErrInvalidDraft)
	}
	if d.PaymentMethod == "" {
		return fmt.Errorf("%w: missing payment method", ErrInvalidDraft)
	}
	return nil
}
