package domain

import "time"

// Routing keys the order service publishes on its topic exchange.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status.updated"
)

// PushEvent is a decoded push notification. The payload is a signal to
// refetch, never a state to apply directly; OrderID and Status are kept
// for logging only.
type PushEvent struct {
	Kind       string    `json:"kind"`
	OrderID    string    `json:"orderId,omitempty"`
	Status     string    `json:"status,omitempty"`
	ReceivedAt time.Time `json:"-"`
}
