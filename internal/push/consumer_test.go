package push

import (
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-client/internal/domain"
)

func TestDecodeDelivery(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		routingKey string
		wantKind   string
		wantOrder  string
		wantErr    bool
	}{
		{
			name:      "envelope with pattern and payload",
			body:      `{"pattern":"order.status.updated","data":{"orderId":"o42","status":"ready"}}`,
			wantKind:  domain.EventOrderStatusUpdated,
			wantOrder: "o42",
		},
		{
			name:       "missing pattern falls back to the routing key",
			body:       `{"data":{"orderId":"o1"}}`,
			routingKey: domain.EventOrderCreated,
			wantKind:   domain.EventOrderCreated,
			wantOrder:  "o1",
		},
		{
			name:     "undecodable payload still yields the signal",
			body:     `{"pattern":"order.created","data":"not an object"}`,
			wantKind: domain.EventOrderCreated,
		},
		{
			name:    "not json at all",
			body:    `garbage`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := decodeDelivery(amqp.Delivery{Body: []byte(tt.body), RoutingKey: tt.routingKey})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, evt.Kind)
			assert.Equal(t, tt.wantOrder, evt.OrderID)
			assert.False(t, evt.ReceivedAt.IsZero())
		})
	}
}
