package push

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"shop-client/internal/domain"
	"shop-client/internal/metrics"
)

// pushMessage is the envelope the order service publishes: a routing
// pattern plus an opaque payload.
type pushMessage struct {
	Pattern string          `json:"pattern"`
	Data    json.RawMessage `json:"data"`
	ID      string          `json:"id,omitempty"`
}

type pushPayload struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// Consumer binds a per-user queue to the order exchange and feeds decoded
// events into the Channel. It is started only when a session token exists.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	ch      *Channel
	log     *logrus.Entry
}

func NewConsumer(amqpURL, exchange, userID string, ch *Channel) (*Consumer, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %v", err)
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %v", err)
	}

	// Auto-delete: the per-user queue exists only for the session's lifetime.
	queueName := "notify.user." + userID
	q, err := channel.QueueDeclare(queueName, false, true, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %v", err)
	}

	for _, key := range []string{domain.EventOrderCreated, domain.EventOrderStatusUpdated} {
		if err := channel.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue: %v", err)
		}
	}

	deliveries, err := channel.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to start consumer: %v", err)
	}

	c := &Consumer{
		conn:    conn,
		channel: channel,
		queue:   q.Name,
		ch:      ch,
		log:     logrus.WithFields(logrus.Fields{"component": "push", "queue": q.Name}),
	}
	go c.run(deliveries)
	return c, nil
}

func (c *Consumer) run(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		evt, err := decodeDelivery(d)
		if err != nil {
			c.log.WithError(err).Warn("dropping undecodable push message")
			continue
		}
		metrics.PushEvents.WithLabelValues(evt.Kind).Inc()
		c.log.WithFields(logrus.Fields{"kind": evt.Kind, "orderId": evt.OrderID}).Debug("push event")
		c.ch.Dispatch(evt)
	}
	c.log.Info("push delivery channel closed")
}

func decodeDelivery(d amqp.Delivery) (domain.PushEvent, error) {
	var msg pushMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		return domain.PushEvent{}, err
	}
	kind := msg.Pattern
	if kind == "" {
		kind = d.RoutingKey
	}

	var payload pushPayload
	if len(msg.Data) > 0 {
		// Payload is advisory only; decode failures still yield a valid signal.
		_ = json.Unmarshal(msg.Data, &payload)
	}
	return domain.PushEvent{
		Kind:       kind,
		OrderID:    payload.OrderID,
		Status:     payload.Status,
		ReceivedAt: time.Now(),
	}, nil
}

func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
