// Package events publica eventos de pedidos en RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Lelo88/tienda-golang/internal/checkout"
)

const (
	Exchange                = "tienda.events"
	OrderConfirmedKey       = "pedido.confirmado.v1"
	EventTypeOrderConfirmed = "PedidoConfirmado"
)

// Channel es la parte de *amqp.Channel que usa el publisher.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Item es una línea del evento.
type Item struct {
	ID       string `json:"id"`
	Quantity int    `json:"cantidad"`
}

// OrderConfirmed es el cuerpo del evento pedido.confirmado.v1.
type OrderConfirmed struct {
	EventType string    `json:"event_type"`
	OrderID   string    `json:"order_id"`
	Email     string    `json:"email"`
	Items     []Item    `json:"items"`
	Total     string    `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher implementa checkout.Publisher.
type Publisher struct {
	ch Channel
}

// Connect abre conexión y canal contra url y declara el exchange.
func Connect(url string) (*Publisher, *amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	publisher, err := NewPublisher(ch)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return publisher, conn, nil
}

// NewPublisher declara el exchange topic y devuelve el publisher.
func NewPublisher(ch Channel) (*Publisher, error) {
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return &Publisher{ch: ch}, nil
}

// Close cierra el canal.
func (p *Publisher) Close() error {
	return p.ch.Close()
}

// PublishOrderConfirmed publica el pedido confirmado como mensaje persistente.
func (p *Publisher) PublishOrderConfirmed(ctx context.Context, order checkout.Order) error {
	event := newOrderConfirmed(order)
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal OrderConfirmed: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(pubCtx, Exchange, OrderConfirmedKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    order.ID,
		Timestamp:    event.Timestamp,
		Type:         EventTypeOrderConfirmed,
		Body:         body,
	})
}

func newOrderConfirmed(order checkout.Order) OrderConfirmed {
	timestamp := order.CreatedAt
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	event := OrderConfirmed{
		EventType: EventTypeOrderConfirmed,
		OrderID:   order.ID,
		Email:     order.Email,
		Items:     make([]Item, 0, len(order.Lines)),
		Total:     order.Total.StringFixed(2),
		Timestamp: timestamp,
	}
	for _, line := range order.Lines {
		event.Items = append(event.Items, Item{ID: line.ID, Quantity: line.Quantity})
	}
	return event
}

var ErrorConnectionClosed = errors.New("amqp connection closed")

// ConnectionPinger expone el estado de la conexión AMQP para /ready.
type ConnectionPinger struct {
	conn interface{ IsClosed() bool }
}

// NewConnectionPinger envuelve una *amqp.Connection u otro valor con IsClosed.
func NewConnectionPinger(conn interface{ IsClosed() bool }) *ConnectionPinger {
	return &ConnectionPinger{conn: conn}
}

func (pinger *ConnectionPinger) Ping(ctx context.Context) error {
	if pinger.conn == nil || pinger.conn.IsClosed() {
		return ErrorConnectionClosed
	}
	return ctx.Err()
}
