package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/crm/internal/domain/shared"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// amqpChannel is the subset of *amqp.Channel used for publishing
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes domain events to a RabbitMQ topic exchange.
// The routing key is the event type, e.g. "order.created".
type AMQPPublisher struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	ch         amqpChannel
	exchange   string
	serializer *Serializer
	logger     *zap.Logger
}

// NewAMQPPublisher dials the broker and declares a durable topic exchange
func NewAMQPPublisher(url, exchange string, serializer *Serializer, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	p := newAMQPPublisher(ch, exchange, serializer, logger)
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch amqpChannel, exchange string, serializer *Serializer, logger *zap.Logger) *AMQPPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPPublisher{
		ch:         ch,
		exchange:   exchange,
		serializer: serializer,
		logger:     logger,
	}
}

// Publish sends each event as a persistent JSON message. It stops at the
// first failure.
func (p *AMQPPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, event := range events {
		body, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}
		msg := amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID().String(),
			Timestamp:    event.OccurredAt(),
			Type:         event.EventType(),
			AppId:        p.serializer.source,
			Body:         body,
		}
		if err := p.ch.PublishWithContext(ctx, p.exchange, event.EventType(), false, false, msg); err != nil {
			return fmt.Errorf("publish %s to %s: %w", event.EventType(), p.exchange, err)
		}
		p.logger.Debug("event published",
			zap.String("exchange", p.exchange),
			zap.String("routing_key", event.EventType()),
			zap.String("event_id", event.EventID().String()),
		)
	}
	return nil
}

// Close closes the channel and the connection
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// publishTimeout bounds a single broker round trip when the caller's
// context has no deadline
const publishTimeout = 5 * time.Second

// WithPublishTimeout wraps a publisher so every Publish call carries a
// deadline
func WithPublishTimeout(p shared.EventPublisher) shared.EventPublisher {
	return timeoutPublisher{next: p, timeout: publishTimeout}
}

type timeoutPublisher struct {
	next    shared.EventPublisher
	timeout time.Duration
}

func (t timeoutPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if _, ok := ctx.Deadline(); ok {
		return t.next.Publish(ctx, events...)
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Publish(ctx, events...)
}

var _ shared.EventPublisher = (*AMQPPublisher)(nil)
