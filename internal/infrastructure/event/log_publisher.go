package event

import (
	"context"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogPublisher writes every event to the structured log. It is the
// default sink when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher(l *zap.Logger) *LogPublisher {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogPublisher{logger: l.Named("events")}
}

// Publish logs each event with its identifiers and payload
func (p *LogPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	fields := []zap.Field{}
	if id := logger.GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	for _, event := range events {
		p.logger.Info("domain event",
			append(fields,
				zap.String("event_id", event.EventID().String()),
				zap.String("event_type", event.EventType()),
				zap.String("aggregate_type", event.AggregateType()),
				zap.Uint("aggregate_id", event.AggregateID()),
				zap.Time("occurred_at", event.OccurredAt()),
				zap.Any("payload", event),
			)...,
		)
	}
	return nil
}

var _ shared.EventPublisher = (*LogPublisher)(nil)
