package service

import (
	"context"

	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/pkg/assistant/resolution"
	"sales-assistant-be/pkg/events"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	Handle(ctx context.Context, event events.Event) error
}

// Subscription is how the consumer attaches to a bus; both the NATS
// subscriber and the in-process channel bus fit behind it.
type Subscription func(ctx context.Context, eventType string, handler events.Handler) error

// consumerService writes every unmatched query to a dedicated log. The
// entries are the raw material for tuning the scoring weights.
type consumerService struct {
	subscribe Subscription
	unmatched logger.ILogger
	logger    logger.ILogger
}

func NewConsumerService(subscribe Subscription, unmatched logger.ILogger, log logger.ILogger) IConsumerService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &consumerService{
		subscribe: subscribe,
		unmatched: unmatched,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	return cs.subscribe(ctx, events.TypeConversationOutcome, cs.Handle)
}

func (cs *consumerService) Handle(ctx context.Context, event events.Event) error {
	if event.EventType() != events.TypeConversationOutcome {
		return nil
	}
	out := events.OutcomeFromPayload(event)
	if out.Outcome != string(resolution.OutcomeNoMatch) {
		return nil
	}

	cs.unmatched.Info("UNMATCHED", "Query resolved to no match", map[string]interface{}{
		"outcome_id": out.OutcomeID,
		"user_id":    out.UserID,
		"language":   out.Language,
		"intent":     out.Intent,
		"query":      out.Query,
		"topic":      out.Topic,
		"at":         out.OccurredAt,
	})
	cs.logger.Debug("CONSUMER", "Unmatched query recorded", map[string]interface{}{
		"outcome_id": out.OutcomeID,
	})
	return nil
}
