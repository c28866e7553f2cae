package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/casting-service/internal/config"
	"github.com/spec-kit/casting-service/internal/events"
)

const defaultAuditQueueSize = 256

// EventPublisher forwards serialized events to an external channel.
type EventPublisher interface {
	Enabled() bool
	Publish(ctx context.Context, channel string, payload []byte) error
}

// AuditService records every movie and actor change. Events are logged inline
// and forwarded to the publisher from a queue drained by Run, so a slow
// broker never holds up the request that caused the change.
type AuditService struct {
	dispatcher     events.Dispatcher
	publisher      EventPublisher
	logger         *zap.Logger
	channel        string
	publishTimeout time.Duration
	queue          chan events.Event
}

// NewAuditService creates the service. publisher may be nil.
func NewAuditService(dispatcher events.Dispatcher, publisher EventPublisher, logger *zap.Logger, cfg config.AuditConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultAuditQueueSize
	}
	return &AuditService{
		dispatcher:     dispatcher,
		publisher:      publisher,
		logger:         logger,
		channel:        cfg.EventsChannel,
		publishTimeout: cfg.PublishTimeout(),
		queue:          make(chan events.Event, size),
	}
}

// RegisterHandlers subscribes to every change event.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(a.handleEvent, events.AllTypes()...)
}

// Run forwards queued events until ctx is cancelled, then flushes what is
// still queued before returning.
func (a *AuditService) Run(ctx context.Context) {
	for {
		select {
		case event := <-a.queue:
			a.forward(event)
		case <-ctx.Done():
			a.flush()
			return
		}
	}
}

func (a *AuditService) flush() {
	for {
		select {
		case event := <-a.queue:
			a.forward(event)
		default:
			return
		}
	}
}

func (a *AuditService) handleEvent(_ context.Context, event events.Event) error {
	a.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Int64("entity_id", event.EntityID),
		zap.String("subject", event.Subject),
		zap.Any("payload", event.Payload))

	if !a.forwarding() {
		return nil
	}
	select {
	case a.queue <- event:
	default:
		a.logger.Warn("audit queue full, event not forwarded",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (a *AuditService) forwarding() bool {
	return a.publisher != nil && a.publisher.Enabled() && a.channel != ""
}

// forward publishes one event. The request context is gone by now, so each
// publish gets its own deadline.
func (a *AuditService) forward(event events.Event) {
	if err := a.publish(event); err != nil {
		a.logger.Warn("audit publish failed",
			zap.String("event_id", event.ID),
			zap.String("channel", a.channel),
			zap.Error(err))
	}
}

func (a *AuditService) publish(event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.publishTimeout)
	defer cancel()
	if err := a.publisher.Publish(ctx, a.channel, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", a.channel, err)
	}
	return nil
}
