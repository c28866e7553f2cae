package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/casting-service/internal/auth"
	"github.com/spec-kit/casting-service/internal/events"
	"github.com/spec-kit/casting-service/internal/repository"
	apperrors "github.com/spec-kit/casting-service/pkg/util"
)

// publisher stamps and dispatches change events for the resource services.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

func newPublisher(dispatcher events.Dispatcher, logger *zap.Logger) publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return publisher{dispatcher: dispatcher, logger: logger, now: time.Now}
}

func (p publisher) publishEvent(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}
	if claims, ok := auth.ClaimsFromContext(ctx); ok {
		event.Subject = claims.Subject
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("entity_id", event.EntityID),
			zap.Error(err))
	}
}

// translateStoreError maps repository failures onto the service error type.
func translateStoreError(err error, resource string, id int64) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, id)
	case errors.Is(err, repository.ErrConstraint):
		return apperrors.NewUnprocessable(map[string]any{"resource": resource}, err)
	default:
		return fmt.Errorf("%s store: %w", resource, err)
	}
}

func stringPatch(value *string) (string, bool) {
	if value == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

func intPatch(value *int) (int, bool) {
	if value == nil || *value == 0 {
		return 0, false
	}
	return *value, true
}
