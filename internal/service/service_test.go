package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/casting-service/internal/events"
	apperrors "github.com/spec-kit/casting-service/pkg/util"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func recordAll(d events.Dispatcher) *eventRecorder {
	r := &eventRecorder{}
	d.Subscribe(func(_ context.Context, e events.Event) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
		return nil
	}, events.AllTypes()...)
	return r
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *eventRecorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	assert.Equal(t, status, domainErr.HTTPStatus)
}

func requireNotFound(t *testing.T, err error) {
	t.Helper()
	requireStatus(t, err, http.StatusNotFound)
}

func requireUnprocessable(t *testing.T, err error) {
	t.Helper()
	requireStatus(t, err, http.StatusUnprocessableEntity)
}

func ptr[T any](v T) *T { return &v }
