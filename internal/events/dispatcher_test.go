package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribersOfType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []Event
	d.Subscribe(func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	}, EventMovieCreated, EventMovieDeleted)

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventMovieCreated, EntityID: 7}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventActorCreated, EntityID: 8}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventMovieDeleted, EntityID: 9}))

	require.Len(t, got, 2)
	assert.EqualValues(t, 7, got[0].EntityID)
	assert.EqualValues(t, 9, got[1].EntityID)
}

func TestDispatcherRunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	calls := 0
	d.Subscribe(func(context.Context, Event) error {
		calls++
		return boom
	}, EventActorDeleted)
	d.Subscribe(func(context.Context, Event) error {
		calls++
		panic("nil payload")
	}, EventActorDeleted)
	d.Subscribe(func(context.Context, Event) error {
		calls++
		return nil
	}, EventActorDeleted)

	err := d.Publish(context.Background(), Event{Type: EventActorDeleted})
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "panic: nil payload")
	assert.Equal(t, 3, calls)
}

func TestAllTypes(t *testing.T) {
	assert.Len(t, AllTypes(), 6)
}
