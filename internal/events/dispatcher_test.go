package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []string
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.Subject)
		return nil
	})
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.Subject)
		return nil
	})
	d.Subscribe(EventLoginFailed, func(context.Context, Event) error {
		t.Fatal("unrelated handler invoked")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), NewEvent(EventUserRegistered, "a@x.com", nil)))
	assert.Equal(t, []string{"first:a@x.com", "second:a@x.com"}, got)
}

func TestDispatcherRunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	called := 0
	d.Subscribe(EventLoginSucceeded, func(context.Context, Event) error {
		called++
		return boom
	})
	d.Subscribe(EventLoginSucceeded, func(context.Context, Event) error {
		called++
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventLoginSucceeded, "a@x.com", nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, called)
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(EventLoginFailed, "a@x.com", LoginFailedPayload{Reason: "unknown_identity"})
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, EventLoginFailed, e.Type)
	assert.False(t, e.Timestamp.IsZero())

	other := NewEvent(EventLoginFailed, "a@x.com", nil)
	assert.NotEqual(t, e.ID, other.ID)
}
