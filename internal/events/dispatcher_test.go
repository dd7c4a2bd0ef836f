package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatcher_DeliversToSubscribersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var seen []string
	d.Subscribe(EventTeamCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+e.Subject)
		return nil
	})
	d.Subscribe(EventTeamCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+e.Subject)
		return nil
	})
	d.Subscribe(EventTeamDeleted, func(context.Context, Event) error {
		t.Fatal("unexpected delivery")
		return nil
	})

	err := d.Publish(context.Background(), New(EventTeamCreated, Subject("team", "t1"), Actor{Kind: "admin"}, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"first:team:t1", "second:team:t1"}, seen)
}

func TestDispatcher_HandlerErrorIsLoggedAndSkipped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	called := false
	d.Subscribe(EventNoteCreated, func(context.Context, Event) error { return errors.New("boom") })
	d.Subscribe(EventNoteCreated, func(context.Context, Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), New(EventNoteCreated, "note:n1", Actor{}, nil)))
	assert.True(t, called)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "event handler failed", logs.All()[0].Message)
}

func TestNew_StampsIdentity(t *testing.T) {
	a := New(EventTaskCreated, "task:1", Actor{Kind: "admin", ID: "u"}, TaskPayload{NewStatus: "pending"})
	b := New(EventTaskCreated, "task:1", Actor{Kind: "admin", ID: "u"}, nil)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}

func TestDispatcher_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	delivered := 0
	d.Subscribe(EventPermissionGranted, func(context.Context, Event) error { panic("nil payload") })
	d.Subscribe(EventPermissionGranted, func(context.Context, Event) error {
		delivered++
		return nil
	})

	assert.NotPanics(t, func() {
		_ = d.Publish(context.Background(), New(EventPermissionGranted, "team:t1", Actor{}, nil))
	})
	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
}
