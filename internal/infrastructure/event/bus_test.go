package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pharmanet/backend/internal/domain/shared"
)

type recordingHandler struct {
	types   []string
	events  []shared.DomainEvent
	failErr error
	panics  bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.events = append(h.events, event)
	return h.failErr
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func newTestEvent(eventType string) shared.DomainEvent {
	base := shared.NewBaseDomainEvent(eventType, "test", uuid.New())
	return &base
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to subscribed handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &recordingHandler{types: []string{"transfer.request_created"}}
		bus.Subscribe(h)

		err := bus.Publish(ctx, newTestEvent("transfer.request_created"))
		require.NoError(t, err)
		assert.Len(t, h.events, 1)
	})

	t.Run("does not deliver unrelated event types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &recordingHandler{types: []string{"transfer.request_created"}}
		bus.Subscribe(h)

		err := bus.Publish(ctx, newTestEvent("transfer.request_rejected"))
		require.NoError(t, err)
		assert.Empty(t, h.events)
	})

	t.Run("wildcard handlers receive everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &recordingHandler{}
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("a"), newTestEvent("b")))
		assert.Len(t, h.events, 2)
	})

	t.Run("a failing handler does not block the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{types: []string{"a"}, failErr: errors.New("boom")}
		healthy := &recordingHandler{types: []string{"a"}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newTestEvent("a")))
		assert.Len(t, healthy.events, 1)
	})

	t.Run("a panicking handler does not block the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		bus.Subscribe(&recordingHandler{types: []string{"a"}, panics: true})
		healthy := &recordingHandler{types: []string{"a"}}
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newTestEvent("a")))
		assert.Len(t, healthy.events, 1)
	})

	t.Run("unsubscribed handlers stop receiving", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &recordingHandler{types: []string{"a"}}
		bus.Subscribe(h)
		bus.Unsubscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("a")))
		assert.Empty(t, h.events)
	})
}

type memoryStore struct {
	seen map[string]bool
	err  error
}

func (s *memoryStore) MarkProcessed(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *memoryStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	return s.seen[eventID], nil
}

func (s *memoryStore) Close() error { return nil }

func TestIdempotentHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("processes a fresh event once", func(t *testing.T) {
		inner := &recordingHandler{types: []string{"a"}}
		h := NewIdempotentHandler(inner, &memoryStore{seen: map[string]bool{}}, shared.DefaultIdempotencyConfig(), zap.NewNop())

		evt := newTestEvent("a")
		require.NoError(t, h.Handle(ctx, evt))
		require.NoError(t, h.Handle(ctx, evt))

		assert.Len(t, inner.events, 1)
	})

	t.Run("processes anyway when the store errors", func(t *testing.T) {
		inner := &recordingHandler{types: []string{"a"}}
		h := NewIdempotentHandler(inner, &memoryStore{err: errors.New("store down")}, shared.DefaultIdempotencyConfig(), zap.NewNop())

		require.NoError(t, h.Handle(ctx, newTestEvent("a")))
		assert.Len(t, inner.events, 1)
	})

	t.Run("disabled config bypasses the store", func(t *testing.T) {
		inner := &recordingHandler{types: []string{"a"}}
		cfg := shared.IdempotencyConfig{Enabled: false}
		h := NewIdempotentHandler(inner, &memoryStore{seen: map[string]bool{}}, cfg, zap.NewNop())

		evt := newTestEvent("a")
		require.NoError(t, h.Handle(ctx, evt))
		require.NoError(t, h.Handle(ctx, evt))
		assert.Len(t, inner.events, 2)
	})
}
