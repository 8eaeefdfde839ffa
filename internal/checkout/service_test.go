package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Lelo88/tienda-golang/internal/logger"
)

type stubNotifier struct {
	err    error
	called bool
	order  Order
}

func (notifier *stubNotifier) OrderConfirmed(ctx context.Context, order Order) error {
	notifier.called = true
	notifier.order = order
	return notifier.err
}

type stubPublisher struct {
	err    error
	called bool
}

func (publisher *stubPublisher) PublishOrderConfirmed(ctx context.Context, order Order) error {
	publisher.called = true
	return publisher.err
}

func newTestService(store Store, notifier Notifier, publisher Publisher) *Service {
	service := NewService(store, notifier, publisher, logger.Discard())
	service.newID = func() string { return "order-1" }
	service.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return service
}

func TestService_PlaceOrder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store := newFakeStore(map[string]int{"a": 5, "b": 1})
		notifier := &stubNotifier{}
		publisher := &stubPublisher{}
		service := newTestService(store, notifier, publisher)

		order, err := service.PlaceOrder(context.Background(), Request{
			Products:  []Line{line("a", "Mouse", "10.00", 2), line("b", "Silla", "5.25", 1)},
			Total:     "25.25",
			UserEmail: "ana@example.com",
		}, "ana@example.com")

		require.NoError(t, err)
		require.Equal(t, "order-1", order.ID)
		require.Equal(t, "25.25", order.Total.StringFixed(2))
		require.Equal(t, map[string]int{"a": 3, "b": 0}, store.stock)
		require.True(t, notifier.called)
		require.Equal(t, "ana@example.com", notifier.order.Email)
		require.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), notifier.order.CreatedAt)
		require.True(t, publisher.called)
	})

	t.Run("buyer comes from session not payload", func(t *testing.T) {
		store := newFakeStore(map[string]int{"a": 5})
		notifier := &stubNotifier{}
		service := newTestService(store, notifier, nil)

		_, err := service.PlaceOrder(context.Background(), Request{
			Products:  []Line{line("a", "Mouse", "10.00", 1)},
			Total:     "999.00",
			UserEmail: "otro@example.com",
		}, "ana@example.com")

		require.NoError(t, err)
		require.Equal(t, "ana@example.com", notifier.order.Email)
		require.Equal(t, "10.00", notifier.order.Total.StringFixed(2))
	})

	t.Run("empty cart", func(t *testing.T) {
		store := newFakeStore(map[string]int{})
		notifier := &stubNotifier{}
		service := newTestService(store, notifier, nil)

		_, err := service.PlaceOrder(context.Background(), Request{}, "ana@example.com")

		require.ErrorIs(t, err, ErrorEmptyCart)
		require.False(t, notifier.called)
	})

	t.Run("insufficient stock does not email", func(t *testing.T) {
		store := newFakeStore(map[string]int{"a": 2})
		notifier := &stubNotifier{}
		publisher := &stubPublisher{}
		service := newTestService(store, notifier, publisher)

		_, err := service.PlaceOrder(context.Background(), Request{
			Products: []Line{line("a", "Mouse", "10.00", 5)},
		}, "ana@example.com")

		require.EqualError(t, err, "Lo sentimos, solo quedan 2 unidades de Mouse.")
		require.Equal(t, 2, store.stock["a"])
		require.False(t, notifier.called)
		require.False(t, publisher.called)
	})

	t.Run("email failure is an error after commit", func(t *testing.T) {
		store := newFakeStore(map[string]int{"a": 2})
		notifier := &stubNotifier{err: errors.New("sendgrid caído")}
		publisher := &stubPublisher{}
		service := newTestService(store, notifier, publisher)

		_, err := service.PlaceOrder(context.Background(), Request{
			Products: []Line{line("a", "Mouse", "10.00", 1)},
		}, "ana@example.com")

		require.Error(t, err)
		require.Contains(t, err.Error(), "sendgrid caído")
		require.Equal(t, 1, store.stock["a"])
		require.False(t, publisher.called)
	})

	t.Run("publish failure is ignored", func(t *testing.T) {
		store := newFakeStore(map[string]int{"a": 2})
		service := newTestService(store, &stubNotifier{}, &stubPublisher{err: errors.New("amqp")})

		_, err := service.PlaceOrder(context.Background(), Request{
			Products: []Line{line("a", "Mouse", "10.00", 1)},
		}, "ana@example.com")

		require.NoError(t, err)
	})

	t.Run("store error", func(t *testing.T) {
		store := newFakeStore(map[string]int{})
		store.beginErr = errors.New("db down")
		service := newTestService(store, &stubNotifier{}, nil)

		_, err := service.PlaceOrder(context.Background(), Request{
			Products: []Line{line("a", "Mouse", "10.00", 1)},
		}, "ana@example.com")

		require.EqualError(t, err, "db down")
	})
}
