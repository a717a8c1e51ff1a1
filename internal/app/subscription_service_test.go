package app_test

import (
	"context"
	"errors"
	"testing"

	"telegramschoolbot/internal/app"
	"telegramschoolbot/internal/infra/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionService_Toggle(t *testing.T) {
	ctx := context.Background()

	t.Run("single toggle flips the state", func(t *testing.T) {
		repo := newFakeSubscriberRepo()
		svc := app.NewSubscriptionService(repo, nil, newTestLogger())

		subscribed, err := svc.Toggle(ctx, 42)
		require.NoError(t, err)
		assert.True(t, subscribed)
		assert.True(t, repo.Has(42))
	})

	t.Run("toggle of a subscribed chat unsubscribes it", func(t *testing.T) {
		repo := newFakeSubscriberRepo(42)
		svc := app.NewSubscriptionService(repo, nil, newTestLogger())

		subscribed, err := svc.Toggle(ctx, 42)
		require.NoError(t, err)
		assert.False(t, subscribed)
		assert.False(t, repo.Has(42))
	})

	t.Run("two toggles cancel out", func(t *testing.T) {
		repo := newFakeSubscriberRepo()
		m := metrics.New(prometheus.NewRegistry())
		svc := app.NewSubscriptionService(repo, m, newTestLogger())

		first, err := svc.Toggle(ctx, 7)
		require.NoError(t, err)
		second, err := svc.Toggle(ctx, 7)
		require.NoError(t, err)

		assert.True(t, first)
		assert.False(t, second)
		assert.False(t, repo.Has(7))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.SubscriptionTogglesTotal.WithLabelValues("subscribed")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.SubscriptionTogglesTotal.WithLabelValues("unsubscribed")))
	})

	t.Run("toggles of different chats are independent", func(t *testing.T) {
		repo := newFakeSubscriberRepo(1)
		svc := app.NewSubscriptionService(repo, nil, newTestLogger())

		_, err := svc.Toggle(ctx, 2)
		require.NoError(t, err)
		assert.True(t, repo.Has(1))
		assert.True(t, repo.Has(2))
	})

	t.Run("storage errors propagate", func(t *testing.T) {
		boom := errors.New("db down")
		repo := newFakeSubscriberRepo()
		repo.GetErr = boom
		svc := app.NewSubscriptionService(repo, nil, newTestLogger())

		_, err := svc.Toggle(ctx, 1)
		assert.ErrorIs(t, err, boom)
		assert.False(t, repo.Has(1))
	})
}

func TestSubscriptionService_HandleChatUnavailable(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSubscriberRepo(99)
	m := metrics.New(prometheus.NewRegistry())
	svc := app.NewSubscriptionService(repo, m, newTestLogger())

	require.NoError(t, svc.HandleChatUnavailable(ctx, 99))
	assert.False(t, repo.Has(99))
	assert.Equal(t, 1, repo.DeleteCalls)

	require.NoError(t, svc.HandleChatUnavailable(ctx, 99), "second call is a no-op")
	assert.Equal(t, 1, repo.DeleteCalls)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChatsUnavailableTotal))

	repo.GetErr = errors.New("db down")
	assert.Error(t, svc.HandleChatUnavailable(ctx, 99))
}
