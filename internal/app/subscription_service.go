package app

import (
	"context"
	"errors"
	"fmt"

	"telegramschoolbot/internal/domain/subscription"
	idb "telegramschoolbot/internal/infra/database"
	"telegramschoolbot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

type SubscriptionService struct {
	subscribers subscription.Repository
	metrics     *metrics.Metrics
	logger      *logrus.Entry
}

func NewSubscriptionService(sr subscription.Repository, m *metrics.Metrics, logger *logrus.Entry) *SubscriptionService {
	return &SubscriptionService{
		subscribers: sr,
		metrics:     m,
		logger:      logger,
	}
}

// Toggle flips the subscription of a chat and reports the new state.
// Two toggles in a row cancel out.
func (s *SubscriptionService) Toggle(ctx context.Context, chatID int64) (bool, error) {
	_, err := s.subscribers.Get(ctx, chatID)
	switch {
	case err == nil:
		if err := s.subscribers.Delete(ctx, chatID); err != nil {
			return false, fmt.Errorf("failed to unsubscribe chat: %w", err)
		}
		s.metrics.ObserveToggle(false)
		s.logger.WithField("chat_id", chatID).Info("Chat unsubscribed from notices")
		return false, nil
	case errors.Is(err, idb.ErrSubscriberNotFound):
		if err := s.subscribers.Create(ctx, &subscription.Subscriber{ChatID: chatID}); err != nil {
			return false, fmt.Errorf("failed to subscribe chat: %w", err)
		}
		s.metrics.ObserveToggle(true)
		s.logger.WithField("chat_id", chatID).Info("Chat subscribed to notices")
		return true, nil
	default:
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
}

// HandleChatUnavailable drops the subscription of a chat that can no longer be reached.
// A chat without a subscription is left alone.
func (s *SubscriptionService) HandleChatUnavailable(ctx context.Context, chatID int64) error {
	s.metrics.ObserveChatUnavailable()

	_, err := s.subscribers.Get(ctx, chatID)
	if err != nil {
		if errors.Is(err, idb.ErrSubscriberNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check subscription of unavailable chat: %w", err)
	}
	if err := s.subscribers.Delete(ctx, chatID); err != nil {
		return fmt.Errorf("failed to remove subscription of unavailable chat: %w", err)
	}
	s.logger.WithField("chat_id", chatID).Info("Removed subscription of unavailable chat")
	return nil
}
