// internal/app/notice_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telegramschoolbot/internal/domain/notice"
	"telegramschoolbot/internal/domain/subscription"
	domainTelegram "telegramschoolbot/internal/domain/telegram"
	"telegramschoolbot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// ChatUnavailableHandler is notified when a chat can no longer be reached.
type ChatUnavailableHandler interface {
	HandleChatUnavailable(ctx context.Context, chatID int64) error
}

// BroadcastReport summarizes one notice broadcast run.
type BroadcastReport struct {
	Notices      int
	Recipients   int
	Sent         int
	Failed       int
	Unsubscribed int
}

// NoticeService sends recently published notices to every subscriber.
type NoticeService struct {
	notices     notice.Repository
	subscribers subscription.Repository
	unavailable ChatUnavailableHandler
	client      domainTelegram.Client
	window      time.Duration
	metrics     *metrics.Metrics
	logger      *logrus.Entry
}

func NewNoticeService(
	nr notice.Repository,
	sr subscription.Repository,
	unavailable ChatUnavailableHandler,
	client domainTelegram.Client,
	window time.Duration,
	m *metrics.Metrics,
	logger *logrus.Entry,
) *NoticeService {
	return &NoticeService{
		notices:     nr,
		subscribers: sr,
		unavailable: unavailable,
		client:      client,
		window:      window,
		metrics:     m,
		logger:      logger,
	}
}

// BroadcastRecent sends the notices published in (now-window, now] to all subscribers.
// Delivery is best effort: a failed send is logged and the broadcast moves on.
func (s *NoticeService) BroadcastRecent(ctx context.Context, now time.Time) (BroadcastReport, error) {
	var report BroadcastReport
	logCtx := s.logger.WithField("window_end", now.Format(time.RFC3339))

	recent, err := s.notices.ListPublishedBetween(ctx, now.Add(-s.window), now)
	if err != nil {
		s.metrics.ObserveBroadcast("error")
		return report, fmt.Errorf("failed to list recent notices: %w", err)
	}
	report.Notices = len(recent)
	if len(recent) == 0 {
		logCtx.Debug("No new notices to broadcast")
		s.metrics.ObserveBroadcast("empty")
		return report, nil
	}

	subscribers, err := s.subscribers.ListAll(ctx)
	if err != nil {
		s.metrics.ObserveBroadcast("error")
		return report, fmt.Errorf("failed to list subscribers: %w", err)
	}
	report.Recipients = len(subscribers)

	text := NoticeDigest(recent)
	for _, sub := range subscribers {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		chatLog := logCtx.WithField("chat_id", sub.ChatID)
		err := s.client.SendMessage(sub.ChatID, text, domainTelegram.ParseHTML)
		switch {
		case err == nil:
			report.Sent++
			s.metrics.ObserveNoticeDelivery("sent")
		case errors.Is(err, domainTelegram.ErrChatUnavailable):
			report.Failed++
			s.metrics.ObserveNoticeDelivery("unavailable")
			if herr := s.unavailable.HandleChatUnavailable(ctx, sub.ChatID); herr != nil {
				chatLog.WithError(herr).Error("Failed to clean up unavailable chat")
				continue
			}
			report.Unsubscribed++
		default:
			report.Failed++
			s.metrics.ObserveNoticeDelivery("failed")
			chatLog.WithError(err).Warn("Failed to deliver notices")
		}
	}

	s.metrics.ObserveBroadcast("sent")
	logCtx.WithFields(logrus.Fields{
		"notices":      report.Notices,
		"recipients":   report.Recipients,
		"sent":         report.Sent,
		"failed":       report.Failed,
		"unsubscribed": report.Unsubscribed,
	}).Info("Notice broadcast completed")
	return report, nil
}
