package scheduler

import (
	"context"
	"fmt"
	"time"

	"telegramschoolbot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Broadcaster delivers the notices published in the window ending at now.
type Broadcaster interface {
	BroadcastRecent(ctx context.Context, now time.Time) (app.BroadcastReport, error)
}

type NoticeScheduler struct {
	cronEngine  *cron.Cron
	broadcaster Broadcaster
	logger      *logrus.Entry
	cronSpec    string
	jobTimeout  time.Duration
	now         func() time.Time
}

func NewNoticeScheduler(
	broadcaster Broadcaster,
	logger *logrus.Entry,
	cronSpec string, // e.g., "0 * * * *" (top of every hour)
) *NoticeScheduler {
	return &NoticeScheduler{
		cronEngine:  cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		broadcaster: broadcaster,
		logger:      logger,
		cronSpec:    cronSpec,
		jobTimeout:  5 * time.Minute,
		now:         time.Now,
	}
}

// Start registers the broadcast job and starts the cron engine.
func (s *NoticeScheduler) Start() error {
	s.logger.Info("Starting notice scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Debug("Cron job triggered for notice broadcast.")
		s.runBroadcast()
	})
	if err != nil {
		return fmt.Errorf("could not add notice broadcast cron job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpec).Info("Notice scheduler started.")
	return nil
}

// runBroadcast closes the window on a whole minute so consecutive runs neither
// overlap nor leave gaps when the job fires a little late.
func (s *NoticeScheduler) runBroadcast() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	windowEnd := s.now().Truncate(time.Minute)
	report, err := s.broadcaster.BroadcastRecent(ctx, windowEnd)
	if err != nil {
		s.logger.WithError(err).Error("Error during notice broadcast")
		return
	}
	if report.Notices > 0 {
		s.logger.WithFields(logrus.Fields{
			"notices": report.Notices,
			"sent":    report.Sent,
			"failed":  report.Failed,
		}).Info("Notice broadcast job finished.")
	}
}

func (s *NoticeScheduler) Stop() {
	s.logger.Info("Stopping notice scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Notice scheduler gracefully stopped.")
}
