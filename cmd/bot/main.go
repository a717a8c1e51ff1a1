package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegramschoolbot/internal/app"
	"telegramschoolbot/internal/domain/conversation"
	"telegramschoolbot/internal/infra/config"
	idb "telegramschoolbot/internal/infra/database"
	"telegramschoolbot/internal/infra/httpserver"
	"telegramschoolbot/internal/infra/logger"
	"telegramschoolbot/internal/infra/metrics"
	"telegramschoolbot/internal/infra/pending"
	"telegramschoolbot/internal/infra/scheduler"
	"telegramschoolbot/internal/infra/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("School timetable bot starting...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Database Connection
	db, err := idb.NewConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	driver, _ := idb.DriverFor(cfg.DatabaseURL)
	mainLogger.WithField("driver", driver).Info("Database connection established successfully.")

	// Initialize Repositories
	pageRepo := idb.NewPageRepository(db)
	subscriberRepo := idb.NewSubscriberRepository(db)
	noticeRepo := idb.NewNoticeRepository(db)

	// Pending prompts live in Redis when configured so they survive restarts.
	var pendingStore conversation.PendingStore
	if cfg.RedisURL != "" {
		redisClient, err := pending.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			mainLogger.Fatalf("Could not connect to redis: %v", err)
		}
		defer redisClient.Close()
		pendingStore = pending.NewRedisStore(redisClient, cfg.PendingPromptTTL)
		mainLogger.Info("Pending prompts stored in redis.")
	} else {
		pendingStore = pending.NewMemoryStore(cfg.PendingPromptTTL)
		mainLogger.Info("Pending prompts stored in memory.")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// Initialize Services
	lookupService := app.NewLookupService(pageRepo, logger.Component("lookup_service"))
	subscriptionService := app.NewSubscriptionService(subscriberRepo, appMetrics, logger.Component("subscription_service"))

	// Initialize Telegram Bot
	telebotLogger := logger.Component("telebot")
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := telebotLogger.WithError(err)
			if c != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"chat_id": c.Chat().ID, "text": c.Text()})
			}
			entry.Error("Unhandled bot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.Fatalf("Could not create Telegram bot: %v", err)
	}

	handlers := telegram.NewHandlers(lookupService, subscriptionService, pendingStore, cfg.About, appMetrics, logger.Component("telegram"))
	handlers.Register(bot)
	if err := bot.SetCommands(telegram.Commands()); err != nil {
		mainLogger.WithError(err).Warn("Could not publish the command menu")
	}
	mainLogger.Info("Command handlers registered.")

	noticeService := app.NewNoticeService(
		noticeRepo,
		subscriberRepo,
		subscriptionService,
		telegram.NewTelebotAdapter(bot),
		cfg.NoticeWindow,
		appMetrics,
		logger.Component("notice_service"),
	)
	noticeScheduler := scheduler.NewNoticeScheduler(noticeService, logger.Component("scheduler"), cfg.CronSpecNotices)
	if err := noticeScheduler.Start(); err != nil {
		mainLogger.Fatalf("Could not start notice scheduler: %v", err)
	}

	var httpServer *httpserver.Server
	if cfg.MetricsAddr != "" {
		httpServer = httpserver.NewServer(cfg.MetricsAddr, httpserver.NewRouter(registry, db), logger.Component("http"))
		go func() {
			if err := httpServer.Start(); err != nil {
				mainLogger.WithError(err).Error("HTTP server stopped unexpectedly")
			}
		}()
	}

	mainLogger.Info("Application setup complete. Bot and scheduler are running.")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	bot.Stop()
	noticeScheduler.Stop()
	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			mainLogger.WithError(err).Warn("HTTP server did not shut down cleanly")
		}
	}
	cancel()
	mainLogger.Info("Application shut down gracefully.")
}
