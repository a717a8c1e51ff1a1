package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"telegramschoolbot/internal/infra/config"
	idb "telegramschoolbot/internal/infra/database"
	"telegramschoolbot/internal/infra/importer"
	"telegramschoolbot/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

// CLI flags
var (
	fileFlag    = flag.String("file", "", "YAML seed file with pages and notices (required)")
	timeoutFlag = flag.Duration("timeout", 2*time.Minute, "Maximum time allowed for the import")
)

func main() {
	flag.Parse()
	if *fileFlag == "" {
		_, _ = fmt.Fprintln(os.Stderr, "usage: import -file timetable.yaml")
		os.Exit(2)
	}

	cfg, err := config.LoadForImport()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg)
	log := logger.Component("import")

	f, err := os.Open(*fileFlag)
	if err != nil {
		log.WithError(err).Fatal("Failed to open seed file")
	}
	bundle, err := importer.Decode(f)
	_ = f.Close()
	if err != nil {
		log.WithError(err).Fatal("Invalid seed file")
	}

	db, err := idb.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	im := importer.New(idb.NewPageRepository(db), idb.NewNoticeRepository(db), log)
	res, err := im.Apply(ctx, bundle)
	if err != nil {
		log.WithError(err).WithField("pages_written", res.Pages).Error("Import aborted")
		cancel()
		_ = db.Close()
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{
		"file":    *fileFlag,
		"pages":   res.Pages,
		"notices": res.Notices,
	}).Info("Import complete")
}
