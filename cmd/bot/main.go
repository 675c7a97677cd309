package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okuzmina/tutorbot/internal/bot"
	"github.com/okuzmina/tutorbot/internal/config"
	"github.com/okuzmina/tutorbot/internal/logging"
	"github.com/okuzmina/tutorbot/internal/reminder"
	"github.com/okuzmina/tutorbot/internal/storage"
)

func main() {
	log := logging.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("configuration error")
	}
	if cfg.TutorID == 0 {
		log.Warn("TUTOR_ID is not set, tutor features will be unavailable")
	}

	db, err := storage.Connect(cfg.DSN(), log)
	if err != nil {
		log.WithError(err).Fatal("database init failed")
	}
	store := storage.NewStore(db)

	b, err := bot.New(bot.Config{
		Token:    cfg.Token,
		TutorID:  cfg.TutorID,
		Location: cfg.Location,
	}, store, log)
	if err != nil {
		log.WithError(err).Fatal("bot init failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rem := reminder.New(b.API(), store, log, cfg.ReminderInterval, cfg.Location)
	go rem.Run(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutdown signal received")
		cancel()
		b.Stop()
	}()

	b.Start()

	if err := storage.Close(db); err != nil {
		log.WithError(err).Error("database shutdown error")
	}
	log.Info("shutdown complete")
}
