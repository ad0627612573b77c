package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/wichananm65/recommendations-backend/internal/config"
	"github.com/wichananm65/recommendations-backend/internal/database"
	"github.com/wichananm65/recommendations-backend/internal/recommendation"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL, cfg.DatabaseDriver)
	if err != nil {
		log.WithError(err).Fatal("could not open database")
	}
	defer db.Close()
	log.WithFields(logrus.Fields{"driver": db.Driver, "dialect": db.Dialect}).Info("database ready")

	repo := newStore(db)
	service := recommendation.NewService(repo,
		recommendation.WithLogger(log.WithField("component", "recommendation")),
		recommendation.WithRecentLimit(cfg.RecentLimit),
	)
	app := newApp(cfg, log, service, repo)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}()

	log.WithField("addr", cfg.Addr).Info("starting server")
	if err := app.Listen(cfg.Addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
