package main

import (
	"context"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/recommendations-backend/internal/apperr"
	"github.com/wichananm65/recommendations-backend/internal/config"
	"github.com/wichananm65/recommendations-backend/internal/database"
	"github.com/wichananm65/recommendations-backend/internal/e2e"
	"github.com/wichananm65/recommendations-backend/internal/recommendation"
)

// store is a recommendation repository that can also be wiped by the e2e routes.
type store interface {
	recommendation.Repository
	Reset(ctx context.Context) error
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func newStore(db *database.DB) store {
	if db.Dialect == database.Postgres {
		return recommendation.NewPostgresRepository(db.DB)
	}
	return recommendation.NewSQLiteRepository(sqlx.NewDb(db.DB, db.Driver))
}

func newApp(cfg config.Config, log *logrus.Logger, service *recommendation.Service, st store) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "recommendations-backend",
		ErrorHandler:          apperr.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		Output: log.Writer(),
	}))
	setupCORS(app, cfg.AllowOrigins)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	recommendation.NewHandler(service).RegisterPublicRoutes(app)

	if cfg.IsTest() {
		e2e.NewHandler(st, log.WithField("component", "e2e")).RegisterRoutes(app)
		log.Warn("e2e routes enabled")
	}

	return app
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
}
