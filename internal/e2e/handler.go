// Package e2e exposes fixture routes for end-to-end test runs. They are only
// mounted when APP_ENV=test.
package e2e

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/recommendations-backend/internal/apperr"
	"github.com/wichananm65/recommendations-backend/internal/recommendation"
)

// Store is the part of a recommendation repository the fixtures need.
type Store interface {
	Reset(ctx context.Context) error
	FindByName(ctx context.Context, name string) (*recommendation.Recommendation, error)
	Create(ctx context.Context, rec recommendation.Recommendation) (*recommendation.Recommendation, error)
}

type SeedItem struct {
	Name        string `json:"name"`
	YoutubeLink string `json:"youtubeLink"`
	Score       int    `json:"score"`
}

type Handler struct {
	store Store
	log   logrus.FieldLogger
}

func NewHandler(store Store, log logrus.FieldLogger) *Handler {
	return &Handler{store: store, log: log}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Post("/e2e/reset", h.reset)
	app.Post("/e2e/seed", h.seed)
}

func (h *Handler) reset(c *fiber.Ctx) error {
	if err := h.store.Reset(c.UserContext()); err != nil {
		return err
	}
	h.log.Warn("recommendations table reset")
	return c.SendStatus(fiber.StatusOK)
}

// seed inserts the given rows as-is, scores included, and returns them with ids.
// The whole batch is checked up front so a rejected batch stores nothing.
func (h *Handler) seed(c *fiber.Ctx) error {
	var items []SeedItem
	if err := c.BodyParser(&items); err != nil {
		return apperr.NewUnprocessable("invalid request body")
	}
	if err := h.checkBatch(c.UserContext(), items); err != nil {
		return err
	}

	out := make([]recommendation.Recommendation, 0, len(items))
	for _, it := range items {
		rec, err := h.store.Create(c.UserContext(), recommendation.Recommendation{
			Name:        it.Name,
			YoutubeLink: it.YoutubeLink,
			Score:       it.Score,
		})
		if err != nil {
			if errors.Is(err, recommendation.ErrDuplicateName) {
				return apperr.Wrap(apperr.Conflict, "Recommendations names must be unique", err)
			}
			return err
		}
		out = append(out, *rec)
	}

	h.log.WithField("count", len(out)).Info("recommendations seeded")
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *Handler) checkBatch(ctx context.Context, items []SeedItem) error {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" || strings.TrimSpace(it.YoutubeLink) == "" {
			return apperr.NewUnprocessable(`each item needs "name" and "youtubeLink"`)
		}
		if seen[it.Name] {
			return apperr.NewConflict("Recommendations names must be unique")
		}
		seen[it.Name] = true

		existing, err := h.store.FindByName(ctx, it.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.NewConflict("Recommendations names must be unique")
		}
	}
	return nil
}
