package recommendation

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/recommendations-backend/internal/apperr"
)

// Handler exposes the service over HTTP. Errors are returned to fiber and
// rendered by apperr.ErrorHandler.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterPublicRoutes mounts the /recommendations API. Fixed segments are
// registered before /:id so they are not captured by it.
func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/recommendations", h.insert)
	app.Get("/recommendations", h.list)
	app.Get("/recommendations/random", h.random)
	app.Get("/recommendations/top/:amount", h.top)
	app.Get("/recommendations/:id", h.getByID)
	app.Post("/recommendations/:id/upvote", h.upvote)
	app.Post("/recommendations/:id/downvote", h.downvote)
}

func (h *Handler) insert(c *fiber.Ctx) error {
	payload := new(CreateInput)
	if err := c.BodyParser(payload); err != nil {
		return apperr.NewUnprocessable("invalid request body")
	}

	created, err := h.service.Insert(c.UserContext(), *payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (h *Handler) random(c *fiber.Ctx) error {
	rec, err := h.service.GetRandom(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (h *Handler) top(c *fiber.Ctx) error {
	amount, err := c.ParamsInt("amount")
	if err != nil || amount < 0 {
		return apperr.NewBadRequest("amount must be a non-negative integer")
	}

	items, err := h.service.GetTop(c.UserContext(), amount)
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (h *Handler) getByID(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	rec, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (h *Handler) upvote(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.service.Upvote(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) downvote(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.service.Downvote(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return 0, apperr.NewBadRequest("invalid id")
	}
	return int64(id), nil
}
