package handlers

import (
	"github.com/pawaovo/nfc-bracelet-fortune/internal/handlers/middleware"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/types"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetTodayFortune(c *fiber.Ctx) error {
	user := middleware.UserFromContext(c)

	view, err := h.fortune.GetTodayFortune(c.UserContext(), user)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(types.OK(view))
}

func (h *Handler) RegenerateTodayFortune(c *fiber.Ctx) error {
	user := middleware.UserFromContext(c)

	view, err := h.fortune.RegenerateTodayFortune(c.UserContext(), user)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(types.OK(view))
}

func (h *Handler) GetFortuneHistory(c *fiber.Ctx) error {
	user := middleware.UserFromContext(c)

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	history, err := h.fortune.GetFortuneHistory(c.UserContext(), user, page, limit)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(types.OK(history))
}

func (h *Handler) GetFortuneByDate(c *fiber.Ctx) error {
	user := middleware.UserFromContext(c)

	view, err := h.fortune.GetFortuneByDate(c.UserContext(), user, c.Params("date"))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(types.OK(view))
}

func (h *Handler) GetFortuneStats(c *fiber.Ctx) error {
	user := middleware.UserFromContext(c)

	stats, err := h.fortune.GetFortuneStats(c.UserContext(), user)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(types.OK(stats))
}
