package handlers

import (
	"github.com/pawaovo/nfc-bracelet-fortune/internal/controllers/profile"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/handlers/middleware"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/types"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	user := middleware.UserFromContext(c)
	return c.JSON(types.OK(h.profile.GetProfile(c.UserContext(), user)))
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var input profile.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return h.respondError(c, types.ValidationError("invalid request body"))
	}

	user := middleware.UserFromContext(c)
	partial, err := h.profile.UpdateProfile(c.UserContext(), user, input)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(types.OK(partial))
}

func (h *Handler) RegisterWeb(c *fiber.Ctx) error {
	var input profile.WebCredentialsInput
	if err := c.BodyParser(&input); err != nil {
		return h.respondError(c, types.ValidationError("invalid request body"))
	}

	result, err := h.profile.RegisterWeb(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(types.OK(result))
}

func (h *Handler) LoginWeb(c *fiber.Ctx) error {
	var input profile.WebCredentialsInput
	if err := c.BodyParser(&input); err != nil {
		return h.respondError(c, types.ValidationError("invalid request body"))
	}

	result, err := h.profile.LoginWeb(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(types.OK(result))
}

func (h *Handler) GetUserStats(c *fiber.Ctx) error {
	user := middleware.UserFromContext(c)

	stats, err := h.profile.GetUserStats(c.UserContext(), user)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(types.OK(stats))
}
