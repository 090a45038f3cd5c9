package handlers

import (
	"github.com/pawaovo/nfc-bracelet-fortune/config"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/types"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(types.OK(fiber.Map{
		"status":  "ok",
		"version": config.GetConfig().GeneralVersion,
	}))
}
