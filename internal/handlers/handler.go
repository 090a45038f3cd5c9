package handlers

import (
	"errors"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/controllers/auth"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/controllers/fortune"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/controllers/profile"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/handlers/middleware"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/types"

	"github.com/gofiber/fiber/v2"
)

// Handler is the HTTP surface over the controllers.
type Handler struct {
	auth       *auth.Controller
	fortune    *fortune.Controller
	profile    *profile.Controller
	middleware *middleware.Middleware
	log        logger.Logger
}

func New(
	authController *auth.Controller,
	fortuneController *fortune.Controller,
	profileController *profile.Controller,
	mw *middleware.Middleware,
) *Handler {
	return &Handler{
		auth:       authController,
		fortune:    fortuneController,
		profile:    profileController,
		middleware: mw,
		log:        logger.New("handlers"),
	}
}

// respondError translates controller failures into the response envelope.
// Typed domain errors keep their status and code; anything else is a 500
// with no internals leaked.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var domainErr *types.DomainError
	if errors.As(err, &domainErr) {
		return c.Status(domainErr.Status).JSON(types.Fail(domainErr.Message, domainErr.Code))
	}

	h.log.Er("unhandled error", err, "path", c.Path())
	return c.Status(fiber.StatusInternalServerError).
		JSON(types.Fail("internal server error", "INTERNAL_ERROR"))
}
