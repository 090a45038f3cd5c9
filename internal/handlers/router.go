package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the API onto the fiber app.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api", h.middleware.TraceID())

	api.Get("/health", h.Health)

	authGroup := api.Group("/auth")
	authGroup.Post("/login", h.Login)
	authGroup.Post("/verify-nfc", h.middleware.RequireAuth(), h.VerifyNFC)

	fortuneGroup := api.Group("/fortune", h.middleware.RequireAuth())
	fortuneGroup.Get("/today", h.GetTodayFortune)
	fortuneGroup.Post("/today/regenerate", h.RegenerateTodayFortune)
	fortuneGroup.Get("/history", h.GetFortuneHistory)
	fortuneGroup.Get("/date/:date", h.GetFortuneByDate)
	fortuneGroup.Get("/stats", h.GetFortuneStats)

	profileGroup := api.Group("/profile")
	profileGroup.Get("/", h.middleware.RequireAuth(), h.GetProfile)
	profileGroup.Put("/", h.middleware.RequireAuth(), h.UpdateProfile)
	profileGroup.Get("/stats", h.middleware.RequireAuth(), h.GetUserStats)
	profileGroup.Post("/register-web", h.RegisterWeb)
	profileGroup.Post("/login-web", h.LoginWeb)
}
