package server

import (
	"fmt"

	"github.com/pawaovo/nfc-bracelet-fortune/config"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/helmet/v2"
)

// New builds the fiber app with the standard middleware chain. Routes are
// registered by the caller so the server stays wiring-free.
func New(cfg config.Config) *fiber.App {
	log := logger.New("server")

	app := fiber.New(fiber.Config{
		AppName:               "nfc-bracelet-fortune " + cfg.GeneralVersion,
		DisableStartupMessage: cfg.IsProduction(),
	})

	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CorsAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Trace-Id",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(compress.New())

	if !cfg.IsProduction() {
		app.Use(fiberLogger.New())
	}

	log.Info("Server configured", "port", cfg.ServerPort)
	return app
}

// Listen blocks serving HTTP on the configured port.
func Listen(app *fiber.App, cfg config.Config) error {
	return app.Listen(fmt.Sprintf(":%d", cfg.ServerPort))
}
