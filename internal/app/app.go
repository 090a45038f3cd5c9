package app

import (
	"fmt"

	"github.com/pawaovo/nfc-bracelet-fortune/config"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/controllers/auth"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/controllers/fortune"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/controllers/profile"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/database"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/handlers"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/handlers/middleware"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/jobs"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/repositories"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/server"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/services"

	"github.com/gofiber/fiber/v2"
)

// App owns the fully wired application graph.
type App struct {
	Config   config.Config
	DB       database.DB
	Repo     repositories.Repository
	Services services.Service
	Server   *fiber.App
	log      logger.Logger
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	cfg, err := config.InitConfig()
	if err != nil {
		return nil, log.Err("failed to initialize config", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, log.Err("failed to initialize database", err)
	}

	repo := repositories.New(db)
	svc := services.New(cfg, db)

	authController := auth.New(repo, svc.WeChat, svc.Token)
	fortuneController := fortune.New(repo, svc.AI, svc.Parser)
	profileController := profile.New(repo, svc.Token, svc.Transaction)

	mw := middleware.New(repo.User, svc.Verifier)
	handler := handlers.New(authController, fortuneController, profileController, mw)

	fiberApp := server.New(cfg)
	handler.RegisterRoutes(fiberApp)

	app := &App{
		Config:   cfg,
		DB:       db,
		Repo:     repo,
		Services: svc,
		Server:   fiberApp,
		log:      logger.New("app"),
	}

	if err := app.validate(); err != nil {
		return nil, err
	}

	if cfg.SchedulerEnabled {
		if err := svc.Scheduler.Register(jobs.NewFortuneRetentionJob(repo.Fortune, cfg)); err != nil {
			return nil, err
		}
		svc.Scheduler.Start()
	}

	log.Info("Application wired", "environment", cfg.Environment)
	return app, nil
}

func (a *App) validate() error {
	checks := map[string]any{
		"database":            a.DB.SQL,
		"user repository":     a.Repo.User,
		"bracelet repository": a.Repo.Bracelet,
		"fortune repository":  a.Repo.Fortune,
		"product repository":  a.Repo.Product,
		"wechat service":      a.Services.WeChat,
		"ai service":          a.Services.AI,
		"token service":       a.Services.Token,
		"token verifier":      a.Services.Verifier,
		"transaction service": a.Services.Transaction,
		"server":              a.Server,
	}

	for name, dep := range checks {
		if dep == nil {
			return fmt.Errorf("missing dependency: %s", name)
		}
	}

	return nil
}

// Close shuts the app down in reverse dependency order.
func (a *App) Close() error {
	log := a.log.Function("Close")

	if a.Config.SchedulerEnabled {
		a.Services.Scheduler.Stop()
	}

	if a.Server != nil {
		if err := a.Server.Shutdown(); err != nil {
			log.Er("failed to shut down server", err)
		}
	}

	if err := a.DB.Close(); err != nil {
		return log.Err("failed to close database", err)
	}

	log.Info("Application closed")
	return nil
}
