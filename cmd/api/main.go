package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/app"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/server"
)

func main() {
	log := logger.New("main")

	application, err := app.New()
	if err != nil {
		log.Er("failed to start application", err)
		os.Exit(1)
	}

	go func() {
		if err := server.Listen(application.Server, application.Config); err != nil {
			log.Er("server stopped", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	if err := application.Close(); err != nil {
		log.Er("shutdown error", err)
		os.Exit(1)
	}
}
