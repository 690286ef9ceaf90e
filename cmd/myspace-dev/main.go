package main

import (
	"errors"
	"log"
	"net"
	"net/http"
	"os"

	"go.uber.org/zap"

	"myspace/internal/app"
	"myspace/internal/backend/stubs"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}

	addr := os.Getenv("DEV_BACKEND_ADDR")
	if addr == "" {
		addr = "127.0.0.1:5000"
	}

	// Start the in-memory backend before the bot reads its config
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal("Failed to listen for the dev backend", zap.String("addr", addr), zap.Error(err))
	}
	backend := &http.Server{Handler: stubs.NewServer(logger.Named("backend")).Routes()}
	go func() {
		if err := backend.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Dev backend stopped", zap.Error(err))
		}
	}()
	defer backend.Close()

	backendURL := "http://" + listener.Addr().String() + "/api"
	logger.Info("In-memory backend started", zap.String("url", backendURL))

	// Set environment variables for the application
	os.Setenv("TELEGRAM_BACKEND_URL", backendURL)
	if os.Getenv("TELEGRAM_SETTINGS_PATH") == "" {
		os.Setenv("TELEGRAM_SETTINGS_PATH", "data/dev-telegram-settings.json")
	}
	if os.Getenv("LOG_LEVEL") == "" {
		os.Setenv("LOG_LEVEL", "debug")
	}

	application, err := app.New()
	if err != nil {
		logger.Fatal("Failed to create application", zap.Error(err))
	}

	if err := application.Run(); err != nil {
		logger.Error("Application error", zap.Error(err))
	}
}
