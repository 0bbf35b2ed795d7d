package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/skladtech/inventory-backend/internal/app"
	config "github.com/skladtech/inventory-backend/internal/cfg"
	"github.com/skladtech/inventory-backend/pkg/logger"
)

func main() {
	log := logger.NewSlogLogger()

	// .env опционален: в контейнере переменные приходят из окружения.
	if err := godotenv.Load(); err != nil {
		log.Debugf(".env file not loaded: %v", err)
	}

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	if err := app.Run(cfg, log); err != nil {
		os.Exit(1)
	}
}
