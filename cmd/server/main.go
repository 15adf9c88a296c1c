package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"investpath/internal/app"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default config.yaml)")
	flag.Parse()

	// Local development convenience. Absence of .env is not an error.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env")
	}

	application, err := app.NewApplication(*configPath)
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
