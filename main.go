package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/snapsolve/snapsolve-go/app"
	"github.com/snapsolve/snapsolve-go/config"
	"github.com/snapsolve/snapsolve-go/debug"
)

const configPath = "snapsolve.yaml"

func main() {
	cfg, cfgErr := config.Load(configPath)

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if cfgErr != nil {
		logger.Warn("config load failed, continuing with defaults", "path", configPath, "error", cfgErr)
	}

	apiKey, err := config.APIKeyFromEnv()
	if err != nil {
		logger.Error("solver credential missing", "env", config.EnvAPIKey, "error", err)
		os.Exit(1)
	}

	if cfg.Debug {
		debug.StartGoroutineLogger(5*time.Second, logger)
		debug.StartMemLogger(5*time.Second, logger)
	}

	container, err := app.BuildContainer(cfg, configPath, apiKey, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	application := app.NewApp("SnapSolve", cfg, container, logger)
	application.Start()
}
