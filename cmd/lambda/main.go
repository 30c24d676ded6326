package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gin-gonic/gin"

	"kb-assistant/internal/app"
	"kb-assistant/internal/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv(config.EnvConfigFile))
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	level, _ := config.ParseLogLevel(cfg.LogLevel)
	logger := app.NewLogger(level)
	slog.SetDefault(logger)

	gin.SetMode(gin.ReleaseMode)
	router, err := app.NewRouter(ctx, cfg, app.Deps{}, logger)
	if err != nil {
		logger.Error("failed to build router", "err", err)
		os.Exit(1)
	}

	lambda.Start(app.LambdaHandler(router))
}
