package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ethaccount/zksync/docs/swagger"
	"github.com/ethaccount/zksync/src/app"
	"github.com/joho/godotenv"
)

// @license.name  AGPL-3.0-only

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey  APISecret
// @in                          header
// @name                        X-API-Secret

const (
	AppName    = "zkSync Codec Service"
	AppVersion = "0.1.0"
)

// shutdownTimeout bounds how long the HTTP server may take to drain.
const shutdownTimeout = 15 * time.Second

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Overload(".env"); err != nil {
			log.Fatalf("Error loading .env file: %v", err)
		}
	}

	config := app.NewAppConfig()

	swagger.SwaggerInfo.Title = AppName + " API"
	swagger.SwaggerInfo.Version = AppVersion
	swagger.SwaggerInfo.Description = "EIP-712 typed data and zkSync 0x71 transactions"
	swagger.SwaggerInfo.Host = *config.Host

	logger := app.InitLogger(*config.LogLevel, AppName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	logger.Info().
		Str("version", AppVersion).
		Str("environment", *config.Environment).
		Str("swagger", "http://"+*config.Host+"/swagger/index.html").
		Msgf("Launching %s", AppName)

	application, err := app.NewApplication(ctx, *config)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		return
	}
	defer application.Shutdown(context.WithoutCancel(ctx))

	var wg sync.WaitGroup
	wg.Add(1)
	go application.RunHTTPServer(ctx, &wg)

	<-ctx.Done()
	logger.Info().Msg("Received shutdown signal")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		logger.Error().Msg("Timeout waiting for HTTP server to shut down")
	}
}
