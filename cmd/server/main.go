package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"election-service/internal/app"
	"election-service/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; deployed pods get their settings from the environment.
	_ = godotenv.Load()

	log := logger.NewWithServiceContext(app.ServiceName, app.Version)
	application := app.New()

	go func() {
		if err := application.Run(); err != nil {
			log.Error("election server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	timeout := application.ShutdownTimeout()
	log.Info("draining in-flight ballots", "signal", sig.String(), "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := application.Shutdown(ctx); err != nil {
		log.Error("forced shutdown, open vote transactions were rolled back", "error", err)
		os.Exit(1)
	}

	log.Info("election server exited")
}
