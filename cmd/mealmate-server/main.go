package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mealmate/internal/api"
	"mealmate/internal/app"
	"mealmate/internal/config"
	"mealmate/internal/logger"
	"mealmate/internal/telegram"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer lg.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Wire services
	application, err := app.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	go application.SweepSessions(ctx, 5*time.Minute)

	srv := api.NewServer(api.Config{Addr: ":" + cfg.Port}, application.APIServices(), lg)

	// 3. Telegram Bot (optional)
	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBot(cfg, application.BotDeps(), lg)
		if err != nil {
			lg.Fatal("failed to initialize Telegram bot", zap.Error(err))
		}
		srv.Mount("/webhook", bot)
	} else {
		lg.Info("TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	// 4. Start Server with Graceful Shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			lg.Error("server failed", zap.Error(err))
		}
	}

	cancel()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		lg.Error("server forced to shutdown", zap.Error(err))
	}
	lg.Info("server exiting")
}
