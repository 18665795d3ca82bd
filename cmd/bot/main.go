package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"sleepscore-bot/internal/bot"
	"sleepscore-bot/internal/config"
	httpserver "sleepscore-bot/internal/http"
	"sleepscore-bot/internal/repository"
	"sleepscore-bot/internal/store"
	"sleepscore-bot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "sleepscore-bot").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config error")
	}

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	st, err := store.New(dbCtx, cfg.DBURL, store.Options{
		MaxConns:        int32(cfg.DBMaxConns),
		MinConns:        int32(cfg.DBMinConns),
		MaxConnIdleTime: time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime: time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:     time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		Logger:          logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer st.Close()

	tg, err := telegram.NewHTTPClient(cfg.TelegramAPIURL, cfg.Token, time.Duration(cfg.TelegramTimeoutS)*time.Second, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init telegram client")
	}

	if err := bootstrap(ctx, tg, cfg.WebhookBaseURL); err != nil {
		logger.Fatal().Err(err).Msg("register with telegram")
	}

	repo := repository.New(st)
	b := bot.New(repo.Records, tg, logger)
	server := httpserver.New(cfg, st, b, logger)

	logger.Info().Str("port", cfg.Port).Msg("webhook gateway starting")

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("server error")
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}

// bootstrap registers the command menu and the webhook URL with Telegram.
// The process must not serve traffic with an unregistered webhook, so any
// failure here is fatal to startup.
func bootstrap(ctx context.Context, tg telegram.Client, baseURL string) error {
	if err := tg.SetChatMenuButton(ctx); err != nil {
		return err
	}
	if err := tg.SetMyCommands(ctx, []telegram.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "report", Description: "Get the report of your typical sleepiness"},
	}); err != nil {
		return err
	}
	return tg.SetWebhook(ctx, strings.TrimRight(baseURL, "/")+"/telegram")
}
