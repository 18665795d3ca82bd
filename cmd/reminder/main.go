// The reminder binary is a short-lived batch job: it prompts every known user
// to submit a fresh score and exits. It shares nothing with the gateway
// process but the database.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"sleepscore-bot/internal/bot"
	"sleepscore-bot/internal/config"
	"sleepscore-bot/internal/repository"
	"sleepscore-bot/internal/store"
	"sleepscore-bot/internal/telegram"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "sleepscore-reminder").Logger()

	cfg, err := config.LoadBatch()
	if err != nil {
		logger.Fatal().Err(err).Msg("config error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	st, err := store.New(ctx, cfg.DBURL, store.Options{
		MaxConns:    int32(cfg.DBMaxConns),
		MinConns:    int32(cfg.DBMinConns),
		ConnTimeout: time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer st.Close()

	tg, err := telegram.NewHTTPClient(cfg.TelegramAPIURL, cfg.Token, time.Duration(cfg.TelegramTimeoutS)*time.Second, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init telegram client")
	}

	repo := repository.New(st)
	b := bot.New(repo.Records, tg, logger)

	sent, failed, err := b.Broadcast(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("broadcast aborted")
	}

	// Individual delivery failures are best-effort by contract; the job still
	// exits zero so the scheduler does not retry the whole batch.
	logger.Info().Int("sent", sent).Int("failed", failed).Msg("reminder run complete")
}
