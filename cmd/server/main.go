package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/simaogato/bankflow/internal/adapter/authority"
	"github.com/simaogato/bankflow/internal/adapter/httpapi"
	"github.com/simaogato/bankflow/internal/config"
	"github.com/simaogato/bankflow/internal/usecase/accounts"
	"github.com/simaogato/bankflow/internal/usecase/disclosure"
	"github.com/simaogato/bankflow/internal/usecase/feedback"
	"github.com/simaogato/bankflow/internal/usecase/transfer"
)

const startupTimeout = 15 * time.Second

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Setup logging
	setupLogging(cfg)

	// 3. Authority client with persisted credentials
	creds := authority.NewCredentials(cfg.TokenPath)
	if err := creds.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load stored credentials")
	}

	client := authority.NewClient(cfg.AuthorityBaseURL, creds, log.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if creds.Token() == "" || creds.Expired(time.Now()) {
		if cfg.AuthorityEmail == "" || cfg.AuthorityPassword == "" {
			log.Fatal().Msg("No valid token and AUTHORITY_EMAIL/AUTHORITY_PASSWORD not set")
		}
		if err := client.Login(ctx, cfg.AuthorityEmail, cfg.AuthorityPassword); err != nil {
			log.Fatal().Err(err).Msg("Failed to authenticate with the banking authority")
		}
		log.Info().Msg("Authenticated with the banking authority")
	}

	// 4. Account cache with periodic refresh
	cache := accounts.NewCache(log.Logger)
	refresher := accounts.NewRefresher(client, cache, log.Logger)
	if err := refresher.RefreshNow(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load accounts from the banking authority")
	}
	if err := refresher.Start(cfg.RefreshSchedule); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("Failed to start account refresher")
	}

	// 5. Session factory: each session gets its own timers
	factory := func() *transfer.Session {
		return transfer.NewSession(transfer.Config{
			Authority:  client,
			Accounts:   cache,
			Disclosure: disclosure.NewTimer(log.Logger),
			Feedback:   feedback.NewExpiry(),
			Hooks: transfer.Hooks{
				OnTransferSuccess: func(message string, shouldRefetch bool) {
					log.Info().Str("message", message).Bool("refetch", shouldRefetch).Msg("Transfer completed")
				},
			},
			MaxOtpRetries: cfg.MaxOtpRetries,
			Log:           log.Logger,
		})
	}

	// 6. HTTP server
	handler := httpapi.NewHandler(factory, cache, log.Logger)
	server := httpapi.NewServer(cfg.Port, handler, log.Logger)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve HTTP server")
		}
	}()

	// Graceful shutdown
	waitForShutdown(server, refresher)
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.DevMode {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *httpapi.Server, refresher *accounts.Refresher) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	refresher.Stop()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
