// reachout - Contact list and bulk messaging dashboard
// Copyright (C) 2026  reachout contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/jredh-dev/reachout/config"
	"github.com/jredh-dev/reachout/internal/broadcast"
	"github.com/jredh-dev/reachout/internal/contacts"
	"github.com/jredh-dev/reachout/internal/database"
	"github.com/jredh-dev/reachout/internal/gohttp"
	"github.com/jredh-dev/reachout/internal/handlers"
	"github.com/jredh-dev/reachout/internal/logging"
	"github.com/jredh-dev/reachout/internal/sms"
	"github.com/jredh-dev/reachout/internal/suggest"
	"github.com/jredh-dev/reachout/internal/token"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("reachout %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", buildDate)
		os.Exit(0)
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := database.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open contact store: %w", err)
	}

	backend, closeBackend, err := deliveryBackend(cfg, log)
	if err != nil {
		store.Close()
		return err
	}
	executor := broadcast.NewExecutor(backend, broadcast.Options{
		Workers:        cfg.Delivery.Workers,
		RatePerSec:     cfg.Delivery.RatePerSec,
		AttemptTimeout: cfg.Delivery.AttemptTimeout,
	}, log)

	gen, err := suggest.FromConfig(cfg.Suggest)
	if err != nil {
		store.Close()
		closeBackend()
		return err
	}
	if gen == nil {
		log.Warn().Msg("no SUGGEST_API_KEY or GEMINI_API_KEY set; /api/generate-content will answer 503")
	}

	if cfg.Webhook.VerifyToken == "" {
		log.Warn().Msg("WEBHOOK_VERIFY_TOKEN not set; webhook verification will always be rejected")
	}

	tokens, err := tokenService(cfg, log)
	if err != nil {
		store.Close()
		closeBackend()
		return err
	}

	h := handlers.New(handlers.Deps{
		Contacts:     contacts.NewService(store, log),
		Executor:     executor,
		Suggest:      suggest.New(gen, log),
		Tokens:       tokens,
		WebhookToken: cfg.Webhook.VerifyToken,
		MaxUpload:    cfg.Server.MaxUploadBytes,
		Log:          log,
	})

	srv := gohttp.New(gohttp.Options{AllowedOrigins: cfg.Server.AllowedOrigins}, log)
	h.Routes(srv.Router)
	srv.OnStop(func() {
		if err := closeBackend(); err != nil {
			log.Error().Err(err).Msg("close delivery backend")
		}
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("close contact store")
		}
	})

	log.Info().
		Str("version", version).
		Str("env", cfg.Server.Env).
		Str("store", cfg.Driver()).
		Str("delivery", executor.Backend()).
		Bool("suggest", gen != nil).
		Bool("auth", tokens != nil).
		Msg("reachout starting")

	return srv.ListenAndServe(ctx, ":"+cfg.Server.Port)
}

// deliveryBackend builds the backend named by DELIVERY_BACKEND and a func
// releasing its resources.
func deliveryBackend(cfg *config.Config, log zerolog.Logger) (broadcast.DeliveryBackend, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Delivery.Backend {
	case "", "log":
		log.Warn().Msg("DELIVERY_BACKEND=log; broadcasts are logged, not delivered")
		return broadcast.NewLogBackend(log, cfg.Delivery.SimulatedDelay), noop, nil

	case "telnyx":
		if cfg.Telnyx.APIKey == "" || cfg.Telnyx.FromNumber == "" {
			return nil, nil, fmt.Errorf("delivery backend telnyx requires TELNYX_API_KEY and TELNYX_FROM_NUMBER")
		}
		sender := sms.NewTelnyxSender(cfg.Telnyx.APIKey, cfg.Telnyx.FromNumber)
		return sms.NewSenderBackend("telnyx", sender, log), noop, nil

	case "kafka":
		if len(cfg.Kafka.Brokers) == 0 {
			return nil, nil, fmt.Errorf("delivery backend kafka requires KAFKA_BROKERS")
		}
		outbox := sms.NewKafkaOutbox(cfg.Kafka.Brokers, cfg.Kafka.OutboxTopic, log)
		return outbox, outbox.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown delivery backend: %s", cfg.Delivery.Backend)
	}
}

// tokenService returns nil when no admin password is configured.
func tokenService(cfg *config.Config, log zerolog.Logger) (*token.Service, error) {
	if cfg.Auth.AdminPassword == "" {
		log.Warn().Msg("ADMIN_PASSWORD not set; the API is open to anyone who can reach it")
		return nil, nil
	}

	key := cfg.Auth.SigningKey
	if key == "" {
		var err error
		if key, err = token.GenerateSigningKey(); err != nil {
			return nil, err
		}
		log.Warn().Msg("JWT_SIGNING_KEY not set; using an ephemeral key, sessions end on restart")
	}
	return token.New(key, cfg.Auth.Issuer, cfg.Auth.AdminPassword, cfg.Auth.TokenTTL)
}
