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

// sms-sender is a long-running Kafka consumer that reads outbound messages
// from the outbox topic and delivers them through Telnyx.
//
// Configuration is done entirely via environment variables:
//
//	KAFKA_BROKERS       comma-separated broker list, e.g. "kafka:9092"
//	KAFKA_OUTBOX_TOPIC  topic to consume (default "sms-outbox")
//	TELNYX_API_KEY      Telnyx API v2 key (starts with "KEY...")
//	TELNYX_FROM_NUMBER  E.164 number provisioned in Telnyx, e.g. "+15550001234"
//	LOG_LEVEL, LOG_FORMAT
package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/jredh-dev/reachout/config"
	"github.com/jredh-dev/reachout/internal/logging"
	"github.com/jredh-dev/reachout/internal/sms"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.Log.Level, cfg.Log.Format).With().Str("service", "sms-sender").Logger()

	requireSet(log, "KAFKA_BROKERS", strings.Join(cfg.Kafka.Brokers, ","))
	requireSet(log, "TELNYX_API_KEY", cfg.Telnyx.APIKey)
	requireSet(log, "TELNYX_FROM_NUMBER", cfg.Telnyx.FromNumber)

	sender := sms.NewTelnyxSender(cfg.Telnyx.APIKey, cfg.Telnyx.FromNumber)
	consumer := sms.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.OutboxTopic, sender, log)
	defer func() {
		if err := consumer.Close(); err != nil {
			log.Error().Err(err).Msg("error closing consumer")
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.OutboxTopic).
		Str("from", cfg.Telnyx.FromNumber).
		Msg("starting")
	if err := consumer.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("fatal error")
	}
	log.Info().Msg("shutdown complete")
}

// requireSet exits when a required setting is empty, so misconfiguration
// fails at startup instead of on the first message.
func requireSet(log zerolog.Logger, key, value string) {
	if value == "" {
		log.Fatal().Str("var", key).Msg("required environment variable is not set")
	}
}
