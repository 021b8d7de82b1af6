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

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Store    StoreConfig
	Firebase FirebaseConfig
	Webhook  WebhookConfig
	Suggest  SuggestConfig
	Delivery DeliveryConfig
	Telnyx   TelnyxConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
	MaxUploadBytes int64
}

type LogConfig struct {
	Level  string
	Format string // "console" or "json"
}

// StoreConfig selects the contact store. Driver is one of "sqlite",
// "firestore" or "postgres"; when empty it is inferred by Driver().
type StoreConfig struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsPath string
	Collection      string
	// Set by the Firestore client library itself; kept here so startup can
	// report which backend is in use.
	EmulatorHost string
}

type WebhookConfig struct {
	VerifyToken string
}

type SuggestConfig struct {
	Provider string // "gemini" or "openai"
	APIKey   string
	Model    string
	BaseURL  string
}

type DeliveryConfig struct {
	Backend        string // "log", "telnyx" or "kafka"
	Workers        int
	RatePerSec     int
	AttemptTimeout time.Duration
	SimulatedDelay time.Duration
}

type TelnyxConfig struct {
	APIKey     string
	FromNumber string
}

type KafkaConfig struct {
	Brokers     []string
	OutboxTopic string
}

type AuthConfig struct {
	AdminPassword string
	SigningKey    string
	Issuer        string
	TokenTTL      time.Duration
}

// Load returns application configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            getEnv("ENV", "development"),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 16<<20)),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", "")),
			SQLitePath:  getEnv("SQLITE_PATH", "reachout.db"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			Collection:      getEnv("FIRESTORE_COLLECTION", "contacts"),
			EmulatorHost:    getEnv("FIRESTORE_EMULATOR_HOST", ""),
		},
		Webhook: WebhookConfig{
			VerifyToken: getEnv("WEBHOOK_VERIFY_TOKEN", ""),
		},
		Suggest: SuggestConfig{
			Provider: strings.ToLower(getEnv("SUGGEST_PROVIDER", "gemini")),
			APIKey:   getEnv("SUGGEST_API_KEY", getEnv("GEMINI_API_KEY", "")),
			Model:    getEnv("SUGGEST_MODEL", ""),
			BaseURL:  getEnv("SUGGEST_BASE_URL", ""),
		},
		Delivery: DeliveryConfig{
			Backend:        strings.ToLower(getEnv("DELIVERY_BACKEND", "log")),
			Workers:        getEnvInt("DELIVERY_WORKERS", 1),
			RatePerSec:     getEnvInt("DELIVERY_RATE_PER_SEC", 0),
			AttemptTimeout: getEnvDuration("DELIVERY_ATTEMPT_TIMEOUT", 15*time.Second),
			SimulatedDelay: getEnvDuration("SIMULATED_SEND_DELAY", 0),
		},
		Telnyx: TelnyxConfig{
			APIKey:     getEnv("TELNYX_API_KEY", ""),
			FromNumber: getEnv("TELNYX_FROM_NUMBER", ""),
		},
		Kafka: KafkaConfig{
			Brokers:     getEnvList("KAFKA_BROKERS", nil),
			OutboxTopic: getEnv("KAFKA_OUTBOX_TOPIC", "sms-outbox"),
		},
		Auth: AuthConfig{
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
			SigningKey:    getEnv("JWT_SIGNING_KEY", ""),
			Issuer:        getEnv("JWT_ISSUER", "reachout"),
			TokenTTL:      getEnvDuration("TOKEN_TTL", 12*time.Hour),
		},
	}
}

// Driver resolves the contact store driver. An explicit STORE_DRIVER wins;
// otherwise DATABASE_URL selects postgres, FIREBASE_PROJECT_ID selects
// firestore, and SQLite is the fallback.
func (c *Config) Driver() string {
	switch {
	case c.Store.Driver != "":
		return c.Store.Driver
	case c.Store.DatabaseURL != "":
		return "postgres"
	case c.Firebase.ProjectID != "":
		return "firestore"
	default:
		return "sqlite"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
