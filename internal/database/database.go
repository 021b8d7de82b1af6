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

// Package database provides the contact store drivers: SQLite (default),
// Firestore and PostgreSQL.
package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jredh-dev/reachout/config"
	"github.com/jredh-dev/reachout/internal/contacts"
)

// Open initializes the contact store selected by cfg.Driver().
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (contacts.Store, error) {
	driver := cfg.Driver()
	switch driver {
	case "sqlite", "sqlite3":
		if cfg.Store.DatabaseURL == "" && cfg.Firebase.ProjectID == "" && cfg.Store.Driver == "" {
			log.Warn().Str("path", cfg.Store.SQLitePath).Msg("no DATABASE_URL or FIREBASE_PROJECT_ID set; using local SQLite store")
		}
		db, err := OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", "sqlite").Str("path", cfg.Store.SQLitePath).Msg("contact store ready")
		return db, nil

	case "postgres", "postgresql":
		if cfg.Store.DatabaseURL == "" {
			return nil, fmt.Errorf("store driver %q requires DATABASE_URL", driver)
		}
		db, err := OpenPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", "postgres").Msg("contact store ready")
		return db, nil

	case "firestore":
		db, err := OpenFirestore(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsPath, cfg.Firebase.Collection)
		if err != nil {
			return nil, err
		}
		ev := log.Info().Str("driver", "firestore").Str("project", cfg.Firebase.ProjectID).Str("collection", cfg.Firebase.Collection)
		if cfg.Firebase.EmulatorHost != "" {
			ev = ev.Str("emulator", cfg.Firebase.EmulatorHost)
		}
		ev.Msg("contact store ready")
		return db, nil

	default:
		return nil, fmt.Errorf("unknown store driver: %s", driver)
	}
}
