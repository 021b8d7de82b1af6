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

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jredh-dev/reachout/internal/contacts"
)

const pgUniqueViolation = "23505"

// Postgres stores contacts in a PostgreSQL table.
type Postgres struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS contacts (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	phone      TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);
`

// OpenPostgres connects to databaseURL and applies the schema.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Postgres{pool: pool, now: time.Now}, nil
}

// Close releases the pool.
func (db *Postgres) Close() error {
	db.pool.Close()
	return nil
}

// Insert adds a contact; a 23505 unique violation on phone maps to a duplicate.
func (db *Postgres) Insert(ctx context.Context, name, phone string) (*contacts.Contact, error) {
	c, err := contacts.NewContact(name, phone, db.now())
	if err != nil {
		return nil, err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO contacts (id, name, phone, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Phone, c.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, contacts.Duplicate()
		}
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return c, nil
}

// List returns all contacts ordered by name.
func (db *Postgres) List(ctx context.Context) ([]*contacts.Contact, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id::text, name, phone, created_at FROM contacts ORDER BY name ASC, created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*contacts.Contact
	for rows.Next() {
		c := &contacts.Contact{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = c.CreatedAt.UTC()
		list = append(list, c)
	}
	return list, rows.Err()
}

// Delete removes a contact and reports whether a row was removed.
func (db *Postgres) Delete(ctx context.Context, id string) (bool, error) {
	if !contacts.ValidID(id) {
		return false, nil
	}
	tag, err := db.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
