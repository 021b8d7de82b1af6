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
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jredh-dev/reachout/internal/contacts"
)

// SQLite stores contacts in a single SQLite file.
type SQLite struct {
	conn *sql.DB
	now  func() time.Time
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS contacts (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	phone      TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);
`

// OpenSQLite creates or opens the SQLite database at path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer, many readers.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{conn: conn, now: time.Now}, nil
}

// Close shuts down the database connection.
func (db *SQLite) Close() error {
	return db.conn.Close()
}

// Insert adds a contact. The UNIQUE constraint on phone rejects duplicates
// within the same statement.
func (db *SQLite) Insert(ctx context.Context, name, phone string) (*contacts.Contact, error) {
	c, err := contacts.NewContact(name, phone, db.now())
	if err != nil {
		return nil, err
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO contacts (id, name, phone, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Phone, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, contacts.Duplicate()
		}
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return c, nil
}

// List returns all contacts ordered by name.
func (db *SQLite) List(ctx context.Context) ([]*contacts.Contact, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, phone, created_at FROM contacts ORDER BY name ASC, created_at ASC`,
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
		list = append(list, c)
	}
	return list, rows.Err()
}

// Delete removes a contact and reports whether a row was removed.
func (db *SQLite) Delete(ctx context.Context, id string) (bool, error) {
	if !contacts.ValidID(id) {
		return false, nil
	}
	res, err := db.conn.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return true
		}
		if code&0xff == sqlite3.SQLITE_CONSTRAINT {
			return strings.Contains(se.Error(), "UNIQUE")
		}
	}
	return false
}
