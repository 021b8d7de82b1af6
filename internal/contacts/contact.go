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

// Package contacts holds the contact model, the storage contract every
// contact store driver implements, and the service that validates requests
// and translates storage errors for the API layer.
package contacts

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// e164Pattern matches "+" followed by up to 15 digits, first digit 1-9.
var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// Contact is a single entry of the contact list.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the persistence contract for contacts.
//
// Insert must enforce phone uniqueness as part of the write itself (unique
// index or transactional create); drivers never check-then-insert.
type Store interface {
	Insert(ctx context.Context, name, phone string) (*Contact, error)
	// List returns every contact sorted by name ascending.
	List(ctx context.Context) ([]*Contact, error)
	// Delete reports false when the id is absent or malformed.
	Delete(ctx context.Context, id string) (bool, error)
	Close() error
}

// ValidPhone reports whether phone is in E.164 form.
func ValidPhone(phone string) bool {
	return e164Pattern.MatchString(phone)
}

// ValidID reports whether id has the shape of an id produced by NewContact.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// NewContact builds a contact ready for insertion: it trims the name,
// checks the E.164 shape and assigns the id and creation time. Store drivers
// call it at the top of Insert.
func NewContact(name, phone string, now time.Time) (*Contact, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return nil, validation(msgNameRequired)
	}
	if !ValidPhone(phone) {
		return nil, validation(msgPhoneFormat)
	}
	return &Contact{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     phone,
		CreatedAt: now.UTC(),
	}, nil
}
