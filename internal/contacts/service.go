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

package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jredh-dev/reachout/internal/metrics"
)

// Service validates contact requests and maps store failures onto the
// package error kinds.
type Service struct {
	store Store
	log   zerolog.Logger
}

// NewService creates a Service over store.
func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{store: store, log: log.With().Str("component", "contacts").Logger()}
}

// CreateContact validates the raw input and inserts a new contact.
func (s *Service) CreateContact(ctx context.Context, rawName, rawPhone string) (*Contact, error) {
	if strings.TrimSpace(rawName) == "" {
		return nil, validation(msgNameRequired)
	}
	if strings.TrimSpace(rawPhone) == "" {
		return nil, validation(msgPhoneRequired)
	}

	c, err := s.store.Insert(ctx, rawName, rawPhone)
	switch {
	case err == nil:
	case errors.Is(err, ErrDuplicateContact), errors.Is(err, ErrValidation):
		return nil, err
	default:
		s.log.Error().Err(err).Msg("insert contact")
		return nil, unavailable(err)
	}

	metrics.ContactsCreated.Inc()
	s.log.Info().Str("id", c.ID).Str("phone", c.Phone).Msg("contact created")
	return c, nil
}

// ListContacts returns every contact sorted by name.
func (s *Service) ListContacts(ctx context.Context) ([]*Contact, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list contacts")
		return nil, unavailable(err)
	}
	if list == nil {
		list = []*Contact{}
	}
	return list, nil
}

// DeleteContact removes the contact with the given id. Deleting an id that
// is already gone reports ErrNotFound.
func (s *Service) DeleteContact(ctx context.Context, id string) error {
	if !ValidID(id) {
		return validation(msgInvalidID)
	}

	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("delete contact")
		return unavailable(err)
	}
	if !ok {
		return &Error{Kind: ErrNotFound, Message: msgNotFound}
	}

	metrics.ContactsDeleted.Inc()
	s.log.Info().Str("id", id).Msg("contact deleted")
	return nil
}

func unavailable(cause error) error {
	return fmt.Errorf("%w: %w", &Error{Kind: ErrStoreUnavailable, Message: msgUnavailable}, cause)
}
