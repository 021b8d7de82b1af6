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

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrDuplicateContact = errors.New("duplicate contact")
	ErrNotFound         = errors.New("contact not found")
	ErrStoreUnavailable = errors.New("contact store unavailable")
)

// User-facing messages. The duplicate message is part of the API contract.
const (
	msgNameRequired  = "Name is required."
	msgPhoneRequired = "Phone number is required."
	msgPhoneFormat   = "Phone number must be in E.164 format (e.g. +12125551234)."
	msgDuplicate     = "Phone number already exists."
	msgInvalidID     = "Invalid contact id."
	msgNotFound      = "Contact not found."
	msgUnavailable   = "Contact store is unavailable."
)

// Error pairs an error kind with the message shown to the user.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func validation(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

// Duplicate is returned by store drivers when the phone is already taken.
func Duplicate() error { return &Error{Kind: ErrDuplicateContact, Message: msgDuplicate} }

// Message returns the user-facing text for err, falling back to fallback
// for errors that carry none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
