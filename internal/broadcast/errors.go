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

package broadcast

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrEmptyRecipients  = errors.New("empty recipients")
	ErrEmptyMessage     = errors.New("empty message")
	ErrUpload           = errors.New("upload error")

	// ErrUploadTooLarge is an ErrUpload.
	ErrUploadTooLarge = fmt.Errorf("%w: too large", ErrUpload)
)

const (
	msgMalformed        = "Contacts must be a JSON array of objects with a phone number."
	msgEmptyRecipients  = "Select at least one contact."
	msgEmptyMessage     = "Message content or a media attachment is required."
	msgEmptyUpload      = "Uploaded media file is empty."
	msgUnsupportedMedia = "Only image or video attachments are supported."
	msgUploadTooLarge   = "Uploaded media file is too large."
	msgUploadRead       = "Could not read uploaded media file."
)

// Error pairs an error kind with the message shown to the user.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

// UploadTooLarge is returned by transports when the attachment exceeds the
// configured limit.
func UploadTooLarge() error { return &Error{Kind: ErrUploadTooLarge, Message: msgUploadTooLarge} }

// UploadUnreadable is returned by transports when the attachment stream fails.
func UploadUnreadable() error { return &Error{Kind: ErrUpload, Message: msgUploadRead} }
