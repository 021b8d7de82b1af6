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

// Package broadcast validates bulk-send requests and fans them out to a
// DeliveryBackend, one call per recipient.
//
// Requests arrive as a transport-neutral RawRequest (the HTTP layer decodes
// multipart or JSON into it), pass through Validate, and the resulting
// Request is handed to an Executor. The executor never retries; backends that
// need durable retry (the Kafka outbox) provide it downstream.
package broadcast

import (
	"net/http"
	"strings"
)

// Recipient is a contact snapshot supplied by the caller. It is not re-read
// from the contact store at send time.
type Recipient struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Attachment is an optional image or video sent with the broadcast.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the attachment length in bytes.
func (a *Attachment) Size() int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}

// Message is what every recipient receives. BroadcastID is set by the
// Executor before delivery starts.
type Message struct {
	BroadcastID string
	Heading     string
	Content     string
	Media       *Attachment
}

// Text joins heading and content the way text-only channels render them.
func (m Message) Text() string {
	heading := strings.TrimSpace(m.Heading)
	content := strings.TrimSpace(m.Content)
	switch {
	case heading == "":
		return content
	case content == "":
		return heading
	default:
		return heading + "\n\n" + content
	}
}

// RawRequest is the undecoded form of a bulk-send request. Contacts holds the
// serialized recipient list exactly as the client sent it.
type RawRequest struct {
	Heading  string
	Content  string
	Contacts []byte
	Media    *Attachment
}

// Request is a validated bulk-send request.
type Request struct {
	Heading    string
	Content    string
	Media      *Attachment
	Recipients []Recipient
}

// Message returns the per-recipient payload of r.
func (r *Request) Message() Message {
	return Message{Heading: r.Heading, Content: r.Content, Media: r.Media}
}

// NewAttachment checks that data is an image or video. The declared content
// type is trusted only when it already says so; otherwise the bytes are sniffed.
func NewAttachment(filename, contentType string, data []byte) (*Attachment, error) {
	if len(data) == 0 {
		return nil, &Error{Kind: ErrUpload, Message: msgEmptyUpload}
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if !isMedia(ct) {
		ct = http.DetectContentType(data)
	}
	if !isMedia(ct) {
		return nil, &Error{Kind: ErrUpload, Message: msgUnsupportedMedia}
	}
	return &Attachment{Filename: filename, ContentType: ct, Data: data}, nil
}

func isMedia(ct string) bool {
	return strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/")
}
