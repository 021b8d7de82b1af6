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

// Package sms carries broadcast deliveries to SMS providers, either directly
// (SenderBackend over a Sender such as Telnyx) or through a Kafka outbox that
// the sms-sender consumer drains.
package sms

import (
	"github.com/google/uuid"

	"github.com/jredh-dev/reachout/internal/broadcast"
)

// OutboundMessage is the record published to the outbox topic, one per
// recipient of a broadcast.
//
//	{
//	  "id":        "550e8400-e29b-41d4-a716-446655440000",
//	  "broadcast": "01JA2Z8Q6V7W1N4X3K5T9B0C2D",
//	  "to":        "+15551234567",
//	  "name":      "Jane Doe",
//	  "body":      "Launch\n\nWe are live",
//	  "media":     {"filename": "poster.png", "contentType": "image/png", "size": 20480}
//	}
type OutboundMessage struct {
	// ID identifies this delivery. Consumers log it with every attempt so
	// replays of a partition can be matched against earlier sends.
	ID string `json:"id"`

	BroadcastID string `json:"broadcast,omitempty"`

	// To is the destination phone number as supplied by the caller.
	To   string `json:"to"`
	Name string `json:"name,omitempty"`

	// Body is heading and content joined for text-only channels.
	Body string `json:"body"`

	// Media describes the attachment. The bytes themselves are not carried
	// on the topic.
	Media *MediaInfo `json:"media,omitempty"`
}

// MediaInfo is attachment metadata.
type MediaInfo struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// NewOutboundMessage builds the message for one recipient with a fresh id.
func NewOutboundMessage(to broadcast.Recipient, msg broadcast.Message) OutboundMessage {
	out := OutboundMessage{
		ID:          uuid.NewString(),
		BroadcastID: msg.BroadcastID,
		To:          to.Phone,
		Name:        to.Name,
		Body:        msg.Text(),
	}
	if msg.Media != nil {
		out.Media = &MediaInfo{
			Filename:    msg.Media.Filename,
			ContentType: msg.Media.ContentType,
			Size:        msg.Media.Size(),
		}
	}
	return out
}
