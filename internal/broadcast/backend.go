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
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DeliveryBackend performs delivery to a single recipient. It returns a
// backend reference (provider message id, outbox key) on success.
//
// Implementations must honour ctx; the executor bounds every call with a
// per-attempt timeout.
type DeliveryBackend interface {
	Send(ctx context.Context, to Recipient, msg Message) (string, error)
}

// Named is implemented by backends that report a name for logs and metrics.
type Named interface {
	Name() string
}

func backendName(b DeliveryBackend) string {
	if n, ok := b.(Named); ok {
		return n.Name()
	}
	return "custom"
}

// LogBackend delivers nothing: it logs each recipient and reports success.
// Delay simulates provider latency per recipient.
type LogBackend struct {
	log   zerolog.Logger
	delay time.Duration
}

// NewLogBackend creates a LogBackend.
func NewLogBackend(log zerolog.Logger, delay time.Duration) *LogBackend {
	return &LogBackend{log: log.With().Str("backend", "log").Logger(), delay: delay}
}

func (b *LogBackend) Name() string { return "log" }

func (b *LogBackend) Send(ctx context.Context, to Recipient, msg Message) (string, error) {
	if b.delay > 0 {
		t := time.NewTimer(b.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	}

	ev := b.log.Info().
		Str("to", to.Phone).
		Str("name", to.Name).
		Str("heading", msg.Heading).
		Int("content_len", len(msg.Content))
	if msg.Media != nil {
		ev = ev.Str("media", msg.Media.Filename).Str("media_type", msg.Media.ContentType).Int("media_bytes", msg.Media.Size())
	}
	ev.Msg("simulated delivery")
	return "", nil
}
