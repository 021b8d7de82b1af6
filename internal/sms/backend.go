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

package sms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	kafka "github.com/segmentio/kafka-go"

	"github.com/jredh-dev/reachout/internal/broadcast"
)

// SenderBackend delivers each recipient synchronously through a Sender.
type SenderBackend struct {
	name   string
	sender Sender
	log    zerolog.Logger
}

// NewSenderBackend adapts sender to broadcast.DeliveryBackend. name is used
// in logs and metrics.
func NewSenderBackend(name string, sender Sender, log zerolog.Logger) *SenderBackend {
	return &SenderBackend{
		name:   name,
		sender: sender,
		log:    log.With().Str("backend", name).Logger(),
	}
}

func (b *SenderBackend) Name() string { return b.name }

// Send returns the id of the OutboundMessage as the delivery reference.
func (b *SenderBackend) Send(ctx context.Context, to broadcast.Recipient, msg broadcast.Message) (string, error) {
	out := NewOutboundMessage(to, msg)
	if out.Media != nil {
		b.log.Debug().Str("id", out.ID).Str("media", out.Media.Filename).Msg("attachment not forwarded")
	}
	if err := b.sender.Send(ctx, out); err != nil {
		return "", err
	}
	b.log.Debug().Str("id", out.ID).Str("to", out.To).Msg("sent")
	return out.ID, nil
}

// MessageWriter is the producing half of a Kafka client. *kafka.Writer
// satisfies it.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OutboxBackend publishes one OutboundMessage per recipient to the outbox
// topic. Delivery counts as successful once the broker acknowledges the
// write; the sms-sender consumer owns retries from there.
type OutboxBackend struct {
	writer MessageWriter
	log    zerolog.Logger
}

// NewOutboxBackend creates an OutboxBackend over w.
func NewOutboxBackend(w MessageWriter, log zerolog.Logger) *OutboxBackend {
	return &OutboxBackend{writer: w, log: log.With().Str("backend", "kafka").Logger()}
}

// NewKafkaOutbox connects an OutboxBackend to brokers.
func NewKafkaOutbox(brokers []string, topic string, log zerolog.Logger) *OutboxBackend {
	if topic == "" {
		topic = OutboxTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewOutboxBackend(w, log)
}

func (b *OutboxBackend) Name() string { return "kafka" }

// Send keys the record by phone number so every message for one recipient
// lands on the same partition and is delivered in order.
func (b *OutboxBackend) Send(ctx context.Context, to broadcast.Recipient, msg broadcast.Message) (string, error) {
	out := NewOutboundMessage(to, msg)
	value, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal outbound message: %w", err)
	}
	if err := b.writer.WriteMessages(ctx, kafka.Message{Key: []byte(out.To), Value: value}); err != nil {
		return "", fmt.Errorf("publish to outbox: %w", err)
	}
	return out.ID, nil
}

// Close flushes and closes the underlying writer.
func (b *OutboxBackend) Close() error {
	return b.writer.Close()
}
