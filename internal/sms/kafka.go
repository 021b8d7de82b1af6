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
	"time"

	"github.com/rs/zerolog"
	kafka "github.com/segmentio/kafka-go"
)

const (
	// OutboxTopic is the default topic OutboxBackend publishes to.
	OutboxTopic = "sms-outbox"

	// DLQTopic receives messages that exhausted every retry, unchanged, with
	// the last error in the "error" header.
	DLQTopic = "sms-dlq"

	consumerGroup = "reachout-sms-sender"

	// maxRetries is the number of delivery attempts before a message is
	// routed to the DLQ.
	maxRetries = 3
)

// MessageReader is the consuming half of a Kafka client. *kafka.Reader
// satisfies it.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer drains the outbox topic and dispatches each message through a
// Sender. Offsets are committed after the message is either sent or parked
// on the DLQ, so delivery is at-least-once and a poison record never blocks
// the partition.
type Consumer struct {
	reader  MessageReader
	dlq     MessageWriter
	sender  Sender
	log     zerolog.Logger
	backoff time.Duration
}

// NewConsumer creates a Consumer reading topic from brokers.
func NewConsumer(brokers []string, topic string, sender Sender, log zerolog.Logger) *Consumer {
	if topic == "" {
		topic = OutboxTopic
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        consumerGroup,
		MinBytes:       1,
		MaxBytes:       1 << 20, // 1 MiB
		CommitInterval: 0,       // explicit commits only
		StartOffset:    kafka.LastOffset,
	})
	dlq := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        DLQTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return newConsumer(reader, dlq, sender, log)
}

func newConsumer(reader MessageReader, dlq MessageWriter, sender Sender, log zerolog.Logger) *Consumer {
	return &Consumer{
		reader:  reader,
		dlq:     dlq,
		sender:  sender,
		log:     log.With().Str("component", "sms-consumer").Logger(),
		backoff: 2 * time.Second,
	}
}

// Run blocks, consuming messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info().Msg("consuming outbox")

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch: %w", err)
		}

		if err := c.dispatch(ctx, m); err != nil {
			c.log.Error().Str("key", string(m.Key)).Err(err).Msg("routed message to DLQ")
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.log.Warn().Err(err).Msg("commit failed, message may be redelivered")
		}
	}
}

// Close releases all Kafka resources.
func (c *Consumer) Close() error {
	rerr := c.reader.Close()
	werr := c.dlq.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}

// dispatch sends m up to maxRetries times with linear backoff and parks it
// on the DLQ when every attempt fails.
func (c *Consumer) dispatch(ctx context.Context, m kafka.Message) error {
	var msg OutboundMessage
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		return c.sendToDLQ(ctx, m, fmt.Errorf("unmarshal: %w", err))
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = c.sender.Send(ctx, msg)
		if lastErr == nil {
			c.log.Info().Str("id", msg.ID).Str("broadcast", msg.BroadcastID).Str("to", msg.To).Int("attempt", attempt).Msg("sent")
			return nil
		}

		c.log.Warn().Str("id", msg.ID).Int("attempt", attempt).Int("max", maxRetries).Err(lastErr).Msg("send failed")

		if attempt < maxRetries {
			select {
			case <-time.After(time.Duration(attempt) * c.backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return c.sendToDLQ(ctx, m, lastErr)
}

func (c *Consumer) sendToDLQ(ctx context.Context, original kafka.Message, reason error) error {
	err := c.dlq.WriteMessages(ctx, kafka.Message{
		Key:     original.Key,
		Value:   original.Value,
		Headers: []kafka.Header{{Key: "error", Value: []byte(reason.Error())}},
	})
	if err != nil {
		c.log.Error().Err(err).Msg("could not write to DLQ")
	}
	return reason
}
