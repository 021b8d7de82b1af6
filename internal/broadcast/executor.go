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
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jredh-dev/reachout/internal/metrics"
)

const (
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

// Options tunes an Executor. Zero values mean: sequential, unpaced, no
// per-attempt timeout.
type Options struct {
	Workers        int
	RatePerSec     int
	AttemptTimeout time.Duration
}

// Outcome is the result for one recipient.
type Outcome struct {
	Recipient Recipient `json:"recipient"`
	Status    string    `json:"status"`
	Reference string    `json:"reference,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Report aggregates a broadcast. Count always equals the number of
// recipients and Outcomes holds one entry per recipient in input order.
type Report struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Count     int       `json:"count"`
	Delivered int       `json:"delivered"`
	Failed    int       `json:"failed"`
	Outcomes  []Outcome `json:"outcomes"`
}

// Executor fans a validated request out to a DeliveryBackend.
type Executor struct {
	backend DeliveryBackend
	name    string
	opts    Options
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewExecutor creates an Executor over backend.
func NewExecutor(backend DeliveryBackend, opts Options, log zerolog.Logger) *Executor {
	e := &Executor{
		backend: backend,
		name:    backendName(backend),
		opts:    opts,
		log:     log.With().Str("component", "broadcast").Logger(),
	}
	if opts.RatePerSec > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.RatePerSec)
	}
	return e
}

// Backend returns the name of the configured backend.
func (e *Executor) Backend() string { return e.name }

// Execute delivers req to every recipient and returns the aggregate report.
// Per-recipient failures are recorded in the report, never returned.
func (e *Executor) Execute(ctx context.Context, req *Request) Report {
	start := time.Now()
	id := ulid.Make().String()
	msg := req.Message()
	msg.BroadcastID = id
	outcomes := make([]Outcome, len(req.Recipients))

	e.log.Info().
		Str("broadcast", id).
		Str("backend", e.name).
		Int("total", len(req.Recipients)).
		Bool("media", msg.Media != nil).
		Msg("broadcast started")

	if e.opts.Workers <= 1 {
		for i, r := range req.Recipients {
			outcomes[i] = e.sendOne(ctx, id, r, msg)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.opts.Workers)
		for i, r := range req.Recipients {
			g.Go(func() error {
				outcomes[i] = e.sendOne(gctx, id, r, msg)
				return nil
			})
		}
		_ = g.Wait()
	}

	rep := Report{
		ID:       id,
		Count:    len(outcomes),
		Outcomes: outcomes,
		Message:  fmt.Sprintf("Bulk message accepted for %d contacts.", len(outcomes)),
	}
	for _, o := range outcomes {
		if o.Status == StatusDelivered {
			rep.Delivered++
		} else {
			rep.Failed++
		}
	}

	ev := e.log.Info()
	if rep.Failed > 0 {
		ev = e.log.Warn()
	}
	ev.Str("broadcast", id).
		Int("total", rep.Count).
		Int("failed", rep.Failed).
		Dur("dur", time.Since(start)).
		Msg("broadcast finished")
	return rep
}

func (e *Executor) sendOne(ctx context.Context, id string, to Recipient, msg Message) Outcome {
	out := Outcome{Recipient: to}

	ref, err := e.attempt(ctx, to, msg)
	if err != nil {
		out.Status = StatusFailed
		out.Error = err.Error()
		metrics.Deliveries.WithLabelValues(e.name, StatusFailed).Inc()
		e.log.Warn().Str("broadcast", id).Str("to", to.Phone).Err(err).Msg("delivery failed")
		return out
	}
	out.Status = StatusDelivered
	out.Reference = ref
	metrics.Deliveries.WithLabelValues(e.name, StatusDelivered).Inc()
	return out
}

func (e *Executor) attempt(ctx context.Context, to Recipient, msg Message) (string, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	if e.opts.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.AttemptTimeout)
		defer cancel()
	}
	return e.backend.Send(ctx, to, msg)
}
