// Package suggest drafts broadcast content from a heading using an external
// text-generation provider.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jredh-dev/reachout/internal/metrics"
)

var (
	ErrNotConfigured    = errors.New("content generation is not configured")
	ErrHeadingRequired  = errors.New("heading is required")
	ErrGenerationFailed = errors.New("content generation failed")
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gateway is the server-side call-through to a Generator. Provider
// credentials stay inside the Generator and never reach clients.
type Gateway struct {
	gen Generator
	log zerolog.Logger
}

// New creates a Gateway. A nil gen leaves the gateway unconfigured: every
// call fails with ErrNotConfigured without touching the network.
func New(gen Generator, log zerolog.Logger) *Gateway {
	return &Gateway{gen: gen, log: log.With().Str("component", "suggest").Logger()}
}

// Configured reports whether a generator is present.
func (g *Gateway) Configured() bool { return g.gen != nil }

// Suggest returns draft message content for heading. Downstream failures of
// any kind are wrapped in ErrGenerationFailed and not retried.
func (g *Gateway) Suggest(ctx context.Context, heading string) (string, error) {
	if g.gen == nil {
		metrics.Suggestions.WithLabelValues("not_configured").Inc()
		return "", ErrNotConfigured
	}
	heading = strings.TrimSpace(heading)
	if heading == "" {
		metrics.Suggestions.WithLabelValues("invalid").Inc()
		return "", ErrHeadingRequired
	}

	text, err := g.gen.Generate(ctx, Prompt(heading))
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty response")
	}
	if err != nil {
		metrics.Suggestions.WithLabelValues("error").Inc()
		g.log.Error().Err(err).Str("heading", heading).Msg("generation failed")
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	metrics.Suggestions.WithLabelValues("ok").Inc()
	return strings.TrimSpace(text), nil
}

// Prompt is the instruction sent to the provider for heading.
func Prompt(heading string) string {
	return "Write a short, friendly message body for a bulk SMS broadcast with the heading " +
		fmt.Sprintf("%q. ", heading) +
		"Keep it under 300 characters, plain text only, no hashtags and no placeholders."
}
