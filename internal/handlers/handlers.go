// Package handlers implements the reachout JSON API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jredh-dev/reachout/internal/broadcast"
	"github.com/jredh-dev/reachout/internal/contacts"
	"github.com/jredh-dev/reachout/internal/suggest"
	"github.com/jredh-dev/reachout/internal/token"
)

const defaultMaxUpload = 16 << 20

// Deps are the services the handlers call into. Tokens may be nil, in which
// case the API is open and /api/login answers 503.
type Deps struct {
	Contacts     *contacts.Service
	Executor     *broadcast.Executor
	Suggest      *suggest.Gateway
	Tokens       *token.Service
	WebhookToken string
	MaxUpload    int64
	Log          zerolog.Logger
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	contacts     *contacts.Service
	executor     *broadcast.Executor
	suggest      *suggest.Gateway
	tokens       *token.Service
	webhookToken string
	maxUpload    int64
	log          zerolog.Logger
}

// New creates a new Handler.
func New(d Deps) *Handler {
	if d.MaxUpload <= 0 {
		d.MaxUpload = defaultMaxUpload
	}
	return &Handler{
		contacts:     d.Contacts,
		executor:     d.Executor,
		suggest:      d.Suggest,
		tokens:       d.Tokens,
		webhookToken: d.WebhookToken,
		maxUpload:    d.MaxUpload,
		log:          d.Log.With().Str("component", "handlers").Logger(),
	}
}

// Routes mounts the API under /api on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Get("/webhook", h.VerifyWebhook)
		r.Post("/webhook", h.ReceiveWebhook)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Get("/contacts", h.ListContacts)
			r.Post("/contacts", h.CreateContact)
			r.Delete("/contacts/{id}", h.DeleteContact)
			r.Post("/send-bulk", h.SendBulk)
			r.Post("/generate-content", h.GenerateContent)
		})
	})
}

const (
	msgInvalidBody    = "Invalid request body."
	msgInternal       = "Internal server error."
	msgNotConfigured  = "Content generation is not configured."
	msgHeadingBlank   = "Heading is required."
	msgGenerateFailed = "Failed to generate content."
	msgLoginDisabled  = "Login is not enabled."
	msgBadPassword    = "Invalid password."
	msgUnauthorized   = "Authentication required."
)

// writeError maps a domain error to its status code and user message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	ev := h.log.Debug()
	if status >= 500 {
		ev = h.log.Error()
	}
	ev.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	jsonError(w, msg, status)
}

func classify(err error) (int, string) {
	var ce *contacts.Error
	var be *broadcast.Error
	switch {
	case errors.As(err, &ce):
		switch {
		case errors.Is(err, contacts.ErrDuplicateContact):
			return http.StatusConflict, ce.Message
		case errors.Is(err, contacts.ErrNotFound):
			return http.StatusNotFound, ce.Message
		case errors.Is(err, contacts.ErrValidation):
			return http.StatusBadRequest, ce.Message
		default:
			return http.StatusInternalServerError, ce.Message
		}
	case errors.As(err, &be):
		if errors.Is(err, broadcast.ErrUploadTooLarge) {
			return http.StatusRequestEntityTooLarge, be.Message
		}
		return http.StatusBadRequest, be.Message
	case errors.Is(err, suggest.ErrNotConfigured):
		return http.StatusServiceUnavailable, msgNotConfigured
	case errors.Is(err, suggest.ErrHeadingRequired):
		return http.StatusBadRequest, msgHeadingBlank
	case errors.Is(err, suggest.ErrGenerationFailed):
		return http.StatusInternalServerError, msgGenerateFailed
	case errors.Is(err, token.ErrDisabled):
		return http.StatusServiceUnavailable, msgLoginDisabled
	case errors.Is(err, token.ErrInvalidPassword):
		return http.StatusUnauthorized, msgBadPassword
	case errors.Is(err, token.ErrInvalidToken):
		return http.StatusUnauthorized, msgUnauthorized
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func jsonOK(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
