package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jredh-dev/reachout/internal/token"
)

type loginReq struct {
	Password string `json:"password"`
}

type loginResp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login exchanges the admin password for a bearer token.
// POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.authEnabled() {
		h.writeError(w, r, token.ErrDisabled)
		return
	}

	var req loginReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil || req.Password == "" {
		jsonError(w, msgInvalidBody, http.StatusBadRequest)
		return
	}

	tok, exp, err := h.tokens.Login(req.Password)
	if err != nil {
		h.log.Warn().Str("remote", r.RemoteAddr).Msg("failed login")
		h.writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, loginResp{Token: tok, ExpiresAt: exp})
}

// RequireAuth checks the bearer token when login is enabled and passes
// every request through otherwise.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.authEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			jsonError(w, msgUnauthorized, http.StatusUnauthorized)
			return
		}
		if _, err := h.tokens.ValidateToken(strings.TrimSpace(raw)); err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) authEnabled() bool {
	return h.tokens != nil && h.tokens.Enabled()
}
