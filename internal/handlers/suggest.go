package handlers

import (
	"encoding/json"
	"net/http"
)

type generateContentReq struct {
	Heading string `json:"heading"`
}

// GenerateContent drafts message content for a heading.
// POST /api/generate-content
func (h *Handler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	var req generateContentReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		jsonError(w, msgInvalidBody, http.StatusBadRequest)
		return
	}

	text, err := h.suggest.Suggest(r.Context(), req.Heading)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, map[string]string{"content": text})
}
