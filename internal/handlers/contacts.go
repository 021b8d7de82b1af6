package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createContactReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ListContacts returns every contact sorted by name.
// GET /api/contacts
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	list, err := h.contacts.ListContacts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, list)
}

// CreateContact adds a contact.
// POST /api/contacts
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req createContactReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		jsonError(w, msgInvalidBody, http.StatusBadRequest)
		return
	}

	c, err := h.contacts.CreateContact(r.Context(), req.Name, req.Phone)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusCreated, c)
}

// DeleteContact removes a contact by id.
// DELETE /api/contacts/{id}
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.contacts.DeleteContact(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, map[string]bool{"success": true})
}
