package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/jredh-dev/reachout/internal/broadcast"
	"github.com/jredh-dev/reachout/internal/metrics"
)

// formOverhead is the allowance for non-file multipart fields on top of the
// media size limit.
const formOverhead = 1 << 20

type sendBulkJSON struct {
	Heading  string          `json:"heading"`
	Content  string          `json:"content"`
	Contacts json.RawMessage `json:"contacts"`
}

// SendBulk validates a broadcast and delivers it to every recipient before
// responding.
// POST /api/send-bulk
func (h *Handler) SendBulk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formOverhead)

	raw, err := h.decodeSendBulk(r)
	if err != nil {
		metrics.BroadcastRequests.WithLabelValues(rejection(err)).Inc()
		h.writeError(w, r, err)
		return
	}

	req, err := broadcast.Validate(raw)
	if err != nil {
		metrics.BroadcastRequests.WithLabelValues(rejection(err)).Inc()
		h.writeError(w, r, err)
		return
	}
	metrics.BroadcastRequests.WithLabelValues("accepted").Inc()

	rep := h.executor.Execute(r.Context(), req)
	jsonOK(w, http.StatusOK, rep)
}

// decodeSendBulk reads multipart/form-data or a JSON body into a RawRequest.
func (h *Handler) decodeSendBulk(r *http.Request) (broadcast.RawRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body sendBulkJSON
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			if isTooLarge(err) {
				return broadcast.RawRequest{}, broadcast.UploadTooLarge()
			}
			return broadcast.RawRequest{}, &broadcast.Error{Kind: broadcast.ErrMalformedPayload, Message: msgInvalidBody}
		}
		return broadcast.RawRequest{Heading: body.Heading, Content: body.Content, Contacts: body.Contacts}, nil
	}

	if err := r.ParseMultipartForm(formOverhead); err != nil {
		if isTooLarge(err) {
			return broadcast.RawRequest{}, broadcast.UploadTooLarge()
		}
		return broadcast.RawRequest{}, &broadcast.Error{Kind: broadcast.ErrMalformedPayload, Message: msgInvalidBody}
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	raw := broadcast.RawRequest{
		Heading:  r.FormValue("heading"),
		Content:  r.FormValue("content"),
		Contacts: []byte(r.FormValue("contacts")),
	}

	file, fh, err := r.FormFile("media")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return raw, nil
	case err != nil:
		return raw, broadcast.UploadUnreadable()
	}
	defer file.Close()

	if fh.Size > h.maxUpload {
		return raw, broadcast.UploadTooLarge()
	}
	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		return raw, broadcast.UploadUnreadable()
	}
	if int64(len(data)) > h.maxUpload {
		return raw, broadcast.UploadTooLarge()
	}

	raw.Media, err = broadcast.NewAttachment(fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		return raw, err
	}
	return raw, nil
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func rejection(err error) string {
	switch {
	case errors.Is(err, broadcast.ErrMalformedPayload):
		return "malformed"
	case errors.Is(err, broadcast.ErrEmptyRecipients):
		return "empty_recipients"
	case errors.Is(err, broadcast.ErrEmptyMessage):
		return "empty_message"
	case errors.Is(err, broadcast.ErrUploadTooLarge):
		return "too_large"
	case errors.Is(err, broadcast.ErrUpload):
		return "upload"
	default:
		return "error"
	}
}
