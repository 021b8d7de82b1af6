package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jredh-dev/reachout/internal/broadcast"
	"github.com/jredh-dev/reachout/internal/contacts"
	"github.com/jredh-dev/reachout/internal/database"
	"github.com/jredh-dev/reachout/internal/suggest"
	"github.com/jredh-dev/reachout/internal/token"
)

type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) Generate(context.Context, string) (string, error) { return s.text, s.err }

type testOpts struct {
	gen       suggest.Generator
	tokens    *token.Service
	maxUpload int64
}

func testHandler(t *testing.T, opts testOpts) *Handler {
	t.Helper()
	db, err := database.OpenSQLite(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := zerolog.Nop()
	return New(Deps{
		Contacts:     contacts.NewService(db, log),
		Executor:     broadcast.NewExecutor(broadcast.NewLogBackend(log, 0), broadcast.Options{}, log),
		Suggest:      suggest.New(opts.gen, log),
		Tokens:       opts.tokens,
		WebhookToken: "s3cret",
		MaxUpload:    opts.maxUpload,
		Log:          log,
	})
}

func testRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body %q: %v", w.Body.String(), err)
	}
	return body.Message
}

func TestCreateContact_DuplicatePhone(t *testing.T) {
	r := testRouter(testHandler(t, testOpts{}))

	w := do(r, http.MethodPost, "/api/contacts", `{"name":"Jane Doe","phone":"+12125551234"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created contacts.Contact
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.ID == "" || created.Name != "Jane Doe" || created.CreatedAt.IsZero() {
		t.Errorf("unexpected contact: %+v", created)
	}

	w = do(r, http.MethodPost, "/api/contacts", `{"name":"Jane Again","phone":"+12125551234"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", w.Code)
	}
	if got := message(t, w); got != "Phone number already exists." {
		t.Errorf("unexpected message %q", got)
	}

	w = do(r, http.MethodGet, "/api/contacts", "")
	var list []contacts.Contact
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 contact after duplicate, got %d", len(list))
	}
}

func TestCreateContact_Validation(t *testing.T) {
	r := testRouter(testHandler(t, testOpts{}))

	cases := []struct {
		name string
		body string
		want string
	}{
		{"blank name", `{"name":"  ","phone":"+12125551234"}`, "Name is required."},
		{"blank phone", `{"name":"Jane","phone":""}`, "Phone number is required."},
		{"not e164", `{"name":"Jane","phone":"212-555-1234"}`, "Phone number must be in E.164 format (e.g. +12125551234)."},
		{"bad json", `{"name":`, msgInvalidBody},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/contacts", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if got := message(t, w); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestListContacts_Empty(t *testing.T) {
	r := testRouter(testHandler(t, testOpts{}))
	w := do(r, http.MethodGet, "/api/contacts", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("expected 200 [], got %d %q", w.Code, w.Body.String())
	}
}

func TestDeleteContact(t *testing.T) {
	r := testRouter(testHandler(t, testOpts{}))

	w := do(r, http.MethodPost, "/api/contacts", `{"name":"Zoe","phone":"+10000000001"}`)
	var c contacts.Contact
	json.Unmarshal(w.Body.Bytes(), &c)

	w = do(r, http.MethodDelete, "/api/contacts/"+c.ID, "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"success":true}` {
		t.Fatalf("delete: expected 200 success, got %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodDelete, "/api/contacts/"+c.ID, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", w.Code)
	}

	w = do(r, http.MethodDelete, "/api/contacts/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed id: expected 400, got %d", w.Code)
	}
}

type part struct {
	field, filename, contentType string
	data                         []byte
}

func multipartRequest(t *testing.T, fields map[string]string, file *part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if file != nil {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.filename+`"`)
		hdr.Set("Content-Type", file.contentType)
		pw, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatal(err)
		}
		pw.Write(file.data)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/send-bulk", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestSendBulk(t *testing.T) {
	r := testRouter(testHandler(t, testOpts{maxUpload: 1024}))
	two := `[{"name":"Jane","phone":"+12125551234"},{"name":"Amy","phone":"+10000000002"}]`

	cases := []struct {
		name   string
		fields map[string]string
		file   *part
		status int
		msg    string
	}{
		{"accepted", map[string]string{"heading": "Sale", "content": "50% off", "contacts": two}, nil, 200, "Bulk message accepted for 2 contacts."},
		{"media only", map[string]string{"contacts": two}, &part{"media", "a.png", "image/png", png}, 200, "Bulk message accepted for 2 contacts."},
		{"empty recipients", map[string]string{"content": "hi", "contacts": "[]"}, nil, 400, "Select at least one contact."},
		{"empty message", map[string]string{"contacts": two}, nil, 400, "Message content or a media attachment is required."},
		{"malformed", map[string]string{"content": "hi", "contacts": "Jane"}, nil, 400, "Contacts must be a JSON array of objects with a phone number."},
		{"missing contacts", map[string]string{"content": "hi"}, nil, 400, "Contacts must be a JSON array of objects with a phone number."},
		{"not media", map[string]string{"content": "hi", "contacts": two}, &part{"media", "a.txt", "text/plain", []byte("hello")}, 400, "Only image or video attachments are supported."},
		{"too large", map[string]string{"content": "hi", "contacts": two}, &part{"media", "big.png", "image/png", bytes.Repeat([]byte{1}, 4096)}, 413, "Uploaded media file is too large."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, multipartRequest(t, tc.fields, tc.file))
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if got := message(t, w); got != tc.msg {
				t.Errorf("expected message %q, got %q", tc.msg, got)
			}
		})
	}
}

func TestSendBulk_Report(t *testing.T) {
	r := testRouter(testHandler(t, testOpts{}))

	body := `{"heading":"Launch","content":"We are live","contacts":[{"name":"Jane","phone":"+12125551234"},{"name":"Amy","phone":"+10000000002"},{"name":"Zoe","phone":"+10000000001"}]}`
	w := do(r, http.MethodPost, "/api/send-bulk", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var rep broadcast.Report
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rep.Count != 3 || rep.Delivered != 3 || len(rep.Outcomes) != 3 || rep.ID == "" {
		t.Errorf("unexpected report: %+v", rep)
	}
}

func TestGenerateContent(t *testing.T) {
	cases := []struct {
		name   string
		gen    suggest.Generator
		body   string
		status int
		want   string
	}{
		{"not configured", nil, `{"heading":"Sale"}`, 503, msgNotConfigured},
		{"blank heading", stubGenerator{text: "x"}, `{"heading":"  "}`, 400, msgHeadingBlank},
		{"downstream failure", stubGenerator{err: errors.New("quota")}, `{"heading":"Sale"}`, 500, msgGenerateFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := testRouter(testHandler(t, testOpts{gen: tc.gen}))
			w := do(r, http.MethodPost, "/api/generate-content", tc.body)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if got := message(t, w); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}

	r := testRouter(testHandler(t, testOpts{gen: stubGenerator{text: "Everything 50% off today."}}))
	w := do(r, http.MethodPost, "/api/generate-content", `{"heading":"Sale"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["content"] != "Everything 50% off today." {
		t.Errorf("unexpected content %q", body["content"])
	}
}

func TestWebhook(t *testing.T) {
	r := testRouter(testHandler(t, testOpts{}))

	cases := []struct {
		name   string
		query  string
		status int
		body   string
	}{
		{"verified", "hub.mode=subscribe&hub.verify_token=s3cret&hub.challenge=12345", 200, "12345"},
		{"wrong token", "hub.mode=subscribe&hub.verify_token=nope&hub.challenge=12345", 403, ""},
		{"wrong mode", "hub.mode=unsubscribe&hub.verify_token=s3cret&hub.challenge=12345", 403, ""},
		{"missing params", "hub.mode=subscribe", 400, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/api/webhook?"+tc.query, "")
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if tc.body != "" && w.Body.String() != tc.body {
				t.Errorf("expected body %q, got %q", tc.body, w.Body.String())
			}
		})
	}

	w := do(r, http.MethodPost, "/api/webhook", `{"object":"page","entry":[{"id":"1"}]}`)
	if w.Code != http.StatusOK || w.Body.String() != "EVENT_RECEIVED" {
		t.Errorf("event: expected 200 EVENT_RECEIVED, got %d %q", w.Code, w.Body.String())
	}
	w = do(r, http.MethodPost, "/api/webhook", `not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad event: expected 400, got %d", w.Code)
	}
}

func TestWebhook_UnsetSecretNeverMatches(t *testing.T) {
	h := testHandler(t, testOpts{})
	h.webhookToken = ""
	w := do(testRouter(h), http.MethodGet, "/api/webhook?hub.mode=subscribe&hub.verify_token=x&hub.challenge=1", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAuth(t *testing.T) {
	tokens, err := token.New("test-signing-key", "reachout", "hunter2", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	r := testRouter(testHandler(t, testOpts{tokens: tokens}))

	if w := do(r, http.MethodGet, "/api/contacts", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", w.Code)
	}

	if w := do(r, http.MethodPost, "/api/login", `{"password":"wrong"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", w.Code)
	}

	w := do(r, http.MethodPost, "/api/login", `{"password":"hunter2"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp loginResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("unexpected login response %s (%v)", w.Body.String(), err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("with token: expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token+"x")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("tampered token: expected 401, got %d", w.Code)
	}

	// The webhook stays reachable for the platform.
	if w := do(r, http.MethodGet, "/api/webhook?hub.mode=subscribe&hub.verify_token=s3cret&hub.challenge=1", ""); w.Code != http.StatusOK {
		t.Errorf("webhook behind auth: got %d", w.Code)
	}
}

func TestLogin_Disabled(t *testing.T) {
	r := testRouter(testHandler(t, testOpts{}))
	if w := do(r, http.MethodPost, "/api/login", `{"password":"x"}`); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/contacts", ""); w.Code != http.StatusOK {
		t.Fatalf("open API: expected 200, got %d", w.Code)
	}
}
