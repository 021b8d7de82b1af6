package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jredh-dev/reachout/config"
)

type stubGenerator struct {
	text   string
	err    error
	prompt string
	calls  int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	return s.text, s.err
}

func TestSuggest_NotConfigured(t *testing.T) {
	g := New(nil, zerolog.Nop())
	if g.Configured() {
		t.Fatal("expected unconfigured gateway")
	}
	// Checked before the heading.
	for _, heading := range []string{"Launch", ""} {
		if _, err := g.Suggest(context.Background(), heading); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("heading %q: expected ErrNotConfigured, got %v", heading, err)
		}
	}
}

func TestSuggest_NotConfiguredMakesNoNetworkCall(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hit = true }))
	defer srv.Close()

	gen, err := FromConfig(config.SuggestConfig{Provider: "gemini", BaseURL: srv.URL})
	if err != nil || gen != nil {
		t.Fatalf("expected no generator without a key, got %v, %v", gen, err)
	}
	if _, err := New(gen, zerolog.Nop()).Suggest(context.Background(), "Launch"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if hit {
		t.Error("unexpected request to provider")
	}
}

func TestSuggest_BlankHeading(t *testing.T) {
	stub := &stubGenerator{text: "x"}
	_, err := New(stub, zerolog.Nop()).Suggest(context.Background(), "   ")
	if !errors.Is(err, ErrHeadingRequired) {
		t.Fatalf("expected ErrHeadingRequired, got %v", err)
	}
	if stub.calls != 0 {
		t.Error("generator called for blank heading")
	}
}

func TestSuggest_WrapsFailures(t *testing.T) {
	cause := errors.New("quota exceeded")
	for _, stub := range []*stubGenerator{{err: cause}, {text: "  "}} {
		_, err := New(stub, zerolog.Nop()).Suggest(context.Background(), "Launch")
		if !errors.Is(err, ErrGenerationFailed) {
			t.Fatalf("expected ErrGenerationFailed, got %v", err)
		}
		if stub.err != nil && !errors.Is(err, cause) {
			t.Errorf("expected cause preserved, got %v", err)
		}
		if stub.calls != 1 {
			t.Errorf("expected exactly one attempt, got %d", stub.calls)
		}
	}
}

func TestSuggest_OK(t *testing.T) {
	stub := &stubGenerator{text: "  Big news today!\n"}
	got, err := New(stub, zerolog.Nop()).Suggest(context.Background(), " Summer Sale ")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if got != "Big news today!" {
		t.Errorf("unexpected text %q", got)
	}
	if !strings.Contains(stub.prompt, `"Summer Sale"`) {
		t.Errorf("prompt does not carry heading: %q", stub.prompt)
	}
}

func TestGeminiClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-test:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "secret" {
			t.Errorf("missing api key header")
		}
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("unexpected request: %+v (%v)", req, err)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hi "},{"text":"there"}]}}]}`))
	}))
	defer srv.Close()

	got, err := NewGemini(srv.URL, "secret", "gemini-test").Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "Hi there" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestGeminiClient_Errors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", http.StatusTooManyRequests, `{"error":{"code":429,"message":"Resource exhausted"}}`, "Resource exhausted"},
		{"not json", http.StatusBadGateway, `<html>`, "gemini http 502"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, "empty candidates"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewGemini(srv.URL, "k", "").Generate(context.Background(), "p")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestOpenAIClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Model != defaultOpenAIModel {
			t.Errorf("unexpected request: %+v (%v)", req, err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"Draft"}}]}`))
	}))
	defer srv.Close()

	got, err := NewOpenAI(srv.URL, "sk-test", "").Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "Draft" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestFromConfig(t *testing.T) {
	if g, _ := FromConfig(config.SuggestConfig{APIKey: "k"}); g == nil {
		t.Error("expected default gemini generator")
	} else if _, ok := g.(*GeminiClient); !ok {
		t.Errorf("expected *GeminiClient, got %T", g)
	}
	if g, _ := FromConfig(config.SuggestConfig{APIKey: "k", Provider: "openai"}); g == nil {
		t.Error("expected openai generator")
	} else if _, ok := g.(*OpenAIClient); !ok {
		t.Errorf("expected *OpenAIClient, got %T", g)
	}
	if _, err := FromConfig(config.SuggestConfig{APIKey: "k", Provider: "bard"}); err == nil {
		t.Error("expected unknown provider error")
	}
}
