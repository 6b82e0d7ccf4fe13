package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/tally/internal/gemini"
	"github.com/JaimeStill/tally/pkg/schema"
)

type answer struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(baseURL string) *gemini.Config {
	return &gemini.Config{
		Provider:     gemini.ProviderREST,
		BaseURL:      baseURL,
		APIVersion:   "v1beta",
		Model:        "test-model",
		APIKey:       "secret",
		Timeout:      "2s",
		RetryBackoff: "1ms",
	}
}

func testRequest() gemini.Request {
	return gemini.Request{
		System:  "policy text",
		Context: `{"user_answer":"x"}`,
		Schema:  schema.For[answer](),
	}
}

func envelope(text string) string {
	data, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	})
	return string(data)
}

func TestClientGenerate(t *testing.T) {
	var captured struct {
		path   string
		key    string
		method string
		body   map[string]any
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.key = r.Header.Get("x-goog-api-key")
		captured.method = r.Method
		json.NewDecoder(r.Body).Decode(&captured.body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, envelope(`{"label":"a","score":0.5}`))
	}))
	defer srv.Close()

	c := gemini.NewClient(testConfig(srv.URL), discard())

	text, err := c.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if text != `{"label":"a","score":0.5}` {
		t.Errorf("text = %q", text)
	}

	t.Run("request shape", func(t *testing.T) {
		if captured.method != http.MethodPost {
			t.Errorf("method = %s, want POST", captured.method)
		}
		if captured.path != "/v1beta/models/test-model:generateContent" {
			t.Errorf("path = %s", captured.path)
		}
		if captured.key != "secret" {
			t.Errorf("api key header = %q, want secret", captured.key)
		}
	})

	t.Run("payload fields", func(t *testing.T) {
		raw, _ := json.Marshal(captured.body)

		var p struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			SystemInstruction struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"systemInstruction"`
			GenerationConfig struct {
				ResponseMimeType string         `json:"responseMimeType"`
				ResponseSchema   map[string]any `json:"responseSchema"`
			} `json:"generationConfig"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			t.Fatalf("decode payload: %v", err)
		}

		if len(p.Contents) != 1 || p.Contents[0].Parts[0].Text != `{"user_answer":"x"}` {
			t.Errorf("contents = %+v", p.Contents)
		}
		if p.SystemInstruction.Parts[0].Text != "policy text" {
			t.Errorf("systemInstruction = %+v", p.SystemInstruction)
		}
		if p.GenerationConfig.ResponseMimeType != "application/json" {
			t.Errorf("responseMimeType = %q", p.GenerationConfig.ResponseMimeType)
		}
		if p.GenerationConfig.ResponseSchema["type"] != "OBJECT" {
			t.Errorf("schema type = %v", p.GenerationConfig.ResponseSchema["type"])
		}

		ordering, _ := p.GenerationConfig.ResponseSchema["propertyOrdering"].([]any)
		if diff := cmp.Diff([]any{"label", "score"}, ordering); diff != "" {
			t.Errorf("propertyOrdering (-want +got):\n%s", diff)
		}
	})
}

func TestClientCommunicationErrors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"quota"}}`, http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := gemini.NewClient(testConfig(srv.URL), discard()).Generate(context.Background(), testRequest())
		if !errors.Is(err, gemini.ErrCommunication) {
			t.Errorf("error = %v, want ErrCommunication", err)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := gemini.NewClient(testConfig(url), discard()).Generate(context.Background(), testRequest())
		if !errors.Is(err, gemini.ErrCommunication) {
			t.Errorf("error = %v, want ErrCommunication", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		cfg := testConfig(srv.URL)
		cfg.Timeout = "50ms"

		_, err := gemini.NewClient(cfg, discard()).Generate(context.Background(), testRequest())
		if !errors.Is(err, gemini.ErrCommunication) {
			t.Errorf("error = %v, want ErrCommunication", err)
		}
	})

	t.Run("malformed envelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<html>gateway</html>")
		}))
		defer srv.Close()

		_, err := gemini.NewClient(testConfig(srv.URL), discard()).Generate(context.Background(), testRequest())
		if !errors.Is(err, gemini.ErrCommunication) {
			t.Errorf("error = %v, want ErrCommunication", err)
		}
	})
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name     string
		envelope string
		want     string
		wantErr  error
	}{
		{"text present", envelope(`{"a":1}`), `{"a":1}`, nil},
		{"empty candidates", `{"candidates":[]}`, "", gemini.ErrEmptyOutput},
		{"no candidates field", `{}`, "", gemini.ErrEmptyOutput},
		{"empty text", envelope(""), "", gemini.ErrEmptyOutput},
		{"blank text", envelope("  \n"), "", gemini.ErrEmptyOutput},
		{"no parts", `{"candidates":[{"content":{"parts":[]}}]}`, "", gemini.ErrEmptyOutput},
		{"non-string text", `{"candidates":[{"content":{"parts":[{"text":42}]}}]}`, "", gemini.ErrEmptyOutput},
		{"error body", `{"error":{"message":"bad key"}}`, "", gemini.ErrCommunication},
		{"invalid json", `{"candidates":`, "", gemini.ErrCommunication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gemini.ExtractText([]byte(tt.envelope))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}
