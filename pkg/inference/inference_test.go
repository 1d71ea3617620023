package inference

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

func TestDataURI(t *testing.T) {
	uri := EncodeDataURI("image/webp", []byte("RIFF0000WEBP"))
	mediaType, data, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("DecodeDataURI() error = %v", err)
	}
	if mediaType != "image/webp" || string(data) != "RIFF0000WEBP" {
		t.Errorf("DecodeDataURI() = %q, %q", mediaType, data)
	}

	for _, bad := range []string{
		"https://example.com/a.webp",
		"data:image/png;base64",
		"data:image/png,plain",
		"data:image/png;base64,",
		"data:image/png;base64,!!!not-base64",
	} {
		if _, _, err := DecodeDataURI(bad); !errors.Is(err, ErrUnsupportedImage) {
			t.Errorf("DecodeDataURI(%q) error = %v, want ErrUnsupportedImage", bad, err)
		}
	}
}

func TestIsRemote(t *testing.T) {
	tests := map[string]bool{
		"https://cdn.example.com/pages/q9z.webp": true,
		"http://localhost:9000/a.png":            true,
		"data:image/png;base64,AAAA":             false,
		"ftp://example.com/a.png":                false,
		"q9z.webp":                               false,
	}
	for in, want := range tests {
		if got := IsRemote(in); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", in, got, want)
		}
	}
}

type chatMock struct {
	reply string

	mu  sync.Mutex
	req map[string]any
}

func (m *chatMock) handle(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if r.Header.Get("Authorization") != "Bearer sk-test" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	body, _ := io.ReadAll(r.Body)
	var req map[string]any
	_ = json.Unmarshal(body, &req)
	m.mu.Lock()
	m.req = req
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl_test_1",
		"object":  "chat.completion",
		"created": 1,
		"model":   req["model"],
		"choices": []any{
			map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": m.reply},
			},
		},
	})
}

func TestOpenAIInferencerSendsLabelledImages(t *testing.T) {
	mock := &chatMock{reply: `{"analyses":[]}`}
	srv := httptest.NewServer(http.HandlerFunc(mock.handle))
	defer srv.Close()

	inf := NewOpenAIInferencer("sk-test", "test-vision", option.WithMaxRetries(0))
	inf.ChangeBaseURL(srv.URL + "/v1/")

	images := []Image{
		{Name: "q9z.webp", URL: EncodeDataURI("image/webp", []byte("one"))},
		{Name: "a1x.webp", URL: "https://cdn.example.com/a1x.webp"},
	}
	out, err := inf.Infer(context.Background(), &openai.ChatCompletionNewParams{Temperature: openai.Float(0.1)}, "system prompt", "describe", images...)
	if err != nil {
		t.Fatalf("Infer() error = %v", err)
	}
	if out != mock.reply {
		t.Errorf("Infer() = %q", out)
	}

	mock.mu.Lock()
	defer mock.mu.Unlock()
	if mock.req["model"] != "test-vision" {
		t.Errorf("model = %v", mock.req["model"])
	}
	messages, _ := mock.req["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	user, _ := messages[1].(map[string]any)
	parts, _ := user["content"].([]any)
	if len(parts) != 5 {
		t.Fatalf("user parts = %d, want 5", len(parts))
	}
	var labels, urls []string
	for _, p := range parts {
		part, _ := p.(map[string]any)
		switch part["type"] {
		case "text":
			labels = append(labels, part["text"].(string))
		case "image_url":
			iu, _ := part["image_url"].(map[string]any)
			urls = append(urls, iu["url"].(string))
		}
	}
	if len(urls) != 2 || urls[1] != "https://cdn.example.com/a1x.webp" || !strings.HasPrefix(urls[0], "data:image/webp;base64,") {
		t.Errorf("image urls = %v", urls)
	}
	if !strings.Contains(strings.Join(labels, "\n"), "Image filename: q9z.webp") {
		t.Errorf("labels = %v", labels)
	}
}

func TestOpenAIInferencerEmptyContent(t *testing.T) {
	mock := &chatMock{reply: ""}
	srv := httptest.NewServer(http.HandlerFunc(mock.handle))
	defer srv.Close()

	inf := NewOpenAIInferencer("sk-test", "test-vision", option.WithMaxRetries(0))
	inf.ChangeBaseURL(srv.URL + "/v1/")
	if _, err := inf.Infer(context.Background(), nil, "s", "u"); err == nil {
		t.Fatal("expected error for empty completion")
	}
}

func TestFromEnv(t *testing.T) {
	for _, p := range Providers {
		t.Setenv(strings.ToUpper(p)+"_API_KEY", "")
	}
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("INFERENCE_PROVIDER", "")

	if _, err := FromEnv(context.Background()); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("FromEnv() error = %v, want ErrNoCredentials", err)
	}

	t.Setenv("GROK_API_KEY", "xai-test")
	inf, err := FromEnv(context.Background())
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if !strings.HasPrefix(inf.Name(), "grok/") {
		t.Errorf("Name() = %q", inf.Name())
	}

	t.Setenv("INFERENCE_PROVIDER", "anthropic")
	if _, err := FromEnv(context.Background()); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("forced provider without key: error = %v", err)
	}

	if _, err := New(context.Background(), "bogus", ""); err == nil || errors.Is(err, ErrNoCredentials) {
		t.Errorf("New(bogus) error = %v", err)
	}

	t.Setenv("INFERENCE_PROVIDER", "")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:1234/v1")
	t.Setenv("OPENAI_MODEL", "local-vision")
	inf, err = FromEnv(context.Background())
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if inf.Name() != "openai/local-vision" {
		t.Errorf("Name() = %q", inf.Name())
	}
}
